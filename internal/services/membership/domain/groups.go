package domain

import (
	"context"
	"fmt"
	"strings"

	"github.com/louisbranch/memberdesk/internal/membership/access"
	"github.com/louisbranch/memberdesk/internal/membership/status"
	apperrors "github.com/louisbranch/memberdesk/internal/platform/errors"
	"github.com/louisbranch/memberdesk/internal/services/membership/storage"
)

// GroupInput describes the editable fields of an access group. A nil
// Members keeps the stored explicit members on update.
type GroupInput struct {
	Name         string
	Description  string
	Statuses     []string
	Members      []string
	Subscribable bool
}

func (in GroupInput) normalize() (access.Group, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return access.Group{}, apperrors.New(apperrors.CodeGroupNameEmpty, "group name is required")
	}
	statuses, err := status.ParseList(in.Statuses)
	if err != nil {
		return access.Group{}, err
	}
	return access.Group{
		Name:         name,
		Description:  strings.TrimSpace(in.Description),
		Statuses:     statuses,
		Members:      dedupeIDs(in.Members),
		Subscribable: in.Subscribable,
	}, nil
}

// CreateGroup stores a new access group.
func (s *Service) CreateGroup(ctx context.Context, actorID string, input GroupInput) (access.Group, error) {
	if err := s.configured(); err != nil {
		return access.Group{}, err
	}
	if s.newID == nil {
		return access.Group{}, ErrIDGeneratorNotConfigured
	}
	group, err := input.normalize()
	if err != nil {
		return access.Group{}, err
	}

	err = s.store.InTx(ctx, func(tx storage.Store) error {
		if err := requireAdmin(ctx, tx, actorID); err != nil {
			return err
		}
		if err := requireUsers(ctx, tx, group.Members); err != nil {
			return err
		}
		groupID, err := s.newID()
		if err != nil {
			return fmt.Errorf("generate group id: %w", err)
		}
		group.ID = groupID
		return storeError(tx.PutGroup(ctx, group), "group")
	})
	if err != nil {
		return access.Group{}, err
	}
	return group, nil
}

// UpdateGroup replaces a group's editable fields.
func (s *Service) UpdateGroup(ctx context.Context, actorID string, groupID string, input GroupInput) (access.Group, error) {
	if err := s.configured(); err != nil {
		return access.Group{}, err
	}
	groupID, err := requireID("group", groupID)
	if err != nil {
		return access.Group{}, err
	}
	group, err := input.normalize()
	if err != nil {
		return access.Group{}, err
	}
	group.ID = groupID

	err = s.store.InTx(ctx, func(tx storage.Store) error {
		if err := requireAdmin(ctx, tx, actorID); err != nil {
			return err
		}
		existing, err := tx.GetGroup(ctx, groupID)
		if err != nil {
			return storeError(err, "group")
		}
		if input.Members == nil {
			group.Members = existing.Members
		} else if err := requireUsers(ctx, tx, group.Members); err != nil {
			return err
		}
		return storeError(tx.PutGroup(ctx, group), "group")
	})
	if err != nil {
		return access.Group{}, err
	}
	return group, nil
}

// DeleteGroup removes a group and its section links.
func (s *Service) DeleteGroup(ctx context.Context, actorID string, groupID string) error {
	if err := s.configured(); err != nil {
		return err
	}
	groupID, err := requireID("group", groupID)
	if err != nil {
		return err
	}
	return s.store.InTx(ctx, func(tx storage.Store) error {
		if err := requireAdmin(ctx, tx, actorID); err != nil {
			return err
		}
		return storeError(tx.DeleteGroup(ctx, groupID), "group")
	})
}

// GetGroup loads one group.
func (s *Service) GetGroup(ctx context.Context, groupID string) (access.Group, error) {
	if err := s.configured(); err != nil {
		return access.Group{}, err
	}
	groupID, err := requireID("group", groupID)
	if err != nil {
		return access.Group{}, err
	}
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return access.Group{}, storeError(err, "group")
	}
	return group, nil
}

// ListGroups returns every group ordered by name.
func (s *Service) ListGroups(ctx context.Context) ([]access.Group, error) {
	if err := s.configured(); err != nil {
		return nil, err
	}
	groups, err := s.store.ListGroups(ctx)
	if err != nil {
		return nil, storeError(err, "groups")
	}
	return groups, nil
}

// AddGroupMember adds an existing user as an explicit group member.
func (s *Service) AddGroupMember(ctx context.Context, actorID string, groupID string, userID string) error {
	if err := s.configured(); err != nil {
		return err
	}
	groupID, err := requireID("group", groupID)
	if err != nil {
		return err
	}
	userID, err = requireID("user", userID)
	if err != nil {
		return err
	}
	return s.store.InTx(ctx, func(tx storage.Store) error {
		if err := requireAdmin(ctx, tx, actorID); err != nil {
			return err
		}
		if _, err := tx.GetUser(ctx, userID); err != nil {
			return storeError(err, "user")
		}
		if _, err := tx.GetGroup(ctx, groupID); err != nil {
			return storeError(err, "group")
		}
		return storeError(tx.AddGroupMember(ctx, groupID, userID), "group member")
	})
}

// RemoveGroupMember removes an explicit group member. Status-implied
// membership is unaffected.
func (s *Service) RemoveGroupMember(ctx context.Context, actorID string, groupID string, userID string) error {
	if err := s.configured(); err != nil {
		return err
	}
	groupID, err := requireID("group", groupID)
	if err != nil {
		return err
	}
	userID, err = requireID("user", userID)
	if err != nil {
		return err
	}
	return s.store.InTx(ctx, func(tx storage.Store) error {
		if err := requireAdmin(ctx, tx, actorID); err != nil {
			return err
		}
		return storeError(tx.RemoveGroupMember(ctx, groupID, userID), "group member")
	})
}

// requireUsers rejects explicit member IDs without a user record.
func requireUsers(ctx context.Context, store storage.Store, userIDs []string) error {
	for _, userID := range userIDs {
		if _, err := store.GetUser(ctx, userID); err != nil {
			return storeError(err, "user")
		}
	}
	return nil
}

// GroupMembers returns the group's effective member IDs.
func (s *Service) GroupMembers(ctx context.Context, groupID string) ([]string, error) {
	group, err := s.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, storeError(err, "users")
	}
	return access.EffectiveMembers(group, users), nil
}

// UserGroups returns the IDs of the groups userID effectively belongs to.
func (s *Service) UserGroups(ctx context.Context, userID string) ([]string, error) {
	profile, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return profile.GroupIDs, nil
}

func dedupeIDs(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}
