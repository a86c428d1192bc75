package domain

import (
	"context"
	"fmt"
	"strings"

	"github.com/louisbranch/memberdesk/internal/membership/access"
	"github.com/louisbranch/memberdesk/internal/membership/section"
	apperrors "github.com/louisbranch/memberdesk/internal/platform/errors"
	"github.com/louisbranch/memberdesk/internal/services/membership/storage"
)

// Operation names reported with section access checks.
const (
	OperationSubscribe   = "subscribe"
	OperationUnsubscribe = "unsubscribe"
)

// SectionInput describes the editable fields of a section.
type SectionInput struct {
	Name            string
	Type            string
	ViewingGroupIDs []string
	MemberGroupIDs  []string
}

func (in SectionInput) normalize() (storage.SectionRecord, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return storage.SectionRecord{}, apperrors.New(apperrors.CodeSectionNameEmpty, "section name is required")
	}
	sectionType, err := section.ParseType(in.Type)
	if err != nil {
		return storage.SectionRecord{}, err
	}
	return storage.SectionRecord{
		Name:            name,
		Type:            sectionType,
		ViewingGroupIDs: dedupeIDs(in.ViewingGroupIDs),
		MemberGroupIDs:  dedupeIDs(in.MemberGroupIDs),
	}, nil
}

// Access summarizes what one user may do with a section.
type Access struct {
	CanView      bool
	IsMember     bool
	CanSubscribe bool
}

// snapshot is one consistent read of users and groups.
type snapshot struct {
	users    []access.User
	groups   map[string]access.Group
	resolver *section.Resolver
}

func loadSnapshot(ctx context.Context, store storage.Store) (snapshot, error) {
	users, err := store.ListUsers(ctx)
	if err != nil {
		return snapshot{}, storeError(err, "users")
	}
	groups, err := store.ListGroups(ctx)
	if err != nil {
		return snapshot{}, storeError(err, "groups")
	}
	byID := make(map[string]access.Group, len(groups))
	for _, group := range groups {
		byID[group.ID] = group
	}
	return snapshot{users: users, groups: byID, resolver: section.NewResolver(users)}, nil
}

// hydrate resolves a section record's group IDs against the snapshot.
func (snap snapshot) hydrate(record storage.SectionRecord) section.Section {
	pick := func(ids []string) []access.Group {
		var out []access.Group
		for _, groupID := range ids {
			if group, ok := snap.groups[groupID]; ok {
				out = append(out, group)
			}
		}
		return out
	}
	return section.Section{
		ID:            record.ID,
		Name:          record.Name,
		Type:          record.Type,
		ViewingGroups: pick(record.ViewingGroupIDs),
		MemberGroups:  pick(record.MemberGroupIDs),
	}
}

// CreateSection stores a new section with its group links.
func (s *Service) CreateSection(ctx context.Context, actorID string, input SectionInput) (section.Section, error) {
	if err := s.configured(); err != nil {
		return section.Section{}, err
	}
	if s.newID == nil {
		return section.Section{}, ErrIDGeneratorNotConfigured
	}
	record, err := input.normalize()
	if err != nil {
		return section.Section{}, err
	}
	return s.putSection(ctx, actorID, record, false)
}

// UpdateSection replaces a section's name, type, and group links.
func (s *Service) UpdateSection(ctx context.Context, actorID string, sectionID string, input SectionInput) (section.Section, error) {
	if err := s.configured(); err != nil {
		return section.Section{}, err
	}
	sectionID, err := requireID("section", sectionID)
	if err != nil {
		return section.Section{}, err
	}
	record, err := input.normalize()
	if err != nil {
		return section.Section{}, err
	}
	record.ID = sectionID
	return s.putSection(ctx, actorID, record, true)
}

func (s *Service) putSection(ctx context.Context, actorID string, record storage.SectionRecord, mustExist bool) (section.Section, error) {
	var out section.Section
	err := s.store.InTx(ctx, func(tx storage.Store) error {
		if err := requireAdmin(ctx, tx, actorID); err != nil {
			return err
		}
		if mustExist {
			if _, err := tx.GetSection(ctx, record.ID); err != nil {
				return storeError(err, "section")
			}
		} else {
			sectionID, err := s.newID()
			if err != nil {
				return fmt.Errorf("generate section id: %w", err)
			}
			record.ID = sectionID
		}
		if err := tx.PutSection(ctx, record); err != nil {
			return storeError(err, "section group")
		}
		snap, err := loadSnapshot(ctx, tx)
		if err != nil {
			return err
		}
		out = snap.hydrate(record)
		return nil
	})
	if err != nil {
		return section.Section{}, err
	}
	return out, nil
}

// DeleteSection removes a section.
func (s *Service) DeleteSection(ctx context.Context, actorID string, sectionID string) error {
	if err := s.configured(); err != nil {
		return err
	}
	sectionID, err := requireID("section", sectionID)
	if err != nil {
		return err
	}
	return s.store.InTx(ctx, func(tx storage.Store) error {
		if err := requireAdmin(ctx, tx, actorID); err != nil {
			return err
		}
		return storeError(tx.DeleteSection(ctx, sectionID), "section")
	})
}

// viewable loads a section and checks that actorID may view it.
func (s *Service) viewable(ctx context.Context, store storage.Store, actorID string, sectionID string) (section.Section, snapshot, error) {
	actorID, err := requireID("actor", actorID)
	if err != nil {
		return section.Section{}, snapshot{}, err
	}
	sectionID, err = requireID("section", sectionID)
	if err != nil {
		return section.Section{}, snapshot{}, err
	}
	record, err := store.GetSection(ctx, sectionID)
	if err != nil {
		return section.Section{}, snapshot{}, storeError(err, "section")
	}
	snap, err := loadSnapshot(ctx, store)
	if err != nil {
		return section.Section{}, snapshot{}, err
	}
	sec := snap.hydrate(record)
	if snap.resolver.CanView(actorID, sec) {
		return sec, snap, nil
	}
	isAdmin, err := store.IsAdmin(ctx, actorID)
	if err != nil {
		return section.Section{}, snapshot{}, fmt.Errorf("check actor admin claim: %w", err)
	}
	if !isAdmin {
		return section.Section{}, snapshot{}, apperrors.New(apperrors.CodeSectionNotViewable, "section is not viewable")
	}
	return sec, snap, nil
}

// GetSection loads one section the actor can view. Admins can view all.
func (s *Service) GetSection(ctx context.Context, actorID string, sectionID string) (section.Section, error) {
	if err := s.configured(); err != nil {
		return section.Section{}, err
	}
	sec, _, err := s.viewable(ctx, s.store, actorID, sectionID)
	return sec, err
}

// ListSections returns the sections the actor can view. Admins see all.
func (s *Service) ListSections(ctx context.Context, actorID string) ([]section.Section, error) {
	if err := s.configured(); err != nil {
		return nil, err
	}
	actorID, err := requireID("actor", actorID)
	if err != nil {
		return nil, err
	}
	records, err := s.store.ListSections(ctx)
	if err != nil {
		return nil, storeError(err, "sections")
	}
	snap, err := loadSnapshot(ctx, s.store)
	if err != nil {
		return nil, err
	}
	isAdmin, err := s.store.IsAdmin(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("check actor admin claim: %w", err)
	}

	var out []section.Section
	for _, record := range records {
		sec := snap.hydrate(record)
		if isAdmin || snap.resolver.CanView(actorID, sec) {
			out = append(out, sec)
		}
	}
	return out, nil
}

// SectionMembers lists the members of a section the actor can view.
func (s *Service) SectionMembers(ctx context.Context, actorID string, sectionID string) ([]section.Member, error) {
	if err := s.configured(); err != nil {
		return nil, err
	}
	sec, snap, err := s.viewable(ctx, s.store, actorID, sectionID)
	if err != nil {
		return nil, err
	}
	return snap.resolver.ResolveMembers(sec), nil
}

// SectionAccess reports the actor's view, member, and subscribe rights.
func (s *Service) SectionAccess(ctx context.Context, actorID string, sectionID string) (Access, error) {
	if err := s.configured(); err != nil {
		return Access{}, err
	}
	actorID, err := requireID("actor", actorID)
	if err != nil {
		return Access{}, err
	}
	sectionID, err = requireID("section", sectionID)
	if err != nil {
		return Access{}, err
	}
	record, err := s.store.GetSection(ctx, sectionID)
	if err != nil {
		return Access{}, storeError(err, "section")
	}
	snap, err := loadSnapshot(ctx, s.store)
	if err != nil {
		return Access{}, err
	}
	sec := snap.hydrate(record)
	return Access{
		CanView:      snap.resolver.CanView(actorID, sec),
		IsMember:     snap.resolver.IsMember(actorID, sec),
		CanSubscribe: snap.resolver.CanSubscribe(actorID, sec),
	}, nil
}

// Subscribe adds the actor as an explicit member of the section's first
// subscribable member group.
func (s *Service) Subscribe(ctx context.Context, actorID string, sectionID string) error {
	if err := s.configured(); err != nil {
		return err
	}
	allowed := false
	err := s.store.InTx(ctx, func(tx storage.Store) error {
		sec, snap, err := s.viewable(ctx, tx, actorID, sectionID)
		if err != nil {
			return err
		}
		actorID = strings.TrimSpace(actorID)
		if !snap.resolver.CanSubscribe(actorID, sec) {
			s.record(ctx, OperationSubscribe, OutcomeRejected, string(apperrors.CodeSectionNotSubscribable))
			return apperrors.New(apperrors.CodeSectionNotSubscribable, "section does not accept this subscription")
		}
		allowed = true
		group := section.SubscribableGroup(snap.resolver.MemberGroups(sec))
		return storeError(tx.AddGroupMember(ctx, group.ID, actorID), "group member")
	})
	s.committed(ctx, OperationSubscribe, allowed, err)
	return err
}

// Unsubscribe removes the actor's explicit membership from the section's
// subscribable member groups. Status-implied membership cannot be left.
func (s *Service) Unsubscribe(ctx context.Context, actorID string, sectionID string) error {
	if err := s.configured(); err != nil {
		return err
	}
	allowed := false
	err := s.store.InTx(ctx, func(tx storage.Store) error {
		sec, snap, err := s.viewable(ctx, tx, actorID, sectionID)
		if err != nil {
			return err
		}
		actorID = strings.TrimSpace(actorID)
		var subscribed []string
		for _, group := range snap.resolver.MemberGroups(sec) {
			if group.Subscribable && group.HasExplicitMember(actorID) {
				subscribed = append(subscribed, group.ID)
			}
		}
		if len(subscribed) == 0 {
			s.record(ctx, OperationUnsubscribe, OutcomeRejected, string(apperrors.CodeNotFound))
			return apperrors.New(apperrors.CodeNotFound, "no subscription to remove")
		}
		allowed = true
		for _, groupID := range subscribed {
			if err := tx.RemoveGroupMember(ctx, groupID, actorID); err != nil {
				return storeError(err, "group member")
			}
		}
		return nil
	})
	s.committed(ctx, OperationUnsubscribe, allowed, err)
	return err
}
