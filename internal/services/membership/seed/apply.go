package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/memberdesk/internal/membership/access"
	"github.com/louisbranch/memberdesk/internal/membership/status"
	"github.com/louisbranch/memberdesk/internal/services/membership/domain"
)

// Result summarizes what Apply created.
type Result struct {
	Users    int
	Admins   int
	GroupIDs map[string]string
	Sections []string
}

// Apply imports fixture users, grants admin claims, and creates groups and
// sections. The first admin is bootstrapped, so the target store must not
// hold any admin yet.
func Apply(ctx context.Context, svc *domain.Service, fixture Fixture) (Result, error) {
	if svc == nil {
		return Result{}, errors.New("membership service is required")
	}
	if err := fixture.Validate(); err != nil {
		return Result{}, err
	}

	result := Result{GroupIDs: make(map[string]string, len(fixture.Groups))}
	for _, user := range fixture.Users {
		current, err := status.Parse(user.Status)
		if err != nil {
			return result, fmt.Errorf("user %s: %w", user.ID, err)
		}
		requested, err := status.ParseOptional(user.RequestedStatus)
		if err != nil {
			return result, fmt.Errorf("user %s: %w", user.ID, err)
		}
		if _, err := svc.ImportUser(ctx, access.User{
			ID:              strings.TrimSpace(user.ID),
			FirstName:       user.FirstName,
			LastName:        user.LastName,
			Email:           user.Email,
			Status:          current,
			RequestedStatus: requested,
		}); err != nil {
			return result, fmt.Errorf("import user %s: %w", user.ID, err)
		}
		result.Users++
	}

	var actorID string
	for _, user := range fixture.Users {
		if !user.Admin {
			continue
		}
		userID := strings.TrimSpace(user.ID)
		var err error
		if actorID == "" {
			err = svc.BootstrapAdmin(ctx, userID)
			actorID = userID
		} else {
			err = svc.GrantAdmin(ctx, actorID, userID)
		}
		if err != nil {
			return result, fmt.Errorf("grant admin %s: %w", userID, err)
		}
		result.Admins++
	}

	for _, group := range fixture.Groups {
		created, err := svc.CreateGroup(ctx, actorID, domain.GroupInput{
			Name:         group.Name,
			Description:  group.Description,
			Statuses:     group.Statuses,
			Members:      group.Members,
			Subscribable: group.Subscribable,
		})
		if err != nil {
			return result, fmt.Errorf("create group %s: %w", group.Key, err)
		}
		result.GroupIDs[strings.TrimSpace(group.Key)] = created.ID
	}

	for _, sec := range fixture.Sections {
		created, err := svc.CreateSection(ctx, actorID, domain.SectionInput{
			Name:            sec.Name,
			Type:            sec.Type,
			ViewingGroupIDs: result.groupIDs(sec.ViewingGroups),
			MemberGroupIDs:  result.groupIDs(sec.MemberGroups),
		})
		if err != nil {
			return result, fmt.Errorf("create section %s: %w", sec.Name, err)
		}
		result.Sections = append(result.Sections, created.ID)
	}
	return result, nil
}

func (r Result) groupIDs(keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		out = append(out, r.GroupIDs[strings.TrimSpace(key)])
	}
	return out
}
