// Package section derives who can view a section, who is listed as its
// member, and who may subscribe to it, from the section's access groups.
package section

import (
	"strings"

	"github.com/louisbranch/memberdesk/internal/membership/access"
	"github.com/louisbranch/memberdesk/internal/membership/status"
	apperrors "github.com/louisbranch/memberdesk/internal/platform/errors"
)

// Type identifies what a section lists.
type Type string

const (
	TypeMembers Type = "MEMBERS"
	TypeEvents  Type = "EVENTS"
)

// ParseType converts untrusted text into a section type.
func ParseType(value string) (Type, error) {
	switch Type(strings.ToUpper(strings.TrimSpace(value))) {
	case TypeMembers:
		return TypeMembers, nil
	case TypeEvents:
		return TypeEvents, nil
	default:
		return "", apperrors.WithMetadata(
			apperrors.CodeSectionTypeInvalid,
			"section type "+strings.TrimSpace(value)+" is not recognized",
			map[string]string{"Type": strings.TrimSpace(value)},
		)
	}
}

// Purpose identifies how a group is linked to a section.
type Purpose string

const (
	PurposeView   Purpose = "VIEW"
	PurposeMember Purpose = "MEMBER"
)

// Section is a content area with its linked access groups resolved.
type Section struct {
	ID            string
	Name          string
	Type          Type
	ViewingGroups []access.Group
	MemberGroups  []access.Group
}

// Member is a user listed in a section.
type Member struct {
	UserID    string
	FirstName string
	LastName  string
	Email     string
	Status    status.Status
}

// Resolver answers section questions against one user snapshot.
type Resolver struct {
	users []access.User
	byID  map[string]access.User
}

// NewResolver indexes a user snapshot.
func NewResolver(users []access.User) *Resolver {
	byID := make(map[string]access.User, len(users))
	for _, user := range users {
		if _, ok := byID[user.ID]; ok {
			continue
		}
		byID[user.ID] = user
	}
	return &Resolver{users: users, byID: byID}
}

// MemberGroups returns the groups that define sec's members: its member
// groups, or its viewing groups when none are linked.
func (r *Resolver) MemberGroups(sec Section) []access.Group {
	if len(sec.MemberGroups) > 0 {
		return sec.MemberGroups
	}
	return sec.ViewingGroups
}

// ResolveMembers lists sec's members in first-appearance order across its
// member groups. IDs with no user in the snapshot are skipped.
func (r *Resolver) ResolveMembers(sec Section) []Member {
	var out []Member
	seen := make(map[string]struct{})
	for _, group := range r.MemberGroups(sec) {
		for _, userID := range access.EffectiveMembers(group, r.users) {
			if _, ok := seen[userID]; ok {
				continue
			}
			user, ok := r.byID[userID]
			if !ok {
				continue
			}
			seen[userID] = struct{}{}
			out = append(out, Member{
				UserID:    user.ID,
				FirstName: user.FirstName,
				LastName:  user.LastName,
				Email:     user.Email,
				Status:    user.Status,
			})
		}
	}
	return out
}

// CanView reports whether userID belongs to any of sec's viewing groups.
func (r *Resolver) CanView(userID string, sec Section) bool {
	return r.inAny(userID, sec.ViewingGroups)
}

// IsMember reports whether userID is listed by ResolveMembers.
func (r *Resolver) IsMember(userID string, sec Section) bool {
	if _, ok := r.byID[userID]; !ok {
		return false
	}
	return r.inAny(userID, r.MemberGroups(sec))
}

// CanSubscribe reports whether userID can view sec, is not yet a member,
// and some member group accepts subscriptions.
func (r *Resolver) CanSubscribe(userID string, sec Section) bool {
	if !r.CanView(userID, sec) || r.IsMember(userID, sec) {
		return false
	}
	return SubscribableGroup(r.MemberGroups(sec)) != nil
}

// SubscribableGroup returns the first subscribable group, or nil.
func SubscribableGroup(groups []access.Group) *access.Group {
	for i := range groups {
		if groups[i].Subscribable {
			return &groups[i]
		}
	}
	return nil
}

func (r *Resolver) inAny(userID string, groups []access.Group) bool {
	if userID == "" {
		return false
	}
	user, ok := r.byID[userID]
	if !ok {
		user = access.User{ID: userID}
	}
	for _, group := range groups {
		if access.HasMember(group, user) {
			return true
		}
	}
	return false
}
