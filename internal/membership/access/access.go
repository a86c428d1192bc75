// Package access resolves effective access-group membership: explicit
// assignments plus users whose membership status the group names.
package access

import "github.com/louisbranch/memberdesk/internal/membership/status"

// User is the membership view of a registered person.
type User struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	Status    status.Status
	// RequestedStatus is the status asked for at registration, kept while
	// the user is PENDING.
	RequestedStatus status.Status
}

// Group is an access group. A group with Statuses set is status-backed:
// every user holding one of those statuses is an implied member.
type Group struct {
	ID          string
	Name        string
	Description string
	Statuses    []status.Status
	Members     []string
	// Subscribable lets users self-subscribe to sections backed by the group.
	Subscribable bool
}

// IsStatusBacked reports whether the group implies members from statuses.
func (g Group) IsStatusBacked() bool {
	return len(g.Statuses) > 0
}

// HasExplicitMember reports whether userID is stored on the group.
func (g Group) HasExplicitMember(userID string) bool {
	for _, member := range g.Members {
		if member == userID {
			return true
		}
	}
	return false
}

// EffectiveMembers returns the group's member IDs: explicit members in
// stored order followed by status-implied users in snapshot order, each ID
// at most once.
func EffectiveMembers(group Group, users []User) []string {
	out := make([]string, 0, len(group.Members))
	seen := make(map[string]struct{}, len(group.Members))
	add := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}

	for _, member := range group.Members {
		add(member)
	}
	if group.IsStatusBacked() {
		for _, user := range users {
			if status.Contains(group.Statuses, user.Status) {
				add(user.ID)
			}
		}
	}
	return out
}

// HasMember reports whether user is an explicit or status-implied member.
func HasMember(group Group, user User) bool {
	if user.ID != "" && group.HasExplicitMember(user.ID) {
		return true
	}
	return user.Status != status.Unspecified && status.Contains(group.Statuses, user.Status)
}

// EffectiveGroupsForUser returns the IDs of the groups user belongs to, in
// input order.
func EffectiveGroupsForUser(user User, groups []Group) []string {
	var out []string
	for _, group := range groups {
		if HasMember(group, user) {
			out = append(out, group.ID)
		}
	}
	return out
}
