// Package storage defines persistence contracts for the membership service.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/louisbranch/memberdesk/internal/membership/access"
	"github.com/louisbranch/memberdesk/internal/membership/section"
	"github.com/louisbranch/memberdesk/internal/membership/status"
)

var (
	// ErrNotFound indicates a requested user, group, or section is missing.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a write collided with an existing record.
	ErrAlreadyExists = errors.New("record already exists")
)

// SectionRecord stores one section with its linked group IDs in link order.
type SectionRecord struct {
	ID              string
	Name            string
	Type            section.Type
	ViewingGroupIDs []string
	MemberGroupIDs  []string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// UserStore persists member profiles.
type UserStore interface {
	GetUser(ctx context.Context, userID string) (access.User, error)
	// ListUsers returns every user in registration order.
	ListUsers(ctx context.Context) ([]access.User, error)
	// PutUser inserts a new user; ErrAlreadyExists when the ID is taken.
	PutUser(ctx context.Context, user access.User) error
	// SetMembershipStatus stores the user's status and requested status.
	SetMembershipStatus(ctx context.Context, userID string, next status.Status, requested status.Status) error
}

// AdminClaimStore persists the admin claim separately from profiles.
type AdminClaimStore interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
	CountAdmins(ctx context.Context) (int, error)
	PutAdminClaim(ctx context.Context, userID string, grantedBy string) error
	// DeleteAdminClaim removes a claim; ErrNotFound when none exists.
	DeleteAdminClaim(ctx context.Context, userID string) error
}

// GroupStore persists access groups.
type GroupStore interface {
	GetGroup(ctx context.Context, groupID string) (access.Group, error)
	// ListGroups returns every group ordered by name.
	ListGroups(ctx context.Context) ([]access.Group, error)
	// PutGroup upserts a group with its statuses and explicit members.
	PutGroup(ctx context.Context, group access.Group) error
	DeleteGroup(ctx context.Context, groupID string) error
	AddGroupMember(ctx context.Context, groupID string, userID string) error
	RemoveGroupMember(ctx context.Context, groupID string, userID string) error
}

// SectionStore persists sections and their group links.
type SectionStore interface {
	GetSection(ctx context.Context, sectionID string) (SectionRecord, error)
	// ListSections returns every section ordered by name.
	ListSections(ctx context.Context) ([]SectionRecord, error)
	// PutSection upserts a section and replaces its group links.
	PutSection(ctx context.Context, record SectionRecord) error
	DeleteSection(ctx context.Context, sectionID string) error
}

// Store is the full membership persistence surface.
type Store interface {
	UserStore
	AdminClaimStore
	GroupStore
	SectionStore
	// InTx runs fn against a store bound to one write transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	InTx(ctx context.Context, fn func(Store) error) error
}
