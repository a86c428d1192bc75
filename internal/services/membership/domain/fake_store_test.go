package domain

import (
	"context"
	"sort"
	"sync"

	"github.com/louisbranch/memberdesk/internal/membership/access"
	"github.com/louisbranch/memberdesk/internal/membership/status"
	"github.com/louisbranch/memberdesk/internal/services/membership/storage"
)

type fakeState struct {
	users    []access.User
	admins   map[string]string
	groups   map[string]access.Group
	sections map[string]storage.SectionRecord
}

func (s fakeState) clone() fakeState {
	out := fakeState{
		users:    append([]access.User(nil), s.users...),
		admins:   make(map[string]string, len(s.admins)),
		groups:   make(map[string]access.Group, len(s.groups)),
		sections: make(map[string]storage.SectionRecord, len(s.sections)),
	}
	for k, v := range s.admins {
		out.admins[k] = v
	}
	for k, v := range s.groups {
		v.Members = append([]string(nil), v.Members...)
		v.Statuses = append([]status.Status(nil), v.Statuses...)
		out.groups[k] = v
	}
	for k, v := range s.sections {
		out.sections[k] = v
	}
	return out
}

// fakeStore serializes transactions with txMu and restores state on error.
// A non-nil statusWriteErr fails every SetMembershipStatus call.
type fakeStore struct {
	txMu           sync.Mutex
	mu             sync.Mutex
	state          fakeState
	statusWriteErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{state: fakeState{
		admins:   map[string]string{},
		groups:   map[string]access.Group{},
		sections: map[string]storage.SectionRecord{},
	}}
}

func (s *fakeStore) InTx(ctx context.Context, fn func(storage.Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	saved := s.state.clone()
	s.mu.Unlock()

	err := fn(s)

	s.mu.Lock()
	if err != nil {
		s.state = saved
	}
	s.mu.Unlock()
	return err
}

func (s *fakeStore) GetUser(_ context.Context, userID string) (access.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.state.users {
		if user.ID == userID {
			return user, nil
		}
	}
	return access.User{}, storage.ErrNotFound
}

func (s *fakeStore) ListUsers(context.Context) ([]access.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]access.User(nil), s.state.users...), nil
}

func (s *fakeStore) PutUser(_ context.Context, user access.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.state.users {
		if existing.ID == user.ID {
			return storage.ErrAlreadyExists
		}
	}
	s.state.users = append(s.state.users, user)
	return nil
}

func (s *fakeStore) SetMembershipStatus(_ context.Context, userID string, next status.Status, requested status.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.statusWriteErr != nil {
		return s.statusWriteErr
	}
	for i := range s.state.users {
		if s.state.users[i].ID == userID {
			s.state.users[i].Status = next
			s.state.users[i].RequestedStatus = requested
			return nil
		}
	}
	return storage.ErrNotFound
}

func (s *fakeStore) IsAdmin(_ context.Context, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.state.admins[userID]
	return ok, nil
}

func (s *fakeStore) CountAdmins(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.admins), nil
}

func (s *fakeStore) PutAdminClaim(_ context.Context, userID string, grantedBy string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.state.admins[userID]; ok {
		return storage.ErrAlreadyExists
	}
	s.state.admins[userID] = grantedBy
	return nil
}

func (s *fakeStore) DeleteAdminClaim(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.state.admins[userID]; !ok {
		return storage.ErrNotFound
	}
	delete(s.state.admins, userID)
	return nil
}

func (s *fakeStore) GetGroup(_ context.Context, groupID string) (access.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	group, ok := s.state.groups[groupID]
	if !ok {
		return access.Group{}, storage.ErrNotFound
	}
	return group, nil
}

func (s *fakeStore) ListGroups(context.Context) ([]access.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	groups := make([]access.Group, 0, len(s.state.groups))
	for _, group := range s.state.groups {
		groups = append(groups, group)
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Name == groups[j].Name {
			return groups[i].ID < groups[j].ID
		}
		return groups[i].Name < groups[j].Name
	})
	return groups, nil
}

func (s *fakeStore) PutGroup(_ context.Context, group access.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.groups[group.ID] = group
	return nil
}

func (s *fakeStore) DeleteGroup(_ context.Context, groupID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.state.groups[groupID]; !ok {
		return storage.ErrNotFound
	}
	delete(s.state.groups, groupID)
	for id, record := range s.state.sections {
		record.ViewingGroupIDs = without(record.ViewingGroupIDs, groupID)
		record.MemberGroupIDs = without(record.MemberGroupIDs, groupID)
		s.state.sections[id] = record
	}
	return nil
}

func (s *fakeStore) AddGroupMember(_ context.Context, groupID string, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	group, ok := s.state.groups[groupID]
	if !ok {
		return storage.ErrNotFound
	}
	if group.HasExplicitMember(userID) {
		return storage.ErrAlreadyExists
	}
	group.Members = append(append([]string(nil), group.Members...), userID)
	s.state.groups[groupID] = group
	return nil
}

func (s *fakeStore) RemoveGroupMember(_ context.Context, groupID string, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	group, ok := s.state.groups[groupID]
	if !ok || !group.HasExplicitMember(userID) {
		return storage.ErrNotFound
	}
	group.Members = without(group.Members, userID)
	s.state.groups[groupID] = group
	return nil
}

func (s *fakeStore) GetSection(_ context.Context, sectionID string) (storage.SectionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.state.sections[sectionID]
	if !ok {
		return storage.SectionRecord{}, storage.ErrNotFound
	}
	return record, nil
}

func (s *fakeStore) ListSections(context.Context) ([]storage.SectionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := make([]storage.SectionRecord, 0, len(s.state.sections))
	for _, record := range s.state.sections {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Name < records[j].Name })
	return records, nil
}

func (s *fakeStore) PutSection(_ context.Context, record storage.SectionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, groupID := range append(append([]string(nil), record.ViewingGroupIDs...), record.MemberGroupIDs...) {
		if _, ok := s.state.groups[groupID]; !ok {
			return storage.ErrNotFound
		}
	}
	s.state.sections[record.ID] = record
	return nil
}

func (s *fakeStore) DeleteSection(_ context.Context, sectionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.state.sections[sectionID]; !ok {
		return storage.ErrNotFound
	}
	delete(s.state.sections, sectionID)
	return nil
}

func without(values []string, drop string) []string {
	var out []string
	for _, value := range values {
		if value != drop {
			out = append(out, value)
		}
	}
	return out
}

var _ storage.Store = (*fakeStore)(nil)
