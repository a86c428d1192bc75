package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"sync"
	"testing"

	"github.com/louisbranch/memberdesk/internal/membership/access"
	"github.com/louisbranch/memberdesk/internal/membership/policy"
	"github.com/louisbranch/memberdesk/internal/membership/section"
	"github.com/louisbranch/memberdesk/internal/membership/status"
	"github.com/louisbranch/memberdesk/internal/services/membership/storage"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "membership.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

func putUser(t *testing.T, store *Store, id string, value status.Status) {
	t.Helper()
	if err := store.PutUser(context.Background(), access.User{
		ID:        id,
		FirstName: "First " + id,
		LastName:  "Last " + id,
		Email:     id + "@example.com",
		Status:    value,
	}); err != nil {
		t.Fatalf("put user %s: %v", id, err)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(""); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestOpenIsIdempotentAcrossRestarts(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "membership.db")
	first, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := first.PutUser(context.Background(), access.User{ID: "u1", Status: status.Pending}); err != nil {
		t.Fatalf("put user: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	second, err := Open(path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer second.Close()
	if _, err := second.GetUser(context.Background(), "u1"); err != nil {
		t.Fatalf("expected user to survive reopen: %v", err)
	}
}

func TestUserLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTempStore(t)
	if err := store.PutUser(ctx, access.User{
		ID:              "u1",
		FirstName:       "Ana",
		LastName:        "Silva",
		Email:           "ana@example.com",
		Status:          status.Pending,
		RequestedStatus: status.Regular,
	}); err != nil {
		t.Fatalf("put user: %v", err)
	}
	if err := store.PutUser(ctx, access.User{ID: "u1", Status: status.Pending}); !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("expected already exists, got %v", err)
	}

	got, err := store.GetUser(ctx, "u1")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.Status != status.Pending || got.RequestedStatus != status.Regular || got.Email != "ana@example.com" {
		t.Fatalf("unexpected user %+v", got)
	}

	if err := store.SetMembershipStatus(ctx, "u1", status.Regular, status.Unspecified); err != nil {
		t.Fatalf("set status: %v", err)
	}
	got, err = store.GetUser(ctx, "u1")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.Status != status.Regular || got.RequestedStatus != status.Unspecified {
		t.Fatalf("expected approved user, got %+v", got)
	}

	if err := store.SetMembershipStatus(ctx, "missing", status.Regular, status.Unspecified); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := store.GetUser(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListUsersKeepsRegistrationOrder(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	putUser(t, store, "b", status.Regular)
	putUser(t, store, "a", status.Retired)

	users, err := store.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
}

func TestAdminClaims(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTempStore(t)
	putUser(t, store, "u1", status.Regular)
	putUser(t, store, "u2", status.Regular)

	if err := store.PutAdminClaim(ctx, "u1", ""); err != nil {
		t.Fatalf("put admin claim: %v", err)
	}
	if err := store.PutAdminClaim(ctx, "u1", ""); !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("expected already exists, got %v", err)
	}
	if err := store.PutAdminClaim(ctx, "ghost", ""); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found for missing user, got %v", err)
	}

	isAdmin, err := store.IsAdmin(ctx, "u1")
	if err != nil || !isAdmin {
		t.Fatalf("expected u1 admin, got %v, %v", isAdmin, err)
	}
	isAdmin, err = store.IsAdmin(ctx, "u2")
	if err != nil || isAdmin {
		t.Fatalf("expected u2 not admin, got %v, %v", isAdmin, err)
	}

	count, err := store.CountAdmins(ctx)
	if err != nil {
		t.Fatalf("count admins: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 admin, got %d", count)
	}

	if err := store.DeleteAdminClaim(ctx, "u2"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := store.DeleteAdminClaim(ctx, "u1"); err != nil {
		t.Fatalf("delete admin claim: %v", err)
	}
}

func TestGroupLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTempStore(t)
	group := access.Group{
		ID:           "g1",
		Name:         "Regulars",
		Description:  "Active members",
		Statuses:     []status.Status{status.Regular, status.Reserve},
		Members:      []string{"u2", "u9"},
		Subscribable: true,
	}
	if err := store.PutGroup(ctx, group); err != nil {
		t.Fatalf("put group: %v", err)
	}

	got, err := store.GetGroup(ctx, "g1")
	if err != nil {
		t.Fatalf("get group: %v", err)
	}
	if !reflect.DeepEqual(got, group) {
		t.Fatalf("expected %+v, got %+v", group, got)
	}

	if err := store.AddGroupMember(ctx, "g1", "u3"); err != nil {
		t.Fatalf("add member: %v", err)
	}
	if err := store.AddGroupMember(ctx, "g1", "u3"); !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("expected already exists, got %v", err)
	}
	if err := store.AddGroupMember(ctx, "missing", "u3"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found for missing group, got %v", err)
	}
	if err := store.RemoveGroupMember(ctx, "g1", "u9"); err != nil {
		t.Fatalf("remove member: %v", err)
	}
	if err := store.RemoveGroupMember(ctx, "g1", "u9"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	got, err = store.GetGroup(ctx, "g1")
	if err != nil {
		t.Fatalf("get group: %v", err)
	}
	if !reflect.DeepEqual(got.Members, []string{"u2", "u3"}) {
		t.Fatalf("expected members [u2 u3], got %v", got.Members)
	}

	group.Name = "Renamed"
	group.Statuses = nil
	group.Members = nil
	group.Subscribable = false
	if err := store.PutGroup(ctx, group); err != nil {
		t.Fatalf("update group: %v", err)
	}
	groups, err := store.ListGroups(ctx)
	if err != nil {
		t.Fatalf("list groups: %v", err)
	}
	if len(groups) != 1 || groups[0].Name != "Renamed" || len(groups[0].Statuses) != 0 || len(groups[0].Members) != 0 {
		t.Fatalf("expected replaced group, got %+v", groups)
	}

	if err := store.DeleteGroup(ctx, "g1"); err != nil {
		t.Fatalf("delete group: %v", err)
	}
	if _, err := store.GetGroup(ctx, "g1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSectionLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTempStore(t)
	for _, id := range []string{"view-a", "view-b", "members"} {
		if err := store.PutGroup(ctx, access.Group{ID: id, Name: id}); err != nil {
			t.Fatalf("put group %s: %v", id, err)
		}
	}

	record := storage.SectionRecord{
		ID:              "s1",
		Name:            "Newsletter",
		Type:            section.TypeMembers,
		ViewingGroupIDs: []string{"view-b", "view-a"},
		MemberGroupIDs:  []string{"members"},
	}
	if err := store.PutSection(ctx, record); err != nil {
		t.Fatalf("put section: %v", err)
	}
	got, err := store.GetSection(ctx, "s1")
	if err != nil {
		t.Fatalf("get section: %v", err)
	}
	if !reflect.DeepEqual(got.ViewingGroupIDs, record.ViewingGroupIDs) || !reflect.DeepEqual(got.MemberGroupIDs, record.MemberGroupIDs) {
		t.Fatalf("expected links %v/%v, got %v/%v", record.ViewingGroupIDs, record.MemberGroupIDs, got.ViewingGroupIDs, got.MemberGroupIDs)
	}
	if got.CreatedAt.IsZero() {
		t.Fatal("expected created timestamp")
	}

	record.ViewingGroupIDs = []string{"missing"}
	if err := store.PutSection(ctx, record); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found for missing group link, got %v", err)
	}

	if err := store.DeleteGroup(ctx, "members"); err != nil {
		t.Fatalf("delete group: %v", err)
	}
	sections, err := store.ListSections(ctx)
	if err != nil {
		t.Fatalf("list sections: %v", err)
	}
	if len(sections) != 1 || len(sections[0].MemberGroupIDs) != 0 {
		t.Fatalf("expected member link to cascade, got %+v", sections)
	}

	record.Type = "NEWS"
	if err := store.PutSection(ctx, record); err == nil {
		t.Fatal("expected invalid type error")
	}
	if err := store.DeleteSection(ctx, "s1"); err != nil {
		t.Fatalf("delete section: %v", err)
	}
	if err := store.DeleteSection(ctx, "s1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestInTxRollsBackOnError(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTempStore(t)
	boom := errors.New("boom")

	err := store.InTx(ctx, func(tx storage.Store) error {
		if err := tx.PutUser(ctx, access.User{ID: "u1", Status: status.Pending}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if _, err := store.GetUser(ctx, "u1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected rolled back user, got %v", err)
	}
}

func TestConcurrentRevokesKeepOneAdmin(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTempStore(t)
	for _, id := range []string{"a1", "a2"} {
		putUser(t, store, id, status.Regular)
		if err := store.PutAdminClaim(ctx, id, ""); err != nil {
			t.Fatalf("put admin claim: %v", err)
		}
	}

	revoke := func(userID string) error {
		return store.InTx(ctx, func(tx storage.Store) error {
			count, err := tx.CountAdmins(ctx)
			if err != nil {
				return err
			}
			decision, err := policy.CanRevokeAdmin(count)
			if err != nil {
				return err
			}
			if err := decision.Err(); err != nil {
				return err
			}
			return tx.DeleteAdminClaim(ctx, userID)
		})
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []string{"a1", "a2"} {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			errs[i] = revoke(id)
		}(i, id)
	}
	wg.Wait()

	count, err := store.CountAdmins(ctx)
	if err != nil {
		t.Fatalf("count admins: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one admin left, got %d (errors %v)", count, errs)
	}
	rejected := 0
	for _, err := range errs {
		if err != nil {
			rejected++
		}
	}
	if rejected != 1 {
		t.Fatalf("expected one rejected revoke, got %v", errs)
	}
}
