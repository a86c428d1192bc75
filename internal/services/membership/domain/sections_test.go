package domain

import (
	"context"
	"testing"

	"github.com/louisbranch/memberdesk/internal/membership/section"
	"github.com/louisbranch/memberdesk/internal/membership/status"
	apperrors "github.com/louisbranch/memberdesk/internal/platform/errors"
)

func sectionFixture(t *testing.T) (*Service, *fakeRecorder) {
	t.Helper()
	ctx := context.Background()
	recorder := &fakeRecorder{}
	svc := NewService(newFakeStore(), sequentialIDGenerator("viewers", "club", "s1", "s2", "s3", "s4")).WithDecisionRecorder(recorder)
	seedUser(t, svc, "admin", status.Regular, true)
	seedUser(t, svc, "u1", status.Regular, false)
	seedUser(t, svc, "u2", status.Retired, false)
	seedUser(t, svc, "u3", status.Pending, false)

	if _, err := svc.CreateGroup(ctx, "admin", GroupInput{Name: "Viewers", Statuses: []string{"REGULAR", "RETIRED"}}); err != nil {
		t.Fatalf("create viewers: %v", err)
	}
	if _, err := svc.CreateGroup(ctx, "admin", GroupInput{Name: "Club", Members: []string{"u2"}, Subscribable: true}); err != nil {
		t.Fatalf("create club: %v", err)
	}
	if _, err := svc.CreateSection(ctx, "admin", SectionInput{
		Name:            "Club news",
		Type:            "members",
		ViewingGroupIDs: []string{"viewers"},
		MemberGroupIDs:  []string{"club"},
	}); err != nil {
		t.Fatalf("create section: %v", err)
	}
	return svc, recorder
}

func TestCreateSectionValidates(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _ := sectionFixture(t)

	_, err := svc.CreateSection(ctx, "u1", SectionInput{Name: "X", Type: "EVENTS"})
	requireCode(t, err, apperrors.CodePermissionDenied)
	created, err := svc.CreateSection(ctx, "admin", SectionInput{Name: "Calendar", Type: "EVENTS", ViewingGroupIDs: []string{"viewers"}})
	if err != nil {
		t.Fatalf("create section: %v", err)
	}
	if created.ID != "s2" {
		t.Fatalf("expected s2 after rejected create, got %s", created.ID)
	}
	_, err = svc.CreateSection(ctx, "admin", SectionInput{Name: "", Type: "EVENTS"})
	requireCode(t, err, apperrors.CodeSectionNameEmpty)
	_, err = svc.CreateSection(ctx, "admin", SectionInput{Name: "X", Type: "NEWS"})
	requireCode(t, err, apperrors.CodeSectionTypeInvalid)
	_, err = svc.CreateSection(ctx, "admin", SectionInput{Name: "X", Type: "EVENTS", ViewingGroupIDs: []string{"missing"}})
	requireCode(t, err, apperrors.CodeNotFound)
}

func TestSectionMembersAndAccess(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _ := sectionFixture(t)

	sec, err := svc.GetSection(ctx, "u1", "s1")
	if err != nil {
		t.Fatalf("get section: %v", err)
	}
	if sec.Type != section.TypeMembers || len(sec.ViewingGroups) != 1 || len(sec.MemberGroups) != 1 {
		t.Fatalf("unexpected hydrated section %+v", sec)
	}

	members, err := svc.SectionMembers(ctx, "u1", "s1")
	if err != nil {
		t.Fatalf("section members: %v", err)
	}
	if len(members) != 1 || members[0].UserID != "u2" {
		t.Fatalf("expected only u2, got %+v", members)
	}

	_, err = svc.SectionMembers(ctx, "u3", "s1")
	requireCode(t, err, apperrors.CodeSectionNotViewable)

	access, err := svc.SectionAccess(ctx, "u1", "s1")
	if err != nil {
		t.Fatalf("section access: %v", err)
	}
	if !access.CanView || access.IsMember || !access.CanSubscribe {
		t.Fatalf("expected viewer able to subscribe, got %+v", access)
	}
	access, err = svc.SectionAccess(ctx, "u2", "s1")
	if err != nil {
		t.Fatalf("section access: %v", err)
	}
	if !access.IsMember || access.CanSubscribe {
		t.Fatalf("expected member unable to subscribe, got %+v", access)
	}

	// Admins view sections they are not in.
	if _, err := svc.SectionMembers(ctx, "admin", "s1"); err != nil {
		t.Fatalf("admin section members: %v", err)
	}
}

func TestListSectionsFiltersByVisibility(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _ := sectionFixture(t)

	visible, err := svc.ListSections(ctx, "u1")
	if err != nil {
		t.Fatalf("list sections: %v", err)
	}
	if len(visible) != 1 {
		t.Fatalf("expected one visible section, got %d", len(visible))
	}
	hidden, err := svc.ListSections(ctx, "u3")
	if err != nil {
		t.Fatalf("list sections: %v", err)
	}
	if len(hidden) != 0 {
		t.Fatalf("expected no visible sections for pending user, got %d", len(hidden))
	}
}

func TestSubscribeAndUnsubscribe(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, recorder := sectionFixture(t)

	if err := svc.Subscribe(ctx, "u1", "s1"); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if got := recorder.last(); got.operation != OperationSubscribe || got.outcome != OutcomeAllowed {
		t.Fatalf("expected allowed subscribe, got %+v", got)
	}
	members, err := svc.SectionMembers(ctx, "u1", "s1")
	if err != nil {
		t.Fatalf("section members: %v", err)
	}
	if len(members) != 2 || members[1].UserID != "u1" {
		t.Fatalf("expected u1 appended, got %+v", members)
	}

	err = svc.Subscribe(ctx, "u1", "s1")
	requireCode(t, err, apperrors.CodeSectionNotSubscribable)
	err = svc.Subscribe(ctx, "u3", "s1")
	requireCode(t, err, apperrors.CodeSectionNotViewable)

	if err := svc.Unsubscribe(ctx, "u1", "s1"); err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}
	err = svc.Unsubscribe(ctx, "u1", "s1")
	requireCode(t, err, apperrors.CodeNotFound)
}

func TestUpdateAndDeleteSection(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _ := sectionFixture(t)

	updated, err := svc.UpdateSection(ctx, "admin", "s1", SectionInput{
		Name:            "Club news",
		Type:            "EVENTS",
		ViewingGroupIDs: []string{"viewers"},
	})
	if err != nil {
		t.Fatalf("update section: %v", err)
	}
	if updated.Type != section.TypeEvents || len(updated.MemberGroups) != 0 {
		t.Fatalf("unexpected updated section %+v", updated)
	}

	// Without member groups the viewers are the members.
	access, err := svc.SectionAccess(ctx, "u1", "s1")
	if err != nil {
		t.Fatalf("section access: %v", err)
	}
	if !access.IsMember || access.CanSubscribe {
		t.Fatalf("expected fallback membership, got %+v", access)
	}

	_, err = svc.UpdateSection(ctx, "admin", "missing", SectionInput{Name: "X", Type: "EVENTS"})
	requireCode(t, err, apperrors.CodeNotFound)

	if err := svc.DeleteSection(ctx, "admin", "s1"); err != nil {
		t.Fatalf("delete section: %v", err)
	}
	_, err = svc.GetSection(ctx, "admin", "s1")
	requireCode(t, err, apperrors.CodeNotFound)
}
