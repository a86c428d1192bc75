package domain

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/louisbranch/memberdesk/internal/membership/access"
	"github.com/louisbranch/memberdesk/internal/membership/policy"
	"github.com/louisbranch/memberdesk/internal/membership/status"
	apperrors "github.com/louisbranch/memberdesk/internal/platform/errors"
	"github.com/louisbranch/memberdesk/internal/services/membership/storage"
)

// Operation names reported with policy decisions.
const (
	OperationRegister      = "register"
	OperationChangeStatus  = "change_status"
	OperationApprove       = "approve_pending"
	OperationGrantAdmin    = "grant_admin"
	OperationRevokeAdmin   = "revoke_admin"
	OperationBootstrap     = "bootstrap_admin"
	OperationImportProfile = "import_profile"
)

// RegisterInput describes a new member registration.
type RegisterInput struct {
	UserID          string
	FirstName       string
	LastName        string
	Email           string
	RequestedStatus string
}

// ChangeStatusInput describes a status edit by ActorID on TargetID.
type ChangeStatusInput struct {
	ActorID  string
	TargetID string
	Status   string
}

// Profile is a user with their admin claim and effective group IDs.
type Profile struct {
	User     access.User
	IsAdmin  bool
	GroupIDs []string
}

// Register creates a PENDING profile carrying the requested status. New
// profiles cannot request a restricted status.
func (s *Service) Register(ctx context.Context, input RegisterInput) (access.User, error) {
	if err := s.configured(); err != nil {
		return access.User{}, err
	}
	user, err := normalizeProfile(input.UserID, input.FirstName, input.LastName, input.Email)
	if err != nil {
		return access.User{}, err
	}
	requested, err := status.Parse(input.RequestedStatus)
	if err != nil {
		s.record(ctx, OperationRegister, OutcomeError, string(apperrors.CodeOf(err)))
		return access.User{}, err
	}
	decision, err := policy.CanChangeStatus(policy.TransitionRequest{
		Current: status.Unspecified,
		Next:    requested,
	})
	if err := s.decide(ctx, OperationRegister, decision, err); err != nil {
		return access.User{}, err
	}

	user.Status = status.Pending
	user.RequestedStatus = requested
	err = storeError(s.store.PutUser(ctx, user), "user")
	s.committed(ctx, OperationRegister, true, err)
	if err != nil {
		return access.User{}, err
	}
	return user, nil
}

// ImportUser stores a profile with an explicit status. It is the trusted
// fixture path used by seeding and skips the self-service transition rules.
func (s *Service) ImportUser(ctx context.Context, user access.User) (access.User, error) {
	if err := s.configured(); err != nil {
		return access.User{}, err
	}
	normalized, err := normalizeProfile(user.ID, user.FirstName, user.LastName, user.Email)
	if err != nil {
		return access.User{}, err
	}
	if err := user.Status.Validate(); err != nil {
		s.record(ctx, OperationImportProfile, OutcomeError, string(apperrors.CodeOf(err)))
		return access.User{}, err
	}
	normalized.Status = user.Status
	if user.Status == status.Pending {
		normalized.RequestedStatus = user.RequestedStatus
	}
	if err := s.store.PutUser(ctx, normalized); err != nil {
		return access.User{}, storeError(err, "user")
	}
	return normalized, nil
}

// GetUser loads one user.
func (s *Service) GetUser(ctx context.Context, userID string) (access.User, error) {
	if err := s.configured(); err != nil {
		return access.User{}, err
	}
	userID, err := requireID("user", userID)
	if err != nil {
		return access.User{}, err
	}
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return access.User{}, storeError(err, "user")
	}
	return user, nil
}

// Profile loads a user with their admin claim and effective groups.
func (s *Service) Profile(ctx context.Context, userID string) (Profile, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	isAdmin, err := s.store.IsAdmin(ctx, user.ID)
	if err != nil {
		return Profile{}, fmt.Errorf("check admin claim: %w", err)
	}
	groups, err := s.store.ListGroups(ctx)
	if err != nil {
		return Profile{}, storeError(err, "groups")
	}
	return Profile{
		User:     user,
		IsAdmin:  isAdmin,
		GroupIDs: access.EffectiveGroupsForUser(user, groups),
	}, nil
}

// IsAdmin reports whether userID holds the admin claim.
func (s *Service) IsAdmin(ctx context.Context, userID string) (bool, error) {
	if err := s.configured(); err != nil {
		return false, err
	}
	return s.store.IsAdmin(ctx, strings.TrimSpace(userID))
}

// ChangeStatus applies a status edit. Actors may edit themselves; editing
// anyone else requires the admin claim. Leaving PENDING clears the
// requested status.
func (s *Service) ChangeStatus(ctx context.Context, input ChangeStatusInput) (access.User, error) {
	if err := s.configured(); err != nil {
		return access.User{}, err
	}
	actorID, err := requireID("actor", input.ActorID)
	if err != nil {
		return access.User{}, err
	}
	targetID, err := requireID("user", input.TargetID)
	if err != nil {
		return access.User{}, err
	}
	next, err := status.Parse(input.Status)
	if err != nil {
		s.record(ctx, OperationChangeStatus, OutcomeError, string(apperrors.CodeOf(err)))
		return access.User{}, err
	}

	var updated access.User
	allowed := false
	err = s.store.InTx(ctx, func(tx storage.Store) error {
		actorIsAdmin, err := tx.IsAdmin(ctx, actorID)
		if err != nil {
			return fmt.Errorf("check actor admin claim: %w", err)
		}
		if actorID != targetID && !actorIsAdmin {
			return apperrors.New(apperrors.CodePermissionDenied, "admin claim required to edit another member")
		}
		target, err := tx.GetUser(ctx, targetID)
		if err != nil {
			return storeError(err, "user")
		}
		targetIsAdmin, err := tx.IsAdmin(ctx, targetID)
		if err != nil {
			return fmt.Errorf("check target admin claim: %w", err)
		}

		decision, err := policy.CanChangeStatus(policy.TransitionRequest{
			Current:       target.Status,
			Next:          next,
			ActorIsAdmin:  actorIsAdmin,
			TargetIsAdmin: targetIsAdmin,
		})
		if err := s.decide(ctx, OperationChangeStatus, decision, err); err != nil {
			return err
		}
		allowed = true

		requested := target.RequestedStatus
		if next != status.Pending {
			requested = status.Unspecified
		}
		if err := tx.SetMembershipStatus(ctx, targetID, next, requested); err != nil {
			return storeError(err, "user")
		}
		target.Status = next
		target.RequestedStatus = requested
		updated = target
		return nil
	})
	s.committed(ctx, OperationChangeStatus, allowed, err)
	if err != nil {
		return access.User{}, err
	}
	return updated, nil
}

// ApprovePending moves a PENDING user to the status they requested.
func (s *Service) ApprovePending(ctx context.Context, actorID string, targetID string) (access.User, error) {
	if err := s.configured(); err != nil {
		return access.User{}, err
	}
	targetID, err := requireID("user", targetID)
	if err != nil {
		return access.User{}, err
	}

	var updated access.User
	allowed := false
	err = s.store.InTx(ctx, func(tx storage.Store) error {
		if err := requireAdmin(ctx, tx, actorID); err != nil {
			return err
		}
		target, err := tx.GetUser(ctx, targetID)
		if err != nil {
			return storeError(err, "user")
		}
		if target.Status != status.Pending || target.RequestedStatus == status.Unspecified {
			return apperrors.New(apperrors.CodeUserNotPending, "user has no pending request")
		}
		targetIsAdmin, err := tx.IsAdmin(ctx, targetID)
		if err != nil {
			return fmt.Errorf("check target admin claim: %w", err)
		}

		decision, err := policy.CanChangeStatus(policy.TransitionRequest{
			Current:       target.Status,
			Next:          target.RequestedStatus,
			ActorIsAdmin:  true,
			TargetIsAdmin: targetIsAdmin,
		})
		if err := s.decide(ctx, OperationApprove, decision, err); err != nil {
			return err
		}
		allowed = true
		if err := tx.SetMembershipStatus(ctx, targetID, target.RequestedStatus, status.Unspecified); err != nil {
			return storeError(err, "user")
		}
		target.Status = target.RequestedStatus
		target.RequestedStatus = status.Unspecified
		updated = target
		return nil
	})
	s.committed(ctx, OperationApprove, allowed, err)
	if err != nil {
		return access.User{}, err
	}
	return updated, nil
}

// GrantAdmin gives the admin claim to a non-restricted user.
func (s *Service) GrantAdmin(ctx context.Context, actorID string, targetID string) error {
	if err := s.configured(); err != nil {
		return err
	}
	targetID, err := requireID("user", targetID)
	if err != nil {
		return err
	}
	allowed := false
	err = s.store.InTx(ctx, func(tx storage.Store) error {
		if err := requireAdmin(ctx, tx, actorID); err != nil {
			return err
		}
		return s.grant(ctx, tx, OperationGrantAdmin, strings.TrimSpace(actorID), targetID, &allowed)
	})
	s.committed(ctx, OperationGrantAdmin, allowed, err)
	return err
}

// grant writes the admin claim when policy allows it and reports the
// decision through allowed.
func (s *Service) grant(ctx context.Context, tx storage.Store, operation string, grantedBy string, targetID string, allowed *bool) error {
	target, err := tx.GetUser(ctx, targetID)
	if err != nil {
		return storeError(err, "user")
	}
	isAdmin, err := tx.IsAdmin(ctx, targetID)
	if err != nil {
		return fmt.Errorf("check target admin claim: %w", err)
	}
	if isAdmin {
		return apperrors.New(apperrors.CodeUserAlreadyAdmin, "user is already an admin")
	}
	decision, err := policy.CanGrantAdmin(target.Status)
	if err := s.decide(ctx, operation, decision, err); err != nil {
		return err
	}
	*allowed = true
	if err := tx.PutAdminClaim(ctx, targetID, grantedBy); err != nil {
		return storeError(err, "admin claim")
	}
	return nil
}

// RevokeAdmin removes an admin claim unless it is the last one.
func (s *Service) RevokeAdmin(ctx context.Context, actorID string, targetID string) error {
	if err := s.configured(); err != nil {
		return err
	}
	targetID, err := requireID("user", targetID)
	if err != nil {
		return err
	}
	allowed := false
	err = s.store.InTx(ctx, func(tx storage.Store) error {
		if err := requireAdmin(ctx, tx, actorID); err != nil {
			return err
		}
		isAdmin, err := tx.IsAdmin(ctx, targetID)
		if err != nil {
			return fmt.Errorf("check target admin claim: %w", err)
		}
		if !isAdmin {
			return apperrors.New(apperrors.CodeUserNotAdmin, "user is not an admin")
		}
		count, err := tx.CountAdmins(ctx)
		if err != nil {
			return fmt.Errorf("count admins: %w", err)
		}
		decision, err := policy.CanRevokeAdmin(count)
		if err := s.decide(ctx, OperationRevokeAdmin, decision, err); err != nil {
			return err
		}
		allowed = true
		if err := tx.DeleteAdminClaim(ctx, targetID); err != nil {
			return storeError(err, "admin claim")
		}
		return nil
	})
	s.committed(ctx, OperationRevokeAdmin, allowed, err)
	return err
}

// BootstrapAdmin grants the first admin claim. It fails once any admin exists.
func (s *Service) BootstrapAdmin(ctx context.Context, userID string) error {
	if err := s.configured(); err != nil {
		return err
	}
	userID, err := requireID("user", userID)
	if err != nil {
		return err
	}
	allowed := false
	err = s.store.InTx(ctx, func(tx storage.Store) error {
		count, err := tx.CountAdmins(ctx)
		if err != nil {
			return fmt.Errorf("count admins: %w", err)
		}
		if count > 0 {
			return apperrors.New(apperrors.CodePermissionDenied, "an admin already exists")
		}
		return s.grant(ctx, tx, OperationBootstrap, "", userID, &allowed)
	})
	s.committed(ctx, OperationBootstrap, allowed, err)
	return err
}

func normalizeProfile(userID, firstName, lastName, email string) (access.User, error) {
	userID, err := requireID("user", userID)
	if err != nil {
		return access.User{}, err
	}
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if firstName == "" || lastName == "" {
		return access.User{}, apperrors.New(apperrors.CodeUserNameEmpty, "first and last name are required")
	}
	email = strings.TrimSpace(email)
	address, err := mail.ParseAddress(email)
	if err != nil || address.Address != email {
		return access.User{}, apperrors.Wrap(apperrors.CodeUserEmailInvalid, "email is invalid", err)
	}
	return access.User{
		ID:        userID,
		FirstName: firstName,
		LastName:  lastName,
		Email:     strings.ToLower(email),
	}, nil
}
