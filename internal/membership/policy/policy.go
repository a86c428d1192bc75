// Package policy decides membership status transitions and admin claim
// changes. Decisions are pure: callers read fresh inputs, decide, and only
// write when the decision is allowed.
package policy

import (
	"fmt"

	"github.com/louisbranch/memberdesk/internal/membership/status"
	apperrors "github.com/louisbranch/memberdesk/internal/platform/errors"
)

// Reason identifies why a decision was rejected.
type Reason = apperrors.Code

// Rejection reasons.
const (
	ReasonAdminCannotBeRestricted     Reason = apperrors.CodeAdminCannotBeRestricted
	ReasonCannotLeaveRestricted       Reason = apperrors.CodeCannotLeaveRestricted
	ReasonCannotEnterRestricted       Reason = apperrors.CodeCannotEnterRestricted
	ReasonLastAdminProtected          Reason = apperrors.CodeLastAdminProtected
	ReasonRestrictedUserCannotBeAdmin Reason = apperrors.CodeRestrictedUserCannotBeAdmin
)

// Decision is the result of a policy check. Reason is empty when Allowed.
type Decision struct {
	Allowed  bool
	Reason   Reason
	Metadata map[string]string
}

// Allow is the allowed decision.
func Allow() Decision {
	return Decision{Allowed: true}
}

func reject(reason Reason, metadata map[string]string) Decision {
	return Decision{Reason: reason, Metadata: metadata}
}

// Err converts a rejection into a domain error carrying the reason code.
// It returns nil for allowed decisions.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return apperrors.WithMetadata(d.Reason, rejectionMessage(d.Reason), d.Metadata)
}

func rejectionMessage(reason Reason) string {
	switch reason {
	case ReasonAdminCannotBeRestricted:
		return "admin cannot be moved to a restricted status"
	case ReasonCannotLeaveRestricted:
		return "non-admin cannot leave a restricted status"
	case ReasonCannotEnterRestricted:
		return "non-admin cannot enter a restricted status"
	case ReasonLastAdminProtected:
		return "at least one admin must remain"
	case ReasonRestrictedUserCannotBeAdmin:
		return "restricted user cannot be granted admin"
	default:
		return fmt.Sprintf("rejected: %s", reason)
	}
}

// TransitionRequest describes a requested membership status change.
type TransitionRequest struct {
	// Current is the target's stored status; Unspecified for a new profile.
	Current status.Status
	// Next is the requested status.
	Next status.Status
	// ActorIsAdmin reports whether the caller holds the admin claim.
	ActorIsAdmin bool
	// TargetIsAdmin reports whether the user being changed holds the admin claim.
	TargetIsAdmin bool
}

// CanChangeStatus decides a status transition. The first matching rule wins:
//
//  1. an admin target can never be moved into a restricted status;
//  2. admin actors may make any other change;
//  3. non-admins cannot leave a restricted status;
//  4. non-admins cannot enter a restricted status;
//  5. everything else is allowed.
//
// Unknown literals are input errors, not rejections.
func CanChangeStatus(req TransitionRequest) (Decision, error) {
	if err := req.Next.Validate(); err != nil {
		return Decision{}, err
	}
	if req.Current != status.Unspecified {
		if err := req.Current.Validate(); err != nil {
			return Decision{}, err
		}
	}

	switch {
	case req.TargetIsAdmin && status.IsRestricted(req.Next):
		return reject(ReasonAdminCannotBeRestricted, map[string]string{"Status": req.Next.String()}), nil
	case req.ActorIsAdmin:
		return Allow(), nil
	case req.Current != status.Unspecified && status.IsRestricted(req.Current):
		return reject(ReasonCannotLeaveRestricted, map[string]string{"Status": req.Current.String()}), nil
	case status.IsRestricted(req.Next):
		return reject(ReasonCannotEnterRestricted, map[string]string{"Status": req.Next.String()}), nil
	default:
		return Allow(), nil
	}
}

// CanRevokeAdmin allows removing an admin claim only while more than one
// admin exists.
func CanRevokeAdmin(currentAdminCount int) (Decision, error) {
	if currentAdminCount < 0 {
		return Decision{}, apperrors.WithMetadata(
			apperrors.CodeAdminCountInvalid,
			fmt.Sprintf("admin count %d is negative", currentAdminCount),
			map[string]string{"Count": fmt.Sprint(currentAdminCount)},
		)
	}
	if currentAdminCount > 1 {
		return Allow(), nil
	}
	return reject(ReasonLastAdminProtected, nil), nil
}

// CanGrantAdmin allows granting the admin claim only to users holding a
// non-restricted status.
func CanGrantAdmin(targetStatus status.Status) (Decision, error) {
	if err := targetStatus.Validate(); err != nil {
		return Decision{}, err
	}
	if status.IsNonRestricted(targetStatus) {
		return Allow(), nil
	}
	return reject(ReasonRestrictedUserCannotBeAdmin, map[string]string{"Status": targetStatus.String()}), nil
}
