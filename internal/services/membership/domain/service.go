// Package domain implements membership use cases: each mutating call reads
// fresh state inside one store transaction, asks the membership policy for a
// decision, and only writes when the decision allows it.
package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/memberdesk/internal/membership/policy"
	apperrors "github.com/louisbranch/memberdesk/internal/platform/errors"
	"github.com/louisbranch/memberdesk/internal/platform/id"
	"github.com/louisbranch/memberdesk/internal/services/membership/storage"
)

var (
	// ErrStoreNotConfigured indicates the service is missing persistence wiring.
	ErrStoreNotConfigured = errors.New("membership store is not configured")
	// ErrIDGeneratorNotConfigured indicates an ID generator is required.
	ErrIDGeneratorNotConfigured = errors.New("membership id generator is not configured")
)

// Decision outcomes reported to a DecisionRecorder.
const (
	OutcomeAllowed  = "allowed"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// DecisionRecorder observes policy decisions.
type DecisionRecorder interface {
	RecordDecision(ctx context.Context, operation string, outcome string, reason string)
}

// Service orchestrates membership use cases.
type Service struct {
	store     storage.Store
	newID     func() (string, error)
	decisions DecisionRecorder
}

// NewService constructs membership domain use cases.
func NewService(store storage.Store, newID func() (string, error)) *Service {
	if newID == nil {
		newID = id.NewID
	}
	return &Service{
		store: store,
		newID: newID,
	}
}

// WithDecisionRecorder attaches an observer for policy decisions.
func (s *Service) WithDecisionRecorder(recorder DecisionRecorder) *Service {
	s.decisions = recorder
	return s
}

func (s *Service) configured() error {
	if s == nil || s.store == nil {
		return ErrStoreNotConfigured
	}
	return nil
}

// decide records a failed or rejected policy outcome and converts a
// rejection into an error. Allowed outcomes are recorded by committed once
// the write has finished.
func (s *Service) decide(ctx context.Context, operation string, decision policy.Decision, err error) error {
	if err != nil {
		s.record(ctx, operation, OutcomeError, string(apperrors.CodeOf(err)))
		return err
	}
	if !decision.Allowed {
		s.record(ctx, operation, OutcomeRejected, string(decision.Reason))
		return decision.Err()
	}
	return nil
}

// committed records an allowed decision as allowed when its write succeeded
// and as an error otherwise.
func (s *Service) committed(ctx context.Context, operation string, allowed bool, err error) {
	if !allowed {
		return
	}
	if err != nil {
		s.record(ctx, operation, OutcomeError, string(apperrors.CodeOf(err)))
		return
	}
	s.record(ctx, operation, OutcomeAllowed, "")
}

func (s *Service) record(ctx context.Context, operation string, outcome string, reason string) {
	if s.decisions == nil {
		return
	}
	s.decisions.RecordDecision(ctx, operation, outcome, reason)
}

// requireAdmin rejects actors without the admin claim.
func requireAdmin(ctx context.Context, store storage.Store, actorID string) error {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return apperrors.New(apperrors.CodeUnauthenticated, "actor is required")
	}
	isAdmin, err := store.IsAdmin(ctx, actorID)
	if err != nil {
		return fmt.Errorf("check actor admin claim: %w", err)
	}
	if !isAdmin {
		return apperrors.New(apperrors.CodePermissionDenied, "admin claim required")
	}
	return nil
}

func requireID(field string, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", apperrors.WithMetadata(apperrors.CodeIDInvalid, field+" id is required", map[string]string{"Field": field})
	}
	return value, nil
}

// storeError maps storage sentinels onto domain error codes.
func storeError(err error, resource string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrNotFound):
		return apperrors.Wrap(apperrors.CodeNotFound, resource+" not found", err)
	case errors.Is(err, storage.ErrAlreadyExists):
		return apperrors.Wrap(apperrors.CodeAlreadyExists, resource+" already exists", err)
	default:
		return fmt.Errorf("%s: %w", resource, err)
	}
}
