// Package services holds the request-handling layer: every mutation loads its
// target, validates the payload, asks the policy package, then writes inside a
// transaction and records an audit entry.
package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/upb/blog-platform/internal/policy"
	"github.com/upb/blog-platform/internal/validation"
	"github.com/upb/blog-platform/models"
	"github.com/upb/blog-platform/repositories"
)

// Listing sizes
const (
	PostsPerPage    = 9
	CommentsPerPage = 10
	AuditPerPage    = 20
)

// Auditor records audit entries. Implementations must not block.
type Auditor interface {
	RecordAction(ctx context.Context, action models.AuditAction, actorID *uuid.UUID, resourceType string, resourceID uuid.UUID, details interface{})
}

// DecisionRecorder counts authorization and validation outcomes
type DecisionRecorder interface {
	RecordAuthorization(resource, action string, allowed bool)
	RecordValidationFailure(ruleSet string)
}

type nopAuditor struct{}

func (nopAuditor) RecordAction(context.Context, models.AuditAction, *uuid.UUID, string, uuid.UUID, interface{}) {
}

type nopRecorder struct{}

func (nopRecorder) RecordAuthorization(string, string, bool) {}
func (nopRecorder) RecordValidationFailure(string)           {}

// checks bundles the validation and decision plumbing shared by services
type checks struct {
	validator *validation.Validator
	recorder  DecisionRecorder
	auditor   Auditor
}

func newChecks(v *validation.Validator, auditor Auditor, recorder DecisionRecorder) checks {
	if v == nil {
		v = validation.New()
	}
	if auditor == nil {
		auditor = nopAuditor{}
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return checks{validator: v, recorder: recorder, auditor: auditor}
}

func (c checks) validate(ctx context.Context, set validation.RuleSet, payload validation.Payload) (validation.Values, error) {
	values, err := c.validator.Validate(ctx, set, payload)
	if err != nil {
		if _, ok := validation.AsError(err); ok {
			c.recorder.RecordValidationFailure(set.Name)
		}
		return nil, fromValidation(err)
	}
	return values, nil
}

// authorize records the decision and converts a denial into the error the
// actor should see: guests are asked to sign in when guestErr is
// Unauthenticated, everyone else is forbidden.
func (c checks) authorize(resource string, action policy.Action, actor *policy.Actor, allowed bool, guestErr func() *DomainError) error {
	c.recorder.RecordAuthorization(resource, string(action), allowed)
	if allowed {
		return nil
	}
	if actor.IsGuest() && guestErr != nil {
		return guestErr()
	}
	return Forbidden()
}

// lookupErr maps repository lookups onto domain errors
func lookupErr(resource string, err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return NotFound(resource)
	}
	return WrapInternal("failed to load "+resource, err)
}
