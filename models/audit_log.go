package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of action being audited
type AuditAction string

const (
	AuditActionUserRegistered AuditAction = "user_registered"
	AuditActionUserLoggedIn   AuditAction = "user_logged_in"
	AuditActionUserLoggedOut  AuditAction = "user_logged_out"
	AuditActionRoleChanged    AuditAction = "role_changed"
	AuditActionPostCreated    AuditAction = "post_created"
	AuditActionPostUpdated    AuditAction = "post_updated"
	AuditActionPostDeleted    AuditAction = "post_deleted"
	AuditActionCommentCreated AuditAction = "comment_created"
	AuditActionCommentUpdated AuditAction = "comment_updated"
	AuditActionCommentDeleted AuditAction = "comment_deleted"
)

// Audited resource types
const (
	ResourceUser    = "user"
	ResourcePost    = "post"
	ResourceComment = "comment"
)

// AuditLog represents an audit trail entry. A nil ActorID is a guest.
type AuditLog struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	ActorID      *uuid.UUID      `json:"actor_id,omitempty" db:"actor_id"`
	Action       AuditAction     `json:"action" db:"action"`
	ResourceType string          `json:"resource_type" db:"resource_type"`
	ResourceID   *uuid.UUID      `json:"resource_id,omitempty" db:"resource_id"`
	Details      json.RawMessage `json:"details,omitempty" db:"details"`
	IPAddress    string          `json:"ip_address" db:"ip_address"`
	UserAgent    string          `json:"user_agent" db:"user_agent"`
	RequestID    string          `json:"request_id" db:"request_id"`
	Timestamp    time.Time       `json:"timestamp" db:"created_at"`
}

// NewAuditLog creates a new AuditLog instance
func NewAuditLog(action AuditAction, resourceType string) *AuditLog {
	return &AuditLog{
		ID:           uuid.New(),
		Action:       action,
		ResourceType: resourceType,
		Timestamp:    time.Now().UTC(),
	}
}

// WithActor sets the acting user; nil leaves the entry as a guest action
func (a *AuditLog) WithActor(actorID *uuid.UUID) *AuditLog {
	if actorID != nil {
		id := *actorID
		a.ActorID = &id
	}
	return a
}

// WithResource sets the resource ID
func (a *AuditLog) WithResource(resourceID uuid.UUID) *AuditLog {
	a.ResourceID = &resourceID
	return a
}

// WithDetails sets the details
func (a *AuditLog) WithDetails(details interface{}) *AuditLog {
	if data, err := json.Marshal(details); err == nil {
		a.Details = data
	}
	return a
}

// WithRequest sets request metadata
func (a *AuditLog) WithRequest(requestID, ipAddress, userAgent string) *AuditLog {
	a.RequestID = requestID
	a.IPAddress = ipAddress
	a.UserAgent = userAgent
	return a
}
