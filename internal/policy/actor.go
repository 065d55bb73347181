package policy

import "github.com/google/uuid"

// Actor is the identity performing an operation. Use a nil *Actor for guests.
type Actor struct {
	ID      uuid.UUID
	IsAdmin bool
}

// NewActor returns a signed-in actor
func NewActor(id uuid.UUID, isAdmin bool) *Actor {
	return &Actor{ID: id, IsAdmin: isAdmin}
}

// IsGuest reports whether a is the anonymous actor
func (a *Actor) IsGuest() bool {
	return a == nil
}

// UserID returns a pointer to the actor's id, or nil for a guest
func (a *Actor) UserID() *uuid.UUID {
	if a == nil {
		return nil
	}
	id := a.ID
	return &id
}

func (a *Actor) admin() bool {
	return a != nil && a.IsAdmin
}

// owns compares identities only. A nil owner (guest content) is never owned.
func (a *Actor) owns(owner *uuid.UUID) bool {
	return a != nil && owner != nil && a.ID == *owner
}

// Action names an operation for reporting decisions
type Action string

const (
	ActionView        Action = "view"
	ActionList        Action = "list"
	ActionCreate      Action = "create"
	ActionUpdate      Action = "update"
	ActionDelete      Action = "delete"
	ActionRestore     Action = "restore"
	ActionForceDelete Action = "force_delete"
)
