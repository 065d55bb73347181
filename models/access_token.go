package models

import (
	"time"

	"github.com/google/uuid"
)

// AccessToken records an issued bearer token so it can be revoked.
// ID is the token's jti claim.
type AccessToken struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	UserID     uuid.UUID  `json:"user_id" db:"user_id"`
	Name       string     `json:"name" db:"name"`
	ExpiresAt  time.Time  `json:"expires_at" db:"expires_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty" db:"last_used_at"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}

// NewAccessToken creates a token record valid for ttl
func NewAccessToken(userID uuid.UUID, name string, ttl time.Duration) *AccessToken {
	now := time.Now().UTC()
	return &AccessToken{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
}

// Expired reports whether the token is past its expiry at t
func (t *AccessToken) Expired(at time.Time) bool {
	return !at.Before(t.ExpiresAt)
}
