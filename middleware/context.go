package middleware

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/upb/blog-platform/internal/policy"
	"github.com/upb/blog-platform/models"
	"github.com/upb/blog-platform/services"
)

// Context key type to avoid collisions
type contextKey string

// IdentityKey is the context key for the authenticated identity
const IdentityKey contextKey = "identity"

// GetRequestIDFromContext retrieves the id assigned by chi's RequestID middleware
func GetRequestIDFromContext(ctx context.Context) string {
	return chimw.GetReqID(ctx)
}

// WithIdentity adds the authenticated identity to the context
func WithIdentity(ctx context.Context, id *services.Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, id)
}

// GetIdentityFromContext returns the authenticated identity, or nil for guests
func GetIdentityFromContext(ctx context.Context) *services.Identity {
	if id, ok := ctx.Value(IdentityKey).(*services.Identity); ok {
		return id
	}
	return nil
}

// GetActorFromContext returns the acting user, or nil for guests
func GetActorFromContext(ctx context.Context) *policy.Actor {
	if id := GetIdentityFromContext(ctx); id != nil {
		return id.Actor
	}
	return nil
}

// GetUserFromContext returns the signed-in user, or nil for guests
func GetUserFromContext(ctx context.Context) *models.User {
	if id := GetIdentityFromContext(ctx); id != nil {
		return id.User
	}
	return nil
}
