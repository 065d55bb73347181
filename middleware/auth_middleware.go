package middleware

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/upb/blog-platform/services"
	"github.com/upb/blog-platform/utils"
)

// Authenticator resolves a bearer token into an identity
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*services.Identity, error)
}

// AuthTokenCookieName is the cookie carrying the token for browser sessions.
// The Authorization header takes precedence when both are present.
const AuthTokenCookieName = "auth_token"

// AuthMiddleware provides authentication middleware functionality
type AuthMiddleware struct {
	authenticator Authenticator
	logger        *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(authenticator Authenticator, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		authenticator: authenticator,
		logger:        logger,
	}
}

// Authenticate resolves the request's token when one is present. Requests
// without a usable token continue as guests.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		identity, err := m.authenticator.Authenticate(ctx, token)
		if err != nil {
			level := m.logger.Debug
			if !services.IsUnauthenticatedError(err) {
				level = m.logger.Error
			}
			level("token rejected",
				zap.String("request_id", GetRequestIDFromContext(ctx)),
				zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}

		m.logger.Debug("authentication successful",
			zap.String("request_id", GetRequestIDFromContext(ctx)),
			zap.String("user_id", identity.User.ID.String()))

		next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, identity)))
	})
}

// RequireAuth rejects guests with 401. It must run after Authenticate.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetIdentityFromContext(r.Context()) == nil {
			m.logger.Debug("unauthenticated request",
				zap.String("request_id", GetRequestIDFromContext(r.Context())),
				zap.String("path", r.URL.Path))
			_ = utils.WriteUnauthorized(w, "")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// extractToken extracts the token from the Authorization header ("Bearer
// TOKEN") or the auth_token cookie
func extractToken(r *http.Request) string {
	if token := extractBearerToken(r); token != "" {
		return token
	}
	if cookie, err := r.Cookie(AuthTokenCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return ""
}

// extractBearerToken extracts the Bearer token from the Authorization header
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
