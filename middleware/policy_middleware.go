package middleware

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/upb/blog-platform/models"
	"github.com/upb/blog-platform/utils"
)

// RequirePermission allows the request only when the signed-in user's role
// grants permission. Guests get 401, users lacking it get 403.
func (m *AuthMiddleware) RequirePermission(permission models.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			user := GetUserFromContext(ctx)
			if user == nil {
				_ = utils.WriteUnauthorized(w, "")
				return
			}

			if !user.Can(permission) {
				m.logger.Warn("insufficient permissions",
					zap.String("request_id", GetRequestIDFromContext(ctx)),
					zap.String("user_id", user.ID.String()),
					zap.String("role", string(user.Role())),
					zap.String("required_permission", string(permission)))
				_ = utils.WriteForbidden(w, "")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
