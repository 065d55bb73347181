package middleware

import (
	"net"
	"net/http"

	"github.com/upb/blog-platform/services/audit"
)

// AuditContext stores the request id, client address and user agent for
// audit entries recorded while serving the request. It expects chi's
// RequestID and RealIP middleware to run first.
func AuditContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if host, _, err := net.SplitHostPort(ip); err == nil {
			ip = host
		}
		ctx := audit.WithRequestMeta(r.Context(), audit.RequestMeta{
			RequestID: GetRequestIDFromContext(r.Context()),
			IPAddress: ip,
			UserAgent: r.UserAgent(),
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
