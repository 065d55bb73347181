package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/upb/blog-platform/app"
	"github.com/upb/blog-platform/middleware"
	"github.com/upb/blog-platform/models"
	"github.com/upb/blog-platform/utils"
)

const apiPrefix = "/api/v1"

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()
	auth := deps.AuthMiddleware

	// Core middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(middleware.Metrics(deps.Metrics))
	r.Use(middleware.AuditContext)
	r.Use(auth.Authenticate)

	// Health check endpoints
	r.Get("/healthz", deps.Handlers.Health.HandleHealth)
	r.Get("/readyz", deps.Handlers.Health.HandleReadiness)
	if deps.Config.Observability.MetricsEnabled {
		r.Handle("/metrics", deps.Metrics.Handler())
	}

	// API v1 routes
	r.Route(apiPrefix, func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   deps.Config.Server.CORSAllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"X-Request-Id"},
			AllowCredentials: true,
			MaxAge:           300,
		}))

		h := deps.Handlers

		// Public routes
		r.Post("/register", h.Auth.HandleRegister)
		r.Post("/login", h.Auth.HandleLogin)
		r.Get("/posts", h.Posts.HandleList)
		r.Get("/posts/{post}", h.Posts.HandleGet)
		r.Get("/posts/{post}/comments", h.Comments.HandleListForPost)
		r.Post("/posts/{post}/comments", h.Comments.HandleCreate)

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth)
			r.Post("/logout", h.Auth.HandleLogout)
			r.Post("/refresh", h.Auth.HandleRefresh)
			r.Get("/me", h.Auth.HandleMe)

			r.Post("/posts", h.Posts.HandleCreate)
			r.Put("/posts/{post}", h.Posts.HandleUpdate)
			r.Delete("/posts/{post}", h.Posts.HandleDelete)

			r.Get("/comments/{comment}", h.Comments.HandleGet)
			r.Put("/comments/{comment}", h.Comments.HandleUpdate)
			r.Delete("/comments/{comment}", h.Comments.HandleDelete)
		})

		// Audit logs (require admin role)
		r.Route("/audit", func(r chi.Router) {
			r.Use(auth.RequirePermission(models.PermissionManageUsers))
			r.Get("/logs", h.Audit.HandleList)
		})

		r.NotFound(apiNotFound)
		r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
			_ = utils.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		})
	})

	// Server-rendered pages
	deps.Web.Routes(r)

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, apiPrefix) {
			apiNotFound(w, r)
			return
		}
		deps.Web.NotFound(w, r)
	})

	return r
}

func apiNotFound(w http.ResponseWriter, _ *http.Request) {
	_ = utils.WriteNotFound(w, "Endpoint not found")
}
