// Package web serves the server-rendered HTML pages of the blog. It shares
// the services, the authorization engine and the access tokens with the JSON
// API; the token travels in an HttpOnly cookie instead of a header.
package web

import (
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/upb/blog-platform/internal/validation"
	"github.com/upb/blog-platform/services"
)

// Handler renders the HTML pages
type Handler struct {
	auth          *services.AuthService
	posts         *services.PostService
	comments      *services.CommentService
	pages         map[string]*template.Template
	secureCookies bool
	logger        *zap.Logger
}

// NewHandler parses the embedded templates and creates a Handler
func NewHandler(
	auth *services.AuthService,
	posts *services.PostService,
	comments *services.CommentService,
	secureCookies bool,
	logger *zap.Logger,
) (*Handler, error) {
	pages, err := parsePages()
	if err != nil {
		return nil, err
	}
	return &Handler{
		auth:          auth,
		posts:         posts,
		comments:      comments,
		pages:         pages,
		secureCookies: secureCookies,
		logger:        logger,
	}, nil
}

// Routes registers the web pages on r
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/posts", http.StatusFound)
	})

	r.Get("/login", h.loginForm)
	r.Post("/login", h.login)
	r.Get("/register", h.registerForm)
	r.Post("/register", h.register)
	r.Post("/logout", h.logout)

	r.Route("/posts", func(r chi.Router) {
		r.Get("/", h.index)
		r.Post("/", h.store)
		r.Get("/create", h.create)
		r.Route("/{post}", func(r chi.Router) {
			r.Get("/", h.show)
			r.Post("/", h.update)
			r.Get("/edit", h.edit)
			r.Post("/delete", h.destroy)
			r.Post("/comments", h.storeComment)
		})
	})

	r.Post("/comments/{comment}/delete", h.destroyComment)
}

// oldInput keeps submitted values for re-rendering, minus secrets
func oldInput(payload validation.Payload) map[string]string {
	old := make(map[string]string, len(payload))
	for key, value := range payload {
		if key == "password" || key == "password_confirmation" {
			continue
		}
		if s, ok := value.(string); ok {
			old[key] = s
		}
	}
	return old
}
