package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/upb/blog-platform/internal/policy"
	"github.com/upb/blog-platform/internal/validation"
	"github.com/upb/blog-platform/middleware"
	"github.com/upb/blog-platform/models"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	pageIndex    = "index"
	pageShow     = "show"
	pageCreate   = "create"
	pageEdit     = "edit"
	pageLogin    = "login"
	pageRegister = "register"
	pageError    = "error"
)

var pageNames = []string{pageIndex, pageShow, pageCreate, pageEdit, pageLogin, pageRegister, pageError}

var functions = template.FuncMap{
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("02 Jan 2006, 15:04")
	},
}

// parsePages builds one template set per page, each joined with the layout
func parsePages() (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		ts, err := template.New(name).Funcs(functions).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse page %s: %w", name, err)
		}
		pages[name] = ts
	}
	return pages, nil
}

// PageData is passed to every template
type PageData struct {
	Title    string
	Path     string
	Flash    string
	Actor    *policy.Actor
	User     *models.User
	Errors   validation.FieldErrors
	Old      map[string]string
	Post     *models.Post
	Posts    *models.Page[*models.Post]
	Comments []*models.Comment
	Status   int
	Message  string
}

// Value returns the previous input for a form field
func (d *PageData) Value(field string) string {
	return d.Old[field]
}

// Error returns the first validation message for a form field
func (d *PageData) Error(field string) string {
	return d.Errors.First(field)
}

// CanCreatePost reports whether the viewer may write a new post
func (d *PageData) CanCreatePost() bool {
	return policy.PostAuthorization{}.CanCreate(d.Actor)
}

// CanEditPost reports whether the viewer owns post
func (d *PageData) CanEditPost(post *models.Post) bool {
	return policy.PostAuthorization{}.CanUpdate(d.Actor, post)
}

// CanDeletePost mirrors CanEditPost for the delete button
func (d *PageData) CanDeletePost(post *models.Post) bool {
	return policy.PostAuthorization{}.CanDelete(d.Actor, post)
}

// CanDeleteComment checks a comment of the post being shown
func (d *PageData) CanDeleteComment(comment *models.Comment) bool {
	if d.Post == nil {
		return false
	}
	return policy.CommentAuthorization{}.CanDelete(d.Actor, comment, d.Post.AuthorID)
}

// render executes page into a buffer so a template failure still yields a clean 500
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, page string, data *PageData) {
	if data == nil {
		data = &PageData{}
	}
	data.Path = r.URL.Path
	data.Actor = middleware.GetActorFromContext(r.Context())
	data.User = middleware.GetUserFromContext(r.Context())
	data.Flash = popFlash(w, r)

	ts, ok := h.pages[page]
	if !ok {
		h.serverError(w, r, fmt.Errorf("unknown page %q", page))
		return
	}

	buf := new(bytes.Buffer)
	if err := ts.ExecuteTemplate(buf, "base", data); err != nil {
		h.serverError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("failed to write page", zap.String("page", page), zap.Error(err))
	}
}
