package web

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/upb/blog-platform/middleware"
	"github.com/upb/blog-platform/services"
)

// fail renders err as a page. Validation failures re-render form with the
// submitted input, guests are sent to the login page.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, form string, data *PageData) {
	switch {
	case services.IsValidationError(err) && form != "":
		if data == nil {
			data = &PageData{}
		}
		data.Errors = services.GetFieldErrors(err)
		h.render(w, r, http.StatusUnprocessableEntity, form, data)
	case services.IsUnauthenticatedError(err):
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	case services.IsForbiddenError(err):
		h.Forbidden(w, r)
	case services.IsNotFoundError(err):
		h.NotFound(w, r)
	default:
		h.serverError(w, r, err)
	}
}

// NotFound renders the 404 page
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusNotFound, pageError, &PageData{
		Title:   "Not Found",
		Status:  http.StatusNotFound,
		Message: "The page you are looking for could not be found.",
	})
}

// Forbidden renders the 403 page
func (h *Handler) Forbidden(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusForbidden, pageError, &PageData{
		Title:   "Forbidden",
		Status:  http.StatusForbidden,
		Message: "This action is unauthorized.",
	})
}

// serverError never renders a template so it cannot recurse
func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("web request failed",
		zap.String("path", r.URL.Path),
		zap.String("request_id", middleware.GetRequestIDFromContext(r.Context())),
		zap.Error(err),
	)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
