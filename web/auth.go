package web

import (
	"net/http"

	"github.com/upb/blog-platform/middleware"
	"github.com/upb/blog-platform/services"
	"github.com/upb/blog-platform/utils"
)

// guestOnly sends signed-in users away from the login and register pages
func guestOnly(w http.ResponseWriter, r *http.Request) bool {
	if middleware.GetActorFromContext(r.Context()) != nil {
		http.Redirect(w, r, "/posts", http.StatusSeeOther)
		return false
	}
	return true
}

func (h *Handler) loginForm(w http.ResponseWriter, r *http.Request) {
	if guestOnly(w, r) {
		h.render(w, r, http.StatusOK, pageLogin, &PageData{Title: "Log in"})
	}
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	payload, err := utils.DecodePayload(w, r)
	if err != nil {
		h.render(w, r, http.StatusBadRequest, pageError, &PageData{Status: http.StatusBadRequest, Message: "Bad request."})
		return
	}

	result, err := h.auth.Login(r.Context(), payload)
	if err != nil {
		h.fail(w, r, err, pageLogin, &PageData{Title: "Log in", Old: oldInput(payload)})
		return
	}
	h.setAuthCookie(w, result.Token, result.ExpiresAt)
	setFlash(w, "Welcome back, "+result.User.Name+".")
	http.Redirect(w, r, "/posts", http.StatusSeeOther)
}

func (h *Handler) registerForm(w http.ResponseWriter, r *http.Request) {
	if guestOnly(w, r) {
		h.render(w, r, http.StatusOK, pageRegister, &PageData{Title: "Register"})
	}
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	payload, err := utils.DecodePayload(w, r)
	if err != nil {
		h.render(w, r, http.StatusBadRequest, pageError, &PageData{Status: http.StatusBadRequest, Message: "Bad request."})
		return
	}

	result, err := h.auth.Register(r.Context(), payload)
	if err != nil {
		h.fail(w, r, err, pageRegister, &PageData{Title: "Register", Old: oldInput(payload)})
		return
	}
	h.setAuthCookie(w, result.Token, result.ExpiresAt)
	setFlash(w, "Your account has been created.")
	http.Redirect(w, r, "/posts", http.StatusSeeOther)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if id := middleware.GetIdentityFromContext(r.Context()); id != nil {
		if err := h.auth.Logout(r.Context(), id); err != nil && !services.IsUnauthenticatedError(err) {
			h.serverError(w, r, err)
			return
		}
	}
	h.clearAuthCookie(w)
	setFlash(w, "You have been logged out.")
	http.Redirect(w, r, "/posts", http.StatusSeeOther)
}
