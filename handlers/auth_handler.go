package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/upb/blog-platform/middleware"
	"github.com/upb/blog-platform/services"
	"github.com/upb/blog-platform/utils"
)

// AuthHandler serves registration, login and token management
type AuthHandler struct {
	auth   *services.AuthService
	logger *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(auth *services.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

// HandleRegister handles POST /api/v1/register
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	payload, err := utils.DecodePayload(w, r)
	if err != nil {
		HandleBadRequest(w, err, h.logger)
		return
	}

	result, err := h.auth.Register(r.Context(), payload)
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}
	writeResult(utils.WriteCreated(w, result, "User registered successfully"), h.logger)
}

// HandleLogin handles POST /api/v1/login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	payload, err := utils.DecodePayload(w, r)
	if err != nil {
		HandleBadRequest(w, err, h.logger)
		return
	}

	result, err := h.auth.Login(r.Context(), payload)
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}
	writeResult(utils.WriteOK(w, result), h.logger)
}

// HandleLogout handles POST /api/v1/logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context(), middleware.GetIdentityFromContext(r.Context())); err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}
	writeResult(utils.WriteMessage(w, "Logged out successfully"), h.logger)
}

// HandleRefresh handles POST /api/v1/refresh
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	result, err := h.auth.Refresh(r.Context(), middleware.GetIdentityFromContext(r.Context()))
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}
	writeResult(utils.WriteOK(w, result), h.logger)
}

// HandleMe handles GET /api/v1/me
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.auth.Me(r.Context(), middleware.GetActorFromContext(r.Context()))
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}
	writeResult(utils.WriteOK(w, user), h.logger)
}
