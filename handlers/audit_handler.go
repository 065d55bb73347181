package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/upb/blog-platform/models"
	"github.com/upb/blog-platform/services"
	"github.com/upb/blog-platform/utils"
)

// AuditLister pages through audit entries
type AuditLister interface {
	List(ctx context.Context, req models.PageRequest) (*models.Page[*models.AuditLog], error)
}

// AuditHandler serves the admin audit log
type AuditHandler struct {
	audit  AuditLister
	logger *zap.Logger
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(audit AuditLister, logger *zap.Logger) *AuditHandler {
	return &AuditHandler{audit: audit, logger: logger}
}

// HandleList handles GET /api/v1/audit/logs?page=
func (h *AuditHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	page, err := h.audit.List(r.Context(), models.NewPageRequest(utils.PageParam(r), services.AuditPerPage))
	if err != nil {
		HandleServiceError(w, r, services.WrapInternal("failed to list audit logs", err), h.logger)
		return
	}
	writeResult(utils.WriteOK(w, page), h.logger)
}
