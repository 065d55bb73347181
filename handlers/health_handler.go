package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/upb/blog-platform/services/audit"
	"github.com/upb/blog-platform/utils"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Version   string            `json:"version,omitempty"`
	Checks    map[string]string `json:"checks,omitempty"`
	Audit     *AuditQueue       `json:"audit,omitempty"`
}

// AuditQueue is the audit worker pool state reported by /readyz
type AuditQueue struct {
	Pending int `json:"pending"`
	Buffer  int `json:"buffer"`
	Workers int `json:"workers"`
}

// AuditMonitor exposes the audit worker pool state
type AuditMonitor interface {
	GetStats() audit.Stats
}

// HealthHandler handles health-related HTTP requests
type HealthHandler struct {
	db      *sql.DB
	audit   AuditMonitor
	version string
	logger  *zap.Logger
}

// NewHealthHandler creates a new HealthHandler. A nil db skips the database
// check and a nil monitor skips the audit check.
func NewHealthHandler(db *sql.DB, monitor AuditMonitor, version string, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		db:      db,
		audit:   monitor,
		version: version,
		logger:  logger,
	}
}

// HandleHealth handles GET /healthz. It reports liveness only.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeResult(utils.WriteOK(w, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   h.version,
	}), h.logger)
}

// HandleReadiness handles GET /readyz. It checks the database and that the
// audit workers are running.
func (h *HealthHandler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	status, httpStatus := "healthy", http.StatusOK

	if err := h.checkDatabase(ctx); err != nil {
		h.logger.Warn("database health check failed", zap.Error(err))
		checks["database"] = "unhealthy"
		status, httpStatus = "unhealthy", http.StatusServiceUnavailable
	} else {
		checks["database"] = "healthy"
	}

	var queue *AuditQueue
	if h.audit != nil {
		stats := h.audit.GetStats()
		queue = &AuditQueue{Pending: stats.PendingEvents, Buffer: stats.BufferSize, Workers: stats.WorkerCount}
		if stats.Started {
			checks["audit"] = "healthy"
		} else {
			h.logger.Warn("audit workers not running")
			checks["audit"] = "unhealthy"
			status, httpStatus = "unhealthy", http.StatusServiceUnavailable
		}
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   h.version,
		Checks:    checks,
		Audit:     queue,
	}

	writeResult(utils.WriteJSON(w, httpStatus, utils.Envelope{Success: httpStatus == http.StatusOK, Data: response}), h.logger)
}

func (h *HealthHandler) checkDatabase(ctx context.Context) error {
	if h.db == nil {
		return nil
	}
	if err := h.db.PingContext(ctx); err != nil {
		return err
	}
	var result int
	return h.db.QueryRowContext(ctx, "SELECT 1").Scan(&result)
}
