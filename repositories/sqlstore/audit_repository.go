package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/upb/blog-platform/models"
	"github.com/upb/blog-platform/repositories"
)

// AuditRepository implements repositories.AuditRepository
type AuditRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *DB, logger *zap.Logger) repositories.AuditRepository {
	return &AuditRepository{
		db:     db,
		logger: logger,
	}
}

// Insert inserts a new audit log entry
func (r *AuditRepository) Insert(ctx context.Context, log *models.AuditLog) error {
	query := `
		INSERT INTO audit_logs (
			id, actor_id, action, resource_type, resource_id,
			details, ip_address, user_agent, request_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	var details sql.NullString
	if len(log.Details) > 0 {
		details = sql.NullString{String: string(log.Details), Valid: true}
	}

	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		log.ID,
		log.ActorID,
		string(log.Action),
		log.ResourceType,
		log.ResourceID,
		details,
		log.IPAddress,
		log.UserAgent,
		log.RequestID,
		log.Timestamp,
	)
	if err != nil {
		return translate(err, "insert audit log")
	}

	r.logger.Debug("audit log inserted", zap.String("id", log.ID.String()), zap.String("action", string(log.Action)))
	return nil
}

// List retrieves one page of audit entries, newest first
func (r *AuditRepository) List(ctx context.Context, page models.PageRequest) ([]*models.AuditLog, int, error) {
	executor := GetExecutor(ctx, r.db)

	var total int
	if err := executor.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_logs`).Scan(&total); err != nil {
		return nil, 0, translate(err, "count audit logs")
	}

	query := `
		SELECT id, actor_id, action, resource_type, resource_id,
		       details, ip_address, user_agent, request_id, created_at
		FROM audit_logs
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := executor.QueryContext(ctx, query, page.PerPage, page.Offset())
	if err != nil {
		return nil, 0, translate(err, "list audit logs")
	}
	defer rows.Close()

	var logs []*models.AuditLog
	for rows.Next() {
		log := &models.AuditLog{}
		var (
			actorID    uuid.NullUUID
			resourceID uuid.NullUUID
			action     string
			details    sql.NullString
			ip, ua     sql.NullString
			requestID  sql.NullString
		)
		if err := rows.Scan(
			&log.ID,
			&actorID,
			&action,
			&log.ResourceType,
			&resourceID,
			&details,
			&ip,
			&ua,
			&requestID,
			&log.Timestamp,
		); err != nil {
			return nil, 0, translate(err, "scan audit log")
		}
		log.Action = models.AuditAction(action)
		if actorID.Valid {
			id := actorID.UUID
			log.ActorID = &id
		}
		if resourceID.Valid {
			id := resourceID.UUID
			log.ResourceID = &id
		}
		if details.Valid {
			log.Details = json.RawMessage(details.String)
		}
		log.IPAddress, log.UserAgent, log.RequestID = ip.String, ua.String, requestID.String
		logs = append(logs, log)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, translate(err, "iterate audit logs")
	}

	return logs, total, nil
}
