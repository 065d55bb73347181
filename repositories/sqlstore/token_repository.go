package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/upb/blog-platform/models"
	"github.com/upb/blog-platform/repositories"
)

// TokenRepository implements repositories.TokenRepository
type TokenRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewTokenRepository creates a new access token repository
func NewTokenRepository(db *DB, logger *zap.Logger) repositories.TokenRepository {
	return &TokenRepository{
		db:     db,
		logger: logger,
	}
}

// Create records an issued token
func (r *TokenRepository) Create(ctx context.Context, token *models.AccessToken) error {
	query := `
		INSERT INTO access_tokens (id, user_id, name, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		token.ID,
		token.UserID,
		token.Name,
		token.ExpiresAt,
		token.CreatedAt,
	)
	if err != nil {
		return translate(err, "create access token")
	}

	r.logger.Debug("access token created", zap.String("id", token.ID.String()), zap.String("user_id", token.UserID.String()))
	return nil
}

// GetByID retrieves a token record by its jti
func (r *TokenRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.AccessToken, error) {
	query := `SELECT id, user_id, name, expires_at, last_used_at, created_at FROM access_tokens WHERE id = $1`

	token := &models.AccessToken{}
	var lastUsed sql.NullTime
	err := GetExecutor(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&token.ID,
		&token.UserID,
		&token.Name,
		&token.ExpiresAt,
		&lastUsed,
		&token.CreatedAt,
	)
	if err != nil {
		return nil, translate(err, "get access token")
	}
	if lastUsed.Valid {
		token.LastUsedAt = &lastUsed.Time
	}
	return token, nil
}

// Touch records the last time a token authenticated a request
func (r *TokenRepository) Touch(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, `UPDATE access_tokens SET last_used_at = $1 WHERE id = $2`, at, id)
	return translate(err, "touch access token")
}

// Delete revokes a token
func (r *TokenRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, `DELETE FROM access_tokens WHERE id = $1`, id)
	if err != nil {
		return translate(err, "delete access token")
	}
	if err := expectAffected(result, "delete access token"); err != nil {
		return err
	}

	r.logger.Debug("access token revoked", zap.String("id", id.String()))
	return nil
}

// DeleteExpired prunes tokens that expired before the given time
func (r *TokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, `DELETE FROM access_tokens WHERE expires_at < $1`, before)
	if err != nil {
		return 0, translate(err, "prune access tokens")
	}
	return result.RowsAffected()
}
