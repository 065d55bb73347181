package sqlstore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/upb/blog-platform/models"
	"github.com/upb/blog-platform/repositories"
)

const userColumns = `id, name, email, password_hash, is_admin, created_at, updated_at`

// UserRepository implements repositories.UserRepository
type UserRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB, logger *zap.Logger) repositories.UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, name, email, password_hash, is_admin, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Admin,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return translate(err, "create user")
	}

	r.logger.Debug("user created", zap.String("id", user.ID.String()))
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByEmail retrieves a user by normalized email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, models.NormalizeEmail(email))
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	user := &models.User{}
	err := GetExecutor(ctx, r.db).QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Admin,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, translate(err, "get user")
	}
	return user, nil
}

// EmailExists reports whether an account already uses email
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int
	err := GetExecutor(ctx, r.db).
		QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE email = $1`, models.NormalizeEmail(email)).
		Scan(&count)
	if err != nil {
		return false, translate(err, "check email")
	}
	return count > 0, nil
}

// SetAdmin grants or revokes the admin flag
func (r *UserRepository) SetAdmin(ctx context.Context, id uuid.UUID, admin bool) error {
	query := `UPDATE users SET is_admin = $1, updated_at = $2 WHERE id = $3`

	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, query, admin, time.Now().UTC(), id)
	if err != nil {
		return translate(err, "update user role")
	}
	if err := expectAffected(result, "update user role"); err != nil {
		return err
	}

	r.logger.Debug("user role updated", zap.String("id", id.String()), zap.Bool("admin", admin))
	return nil
}
