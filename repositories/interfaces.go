package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/upb/blog-platform/models"
)

// Errors returned by every repository implementation
var (
	// ErrNotFound is returned when a lookup matches no row
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint is violated
	ErrDuplicate = errors.New("duplicate record")
)

// TransactionManager manages database transactions
type TransactionManager interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) (Transaction, error)

	// InTransaction executes fn with a context carrying the transaction.
	// Repositories called with that context join the transaction.
	InTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error
}

// Transaction represents a database transaction
type Transaction interface {
	Commit() error
	Rollback() error
	// Context returns a context that routes repository calls through the transaction
	Context() context.Context
}

// SortOrder orders listings by creation time
type SortOrder string

const (
	NewestFirst SortOrder = "DESC"
	OldestFirst SortOrder = "ASC"
)

// UserRepository handles user accounts
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	// GetByEmail looks up a normalized (lower-case) email
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	SetAdmin(ctx context.Context, id uuid.UUID, admin bool) error
}

// PostRepository handles posts
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	// GetByID loads the post with its author summary
	GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
	// List returns one page of posts with author and comment count
	List(ctx context.Context, page models.PageRequest) ([]*models.Post, int, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uuid.UUID) error
	// GetAuthorID resolves the owner of a post
	GetAuthorID(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

// CommentRepository handles comments
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	// GetByID loads the comment with its author summary when not a guest
	GetByID(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	// ListByPost returns comments of a post. A zero PerPage returns all of them.
	ListByPost(ctx context.Context, postID uuid.UUID, order SortOrder, page models.PageRequest) ([]*models.Comment, int, error)
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// TokenRepository tracks issued access tokens so they can be revoked
type TokenRepository interface {
	Create(ctx context.Context, token *models.AccessToken) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.AccessToken, error)
	Touch(ctx context.Context, id uuid.UUID, at time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	// DeleteExpired removes tokens that expired before the given time
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// AuditRepository handles audit log entries
type AuditRepository interface {
	Insert(ctx context.Context, log *models.AuditLog) error
	// List returns one page of entries, newest first
	List(ctx context.Context, page models.PageRequest) ([]*models.AuditLog, int, error)
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Users     UserRepository
	Posts     PostRepository
	Comments  CommentRepository
	Tokens    TokenRepository
	AuditLogs AuditRepository
}
