package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/upb/blog-platform/models"
	"github.com/upb/blog-platform/repositories"
)

const commentSelect = `
	SELECT c.id, c.post_id, c.user_id, c.comment, c.created_at, c.updated_at, u.name, u.email
	FROM comments c
	LEFT JOIN users u ON u.id = c.user_id
`

// CommentRepository implements repositories.CommentRepository
type CommentRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *DB, logger *zap.Logger) repositories.CommentRepository {
	return &CommentRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a comment; a nil AuthorID stores a guest comment
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	query := `
		INSERT INTO comments (id, post_id, user_id, comment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		comment.ID,
		comment.PostID,
		comment.AuthorID,
		comment.Body,
		comment.CreatedAt,
		comment.UpdatedAt,
	)
	if err != nil {
		return translate(err, "create comment")
	}

	r.logger.Debug("comment created",
		zap.String("id", comment.ID.String()),
		zap.String("post_id", comment.PostID.String()),
		zap.Bool("guest", comment.IsGuest()))
	return nil
}

// GetByID retrieves a comment with its author
func (r *CommentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	row := GetExecutor(ctx, r.db).QueryRowContext(ctx, commentSelect+` WHERE c.id = $1`, id)
	comment, err := scanComment(row)
	if err != nil {
		return nil, translate(err, "get comment")
	}
	return comment, nil
}

// ListByPost retrieves comments of a post in the given order.
// A zero PerPage returns every comment.
func (r *CommentRepository) ListByPost(ctx context.Context, postID uuid.UUID, order repositories.SortOrder, page models.PageRequest) ([]*models.Comment, int, error) {
	if order != repositories.OldestFirst {
		order = repositories.NewestFirst
	}
	executor := GetExecutor(ctx, r.db)

	var total int
	if err := executor.QueryRowContext(ctx, `SELECT COUNT(*) FROM comments WHERE post_id = $1`, postID).Scan(&total); err != nil {
		return nil, 0, translate(err, "count comments")
	}

	query := commentSelect + fmt.Sprintf(` WHERE c.post_id = $1 ORDER BY c.created_at %s, c.id %s`, order, order)
	args := []interface{}{postID}
	if page.PerPage > 0 {
		query += ` LIMIT $2 OFFSET $3`
		args = append(args, page.PerPage, page.Offset())
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, translate(err, "list comments")
	}
	defer rows.Close()

	var comments []*models.Comment
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, 0, translate(err, "scan comment")
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, translate(err, "iterate comments")
	}

	return comments, total, nil
}

// Update saves the body. Post and author columns are never written.
func (r *CommentRepository) Update(ctx context.Context, comment *models.Comment) error {
	query := `UPDATE comments SET comment = $1, updated_at = $2 WHERE id = $3`

	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, query, comment.Body, comment.UpdatedAt, comment.ID)
	if err != nil {
		return translate(err, "update comment")
	}
	if err := expectAffected(result, "update comment"); err != nil {
		return err
	}

	r.logger.Debug("comment updated", zap.String("id", comment.ID.String()))
	return nil
}

// Delete removes a comment
func (r *CommentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return translate(err, "delete comment")
	}
	if err := expectAffected(result, "delete comment"); err != nil {
		return err
	}

	r.logger.Debug("comment deleted", zap.String("id", id.String()))
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanComment(row rowScanner) (*models.Comment, error) {
	comment := &models.Comment{}
	var (
		authorID    uuid.NullUUID
		authorName  sql.NullString
		authorEmail sql.NullString
	)
	if err := row.Scan(
		&comment.ID,
		&comment.PostID,
		&authorID,
		&comment.Body,
		&comment.CreatedAt,
		&comment.UpdatedAt,
		&authorName,
		&authorEmail,
	); err != nil {
		return nil, err
	}
	if authorID.Valid {
		id := authorID.UUID
		comment.AuthorID = &id
		if authorName.Valid {
			comment.Author = &models.UserSummary{ID: id, Name: authorName.String, Email: authorEmail.String}
		}
	}
	return comment, nil
}
