package sqlstore

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/upb/blog-platform/models"
	"github.com/upb/blog-platform/repositories"
)

// PostRepository implements repositories.PostRepository
type PostRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *DB, logger *zap.Logger) repositories.PostRepository {
	return &PostRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new post
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	query := `
		INSERT INTO posts (id, user_id, title, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		post.ID,
		post.AuthorID,
		post.Title,
		post.Content,
		post.CreatedAt,
		post.UpdatedAt,
	)
	if err != nil {
		return translate(err, "create post")
	}

	r.logger.Debug("post created", zap.String("id", post.ID.String()), zap.String("author_id", post.AuthorID.String()))
	return nil
}

// GetByID retrieves a post with its author
func (r *PostRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	query := `
		SELECT p.id, p.user_id, p.title, p.content, p.created_at, p.updated_at, u.name, u.email
		FROM posts p
		JOIN users u ON u.id = p.user_id
		WHERE p.id = $1
	`

	post := &models.Post{Author: &models.UserSummary{}}
	err := GetExecutor(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&post.ID,
		&post.AuthorID,
		&post.Title,
		&post.Content,
		&post.CreatedAt,
		&post.UpdatedAt,
		&post.Author.Name,
		&post.Author.Email,
	)
	if err != nil {
		return nil, translate(err, "get post")
	}
	post.Author.ID = post.AuthorID

	return post, nil
}

// List retrieves one page of posts, newest first, with comment counts
func (r *PostRepository) List(ctx context.Context, page models.PageRequest) ([]*models.Post, int, error) {
	executor := GetExecutor(ctx, r.db)

	var total int
	if err := executor.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`).Scan(&total); err != nil {
		return nil, 0, translate(err, "count posts")
	}

	query := `
		SELECT p.id, p.user_id, p.title, p.content, p.created_at, p.updated_at, u.name, u.email,
		       (SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id) AS comments_count
		FROM posts p
		JOIN users u ON u.id = p.user_id
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := executor.QueryContext(ctx, query, page.PerPage, page.Offset())
	if err != nil {
		return nil, 0, translate(err, "list posts")
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post := &models.Post{Author: &models.UserSummary{}}
		var count int
		if err := rows.Scan(
			&post.ID,
			&post.AuthorID,
			&post.Title,
			&post.Content,
			&post.CreatedAt,
			&post.UpdatedAt,
			&post.Author.Name,
			&post.Author.Email,
			&count,
		); err != nil {
			return nil, 0, translate(err, "scan post")
		}
		post.Author.ID = post.AuthorID
		post.CommentsCount = &count
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, translate(err, "iterate posts")
	}

	return posts, total, nil
}

// Update saves title and content. The owner column is never written.
func (r *PostRepository) Update(ctx context.Context, post *models.Post) error {
	query := `UPDATE posts SET title = $1, content = $2, updated_at = $3 WHERE id = $4`

	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, query, post.Title, post.Content, post.UpdatedAt, post.ID)
	if err != nil {
		return translate(err, "update post")
	}
	if err := expectAffected(result, "update post"); err != nil {
		return err
	}

	r.logger.Debug("post updated", zap.String("id", post.ID.String()))
	return nil
}

// Delete removes a post; its comments go with it
func (r *PostRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return translate(err, "delete post")
	}
	if err := expectAffected(result, "delete post"); err != nil {
		return err
	}

	r.logger.Debug("post deleted", zap.String("id", id.String()))
	return nil
}

// GetAuthorID resolves the owner of a post
func (r *PostRepository) GetAuthorID(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var owner uuid.UUID
	err := GetExecutor(ctx, r.db).QueryRowContext(ctx, `SELECT user_id FROM posts WHERE id = $1`, id).Scan(&owner)
	if err != nil {
		return uuid.Nil, translate(err, "get post owner")
	}
	return owner, nil
}
