package models

import (
	"time"

	"github.com/google/uuid"
)

// Post is an article owned by the user who wrote it. AuthorID never changes.
type Post struct {
	ID            uuid.UUID    `json:"id" db:"id"`
	AuthorID      uuid.UUID    `json:"user_id" db:"user_id"`
	Title         string       `json:"title" db:"title"`
	Content       string       `json:"content" db:"content"`
	Author        *UserSummary `json:"user,omitempty"`
	CommentsCount *int         `json:"comments_count,omitempty"`
	CreatedAt     time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at" db:"updated_at"`
}

// NewPost creates a new Post owned by authorID
func NewPost(authorID uuid.UUID, title, content string) *Post {
	now := time.Now().UTC()
	return &Post{
		ID:        uuid.New(),
		AuthorID:  authorID,
		Title:     title,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Revise replaces the editable fields and bumps UpdatedAt
func (p *Post) Revise(title, content string) {
	p.Title = title
	p.Content = content
	p.UpdatedAt = time.Now().UTC()
}

// Excerpt returns at most n runes of the content, with an ellipsis when cut
func (p *Post) Excerpt(n int) string {
	runes := []rune(p.Content)
	if len(runes) <= n {
		return p.Content
	}
	return string(runes[:n]) + "..."
}
