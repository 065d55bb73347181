package models

import (
	"time"

	"github.com/google/uuid"
)

// GuestName is shown in place of an author for guest comments
const GuestName = "Guest"

// Comment belongs to exactly one post. A nil AuthorID marks a guest comment.
type Comment struct {
	ID        uuid.UUID    `json:"id" db:"id"`
	PostID    uuid.UUID    `json:"post_id" db:"post_id"`
	AuthorID  *uuid.UUID   `json:"user_id" db:"user_id"`
	Body      string       `json:"comment" db:"comment"`
	Author    *UserSummary `json:"user,omitempty"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt time.Time    `json:"updated_at" db:"updated_at"`
}

// NewComment creates a comment on postID. Pass a nil authorID for guests.
func NewComment(postID uuid.UUID, authorID *uuid.UUID, body string) *Comment {
	now := time.Now().UTC()
	return &Comment{
		ID:        uuid.New(),
		PostID:    postID,
		AuthorID:  authorID,
		Body:      body,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsGuest reports whether the comment was left without an account
func (c *Comment) IsGuest() bool {
	return c.AuthorID == nil
}

// AuthorName returns the author's display name or GuestName
func (c *Comment) AuthorName() string {
	if c.Author == nil {
		return GuestName
	}
	return c.Author.Name
}

// Revise replaces the body and bumps UpdatedAt
func (c *Comment) Revise(body string) {
	c.Body = body
	c.UpdatedAt = time.Now().UTC()
}
