package policy

import (
	"github.com/google/uuid"

	"github.com/upb/blog-platform/models"
)

// CommentAuthorization holds the rules for comments
type CommentAuthorization struct{}

// CanView always allows, guests included
func (CommentAuthorization) CanView(_ *Actor, _ *models.Comment) bool {
	return true
}

// CanList always allows, guests included
func (CommentAuthorization) CanList(_ *Actor) bool {
	return true
}

// CanCreate always allows, guests included
func (CommentAuthorization) CanCreate(_ *Actor) bool {
	return true
}

// CanUpdate allows admins and the comment's author
func (CommentAuthorization) CanUpdate(actor *Actor, comment *models.Comment) bool {
	if actor.admin() {
		return true
	}
	return comment != nil && actor.owns(comment.AuthorID)
}

// CanDelete allows admins, the comment's author and the owner of the parent
// post. postOwnerID must be resolved through the comment's post.
func (CommentAuthorization) CanDelete(actor *Actor, comment *models.Comment, postOwnerID uuid.UUID) bool {
	if actor.admin() {
		return true
	}
	if comment != nil && actor.owns(comment.AuthorID) {
		return true
	}
	return actor.owns(&postOwnerID)
}

// CanRestore is disabled
func (CommentAuthorization) CanRestore(_ *Actor, _ *models.Comment) bool {
	return false
}

// CanForceDelete is disabled
func (CommentAuthorization) CanForceDelete(_ *Actor, _ *models.Comment) bool {
	return false
}
