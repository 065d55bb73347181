package policy

import "github.com/upb/blog-platform/models"

// PostAuthorization holds the rules for posts
type PostAuthorization struct{}

// CanView always allows
func (PostAuthorization) CanView(_ *Actor, _ *models.Post) bool {
	return true
}

// CanList always allows
func (PostAuthorization) CanList(_ *Actor) bool {
	return true
}

// CanCreate requires a signed-in actor
func (PostAuthorization) CanCreate(actor *Actor) bool {
	return actor != nil
}

// CanUpdate allows only the author
func (PostAuthorization) CanUpdate(actor *Actor, post *models.Post) bool {
	return post != nil && actor.owns(&post.AuthorID)
}

// CanDelete allows only the author
func (p PostAuthorization) CanDelete(actor *Actor, post *models.Post) bool {
	return p.CanUpdate(actor, post)
}

// CanRestore is disabled
func (PostAuthorization) CanRestore(_ *Actor, _ *models.Post) bool {
	return false
}

// CanForceDelete is disabled
func (PostAuthorization) CanForceDelete(_ *Actor, _ *models.Post) bool {
	return false
}
