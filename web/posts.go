package web

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/upb/blog-platform/internal/policy"
	"github.com/upb/blog-platform/middleware"
	"github.com/upb/blog-platform/models"
	"github.com/upb/blog-platform/services"
	"github.com/upb/blog-platform/utils"
)

func postURL(id uuid.UUID) string {
	return "/posts/" + id.String()
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	page, err := h.posts.List(r.Context(), middleware.GetActorFromContext(r.Context()), utils.PageParam(r))
	if err != nil {
		h.fail(w, r, err, "", nil)
		return
	}
	h.render(w, r, http.StatusOK, pageIndex, &PageData{Title: "Posts", Posts: page})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := utils.URLParamUUID(r, "post")
	if err != nil {
		h.NotFound(w, r)
		return
	}
	data, err := h.thread(r, id)
	if err != nil {
		h.fail(w, r, err, "", nil)
		return
	}
	h.render(w, r, http.StatusOK, pageShow, data)
}

// thread loads a post with all of its comments, oldest first
func (h *Handler) thread(r *http.Request, id uuid.UUID) (*PageData, error) {
	actor := middleware.GetActorFromContext(r.Context())
	post, err := h.posts.Get(r.Context(), actor, id)
	if err != nil {
		return nil, err
	}
	comments, err := h.comments.Thread(r.Context(), actor, id)
	if err != nil {
		return nil, err
	}
	return &PageData{Title: post.Title, Post: post, Comments: comments}, nil
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	if !(policy.PostAuthorization{}).CanCreate(middleware.GetActorFromContext(r.Context())) {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	h.render(w, r, http.StatusOK, pageCreate, &PageData{Title: "New post"})
}

func (h *Handler) store(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetActorFromContext(r.Context())
	if actor.IsGuest() {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	payload, err := utils.DecodePayload(w, r)
	if err != nil {
		h.render(w, r, http.StatusBadRequest, pageError, &PageData{Status: http.StatusBadRequest, Message: "Bad request."})
		return
	}

	post, err := h.posts.Create(r.Context(), actor, payload)
	if err != nil {
		h.fail(w, r, err, pageCreate, &PageData{Title: "New post", Old: oldInput(payload)})
		return
	}
	setFlash(w, "Post created successfully.")
	http.Redirect(w, r, postURL(post.ID), http.StatusSeeOther)
}

func (h *Handler) edit(w http.ResponseWriter, r *http.Request) {
	id, err := utils.URLParamUUID(r, "post")
	if err != nil {
		h.NotFound(w, r)
		return
	}
	actor := middleware.GetActorFromContext(r.Context())
	post, err := h.posts.Get(r.Context(), actor, id)
	if err != nil {
		h.fail(w, r, err, "", nil)
		return
	}

	if !(policy.PostAuthorization{}).CanUpdate(actor, post) {
		if actor.IsGuest() {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		h.Forbidden(w, r)
		return
	}

	h.render(w, r, http.StatusOK, pageEdit, &PageData{
		Title: "Edit post",
		Post:  post,
		Old:   map[string]string{"title": post.Title, "content": post.Content},
	})
}

// update sends guests to the login page before looking at the form. Signed-in
// non-owners still get validation errors ahead of the 403.
func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := utils.URLParamUUID(r, "post")
	if err != nil {
		h.NotFound(w, r)
		return
	}
	actor := middleware.GetActorFromContext(r.Context())
	if actor.IsGuest() {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	payload, err := utils.DecodePayload(w, r)
	if err != nil {
		h.render(w, r, http.StatusBadRequest, pageError, &PageData{Status: http.StatusBadRequest, Message: "Bad request."})
		return
	}

	post, err := h.posts.Update(r.Context(), actor, id, payload)
	if err != nil {
		h.fail(w, r, err, pageEdit, &PageData{
			Title: "Edit post",
			Post:  &models.Post{ID: id},
			Old:   oldInput(payload),
		})
		return
	}
	setFlash(w, "Post updated successfully.")
	http.Redirect(w, r, postURL(post.ID), http.StatusSeeOther)
}

func (h *Handler) destroy(w http.ResponseWriter, r *http.Request) {
	id, err := utils.URLParamUUID(r, "post")
	if err != nil {
		h.NotFound(w, r)
		return
	}
	if err := h.posts.Delete(r.Context(), middleware.GetActorFromContext(r.Context()), id); err != nil {
		h.fail(w, r, err, "", nil)
		return
	}
	setFlash(w, "Post deleted successfully.")
	http.Redirect(w, r, "/posts", http.StatusSeeOther)
}

func (h *Handler) storeComment(w http.ResponseWriter, r *http.Request) {
	postID, err := utils.URLParamUUID(r, "post")
	if err != nil {
		h.NotFound(w, r)
		return
	}
	payload, err := utils.DecodePayload(w, r)
	if err != nil {
		h.render(w, r, http.StatusBadRequest, pageError, &PageData{Status: http.StatusBadRequest, Message: "Bad request."})
		return
	}

	_, err = h.comments.Create(r.Context(), middleware.GetActorFromContext(r.Context()), postID, payload, services.ChannelWeb)
	if services.IsValidationError(err) {
		data, loadErr := h.thread(r, postID)
		if loadErr != nil {
			h.fail(w, r, loadErr, "", nil)
			return
		}
		data.Old = oldInput(payload)
		h.fail(w, r, err, pageShow, data)
		return
	}
	if err != nil {
		h.fail(w, r, err, "", nil)
		return
	}
	setFlash(w, "Comment added successfully.")
	http.Redirect(w, r, postURL(postID)+"#comments", http.StatusSeeOther)
}

func (h *Handler) destroyComment(w http.ResponseWriter, r *http.Request) {
	id, err := utils.URLParamUUID(r, "comment")
	if err != nil {
		h.NotFound(w, r)
		return
	}
	comment, err := h.comments.Delete(r.Context(), middleware.GetActorFromContext(r.Context()), id)
	if err != nil {
		h.fail(w, r, err, "", nil)
		return
	}
	setFlash(w, "Comment deleted successfully.")
	http.Redirect(w, r, postURL(comment.PostID)+"#comments", http.StatusSeeOther)
}
