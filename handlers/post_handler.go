package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/upb/blog-platform/middleware"
	"github.com/upb/blog-platform/models"
	"github.com/upb/blog-platform/services"
	"github.com/upb/blog-platform/utils"
)

// PostHandler serves the posts API
type PostHandler struct {
	posts    *services.PostService
	comments *services.CommentService
	logger   *zap.Logger
}

// postDetail is a post together with its whole comment thread
type postDetail struct {
	*models.Post
	Comments []*models.Comment `json:"comments"`
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(posts *services.PostService, comments *services.CommentService, logger *zap.Logger) *PostHandler {
	return &PostHandler{posts: posts, comments: comments, logger: logger}
}

// HandleList handles GET /api/v1/posts?page=
func (h *PostHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	page, err := h.posts.List(r.Context(), middleware.GetActorFromContext(r.Context()), utils.PageParam(r))
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}
	writeResult(utils.WriteOK(w, page), h.logger)
}

// HandleGet handles GET /api/v1/posts/{post}
func (h *PostHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := utils.URLParamUUID(r, "post")
	if err != nil {
		HandleServiceError(w, r, services.NotFound("post"), h.logger)
		return
	}

	actor := middleware.GetActorFromContext(r.Context())
	post, err := h.posts.Get(r.Context(), actor, id)
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}
	thread, err := h.comments.Thread(r.Context(), actor, post.ID)
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}
	if thread == nil {
		thread = []*models.Comment{}
	}
	writeResult(utils.WriteOK(w, postDetail{Post: post, Comments: thread}), h.logger)
}

// HandleCreate handles POST /api/v1/posts
func (h *PostHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	payload, err := utils.DecodePayload(w, r)
	if err != nil {
		HandleBadRequest(w, err, h.logger)
		return
	}

	post, err := h.posts.Create(r.Context(), middleware.GetActorFromContext(r.Context()), payload)
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}
	writeResult(utils.WriteCreated(w, post, "Post created successfully"), h.logger)
}

// HandleUpdate handles PUT /api/v1/posts/{post}
func (h *PostHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := utils.URLParamUUID(r, "post")
	if err != nil {
		HandleServiceError(w, r, services.NotFound("post"), h.logger)
		return
	}
	payload, err := utils.DecodePayload(w, r)
	if err != nil {
		HandleBadRequest(w, err, h.logger)
		return
	}

	post, err := h.posts.Update(r.Context(), middleware.GetActorFromContext(r.Context()), id, payload)
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}
	writeResult(utils.WriteJSON(w, http.StatusOK, utils.Envelope{
		Success: true,
		Data:    post,
		Message: "Post updated successfully",
	}), h.logger)
}

// HandleDelete handles DELETE /api/v1/posts/{post}
func (h *PostHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := utils.URLParamUUID(r, "post")
	if err != nil {
		HandleServiceError(w, r, services.NotFound("post"), h.logger)
		return
	}

	if err := h.posts.Delete(r.Context(), middleware.GetActorFromContext(r.Context()), id); err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}
	writeResult(utils.WriteMessage(w, "Post deleted successfully"), h.logger)
}
