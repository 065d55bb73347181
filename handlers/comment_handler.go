package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/upb/blog-platform/middleware"
	"github.com/upb/blog-platform/services"
	"github.com/upb/blog-platform/utils"
)

// CommentHandler serves the comments API
type CommentHandler struct {
	comments *services.CommentService
	logger   *zap.Logger
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(comments *services.CommentService, logger *zap.Logger) *CommentHandler {
	return &CommentHandler{comments: comments, logger: logger}
}

// HandleListForPost handles GET /api/v1/posts/{post}/comments?page=
func (h *CommentHandler) HandleListForPost(w http.ResponseWriter, r *http.Request) {
	postID, err := utils.URLParamUUID(r, "post")
	if err != nil {
		HandleServiceError(w, r, services.NotFound("post"), h.logger)
		return
	}

	page, err := h.comments.ListForPost(r.Context(), middleware.GetActorFromContext(r.Context()), postID, utils.PageParam(r))
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}
	writeResult(utils.WriteOK(w, page), h.logger)
}

// HandleCreate handles POST /api/v1/posts/{post}/comments. Guests may comment.
func (h *CommentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	postID, err := utils.URLParamUUID(r, "post")
	if err != nil {
		HandleServiceError(w, r, services.NotFound("post"), h.logger)
		return
	}
	payload, err := utils.DecodePayload(w, r)
	if err != nil {
		HandleBadRequest(w, err, h.logger)
		return
	}

	comment, err := h.comments.Create(r.Context(), middleware.GetActorFromContext(r.Context()), postID, payload, services.ChannelAPI)
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}
	writeResult(utils.WriteCreated(w, comment, "Comment created successfully"), h.logger)
}

// HandleGet handles GET /api/v1/comments/{comment}
func (h *CommentHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := utils.URLParamUUID(r, "comment")
	if err != nil {
		HandleServiceError(w, r, services.NotFound("comment"), h.logger)
		return
	}

	comment, err := h.comments.Get(r.Context(), middleware.GetActorFromContext(r.Context()), id)
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}
	writeResult(utils.WriteOK(w, comment), h.logger)
}

// HandleUpdate handles PUT /api/v1/comments/{comment}
func (h *CommentHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := utils.URLParamUUID(r, "comment")
	if err != nil {
		HandleServiceError(w, r, services.NotFound("comment"), h.logger)
		return
	}
	payload, err := utils.DecodePayload(w, r)
	if err != nil {
		HandleBadRequest(w, err, h.logger)
		return
	}

	comment, err := h.comments.Update(r.Context(), middleware.GetActorFromContext(r.Context()), id, payload)
	if err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}
	writeResult(utils.WriteJSON(w, http.StatusOK, utils.Envelope{
		Success: true,
		Data:    comment,
		Message: "Comment updated successfully",
	}), h.logger)
}

// HandleDelete handles DELETE /api/v1/comments/{comment}
func (h *CommentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := utils.URLParamUUID(r, "comment")
	if err != nil {
		HandleServiceError(w, r, services.NotFound("comment"), h.logger)
		return
	}

	if _, err := h.comments.Delete(r.Context(), middleware.GetActorFromContext(r.Context()), id); err != nil {
		HandleServiceError(w, r, err, h.logger)
		return
	}
	writeResult(utils.WriteMessage(w, "Comment deleted successfully"), h.logger)
}
