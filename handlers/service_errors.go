package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/upb/blog-platform/middleware"
	"github.com/upb/blog-platform/services"
	"github.com/upb/blog-platform/utils"
)

// HandleServiceError maps domain errors to HTTP responses. Internal causes
// are logged and never sent to the client.
func HandleServiceError(w http.ResponseWriter, r *http.Request, err error, logger *zap.Logger) {
	if err == nil {
		return
	}

	var writeErr error
	switch {
	case services.IsValidationError(err):
		writeErr = utils.WriteUnprocessable(w, "", services.GetFieldErrors(err))

	case services.IsUnauthenticatedError(err):
		writeErr = utils.WriteUnauthorized(w, "")

	case services.IsForbiddenError(err):
		writeErr = utils.WriteForbidden(w, "")

	case services.IsNotFoundError(err):
		writeErr = utils.WriteNotFound(w, notFoundMessage(err))

	default:
		logger.Error("internal server error",
			zap.Error(err),
			zap.String("request_id", middleware.GetRequestIDFromContext(r.Context())),
			zap.String("error_type", string(services.GetErrorType(err))))
		writeErr = utils.WriteInternalServerError(w, "An internal error occurred")
	}

	if writeErr != nil {
		logger.Error("failed to write error response", zap.Error(writeErr))
	}
}

// HandleBadRequest reports an unreadable body or path parameter
func HandleBadRequest(w http.ResponseWriter, err error, logger *zap.Logger) {
	if writeErr := utils.WriteBadRequest(w, err.Error()); writeErr != nil {
		logger.Error("failed to write bad request response", zap.Error(writeErr))
	}
}

func notFoundMessage(err error) string {
	if resource, ok := services.GetErrorDetails(err)["resource"].(string); ok {
		switch resource {
		case "post":
			return "Post not found"
		case "comment":
			return "Comment not found"
		case "user":
			return "User not found"
		}
	}
	return "Resource not found"
}

// writeResult logs a failed response write
func writeResult(err error, logger *zap.Logger) {
	if err != nil {
		logger.Error("failed to write response", zap.Error(err))
	}
}
