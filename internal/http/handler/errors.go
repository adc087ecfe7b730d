package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"briefroom.app/relay/internal/domain"
)

func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindInvalidRequest:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindVersionLimitExceeded, domain.KindInvalidState:
		return http.StatusConflict
	case domain.KindUpstreamGenerationFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the single structured error every endpoint returns.
// Internal causes are logged, never sent.
func respondError(c *gin.Context, err error) {
	ctx := c.Request.Context()

	var derr *domain.Error
	if !errors.As(err, &derr) {
		slog.ErrorContext(ctx, "unhandled error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error", "code": domain.KindInternal})
		return
	}

	status := statusFor(derr.Kind)
	body := gin.H{"error": derr.Message, "code": derr.Kind}
	switch derr.Kind {
	case domain.KindUpstreamGenerationFailure:
		body["retryable"] = derr.Retryable
	case domain.KindInternal:
		slog.ErrorContext(ctx, "internal error", "error", err)
		body["error"] = "internal server error"
	}
	_ = c.Error(err)
	c.JSON(status, body)
}

func badRequest(c *gin.Context, err error) {
	slog.WarnContext(c.Request.Context(), "invalid request body", "error", err)
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": domain.KindInvalidRequest})
}
