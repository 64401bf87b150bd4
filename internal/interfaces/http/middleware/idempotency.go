package middleware

import (
	"net/http"
	"time"

	"github.com/agence/backoffice/internal/domain/shared"
	"github.com/agence/backoffice/internal/infrastructure/logger"
	"github.com/agence/backoffice/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Idempotency rejects a replayed Idempotency-Key on a command with 409
// DUPLICATE_REQUEST. Keys are scoped by method and path. Requests without the
// header pass through, and a failing store lets the request through. The key is
// released when the request ends in a server or upstream error or a stale
// write, so the client can retry it.
func Idempotency(store shared.IdempotencyStore, ttl time.Duration, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" || c.Request.Method == http.MethodGet {
			c.Next()
			return
		}

		scoped := c.Request.Method + ":" + c.Request.URL.Path + ":" + key
		isNew, err := store.MarkProcessed(c.Request.Context(), scoped, ttl)
		if err != nil {
			log.Warn("Idempotency store unavailable, processing request",
				zap.String("request_id", GetRequestID(c)),
				zap.Error(err),
			)
			c.Next()
			return
		}
		if !isNew {
			c.Set(logger.GinErrorCodeKey, dto.ErrCodeDuplicateRequest)
			c.AbortWithStatusJSON(http.StatusConflict, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeDuplicateRequest,
				"A request with this Idempotency-Key was already received",
				GetRequestID(c),
			))
			return
		}
		c.Next()

		if retryable(c) {
			if err := store.Forget(c.Request.Context(), scoped); err != nil {
				log.Warn("Failed to release idempotency key",
					zap.String("request_id", GetRequestID(c)),
					zap.Error(err),
				)
			}
		}
	}
}

// retryable reports whether the response leaves the command unapplied and
// worth retrying with the same key
func retryable(c *gin.Context) bool {
	status := c.Writer.Status()
	if status >= http.StatusInternalServerError {
		return true
	}
	return status == http.StatusConflict &&
		c.GetString(logger.GinErrorKindKey) == string(shared.KindStaleAggregate)
}
