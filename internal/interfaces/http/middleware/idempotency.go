package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/labelprint/backend/internal/domain/shared"
	"github.com/labelprint/backend/internal/infrastructure/logger"
)

// IdempotencyKeyHeader lets a client retry a print without printing twice
const IdempotencyKeyHeader = "Idempotency-Key"

// Idempotency refuses a POST whose Idempotency-Key was already used on the
// same path within ttl. A request that ends in an error releases its key so
// the client can retry. Requests without the header pass through, and store
// failures let the request through rather than block printing.
func Idempotency(store shared.IdempotencyStore, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
		if store == nil || key == "" || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		log := logger.GetGinLogger(c)
		scoped := c.Request.URL.Path + ":" + key
		ok, err := store.Claim(c.Request.Context(), scoped, ttl)
		if err != nil {
			log.Warn("idempotency check failed, processing request", zap.Error(err))
			c.Next()
			return
		}
		if !ok {
			log.Info("duplicate request refused", zap.String("idempotency_key", key))
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"success": false,
				"error":   "DUPLICATE_REQUEST",
				"message": "This request was already processed",
			})
			return
		}

		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest {
			// the request context may already be cancelled
			if err := store.Release(context.WithoutCancel(c.Request.Context()), scoped); err != nil {
				log.Warn("failed to release idempotency key", zap.Error(err))
			}
		}
	}
}
