package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/estatebook/backend/internal/domain/shared"
	"github.com/estatebook/backend/internal/infrastructure/logger"
	"github.com/estatebook/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// IdempotencyKeyHeader is the client supplied key for retried writes
	IdempotencyKeyHeader = "Idempotency-Key"
	// MaxIdempotencyKeyLength bounds the header value stored in the cache
	MaxIdempotencyKeyLength = 128

	defaultIdempotencyTTL = 24 * time.Hour
)

// IdempotencyConfig configures duplicate-request suppression
type IdempotencyConfig struct {
	Store  shared.IdempotencyStore
	TTL    time.Duration
	Logger *zap.Logger
}

// Idempotency rejects a request whose Idempotency-Key was already seen for the
// same tenant, method and request path within TTL with 409 ERR_DUPLICATE_REQUEST. Requests
// without the header pass through. Store failures let the request through.
func Idempotency(cfg IdempotencyConfig) gin.HandlerFunc {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
		if key == "" || cfg.Store == nil {
			c.Next()
			return
		}
		if len(key) > MaxIdempotencyKeyLength {
			abortWith(c, http.StatusBadRequest, dto.ErrCodeBadRequest, "Idempotency-Key is too long")
			return
		}

		fresh, err := cfg.Store.MarkProcessed(c.Request.Context(), idempotencyScope(c, key), ttl)
		if err != nil {
			logger.Enrich(c.Request.Context(), log).Warn("Idempotency check failed",
				zap.String("idempotency_key", key),
				zap.Error(err),
			)
			c.Next()
			return
		}
		if !fresh {
			abortWith(c, http.StatusConflict, dto.ErrCodeDuplicateRequest, "request with this Idempotency-Key was already processed")
			return
		}
		c.Next()
	}
}

func idempotencyScope(c *gin.Context, key string) string {
	tenant := "anonymous"
	if actor, ok := GetActor(c); ok {
		tenant = actor.TenantID.String()
	}
	return tenant + ":" + c.Request.Method + ":" + c.Request.URL.Path + ":" + key
}

func abortWith(c *gin.Context, status int, code, message string) {
	info := &dto.ErrorInfo{Code: code, Message: message}
	c.AbortWithStatusJSON(status, dto.NewErrorResponseWithRequestID(info, c.GetString(logger.RequestIDKey)))
}
