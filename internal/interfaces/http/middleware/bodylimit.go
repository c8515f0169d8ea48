package middleware

import (
	"fmt"
	"net/http"

	"github.com/estatebook/backend/internal/infrastructure/logger"
	"github.com/estatebook/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// BodyLimit rejects requests whose declared length exceeds maxBytes and caps
// the body reader for chunked uploads.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			info := &dto.ErrorInfo{
				Code:    dto.ErrCodePayloadTooLarge,
				Message: fmt.Sprintf("request body exceeds the %d byte limit", maxBytes),
			}
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				dto.NewErrorResponseWithRequestID(info, c.GetString(logger.RequestIDKey)))
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
