package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/estatebook/backend/internal/domain/shared"
	"github.com/estatebook/backend/internal/infrastructure/logger"
	"github.com/estatebook/backend/internal/interfaces/http/dto"
	"github.com/estatebook/backend/internal/interfaces/http/middleware"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

func getRequestID(c *gin.Context) string {
	if id := c.GetString(logger.RequestIDKey); id != "" {
		return id
	}
	return c.GetHeader(middleware.RequestIDHeader)
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// paged sends one page of results with paging metadata
func paged[T any](c *gin.Context, p *shared.Paginated[T]) {
	c.JSON(http.StatusOK, dto.NewPagedResponse(*p))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// HandleError maps err to the error envelope and status code. Server-side
// failures are logged with their cause; the response only carries the message.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_, status, info := dto.FromError(err)
	if status >= http.StatusInternalServerError {
		logger.L(c.Request.Context()).Error("Request failed",
			zap.String("code", info.Code),
			zap.Error(err),
		)
	}
	_ = c.Error(err)
	c.JSON(status, dto.NewErrorResponseWithRequestID(info, getRequestID(c)))
}

// actor returns the authenticated actor or writes a 401
func (h *BaseHandler) actor(c *gin.Context) (shared.Actor, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		h.HandleError(c, shared.ErrUnauthorized)
		return shared.Actor{}, false
	}
	return actor, true
}

// bindJSON binds the body into req or writes a 400 listing the bad fields
func (h *BaseHandler) bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.HandleError(c, h.bindFailure(err))
		return false
	}
	return true
}

// bindQuery binds query parameters into req or writes a 400
func (h *BaseHandler) bindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		h.HandleError(c, h.bindFailure(err))
		return false
	}
	return true
}

func (h *BaseHandler) bindFailure(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return bodyTooLarge()
	}
	return middleware.BindError(err)
}

// uuidParam parses a path parameter as a UUID or writes a 400 naming it
func (h *BaseHandler) uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.HandleError(c, shared.NewValidationError("invalid path parameter", name))
		return uuid.Nil, false
	}
	return id, true
}

// intParam parses a positive integer path parameter or writes a 400 naming it
func (h *BaseHandler) intParam(c *gin.Context, name string) (int, bool) {
	n, err := strconv.Atoi(c.Param(name))
	if err != nil || n < 1 {
		h.HandleError(c, shared.NewValidationError("invalid path parameter", name))
		return 0, false
	}
	return n, true
}

func bodyTooLarge() *shared.DomainError {
	err := shared.NewUploadError("request body is too large")
	err.Fields = []string{"size"}
	return err
}
