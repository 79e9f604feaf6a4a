package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/firecash/backend/internal/domain/shared"
	"github.com/firecash/backend/internal/infrastructure/logger"
	"github.com/firecash/backend/internal/interfaces/http/dto"
	"github.com/firecash/backend/internal/interfaces/http/middleware"
)

// BaseHandler provides shared response helpers for all handlers
type BaseHandler struct{}

// CurrentUser returns the authenticated user's ID, writing a 401 when the
// context carries none
func (h *BaseHandler) CurrentUser(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized,
			dto.NewErrorResponse(dto.ErrCodeUnauthorized, "Authentication required"))
		return uuid.Nil, false
	}
	return userID, true
}

// ParseUUIDParam parses a path parameter as a UUID, writing a 400 on failure
func (h *BaseHandler) ParseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest,
			dto.NewErrorResponse(dto.ErrCodeInvalidInput, "Invalid "+name+" parameter"))
		return uuid.Nil, false
	}
	return id, true
}

// Success writes a 200 envelope
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta writes a 200 envelope with pagination metadata
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, meta dto.Meta) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, meta))
}

// Created writes a 201 envelope
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent writes an empty 204
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest writes a 400 envelope
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.ErrCodeInvalidInput, message))
}

// HandleError maps a service error onto the envelope and status tables.
// Unknown errors are logged and surface as an opaque 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponse(code, domainErr.Message))
		return
	}

	logger.GetGinLogger(c).Error("unhandled error", zap.Error(err))
	c.JSON(http.StatusInternalServerError,
		dto.NewErrorResponse(dto.ErrCodeInternal, "Internal server error"))
}
