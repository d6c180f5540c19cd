// Package handler implements the gin handlers of the store API.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/marvelstore/backend/internal/domain/shared"
	"github.com/marvelstore/backend/internal/infrastructure/logger"
	"github.com/marvelstore/backend/internal/interfaces/http/dto"
	"github.com/marvelstore/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// OK sends a 200 response with data as the body
func (h *BaseHandler) OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// Created sends a 201 response with data as the body
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// Error sends an error body with the status derived from code
func (h *BaseHandler) Error(c *gin.Context, code, message string) {
	c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponse(code, message, middleware.GetRequestID(c)))
}

// BindError answers a failed ShouldBind*. Validator failures carry field
// details; anything else (malformed JSON, a number that is not a number)
// gets fallbackCode.
func (h *BaseHandler) BindError(c *gin.Context, err error, fallbackCode, fallbackMessage string) {
	if details := middleware.ValidationDetails(err); details != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(middleware.GetRequestID(c), details))
		return
	}
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		h.Error(c, dto.ErrCodeRequestTooLarge, "Request body exceeds maximum allowed size")
		return
	}
	h.Error(c, fallbackCode, fallbackMessage)
}

// HandleError converts service errors to responses. Domain errors keep their
// message; anything else is logged and hidden behind the generic message.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	if de, ok := shared.AsDomainError(err); ok {
		status := dto.GetHTTPStatus(de.Code)
		if status >= http.StatusInternalServerError {
			_ = c.Error(err)
			logger.GetGinLogger(c).Error("Request failed", zap.String("code", de.Code), zap.Error(err))
		}
		c.JSON(status, dto.NewErrorResponse(de.Code, de.Message, middleware.GetRequestID(c)))
		return
	}

	_ = c.Error(err)
	logger.GetGinLogger(c).Error("Request failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(dto.ErrCodeInternal, dto.MsgInternal, middleware.GetRequestID(c)))
}

// pathID parses the named path parameter as a UUID. On failure it answers
// 400 and returns false.
func (h *BaseHandler) pathID(c *gin.Context, param, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		h.Error(c, dto.ErrCodeInvalidID, "Invalid "+what+" id")
		return uuid.Nil, false
	}
	return id, true
}

// sessionUserID returns the ID of the user loaded by middleware.Protect
func sessionUserID(c *gin.Context) uuid.UUID {
	if user := middleware.CurrentUser(c); user != nil {
		return user.ID
	}
	return uuid.Nil
}
