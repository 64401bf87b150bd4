// Package handler maps the back-office HTTP endpoints onto the ticketing use cases.
package handler

import (
	"net/http"

	"github.com/agence/backoffice/internal/infrastructure/logger"
	"github.com/agence/backoffice/internal/interfaces/http/dto"
	"github.com/agence/backoffice/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Error sends an error response and records the code for the access log
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.Set(logger.GinErrorCodeKey, code)
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// HandleError converts err to a response. The status follows the domain
// error kind; anything that is not a domain error is a 500 whose cause only
// goes to the log.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	status, info := dto.FromError(err)
	info.RequestID = middleware.GetRequestID(c)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.Set(logger.GinErrorCodeKey, info.Code)
	c.Set(logger.GinErrorKindKey, info.Kind)
	c.JSON(status, dto.Response{Success: false, Error: info})
}

// BindJSON binds the body into req and answers 400 on failure
func (h *BaseHandler) BindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// BindQuery binds the query string into req and answers 400 on failure
func (h *BaseHandler) BindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// ParamUUID parses a UUID path parameter and answers 400 when malformed
func (h *BaseHandler) ParamUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.BadRequest(c, "Invalid "+name+" format")
		return uuid.Nil, false
	}
	return id, true
}
