package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/labelprint/backend/internal/domain/shared"
	"github.com/labelprint/backend/internal/infrastructure/logger"
	"github.com/labelprint/backend/internal/infrastructure/printing"
	"github.com/labelprint/backend/internal/interfaces/http/dto"
)

const (
	// RequestIDKey is the gin context key for the request ID
	RequestIDKey = "request_id"
	// RequestIDHeader carries the request ID in and out
	RequestIDHeader = "X-Request-ID"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID from the context
func getRequestID(c *gin.Context) string {
	if id := c.GetString(RequestIDKey); id != "" {
		return id
	}
	return c.GetHeader(RequestIDHeader)
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(message, data))
}

// Error sends an error response with the status derived from the code
func (h *BaseHandler) Error(c *gin.Context, code, message string) {
	c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// BadRequest sends a 400 response for an undecodable body
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, dto.ErrCodeInvalidJSON, message)
}

// HandleError converts domain errors to their coded response. Anything else
// is an INTERNAL_ERROR carrying the error text.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		h.Error(c, domainErr.Code, domainErr.Message)
		return
	}

	logger.GetGinLogger(c).Error("request failed", zap.Error(err))
	_ = c.Error(err)
	h.Error(c, dto.ErrCodeInternal, "Server error: "+err.Error())
}

// BindJSON decodes the body into req. It answers the request itself and
// returns false when the body is unusable.
func (h *BaseHandler) BindJSON(c *gin.Context, req any) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	var validationErrs validator.ValidationErrors
	switch {
	case errors.As(err, &tooLarge):
		h.Error(c, dto.ErrCodeRequestTooLarge, "Request body exceeds maximum allowed size")
	case errors.Is(err, io.EOF):
		h.BadRequest(c, "Request body is required")
	case errors.As(err, &validationErrs):
		h.Error(c, dto.ErrCodeValidation, formatValidationErrors(validationErrs))
	default:
		h.BadRequest(c, "Invalid JSON body: "+err.Error())
	}
	return false
}

// Artifact writes a rendered artifact inline so browsers display it
func (h *BaseHandler) Artifact(c *gin.Context, name string, artifact *printing.Artifact) {
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", name+artifact.Kind.Ext()))
	c.Header("Content-Length", strconv.Itoa(len(artifact.Data)))
	c.Data(http.StatusOK, artifact.Kind.ContentType(), artifact.Data)
}

func formatValidationErrors(errs validator.ValidationErrors) string {
	parts := make([]string, 0, len(errs))
	for _, fe := range errs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return "Request validation failed: " + strings.Join(parts, "; ")
}
