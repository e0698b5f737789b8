package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/scms-platform/records-service/internal/repositories"
	"github.com/scms-platform/records-service/internal/services"
	"github.com/scms-platform/records-service/internal/utils"
	"github.com/scms-platform/records-service/internal/validator"
)

// ErrorResponse is the uniform error body returned by every handler
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// SuccessResponse wraps payloads that have no natural top-level shape
type SuccessResponse struct {
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// BaseHandler carries the pieces every handler needs
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// LogRequest logs a request-scoped line using the context logger when present
func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	logger := utils.LoggerFromContext(c.Request.Context(), h.logger)
	logger.Info(msg, args...)
}

// getUserID returns the authenticated caller id set by the auth middleware
func (h *BaseHandler) getUserID(c *gin.Context) string {
	userID, exists := c.Get("user_id")
	if !exists {
		return ""
	}
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

// requireUserID aborts with 401 when no authenticated caller is present
func (h *BaseHandler) requireUserID(c *gin.Context) (string, bool) {
	id := h.getUserID(c)
	if id == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return "", false
	}
	return id, true
}

// handleServiceError maps service-layer errors to HTTP responses
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	var permissionError *services.PermissionError
	if errors.As(err, &permissionError) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Access denied",
			Details: map[string]interface{}{
				"resource": permissionError.Resource,
				"action":   permissionError.Action,
				"reason":   permissionError.Reason,
			},
		})
		return
	}

	switch {
	case services.IsNotFoundError(err):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: err.Error(),
		})
	case errors.Is(err, services.ErrAlreadyEnrolled):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Student is already enrolled in this course",
		})
	case errors.Is(err, services.ErrCourseFull):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Course is at capacity",
		})
	case errors.Is(err, repositories.ErrTxConflict):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Operation conflicted with concurrent writes, please retry",
		})
	case errors.Is(err, services.ErrInvalidRole):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Message: "Invalid role for this operation",
		})
	case errors.Is(err, services.ErrInvalidCollection):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Unknown collection",
		})
	case repositories.IsTimeoutError(err):
		c.JSON(http.StatusGatewayTimeout, ErrorResponse{
			Message: "Operation timed out",
		})
	default:
		h.logger.Error("unhandled service error", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
