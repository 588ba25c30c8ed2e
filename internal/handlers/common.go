package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/SAP-F-2025/intervention-service/internal/services"
	"github.com/SAP-F-2025/intervention-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// ===== COMMON RESPONSE STRUCTURES =====

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// Error codes returned in ErrorResponse.Code
const (
	CodeValidation   = "validation_failed"
	CodeNotFound     = "not_found"
	CodeConflict     = "conflict"
	CodeStoreFailure = "store_unavailable"
	CodeInternal     = "internal_error"
)

// ===== BASE HANDLER STRUCT =====

// BaseHandler provides common logging and error mapping for all handlers
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// requestLogger prefers the request-scoped logger set by the middleware.
func (h *BaseHandler) requestLogger(c *gin.Context) utils.Logger {
	if _, ok := c.Get("logger"); ok {
		return utils.GetLoggerFromContext(c)
	}
	return h.logger
}

// LogRequest logs the start of a handler with its identifying fields
func (h *BaseHandler) LogRequest(c *gin.Context, message string, additionalFields ...interface{}) {
	fields := append([]interface{}{
		"method", c.Request.Method,
		"path", c.FullPath(),
	}, additionalFields...)
	h.requestLogger(c).Debug(message, fields...)
}

// handleServiceError maps the service error taxonomy onto HTTP status codes.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	switch {
	case errors.As(err, &validationErrors):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
			Code:    CodeValidation,
		})
	case services.IsValidation(err):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: err.Error(),
			Code:    CodeValidation,
		})
	case services.IsNotFound(err):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: notFoundMessage(err),
			Code:    CodeNotFound,
		})
	case services.IsConflict(err):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Request conflicts with the current plan state",
			Details: err.Error(),
			Code:    CodeConflict,
		})
	case services.IsStoreFailure(err):
		h.requestLogger(c).LogError(err, "Record store unavailable", "path", c.FullPath())
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Message: "Record store unavailable, retry later",
			Code:    CodeStoreFailure,
		})
	default:
		h.requestLogger(c).LogError(err, "Unhandled service error", "path", c.FullPath())
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
			Code:    CodeInternal,
		})
	}
}

func notFoundMessage(err error) string {
	switch {
	case errors.Is(err, services.ErrStudentNotFound):
		return "Student not found"
	case errors.Is(err, services.ErrPlanNotFound):
		return "Intervention plan not found"
	case errors.Is(err, services.ErrProgressNotFound):
		return "Intervention progress not found"
	case errors.Is(err, services.ErrAnalysisNotFound):
		return "Prescriptive analysis not found"
	case errors.Is(err, services.ErrCategoryResultNotFound):
		return "Category result not found"
	default:
		return "Resource not found"
	}
}

// bindJSON decodes the body and writes a 400 on failure.
func (h *BaseHandler) bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
			Code:    CodeValidation,
		})
		return false
	}
	return true
}

// parseIDParam returns 0 after writing a 400 when the parameter is not a
// positive integer.
func (h *BaseHandler) parseIDParam(c *gin.Context, param string) uint {
	idStr := strings.TrimSpace(c.Param(param))
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: "must be a positive integer",
			Code:    CodeValidation,
		})
		return 0
	}
	return uint(id)
}

func parseBoolQuery(c *gin.Context, param string) bool {
	value, err := strconv.ParseBool(c.Query(param))
	return err == nil && value
}
