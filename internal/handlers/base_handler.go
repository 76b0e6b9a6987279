package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/student-portal/internal/models"
	"github.com/SAP-F-2025/student-portal/internal/services"
	"github.com/SAP-F-2025/student-portal/internal/utils"
	"github.com/SAP-F-2025/student-portal/internal/validator"
)

// Error classifications returned in ErrorResponse.Error
const (
	ErrCodeBadRequest      = "bad_request"
	ErrCodeNotFound        = "not_found"
	ErrCodeUnauthorized    = "unauthorized"
	ErrCodeForbidden       = "forbidden"
	ErrCodeConflict        = "conflict"
	ErrCodeUpstream        = "upstream_failure"
	ErrCodeInternal        = "internal_error"
	ErrCodeTooManyRequests = "too_many_requests"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// BaseHandler carries what every handler shares
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// requestLogger prefers the request-scoped logger set by utils.ContextLogger
func (h *BaseHandler) requestLogger(c *gin.Context) utils.Logger {
	return utils.LoggerFromContext(c.Request.Context(), h.logger)
}

func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	h.requestLogger(c).Info(msg, args...)
}

func (h *BaseHandler) LogError(c *gin.Context, err error, msg string, args ...any) {
	h.requestLogger(c).Error(msg, append(args, "error", err)...)
}

func (h *BaseHandler) respondError(c *gin.Context, status int, code, message string, details interface{}) {
	c.JSON(status, ErrorResponse{
		Error:   code,
		Message: message,
		Details: details,
	})
}

// bindJSON decodes the request body and answers 400 on malformed input
func (h *BaseHandler) bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		h.respondError(c, http.StatusBadRequest, ErrCodeBadRequest, "Invalid request payload", err.Error())
		return false
	}
	return true
}

// currentUser returns the principal set by the auth middleware
func (h *BaseHandler) currentUser(c *gin.Context) (*models.User, bool) {
	user, err := GetUserFromContext(c)
	if err != nil {
		h.respondError(c, http.StatusUnauthorized, ErrCodeUnauthorized, "User not authenticated", nil)
		return nil, false
	}
	return user, true
}

// handleServiceError maps service errors to HTTP responses. Upstream and
// unexpected failures are logged and never echoed to the client.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidationFailed):
		var verrs validator.ValidationErrors
		var details interface{}
		if errors.As(err, &verrs) {
			details = verrs
		} else {
			details = err.Error()
		}
		h.respondError(c, http.StatusBadRequest, ErrCodeBadRequest, "Validation failed", details)
	case errors.Is(err, services.ErrNoGradesheets):
		h.respondError(c, http.StatusNotFound, ErrCodeNotFound, "No gradesheets found", nil)
	case errors.Is(err, services.ErrNotFound):
		h.respondError(c, http.StatusNotFound, ErrCodeNotFound, publicMessage(err, services.ErrNotFound, "Resource not found"), nil)
	case errors.Is(err, services.ErrInvalidCredentials):
		h.respondError(c, http.StatusUnauthorized, ErrCodeUnauthorized, "Invalid credentials", nil)
	case errors.Is(err, services.ErrUnauthorized):
		h.respondError(c, http.StatusUnauthorized, ErrCodeUnauthorized, "Unauthorized access", nil)
	case errors.Is(err, services.ErrSignUpDisabled):
		h.respondError(c, http.StatusForbidden, ErrCodeForbidden, "Sign up is disabled, accounts are created by the administrator", nil)
	case errors.Is(err, services.ErrForbidden):
		h.respondError(c, http.StatusForbidden, ErrCodeForbidden, publicMessage(err, services.ErrForbidden, "Forbidden - insufficient permissions"), nil)
	case errors.Is(err, services.ErrConflict):
		h.respondError(c, http.StatusConflict, ErrCodeConflict, "Resource conflict", nil)
	case errors.Is(err, services.ErrUpstream):
		h.LogError(c, err, "Upstream service failure")
		h.respondError(c, http.StatusBadGateway, ErrCodeUpstream, "A dependent service failed, please try again later", nil)
	default:
		h.LogError(c, err, "Unexpected service error")
		h.respondError(c, http.StatusInternalServerError, ErrCodeInternal, "Internal server error", nil)
	}
}

// publicMessage returns the detail a service attached after sentinel, or
// fallback when there is none
func publicMessage(err, sentinel error, fallback string) string {
	msg := err.Error()
	prefix := sentinel.Error() + ": "
	if idx := strings.Index(msg, prefix); idx >= 0 {
		if detail := msg[idx+len(prefix):]; detail != "" {
			return strings.ToUpper(detail[:1]) + detail[1:]
		}
	}
	return fallback
}
