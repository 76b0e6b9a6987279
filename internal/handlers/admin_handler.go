package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/student-portal/internal/models"
	"github.com/SAP-F-2025/student-portal/internal/services"
	"github.com/SAP-F-2025/student-portal/internal/utils"
)

// AdminHandler serves bulk registration, exports and the activity log
type AdminHandler struct {
	BaseHandler
	registration services.RegistrationService
	activity     services.ActivityService
	export       services.ExportService
}

func NewAdminHandler(
	registration services.RegistrationService,
	activity services.ActivityService,
	export services.ExportService,
	logger utils.Logger,
) *AdminHandler {
	return &AdminHandler{
		BaseHandler:  NewBaseHandler(logger),
		registration: registration,
		activity:     activity,
		export:       export,
	}
}

// RegisterStudents creates accounts for every gradesheet student not yet registered
// @Summary Bulk register students
// @Tags admin
// @Produce json
// @Success 200 {object} models.RegistrationResult
// @Failure 404 {object} ErrorResponse "No gradesheets"
// @Router /admin/register-students [post]
func (h *AdminHandler) RegisterStudents(c *gin.Context) {
	h.LogRequest(c, "Starting bulk registration")

	result, err := h.registration.ReconcileAndRegister(c.Request.Context(), services.DefaultRegisteredBy)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Bulk registration finished",
		"total", result.Total,
		"registered", result.Registered,
		"already_registered", result.AlreadyRegistered,
		"errors", result.Errors,
	)

	c.JSON(http.StatusOK, result)
}

// ListActivityLogs returns the newest audit entries
// @Summary List activity logs
// @Tags admin
// @Produce json
// @Param limit query int false "Maximum entries (default 100, max 1000)"
// @Success 200 {array} models.ActivityLog
// @Router /admin/activity-logs [get]
func (h *AdminHandler) ListActivityLogs(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			h.respondError(c, http.StatusBadRequest, ErrCodeBadRequest, "limit must be a non-negative integer", nil)
			return
		}
		limit = parsed
	}

	logs, err := h.activity.List(c.Request.Context(), limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"logs":  logs,
		"total": len(logs),
	})
}

// ExportCredentials renders the credentials returned by a registration run
func (h *AdminHandler) ExportCredentials(c *gin.Context) {
	format, err := services.ParseExportFormat(c.Query("format"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	var req models.ExportCredentialsRequest
	if !h.bindJSON(c, &req) {
		return
	}

	file, err := h.export.ExportCredentials(c.Request.Context(), req.Students, format)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.sendFile(c, file)
}

// ExportAllUsers renders every registration record
func (h *AdminHandler) ExportAllUsers(c *gin.Context) {
	format, err := services.ParseExportFormat(c.Query("format"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Exporting all users", "format", format)

	file, err := h.export.ExportAllUsers(c.Request.Context(), format)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.sendFile(c, file)
}

func (h *AdminHandler) sendFile(c *gin.Context, file *services.ExportFile) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
