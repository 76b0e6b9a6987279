package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/student-portal/internal/services"
	"github.com/SAP-F-2025/student-portal/internal/utils"
)

type StudentHandler struct {
	BaseHandler
	service services.MarksService
}

func NewStudentHandler(service services.MarksService, logger utils.Logger) *StudentHandler {
	return &StudentHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// ===== STUDENT ENDPOINTS =====

// GetMyMarks returns the marks of the signed-in student across all gradesheets
// @Summary Get own marks
// @Tags students
// @Produce json
// @Success 200 {object} models.StudentMarksResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Account has no roll number"
// @Failure 404 {object} ErrorResponse "No marks found"
// @Router /students/me/marks [get]
func (h *StudentHandler) GetMyMarks(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	if user.RollNo == "" {
		h.respondError(c, http.StatusForbidden, ErrCodeForbidden, "Account is not linked to a roll number", nil)
		return
	}

	h.LogRequest(c, "Getting student marks", "roll_no", user.RollNo)

	marks, err := h.service.GetMarks(c.Request.Context(), user.RollNo)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, marks)
}

// ===== ADMIN ENDPOINTS =====

// GetStudentMarks returns the marks of any roll number
func (h *StudentHandler) GetStudentMarks(c *gin.Context) {
	rollNo := c.Param("roll_no")
	h.LogRequest(c, "Getting marks for student", "roll_no", rollNo)

	marks, err := h.service.GetMarks(c.Request.Context(), rollNo)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, marks)
}

// FindStudent returns the roster entry of a roll number, with every course it appears in
func (h *StudentHandler) FindStudent(c *gin.Context) {
	entry, err := h.service.FindStudent(c.Request.Context(), c.Param("roll_no"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, entry)
}

// ListGradesheets lists the gradesheets currently in the configured directory
func (h *StudentHandler) ListGradesheets(c *gin.Context) {
	sheets, err := h.service.ListGradesheets(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"gradesheets": sheets,
		"total":       len(sheets),
	})
}
