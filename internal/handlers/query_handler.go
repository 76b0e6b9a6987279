package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/student-portal/internal/models"
	"github.com/SAP-F-2025/student-portal/internal/services"
	"github.com/SAP-F-2025/student-portal/internal/utils"
)

type QueryHandler struct {
	BaseHandler
	service services.QueryService
}

func NewQueryHandler(service services.QueryService, logger utils.Logger) *QueryHandler {
	return &QueryHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// ===== STUDENT ENDPOINTS =====

// SubmitQuery opens a support query. Students always submit under their own
// roll number.
// @Summary Submit query
// @Tags queries
// @Accept json
// @Produce json
// @Param query body models.SubmitQueryRequest true "Query"
// @Success 201 {object} models.Query
// @Failure 400 {object} ErrorResponse
// @Router /queries [post]
func (h *QueryHandler) SubmitQuery(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req models.SubmitQueryRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if !user.IsAdmin() {
		if user.RollNo == "" {
			h.respondError(c, http.StatusForbidden, ErrCodeForbidden, "Account is not linked to a roll number", nil)
			return
		}
		req.RollNo = user.RollNo
	}

	h.LogRequest(c, "Submitting query", "roll_no", req.RollNo)

	query, err := h.service.Submit(c.Request.Context(), &req, c.Request.UserAgent())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, query)
}

// ListMyQueries returns the signed-in student's queries, newest first
func (h *QueryHandler) ListMyQueries(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	if user.RollNo == "" {
		h.respondError(c, http.StatusForbidden, ErrCodeForbidden, "Account is not linked to a roll number", nil)
		return
	}

	queries, err := h.service.ListForStudent(c.Request.Context(), user.RollNo)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"queries": queries,
		"total":   len(queries),
	})
}

// MarkResponseRead clears the unread flag of an answered query
func (h *QueryHandler) MarkResponseRead(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	id := c.Param("id")
	h.LogRequest(c, "Marking query response read", "query_id", id)

	query, err := h.service.MarkRead(c.Request.Context(), id, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, query)
}

// ===== ADMIN ENDPOINTS =====

func (h *QueryHandler) ListAllQueries(c *gin.Context) {
	queries, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"queries": queries,
		"total":   len(queries),
	})
}

// UpdateQuery changes status, response or comment of a query
// @Summary Update query
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Query ID"
// @Param update body models.UpdateQueryRequest true "Fields to change"
// @Success 200 {object} models.Query
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/queries/{id} [patch]
func (h *QueryHandler) UpdateQuery(c *gin.Context) {
	id := c.Param("id")

	var req models.UpdateQueryRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Updating query", "query_id", id)

	query, err := h.service.Update(c.Request.Context(), id, &req, c.Request.UserAgent())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, query)
}
