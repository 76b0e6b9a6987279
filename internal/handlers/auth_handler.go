package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/student-portal/internal/models"
	"github.com/SAP-F-2025/student-portal/internal/services"
	"github.com/SAP-F-2025/student-portal/internal/utils"
)

type AuthHandler struct {
	BaseHandler
	service services.AuthService
}

func NewAuthHandler(service services.AuthService, logger utils.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// Login signs in a student (roll number) or the administrator (email)
// @Summary Sign in
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body models.LoginRequest true "Roll number or admin email, and password"
// @Success 200 {object} models.LoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse "Invalid credentials"
// @Failure 403 {object} ErrorResponse "Email login for a non-admin account"
// @Failure 404 {object} ErrorResponse "No student record"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Signing in")

	resp, err := h.service.SignIn(c.Request.Context(), &req, c.Request.UserAgent())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// SignUp is disabled; accounts come from bulk registration only
// @Summary Sign up (disabled)
// @Tags auth
// @Failure 403 {object} ErrorResponse
// @Router /auth/signup [post]
func (h *AuthHandler) SignUp(c *gin.Context) {
	h.handleServiceError(c, h.service.SignUp(c.Request.Context()))
}

func (h *AuthHandler) Logout(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	if err := h.service.Logout(c.Request.Context(), user, c.Request.UserAgent()); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Me returns the authenticated principal
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, user)
}

// ChangePassword changes the signed-in student's password
// @Summary Change password
// @Tags auth
// @Accept json
// @Produce json
// @Param body body models.ChangePasswordRequest true "Current and new password"
// @Success 200 {object} map[string]string
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse "Current password is wrong"
// @Router /auth/change-password [post]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req models.ChangePasswordRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Changing password", "roll_no", user.RollNo)

	if err := h.service.ChangePassword(c.Request.Context(), user, &req, c.Request.UserAgent()); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}

// RequestPasswordReset emails a reset link to the student's derived address
// @Summary Request password reset
// @Tags auth
// @Accept json
// @Produce json
// @Param body body models.PasswordResetRequest true "Roll number"
// @Success 200 {object} models.PasswordResetResponse
// @Failure 404 {object} ErrorResponse "No student record"
// @Failure 502 {object} ErrorResponse "Mail or cache failure"
// @Router /auth/reset-password [post]
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req models.PasswordResetRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Password reset requested", "roll_no", req.RollNo)

	resp, err := h.service.RequestPasswordReset(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) ConfirmPasswordReset(c *gin.Context) {
	var req models.PasswordResetConfirmRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if err := h.service.ConfirmPasswordReset(c.Request.Context(), &req, c.Request.UserAgent()); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password has been reset, you can now sign in"})
}
