package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/student-portal/internal/cache"
	"github.com/SAP-F-2025/student-portal/internal/metrics"
	"github.com/SAP-F-2025/student-portal/internal/models"
	"github.com/SAP-F-2025/student-portal/internal/repositories"
	"github.com/SAP-F-2025/student-portal/internal/services"
	"github.com/SAP-F-2025/student-portal/internal/utils"
)

const serviceName = "student-portal"

type HandlerManager struct {
	serviceManager services.ServiceManager
	authHandler    *AuthHandler
	studentHandler *StudentHandler
	queryHandler   *QueryHandler
	adminHandler   *AdminHandler
	authMiddleware *CasdoorAuthMiddleware
	loginLimiter   *cache.RateLimiter
	logger         utils.Logger
}

// NewHandlerManager wires handlers to an initialized service manager.
// loginLimiter guards sign-in and reset requests and may be nil.
func NewHandlerManager(
	serviceManager services.ServiceManager,
	identityProvider repositories.IdentityProvider,
	loginLimiter *cache.RateLimiter,
	logger utils.Logger,
) *HandlerManager {
	auth := serviceManager.Auth()

	return &HandlerManager{
		serviceManager: serviceManager,
		authHandler:    NewAuthHandler(auth, logger),
		studentHandler: NewStudentHandler(serviceManager.Marks(), logger),
		queryHandler:   NewQueryHandler(serviceManager.Query(), logger),
		adminHandler: NewAdminHandler(
			serviceManager.Registration(),
			serviceManager.Activity(),
			serviceManager.Export(),
			logger,
		),
		authMiddleware: NewCasdoorAuthMiddleware(identityProvider, auth.IsAdminEmail, logger),
		loginLimiter:   loginLimiter,
		logger:         logger,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.HealthCheck)
	router.GET("/metrics", metrics.Handler())

	v1 := router.Group("/api/v1")

	requireAuth := hm.authMiddleware.AuthMiddleware()
	studentOnly := hm.authMiddleware.RequireRoleMiddleware(models.RoleStudent)
	adminOnly := hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin)
	rateLimit := RateLimitMiddleware(hm.loginLimiter)

	auth := v1.Group("/auth")
	{
		auth.POST("/login", rateLimit, hm.authHandler.Login)
		auth.POST("/signup", hm.authHandler.SignUp)
		auth.POST("/reset-password", rateLimit, hm.authHandler.RequestPasswordReset)
		auth.POST("/reset-password/confirm", rateLimit, hm.authHandler.ConfirmPasswordReset)

		auth.POST("/logout", requireAuth, hm.authHandler.Logout)
		auth.GET("/me", requireAuth, hm.authHandler.Me)
		auth.POST("/change-password", requireAuth, studentOnly, hm.authHandler.ChangePassword)
	}

	students := v1.Group("/students", requireAuth, studentOnly)
	{
		students.GET("/me/marks", hm.studentHandler.GetMyMarks)
	}

	queries := v1.Group("/queries", requireAuth, studentOnly)
	{
		queries.GET("", hm.queryHandler.ListMyQueries)
		queries.POST("", hm.queryHandler.SubmitQuery)
		queries.POST("/:id/read", hm.queryHandler.MarkResponseRead)
	}

	admin := v1.Group("/admin", requireAuth, adminOnly)
	{
		admin.GET("/queries", hm.queryHandler.ListAllQueries)
		admin.PATCH("/queries/:id", hm.queryHandler.UpdateQuery)

		admin.GET("/activity-logs", hm.adminHandler.ListActivityLogs)

		admin.POST("/register-students", hm.adminHandler.RegisterStudents)
		admin.POST("/export-credentials", hm.adminHandler.ExportCredentials)
		admin.GET("/export-users", hm.adminHandler.ExportAllUsers)

		admin.GET("/gradesheets", hm.studentHandler.ListGradesheets)
		admin.GET("/students/:roll_no", hm.studentHandler.FindStudent)
		admin.GET("/students/:roll_no/marks", hm.studentHandler.GetStudentMarks)
	}
}

// HealthCheck reports liveness and the repository connection
func (hm *HandlerManager) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := hm.serviceManager.HealthCheck(ctx); err != nil {
		utils.LoggerFromContext(c.Request.Context(), hm.logger).Warn("Health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "unhealthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"service":   serviceName,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   serviceName,
	})
}
