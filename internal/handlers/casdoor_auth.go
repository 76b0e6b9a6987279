package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/student-portal/internal/identity"
	"github.com/SAP-F-2025/student-portal/internal/models"
	"github.com/SAP-F-2025/student-portal/internal/repositories"
	"github.com/SAP-F-2025/student-portal/internal/utils"
)

// CasdoorAuthMiddleware authenticates bearer tokens issued by the identity
// provider and assigns the portal role
type CasdoorAuthMiddleware struct {
	identity repositories.IdentityProvider
	isAdmin  func(email string) bool
	logger   utils.Logger
}

// NewCasdoorAuthMiddleware builds the middleware. isAdmin decides which
// verified emails carry the admin role.
func NewCasdoorAuthMiddleware(identityProvider repositories.IdentityProvider, isAdmin func(email string) bool, logger utils.Logger) *CasdoorAuthMiddleware {
	return &CasdoorAuthMiddleware{
		identity: identityProvider,
		isAdmin:  isAdmin,
		logger:   logger,
	}
}

// AuthMiddleware rejects requests without a valid bearer token
func (cam *CasdoorAuthMiddleware) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "authorization header missing")
			return
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" || tokenParts[1] == "" {
			abortUnauthorized(c, "invalid authorization header format")
			return
		}

		user, err := cam.identity.VerifyToken(c.Request.Context(), tokenParts[1])
		if err != nil {
			if !errors.Is(err, repositories.ErrInvalidToken) {
				utils.LoggerFromContext(c.Request.Context(), cam.logger).Warn("Token verification failed", "error", err)
			}
			abortUnauthorized(c, "invalid or expired token")
			return
		}

		cam.assignRole(user)

		c.Set("user_id", user.ID)
		c.Set("user", user)
		c.Set("user_role", user.Role)
		c.Set("user_email", user.Email)

		c.Next()
	}
}

// RequireRoleMiddleware checks if user has required role. Admin passes every check.
func (cam *CasdoorAuthMiddleware) RequireRoleMiddleware(requiredRoles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, err := GetUserRoleFromContext(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
				Error:   ErrCodeForbidden,
				Message: "user role not found in context",
			})
			return
		}

		for _, requiredRole := range requiredRoles {
			if role == requiredRole || role == models.RoleAdmin {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
			Error:   ErrCodeForbidden,
			Message: fmt.Sprintf("insufficient permissions, required role: %v", requiredRoles),
		})
	}
}

// assignRole maps the verified principal to admin or student. Student roll
// numbers are kept in canonical form.
func (cam *CasdoorAuthMiddleware) assignRole(user *models.User) {
	if cam.isAdmin != nil && cam.isAdmin(user.Email) {
		user.Role = models.RoleAdmin
		return
	}
	user.Role = models.RoleStudent
	if user.RollNo != "" {
		user.RollNo = identity.Normalize(user.RollNo)
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
		Error:   ErrCodeUnauthorized,
		Message: message,
	})
}

// GetUserFromContext extracts user from Gin context
func GetUserFromContext(c *gin.Context) (*models.User, error) {
	user, exists := c.Get("user")
	if !exists {
		return nil, fmt.Errorf("user not found in context")
	}

	userModel, ok := user.(*models.User)
	if !ok {
		return nil, fmt.Errorf("invalid user type in context")
	}

	return userModel, nil
}

// GetUserIDFromContext extracts user ID from Gin context
func GetUserIDFromContext(c *gin.Context) (string, error) {
	userID, exists := c.Get("user_id")
	if !exists {
		return "", fmt.Errorf("user ID not found in context")
	}

	id, ok := userID.(string)
	if !ok {
		return "", fmt.Errorf("invalid user ID type in context")
	}

	return id, nil
}

// GetUserRoleFromContext extracts user role from Gin context
func GetUserRoleFromContext(c *gin.Context) (models.UserRole, error) {
	userRole, exists := c.Get("user_role")
	if !exists {
		return "", fmt.Errorf("user role not found in context")
	}

	role, ok := userRole.(models.UserRole)
	if !ok {
		return "", fmt.Errorf("invalid user role type in context")
	}

	return role, nil
}
