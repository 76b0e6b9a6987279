package services

import (
	"context"

	"github.com/SAP-F-2025/student-portal/internal/models"
)

// MarksService resolves a student's marks from the gradesheet directory
type MarksService interface {
	GetMarks(ctx context.Context, rollNo string) (*models.StudentMarksResponse, error)
	FindStudent(ctx context.Context, rollNo string) (*models.RosterEntry, error)
	ListGradesheets(ctx context.Context) ([]models.GradesheetInfo, error)
}

// RegistrationService reconciles gradesheet rosters with registered students
type RegistrationService interface {
	ReconcileAndRegister(ctx context.Context, registeredBy string) (*models.RegistrationResult, error)
}

type AuthService interface {
	SignIn(ctx context.Context, req *models.LoginRequest, userAgent string) (*models.LoginResponse, error)
	SignUp(ctx context.Context) error
	Logout(ctx context.Context, user *models.User, userAgent string) error
	ChangePassword(ctx context.Context, user *models.User, req *models.ChangePasswordRequest, userAgent string) error
	RequestPasswordReset(ctx context.Context, req *models.PasswordResetRequest) (*models.PasswordResetResponse, error)
	ConfirmPasswordReset(ctx context.Context, req *models.PasswordResetConfirmRequest, userAgent string) error
	IsAdminEmail(email string) bool
}

type QueryService interface {
	Submit(ctx context.Context, req *models.SubmitQueryRequest, userAgent string) (*models.Query, error)
	ListForStudent(ctx context.Context, rollNo string) ([]*models.Query, error)
	ListAll(ctx context.Context) ([]*models.Query, error)
	Update(ctx context.Context, id string, req *models.UpdateQueryRequest, userAgent string) (*models.Query, error)
	MarkRead(ctx context.Context, id string, user *models.User) (*models.Query, error)
}

type ActivityService interface {
	Record(ctx context.Context, entry *models.ActivityLog) error
	List(ctx context.Context, limit int) ([]*models.ActivityLog, error)
}

type ExportService interface {
	ExportCredentials(ctx context.Context, creds []models.ProvisionedCredential, format ExportFormat) (*ExportFile, error)
	ExportAllUsers(ctx context.Context, format ExportFormat) (*ExportFile, error)
}

// ServiceManager owns the lifecycle of every service
type ServiceManager interface {
	Marks() MarksService
	Registration() RegistrationService
	Auth() AuthService
	Query() QueryService
	Activity() ActivityService
	Export() ExportService

	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
