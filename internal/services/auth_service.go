package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/SAP-F-2025/student-portal/internal/cache"
	"github.com/SAP-F-2025/student-portal/internal/identity"
	"github.com/SAP-F-2025/student-portal/internal/mail"
	"github.com/SAP-F-2025/student-portal/internal/models"
	"github.com/SAP-F-2025/student-portal/internal/repositories"
	"github.com/SAP-F-2025/student-portal/internal/validator"
)

// AuthConfig carries the settings of the sign-in and reset flows
type AuthConfig struct {
	AdminEmail    string
	ResetTokenTTL time.Duration
	ResetBaseURL  string
}

type authService struct {
	repo      repositories.Repository
	identity  repositories.IdentityProvider
	deriver   *identity.Deriver
	resets    *cache.CacheHelper
	mailer    mail.Mailer
	activity  ActivityService
	validator *validator.Validator
	config    AuthConfig
	logger    *slog.Logger
}

func NewAuthService(
	repo repositories.Repository,
	identityProvider repositories.IdentityProvider,
	deriver *identity.Deriver,
	cacheManager *cache.CacheManager,
	mailer mail.Mailer,
	activity ActivityService,
	validator *validator.Validator,
	config AuthConfig,
	logger *slog.Logger,
) AuthService {
	if cacheManager == nil {
		cacheManager = cache.NewCacheManager(nil)
	}
	if config.ResetTokenTTL <= 0 {
		config.ResetTokenTTL = cache.ResetCacheConfig.TTL
	}
	config.AdminEmail = strings.ToLower(strings.TrimSpace(config.AdminEmail))
	config.ResetBaseURL = strings.TrimRight(config.ResetBaseURL, "/")

	return &authService{
		repo:      repo,
		identity:  identityProvider,
		deriver:   deriver,
		resets:    cacheManager.Reset,
		mailer:    mailer,
		activity:  activity,
		validator: validator,
		config:    config,
		logger:    logger,
	}
}

// IsAdminEmail reports whether email belongs to the configured administrator
func (s *authService) IsAdminEmail(email string) bool {
	return s.config.AdminEmail != "" && strings.EqualFold(strings.TrimSpace(email), s.config.AdminEmail)
}

// SignIn authenticates either the administrator (identifier is an email) or
// a student (identifier is a roll number in any spelling)
func (s *authService) SignIn(ctx context.Context, req *models.LoginRequest, userAgent string) (*models.LoginResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, validationError(err)
	}

	identifier := strings.TrimSpace(req.Identifier)
	if strings.Contains(identifier, "@") {
		return s.signInAdmin(ctx, identifier, req.Password, userAgent)
	}

	rollNo := identity.Normalize(identifier)
	if !identity.Valid(rollNo) {
		return nil, validationError(validator.ValidationErrors{{
			Field:   "identifier",
			Message: "must be a roll number such as 22F-3277 or the administrator email",
			Rule:    "rollno",
		}})
	}
	email := s.deriver.ToEmail(rollNo)

	token, err := s.authenticate(ctx, email, req.Password)
	if err != nil {
		return nil, err
	}

	student, err := s.repo.Student().GetByRollNo(ctx, rollNo)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: student record for %s not found, please contact administrator", ErrNotFound, rollNo)
		}
		return nil, storeError("load student record", err)
	}

	s.record(ctx, models.ActivityLogin, student.RollNo, student.Name, student.Email, userAgent)
	s.logger.InfoContext(ctx, "Student signed in", "roll_no", rollNo)

	return &models.LoginResponse{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		ExpiresAt:   token.ExpiresAt,
		Role:        models.RoleStudent,
		Student:     student,
	}, nil
}

func (s *authService) signInAdmin(ctx context.Context, email, password, userAgent string) (*models.LoginResponse, error) {
	if !s.IsAdminEmail(email) {
		return nil, fmt.Errorf("%w: access denied, admin only", ErrForbidden)
	}

	token, err := s.authenticate(ctx, strings.ToLower(email), password)
	if err != nil {
		return nil, err
	}

	s.record(ctx, models.ActivityLogin, "", "Administrator", s.config.AdminEmail, userAgent)
	s.logger.InfoContext(ctx, "Administrator signed in")

	return &models.LoginResponse{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		ExpiresAt:   token.ExpiresAt,
		Role:        models.RoleAdmin,
	}, nil
}

func (s *authService) authenticate(ctx context.Context, email, password string) (*models.AuthToken, error) {
	token, err := s.identity.Authenticate(ctx, email, password)
	if err != nil {
		if errors.Is(err, repositories.ErrInvalidCredentials) {
			return nil, ErrInvalidCredentials
		}
		return nil, upstream("authenticate", err)
	}
	return token, nil
}

// SignUp is closed; accounts are only created by bulk registration
func (s *authService) SignUp(ctx context.Context) error {
	return fmt.Errorf("%w: accounts are created by the administrator", ErrSignUpDisabled)
}

// Logout records the sign-out. It never fails.
func (s *authService) Logout(ctx context.Context, user *models.User, userAgent string) error {
	if user == nil {
		return nil
	}
	s.record(ctx, models.ActivityLogout, user.RollNo, user.FullName, user.Email, userAgent)
	return nil
}

// ChangePassword re-authenticates with the current password before setting
// the new one
func (s *authService) ChangePassword(ctx context.Context, user *models.User, req *models.ChangePasswordRequest, userAgent string) error {
	if err := s.validator.Validate(req); err != nil {
		return validationError(err)
	}
	if user == nil || user.RollNo == "" {
		return fmt.Errorf("%w: password change is for student accounts", ErrForbidden)
	}

	rollNo := identity.Normalize(user.RollNo)
	email := s.deriver.ToEmail(rollNo)

	if _, err := s.authenticate(ctx, email, req.CurrentPassword); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return fmt.Errorf("%w: current password is incorrect", ErrInvalidCredentials)
		}
		return err
	}

	if err := s.identity.ChangePassword(ctx, email, req.CurrentPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, repositories.ErrInvalidCredentials):
			return fmt.Errorf("%w: current password is incorrect", ErrInvalidCredentials)
		case errors.Is(err, repositories.ErrNotFound):
			return fmt.Errorf("%w: account not found", ErrNotFound)
		default:
			return upstream("change password", err)
		}
	}

	s.record(ctx, models.ActivityPasswordChange, rollNo, user.FullName, email, userAgent)
	s.logger.InfoContext(ctx, "Password changed", "roll_no", rollNo)
	return nil
}

// RequestPasswordReset issues a single-use reset token and mails the link
// to the student's institutional address
func (s *authService) RequestPasswordReset(ctx context.Context, req *models.PasswordResetRequest) (*models.PasswordResetResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, validationError(err)
	}

	rollNo := identity.Normalize(req.RollNo)
	student, err := s.repo.Student().GetByRollNo(ctx, rollNo)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: no account found with roll number %s", ErrNotFound, rollNo)
		}
		return nil, storeError("load student record", err)
	}

	email := student.Email
	if email == "" {
		email = s.deriver.ToEmail(rollNo)
	}

	token := uuid.New().String()
	if err := s.resets.SetString(ctx, token, rollNo, s.config.ResetTokenTTL); err != nil {
		return nil, upstream("store reset token", err)
	}

	link := s.config.ResetBaseURL + "/reset-password?token=" + token
	msg, err := mail.PasswordResetMessage(email, student.Name, rollNo, link, s.config.ResetTokenTTL)
	if err != nil {
		cache.SafeDelete(ctx, s.resets, token)
		return nil, err
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		cache.SafeDelete(ctx, s.resets, token)
		return nil, upstream("send reset email", err)
	}

	s.logger.InfoContext(ctx, "Password reset link sent", "roll_no", rollNo)

	return &models.PasswordResetResponse{
		Message: fmt.Sprintf("A password reset link has been sent to %s. Please check your email.", email),
		Email:   email,
	}, nil
}

// ConfirmPasswordReset consumes a reset token and sets the new password
func (s *authService) ConfirmPasswordReset(ctx context.Context, req *models.PasswordResetConfirmRequest, userAgent string) error {
	if err := s.validator.Validate(req); err != nil {
		return validationError(err)
	}

	rollNo, err := s.resets.TakeString(ctx, req.Token)
	if err != nil {
		if errors.Is(err, cache.ErrCacheNotFound) {
			return fmt.Errorf("%w: reset link is invalid or has expired", ErrValidationFailed)
		}
		return upstream("read reset token", err)
	}

	student, err := s.repo.Student().GetByRollNo(ctx, rollNo)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("%w: no account found with roll number %s", ErrNotFound, rollNo)
		}
		return storeError("load student record", err)
	}

	if err := s.identity.ResetPassword(ctx, student.Email, req.NewPassword); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("%w: account not found", ErrNotFound)
		}
		return upstream("reset password", err)
	}

	s.record(ctx, models.ActivityPasswordReset, student.RollNo, student.Name, student.Email, userAgent)
	s.logger.InfoContext(ctx, "Password reset completed", "roll_no", rollNo)
	return nil
}

func (s *authService) record(ctx context.Context, activityType models.ActivityType, rollNo, name, email, userAgent string) {
	if s.activity == nil {
		return
	}
	_ = s.activity.Record(ctx, &models.ActivityLog{
		RollNo:       rollNo,
		Name:         name,
		Email:        email,
		ActivityType: activityType,
		UserAgent:    userAgent,
	})
}
