package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SAP-F-2025/student-portal/internal/cache"
	"github.com/SAP-F-2025/student-portal/internal/events"
	"github.com/SAP-F-2025/student-portal/internal/gradesheet"
	"github.com/SAP-F-2025/student-portal/internal/identity"
	"github.com/SAP-F-2025/student-portal/internal/mail"
	"github.com/SAP-F-2025/student-portal/internal/repositories"
	"github.com/SAP-F-2025/student-portal/internal/validator"
)

// ServiceManagerConfig holds the portal settings shared by the services
type ServiceManagerConfig struct {
	AdminEmail     string
	PasswordLength int
	ResetTokenTTL  time.Duration
	ResetBaseURL   string
	MarksCacheTTL  time.Duration
}

// Dependencies are the collaborators every service is built from
type Dependencies struct {
	Repo      repositories.RepositoryManager
	Identity  repositories.IdentityProvider
	Scanner   *gradesheet.Scanner
	Deriver   *identity.Deriver
	Cache     *cache.CacheManager
	Publisher events.EventPublisher
	Mailer    mail.Mailer
	Validator *validator.Validator
	Logger    *slog.Logger
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	deps   Dependencies
	config ServiceManagerConfig

	marksService        MarksService
	registrationService RegistrationService
	authService         AuthService
	queryService        QueryService
	activityService     ActivityService
	exportService       ExportService

	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(deps Dependencies, config ServiceManagerConfig) ServiceManager {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Cache == nil {
		deps.Cache = cache.NewCacheManager(nil)
	}
	if deps.Validator == nil {
		deps.Validator = validator.New()
	}
	return &serviceManager{
		deps:   deps,
		config: config,
	}
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	if sm.deps.Repo == nil || sm.deps.Repo.GetRepository() == nil {
		return fmt.Errorf("repository manager is not initialized")
	}
	if sm.deps.Identity == nil {
		return fmt.Errorf("identity provider is required")
	}
	if sm.deps.Scanner == nil || sm.deps.Deriver == nil {
		return fmt.Errorf("gradesheet scanner and identity deriver are required")
	}
	if sm.deps.Mailer == nil {
		sm.deps.Mailer = mail.NewConsoleMailer(sm.deps.Logger)
	}

	sm.deps.Logger.Info("Initializing service manager")

	repo := sm.deps.Repo.GetRepository()
	logger := sm.deps.Logger

	sm.activityService = NewActivityService(repo, logger)
	sm.marksService = NewMarksService(sm.deps.Scanner, sm.deps.Cache, sm.config.MarksCacheTTL, logger)
	sm.registrationService = NewRegistrationService(repo, sm.deps.Identity, sm.deps.Scanner, sm.deps.Deriver,
		sm.deps.Cache, sm.deps.Publisher, sm.config.PasswordLength, logger)
	sm.authService = NewAuthService(repo, sm.deps.Identity, sm.deps.Deriver, sm.deps.Cache, sm.deps.Mailer,
		sm.activityService, sm.deps.Validator, AuthConfig{
			AdminEmail:    sm.config.AdminEmail,
			ResetTokenTTL: sm.config.ResetTokenTTL,
			ResetBaseURL:  sm.config.ResetBaseURL,
		}, logger)
	sm.queryService = NewQueryService(repo, sm.activityService, sm.deps.Publisher, sm.deps.Validator, logger)
	sm.exportService = NewExportService(repo, logger)

	sm.initialized = true
	sm.deps.Logger.Info("Service manager initialized successfully")

	return nil
}

func (sm *serviceManager) mustBeReady(name string) {
	if !sm.initialized {
		panic("service manager not initialized")
	}
	if sm.shutdown {
		panic(name + " service requested after shutdown")
	}
}

func (sm *serviceManager) Marks() MarksService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeReady("marks")
	return sm.marksService
}

func (sm *serviceManager) Registration() RegistrationService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeReady("registration")
	return sm.registrationService
}

func (sm *serviceManager) Auth() AuthService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeReady("auth")
	return sm.authService
}

func (sm *serviceManager) Query() QueryService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeReady("query")
	return sm.queryService
}

func (sm *serviceManager) Activity() ActivityService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeReady("activity")
	return sm.activityService
}

func (sm *serviceManager) Export() ExportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeReady("export")
	return sm.exportService
}

// HealthCheck reports the repository state. Redis is optional, so a cache
// failure is only logged.
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}
	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.deps.Repo.HealthCheck(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	if err := sm.deps.Cache.HealthCheck(ctx); err != nil {
		sm.deps.Logger.DebugContext(ctx, "Cache unavailable", "error", err)
	}

	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.deps.Logger.Info("Shutting down service manager")

	if sm.deps.Publisher != nil {
		if err := sm.deps.Publisher.Close(); err != nil {
			sm.deps.Logger.Error("Failed to close event publisher", "error", err)
		}
	}

	if err := sm.deps.Repo.Shutdown(ctx); err != nil {
		sm.deps.Logger.Error("Failed to shutdown repository manager", "error", err)
	}

	sm.shutdown = true
	sm.deps.Logger.Info("Service manager shut down completed")

	return nil
}
