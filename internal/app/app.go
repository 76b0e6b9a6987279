package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/SAP-F-2025/student-portal/internal/cache"
	"github.com/SAP-F-2025/student-portal/internal/config"
	"github.com/SAP-F-2025/student-portal/internal/events"
	"github.com/SAP-F-2025/student-portal/internal/gradesheet"
	"github.com/SAP-F-2025/student-portal/internal/identity"
	"github.com/SAP-F-2025/student-portal/internal/mail"
	"github.com/SAP-F-2025/student-portal/internal/repositories"
	"github.com/SAP-F-2025/student-portal/internal/repositories/casdoor"
	"github.com/SAP-F-2025/student-portal/internal/repositories/mongodb"
	"github.com/SAP-F-2025/student-portal/internal/repositories/postgres"
	"github.com/SAP-F-2025/student-portal/internal/services"
	"github.com/SAP-F-2025/student-portal/internal/validator"
	"github.com/SAP-F-2025/student-portal/pkg"
)

// App holds the process-wide collaborators shared by the API server and the
// admin CLI
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Redis    *redis.Client
	Cache    *cache.CacheManager
	Identity repositories.IdentityProvider
	Services services.ServiceManager
}

// NewLogger builds the JSON logger used by every entry point
func NewLogger(cfg *config.Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
}

// New connects to the configured stores and initializes all services
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		// Redis only backs optional features
		logger.Warn("Failed to initialize Redis, continuing without it", "error", err)
		redisClient = nil
	}
	cacheManager := cache.NewCacheManager(redisClient)

	repoManager, err := newRepositoryManager(cfg)
	if err != nil {
		closeRedis(redisClient)
		return nil, err
	}
	if err := repoManager.Initialize(); err != nil {
		closeRedis(redisClient)
		return nil, fmt.Errorf("failed to initialize repositories: %w", err)
	}

	publisher, err := newPublisher(cfg, logger)
	if err != nil {
		_ = repoManager.Shutdown(ctx)
		closeRedis(redisClient)
		return nil, err
	}

	identityProvider := casdoor.NewIdentityCasdoor(casdoor.CasdoorConfig{
		Endpoint:         cfg.Casdoor.Endpoint,
		ClientID:         cfg.Casdoor.ClientID,
		ClientSecret:     cfg.Casdoor.ClientSecret,
		Certificate:      cfg.Casdoor.Cert,
		OrganizationName: cfg.Casdoor.Organization,
		ApplicationName:  cfg.Casdoor.Application,
	}, cacheManager)

	scanner := gradesheet.NewScanner(cfg.Portal.GradesheetDir, cfg.Portal.GradesheetExtensions, gradesheet.Schema{
		SerialHeader: cfg.Portal.SerialHeader,
		RollNoHeader: cfg.Portal.RollNoHeader,
		NameHeader:   cfg.Portal.NameHeader,
	}, logger)

	serviceManager := services.NewServiceManager(services.Dependencies{
		Repo:      repoManager,
		Identity:  identityProvider,
		Scanner:   scanner,
		Deriver:   identity.NewDeriver(cfg.Portal.InstitutionDomain),
		Cache:     cacheManager,
		Publisher: publisher,
		Mailer:    newMailer(cfg, logger),
		Validator: validator.New(),
		Logger:    logger,
	}, services.ServiceManagerConfig{
		AdminEmail:     cfg.Portal.AdminEmail,
		PasswordLength: cfg.Portal.PasswordLength,
		ResetTokenTTL:  cfg.Portal.ResetTokenTTL,
		ResetBaseURL:   cfg.Portal.BaseURL,
		MarksCacheTTL:  cfg.Portal.MarksCacheTTL,
	})
	if err := serviceManager.Initialize(ctx); err != nil {
		_ = publisher.Close()
		_ = repoManager.Shutdown(ctx)
		closeRedis(redisClient)
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return &App{
		Config:   cfg,
		Logger:   logger,
		Redis:    redisClient,
		Cache:    cacheManager,
		Identity: identityProvider,
		Services: serviceManager,
	}, nil
}

// LoginLimiter guards the public sign-in and reset endpoints
func (a *App) LoginLimiter() *cache.RateLimiter {
	return cache.NewRateLimiter(a.Cache.RateLimit, a.Config.Portal.LoginRateLimit, a.Config.Portal.RateLimitWindow)
}

// Close shuts down services, the publisher, the store and Redis
func (a *App) Close(ctx context.Context) error {
	err := a.Services.Shutdown(ctx)
	closeRedis(a.Redis)
	return err
}

func newRepositoryManager(cfg *config.Config) (repositories.RepositoryManager, error) {
	switch cfg.StoreBackend {
	case config.StoreMongo:
		client, err := pkg.NewMongoClient(cfg)
		if err != nil {
			return nil, err
		}
		return mongodb.NewRepositoryManager(mongodb.RepositoryConfig{
			Client:   client,
			Database: cfg.Mongo.Database,
		}), nil
	default:
		db, err := pkg.InitDatabase(cfg)
		if err != nil {
			return nil, err
		}
		return postgres.NewRepositoryManager(postgres.RepositoryConfig{
			DB:          db,
			AutoMigrate: true,
		}), nil
	}
}

// newPublisher uses Kafka when brokers are configured and an in-process
// channel otherwise
func newPublisher(cfg *config.Config, logger *slog.Logger) (events.EventPublisher, error) {
	if len(cfg.Kafka.Brokers) > 0 {
		publisher, err := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
		}
		return publisher, nil
	}

	publisher, _ := events.NewGoChannelPublisher(cfg.Kafka.Topic, logger)
	return publisher, nil
}

func newMailer(cfg *config.Config, logger *slog.Logger) mail.Mailer {
	if cfg.SendGrid.APIKey == "" {
		logger.Warn("SENDGRID_API_KEY not set, password reset emails are only logged")
		return mail.NewConsoleMailer(logger)
	}
	return mail.NewSendGridMailer(cfg.SendGrid.APIKey, cfg.SendGrid.FromName, cfg.SendGrid.FromEmail, logger)
}

func closeRedis(client *redis.Client) {
	if client != nil {
		_ = client.Close()
	}
}
