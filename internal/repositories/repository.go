package repositories

import "context"

// Repository aggregates the document-store repositories
type Repository interface {
	Student() StudentRepository
	Query() QueryRepository
	Activity() ActivityRepository

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager manages repository lifecycle
type RepositoryManager interface {
	// Initialize verifies connections and builds the repository
	Initialize() error

	GetRepository() Repository

	HealthCheck(ctx context.Context) error

	// Graceful shutdown
	Shutdown(ctx context.Context) error
}
