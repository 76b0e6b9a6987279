package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/SAP-F-2025/student-portal/internal/repositories"
)

// Collection names
const (
	StudentsCollection = "students"
	QueriesCollection  = "queries"
	ActivityCollection = "activity_logs"
)

// MongoRepository implements the Repository interface on MongoDB
type MongoRepository struct {
	client *mongo.Client
	db     *mongo.Database

	student  repositories.StudentRepository
	query    repositories.QueryRepository
	activity repositories.ActivityRepository
}

func NewMongoRepository(client *mongo.Client, database string) repositories.Repository {
	db := client.Database(database)
	return &MongoRepository{
		client:   client,
		db:       db,
		student:  NewStudentMongo(db),
		query:    NewQueryMongo(db),
		activity: NewActivityMongo(db),
	}
}

func (r *MongoRepository) Student() repositories.StudentRepository {
	return r.student
}

func (r *MongoRepository) Query() repositories.QueryRepository {
	return r.query
}

func (r *MongoRepository) Activity() repositories.ActivityRepository {
	return r.activity
}

func (r *MongoRepository) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongo ping failed: %w", err)
	}
	return nil
}

func (r *MongoRepository) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := r.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect mongo: %w", err)
	}
	return nil
}

// EnsureIndexes creates the lookup and uniqueness indexes
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		StudentsCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		QueriesCollection: {
			{Keys: bson.D{{Key: "roll_no", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
		ActivityCollection: {
			{Keys: bson.D{{Key: "timestamp", Value: -1}}},
		},
	}

	for collection, idx := range indexes {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create indexes on %s: %w", collection, err)
		}
	}
	return nil
}

// RepositoryConfig holds configuration for repository initialization
type RepositoryConfig struct {
	Client   *mongo.Client
	Database string
}

// RepositoryManager implements the RepositoryManager interface
type RepositoryManager struct {
	config RepositoryConfig
	repo   repositories.Repository
}

func NewRepositoryManager(config RepositoryConfig) repositories.RepositoryManager {
	return &RepositoryManager{config: config}
}

func (rm *RepositoryManager) Initialize() error {
	if rm.config.Client == nil {
		return fmt.Errorf("mongo client is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rm.config.Client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongo connection failed: %w", err)
	}

	if err := EnsureIndexes(ctx, rm.config.Client.Database(rm.config.Database)); err != nil {
		return err
	}

	rm.repo = NewMongoRepository(rm.config.Client, rm.config.Database)
	return nil
}

func (rm *RepositoryManager) GetRepository() repositories.Repository {
	return rm.repo
}

func (rm *RepositoryManager) HealthCheck(ctx context.Context) error {
	if rm.repo == nil {
		return fmt.Errorf("repository not initialized")
	}
	return rm.repo.Ping(ctx)
}

func (rm *RepositoryManager) Shutdown(ctx context.Context) error {
	if rm.repo == nil {
		return nil
	}
	return rm.repo.Close()
}
