package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/SAP-F-2025/student-portal/internal/models"
	"github.com/SAP-F-2025/student-portal/internal/repositories"
)

type activityMongo struct {
	col *mongo.Collection
}

func NewActivityMongo(db *mongo.Database) repositories.ActivityRepository {
	return &activityMongo{col: db.Collection(ActivityCollection)}
}

func (r *activityMongo) Create(ctx context.Context, entry *models.ActivityLog) error {
	if _, err := r.col.InsertOne(ctx, entry); err != nil {
		return handleMongoError(err, "create activity log")
	}
	return nil
}

func (r *activityMongo) List(ctx context.Context, limit int) ([]*models.ActivityLog, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, handleMongoError(err, "list activity logs")
	}
	defer cursor.Close(ctx)

	entries := []*models.ActivityLog{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, handleMongoError(err, "decode activity logs")
	}
	return entries, nil
}
