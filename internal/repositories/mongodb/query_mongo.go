package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/SAP-F-2025/student-portal/internal/models"
	"github.com/SAP-F-2025/student-portal/internal/repositories"
)

type queryMongo struct {
	col *mongo.Collection
}

func NewQueryMongo(db *mongo.Database) repositories.QueryRepository {
	return &queryMongo{col: db.Collection(QueriesCollection)}
}

func (r *queryMongo) Create(ctx context.Context, query *models.Query) error {
	if _, err := r.col.InsertOne(ctx, query); err != nil {
		return handleMongoError(err, "create query")
	}
	return nil
}

func (r *queryMongo) GetByID(ctx context.Context, id string) (*models.Query, error) {
	var query models.Query
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&query); err != nil {
		return nil, handleMongoError(err, "get query by id")
	}
	return &query, nil
}

func (r *queryMongo) Update(ctx context.Context, query *models.Query) error {
	result, err := r.col.ReplaceOne(ctx, bson.M{"_id": query.ID}, query)
	if err != nil {
		return handleMongoError(err, "update query")
	}
	if result.MatchedCount == 0 {
		return handleMongoError(mongo.ErrNoDocuments, "update query")
	}
	return nil
}

func (r *queryMongo) ListByRollNo(ctx context.Context, rollNo string) ([]*models.Query, error) {
	return r.find(ctx, bson.M{"roll_no": rollNo}, "list queries by roll number")
}

func (r *queryMongo) List(ctx context.Context) ([]*models.Query, error) {
	return r.find(ctx, bson.M{}, "list queries")
}

func (r *queryMongo) find(ctx context.Context, filter bson.M, operation string) ([]*models.Query, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, handleMongoError(err, operation)
	}
	defer cursor.Close(ctx)

	queries := []*models.Query{}
	if err := cursor.All(ctx, &queries); err != nil {
		return nil, handleMongoError(err, operation)
	}
	return queries, nil
}
