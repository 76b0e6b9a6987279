package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/SAP-F-2025/student-portal/internal/models"
	"github.com/SAP-F-2025/student-portal/internal/repositories"
)

type studentMongo struct {
	col *mongo.Collection
}

func NewStudentMongo(db *mongo.Database) repositories.StudentRepository {
	return &studentMongo{col: db.Collection(StudentsCollection)}
}

func (r *studentMongo) GetByRollNo(ctx context.Context, rollNo string) (*models.Student, error) {
	var student models.Student
	if err := r.col.FindOne(ctx, bson.M{"_id": rollNo}).Decode(&student); err != nil {
		return nil, handleMongoError(err, "get student by roll number")
	}
	return &student, nil
}

func (r *studentMongo) Create(ctx context.Context, student *models.Student) error {
	if _, err := r.col.InsertOne(ctx, student); err != nil {
		return handleMongoError(err, "create student")
	}
	return nil
}

func (r *studentMongo) List(ctx context.Context) ([]*models.Student, error) {
	cursor, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, handleMongoError(err, "list students")
	}
	defer cursor.Close(ctx)

	students := []*models.Student{}
	if err := cursor.All(ctx, &students); err != nil {
		return nil, handleMongoError(err, "decode students")
	}
	return students, nil
}

func (r *studentMongo) Count(ctx context.Context) (int64, error) {
	count, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, handleMongoError(err, "count students")
	}
	return count, nil
}
