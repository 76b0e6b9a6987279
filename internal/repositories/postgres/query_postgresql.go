package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/student-portal/internal/models"
	"github.com/SAP-F-2025/student-portal/internal/repositories"
)

type queryPostgreSQL struct {
	db *gorm.DB
}

func NewQueryPostgreSQL(db *gorm.DB) repositories.QueryRepository {
	return &queryPostgreSQL{db: db}
}

func (r *queryPostgreSQL) Create(ctx context.Context, query *models.Query) error {
	if err := r.db.WithContext(ctx).Create(query).Error; err != nil {
		return handleDBError(err, "create query")
	}
	return nil
}

func (r *queryPostgreSQL) GetByID(ctx context.Context, id string) (*models.Query, error) {
	var query models.Query
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&query).Error; err != nil {
		return nil, handleDBError(err, "get query by id")
	}
	return &query, nil
}

// Update writes every column, including cleared nullable ones
func (r *queryPostgreSQL) Update(ctx context.Context, query *models.Query) error {
	result := r.db.WithContext(ctx).
		Model(&models.Query{}).
		Where("id = ?", query.ID).
		Select("*").
		Updates(query)
	if result.Error != nil {
		return handleDBError(result.Error, "update query")
	}
	if result.RowsAffected == 0 {
		return handleDBError(gorm.ErrRecordNotFound, "update query")
	}
	return nil
}

func (r *queryPostgreSQL) ListByRollNo(ctx context.Context, rollNo string) ([]*models.Query, error) {
	var queries []*models.Query
	if err := r.db.WithContext(ctx).
		Where("roll_no = ?", rollNo).
		Order("created_at DESC").
		Find(&queries).Error; err != nil {
		return nil, handleDBError(err, "list queries by roll number")
	}
	return queries, nil
}

func (r *queryPostgreSQL) List(ctx context.Context) ([]*models.Query, error) {
	var queries []*models.Query
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&queries).Error; err != nil {
		return nil, handleDBError(err, "list queries")
	}
	return queries, nil
}
