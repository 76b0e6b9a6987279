package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/student-portal/internal/models"
	"github.com/SAP-F-2025/student-portal/internal/repositories"
)

type activityPostgreSQL struct {
	db *gorm.DB
}

func NewActivityPostgreSQL(db *gorm.DB) repositories.ActivityRepository {
	return &activityPostgreSQL{db: db}
}

func (r *activityPostgreSQL) Create(ctx context.Context, entry *models.ActivityLog) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return handleDBError(err, "create activity log")
	}
	return nil
}

func (r *activityPostgreSQL) List(ctx context.Context, limit int) ([]*models.ActivityLog, error) {
	var entries []*models.ActivityLog
	if err := r.db.WithContext(ctx).
		Order("timestamp DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, handleDBError(err, "list activity logs")
	}
	return entries, nil
}
