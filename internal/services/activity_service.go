package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/SAP-F-2025/student-portal/internal/models"
	"github.com/SAP-F-2025/student-portal/internal/repositories"
)

const (
	DefaultActivityLimit = 100
	MaxActivityLimit     = 1000

	unknownValue = "Unknown"
)

type activityService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewActivityService(repo repositories.Repository, logger *slog.Logger) ActivityService {
	return &activityService{
		repo:   repo,
		logger: logger,
	}
}

// Record appends an audit entry. Callers on the sign-in and sign-out paths
// ignore the returned error.
func (s *activityService) Record(ctx context.Context, entry *models.ActivityLog) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	entry.Name = orUnknown(entry.Name)
	entry.Email = orUnknown(entry.Email)
	entry.UserAgent = orUnknown(entry.UserAgent)

	if err := s.repo.Activity().Create(ctx, entry); err != nil {
		s.logger.WarnContext(ctx, "Failed to record activity",
			"activity_type", entry.ActivityType,
			"roll_no", entry.RollNo,
			"error", err)
		return storeError("record activity", err)
	}
	return nil
}

// List returns the newest entries. A non-positive limit means the default;
// larger limits are capped.
func (s *activityService) List(ctx context.Context, limit int) ([]*models.ActivityLog, error) {
	if limit <= 0 {
		limit = DefaultActivityLimit
	}
	if limit > MaxActivityLimit {
		limit = MaxActivityLimit
	}

	logs, err := s.repo.Activity().List(ctx, limit)
	if err != nil {
		return nil, storeError("list activity logs", err)
	}
	return logs, nil
}

func orUnknown(v string) string {
	if v == "" {
		return unknownValue
	}
	return v
}
