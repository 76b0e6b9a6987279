package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/SAP-F-2025/student-portal/internal/events"
	"github.com/SAP-F-2025/student-portal/internal/identity"
	"github.com/SAP-F-2025/student-portal/internal/models"
	"github.com/SAP-F-2025/student-portal/internal/repositories"
	"github.com/SAP-F-2025/student-portal/internal/validator"
)

type queryService struct {
	repo      repositories.Repository
	activity  ActivityService
	publisher events.EventPublisher
	validator *validator.Validator
	logger    *slog.Logger
}

func NewQueryService(repo repositories.Repository, activity ActivityService, publisher events.EventPublisher, validator *validator.Validator, logger *slog.Logger) QueryService {
	return &queryService{
		repo:      repo,
		activity:  activity,
		publisher: publisher,
		validator: validator,
		logger:    logger,
	}
}

// Submit opens a new query. Missing name, email or courses are filled from
// the student's registration record when one exists.
func (s *queryService) Submit(ctx context.Context, req *models.SubmitQueryRequest, userAgent string) (*models.Query, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, validationError(err)
	}

	rollNo := identity.Normalize(req.RollNo)
	name, email, courses := req.Name, req.Email, req.Courses

	if name == "" || email == "" || len(courses) == 0 {
		if student, err := s.repo.Student().GetByRollNo(ctx, rollNo); err == nil {
			if name == "" {
				name = student.Name
			}
			if email == "" {
				email = student.Email
			}
			if len(courses) == 0 {
				courses = student.Courses
			}
		}
	}
	if len(courses) == 0 {
		courses = []string{unknownValue}
	}

	now := time.Now().UTC()
	query := &models.Query{
		ID:        uuid.New().String(),
		RollNo:    rollNo,
		Name:      name,
		Email:     email,
		Courses:   courses,
		Subject:   strings.TrimSpace(req.Subject),
		Message:   req.Message,
		Status:    models.QueryStatusOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Query().Create(ctx, query); err != nil {
		return nil, storeError("submit query", err)
	}

	s.record(ctx, models.ActivityQuerySubmit, query, userAgent)
	events.SafePublish(ctx, s.publisher, s.logger, events.NewEvent(events.QuerySubmitted, queryEvent(query)))

	s.logger.InfoContext(ctx, "Query submitted", "query_id", query.ID, "roll_no", rollNo)
	return query, nil
}

func (s *queryService) ListForStudent(ctx context.Context, rollNo string) ([]*models.Query, error) {
	normalized := identity.Normalize(rollNo)
	if normalized == "" {
		return nil, fmt.Errorf("%w: roll number is required", ErrValidationFailed)
	}

	queries, err := s.repo.Query().ListByRollNo(ctx, normalized)
	if err != nil {
		return nil, storeError("list queries", err)
	}
	return queries, nil
}

func (s *queryService) ListAll(ctx context.Context) ([]*models.Query, error) {
	queries, err := s.repo.Query().List(ctx)
	if err != nil {
		return nil, storeError("list queries", err)
	}
	return queries, nil
}

// Update applies the administrator's changes. Setting a non-empty response
// flags it unread for the student.
func (s *queryService) Update(ctx context.Context, id string, req *models.UpdateQueryRequest, userAgent string) (*models.Query, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: query id is required", ErrValidationFailed)
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, validationError(err)
	}

	query, err := s.getQuery(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Status != nil {
		query.Status = *req.Status
	}

	responded := false
	if req.AdminResponse != nil {
		query.AdminResponse = req.AdminResponse
		if *req.AdminResponse != "" {
			query.HasUnreadResponse = true
			query.ResponseReadAt = nil
			responded = true
		}
	}
	if req.AdminComment != nil {
		query.AdminComment = req.AdminComment
	}
	query.UpdatedAt = time.Now().UTC()

	if err := s.repo.Query().Update(ctx, query); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: query %s", ErrNotFound, id)
		}
		return nil, storeError("update query", err)
	}

	if responded {
		s.record(ctx, models.ActivityQueryResponse, query, userAgent)
		events.SafePublish(ctx, s.publisher, s.logger, events.NewEvent(events.QueryResponded, queryEvent(query)))
	}

	s.logger.InfoContext(ctx, "Query updated", "query_id", id, "status", query.Status)
	return query, nil
}

// MarkRead clears the unread flag. Students may only mark their own queries.
func (s *queryService) MarkRead(ctx context.Context, id string, user *models.User) (*models.Query, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: query id is required", ErrValidationFailed)
	}

	query, err := s.getQuery(ctx, id)
	if err != nil {
		return nil, err
	}

	if !user.IsAdmin() && (user == nil || identity.Normalize(user.RollNo) != query.RollNo) {
		return nil, fmt.Errorf("%w: query belongs to another student", ErrForbidden)
	}

	now := time.Now().UTC()
	query.HasUnreadResponse = false
	query.ResponseReadAt = &now

	if err := s.repo.Query().Update(ctx, query); err != nil {
		return nil, storeError("mark query read", err)
	}
	return query, nil
}

func (s *queryService) getQuery(ctx context.Context, id string) (*models.Query, error) {
	query, err := s.repo.Query().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: query %s", ErrNotFound, id)
		}
		return nil, storeError("get query", err)
	}
	return query, nil
}

func (s *queryService) record(ctx context.Context, activityType models.ActivityType, query *models.Query, userAgent string) {
	if s.activity == nil {
		return
	}
	_ = s.activity.Record(ctx, &models.ActivityLog{
		RollNo:       query.RollNo,
		Name:         query.Name,
		Email:        query.Email,
		ActivityType: activityType,
		UserAgent:    userAgent,
	})
}

func queryEvent(q *models.Query) events.QueryEvent {
	return events.QueryEvent{
		QueryID: q.ID,
		RollNo:  q.RollNo,
		Subject: q.Subject,
		Status:  string(q.Status),
	}
}
