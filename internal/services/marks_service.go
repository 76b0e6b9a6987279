package services

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/SAP-F-2025/student-portal/internal/cache"
	"github.com/SAP-F-2025/student-portal/internal/gradesheet"
	"github.com/SAP-F-2025/student-portal/internal/identity"
	"github.com/SAP-F-2025/student-portal/internal/models"
)

type marksService struct {
	scanner  *gradesheet.Scanner
	cache    *cache.CacheHelper
	cacheTTL time.Duration
	logger   *slog.Logger
}

// NewMarksService creates the gradesheet-backed marks lookup. A zero
// cacheTTL reads the directory on every call.
func NewMarksService(scanner *gradesheet.Scanner, cacheManager *cache.CacheManager, cacheTTL time.Duration, logger *slog.Logger) MarksService {
	if cacheManager == nil {
		cacheManager = cache.NewCacheManager(nil)
	}
	return &marksService{
		scanner:  scanner,
		cache:    cacheManager.Marks,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// GetMarks collects the student's row from every gradesheet that lists the
// normalized roll number
func (s *marksService) GetMarks(ctx context.Context, rollNo string) (*models.StudentMarksResponse, error) {
	normalized := identity.Normalize(rollNo)
	if normalized == "" {
		return nil, fmt.Errorf("%w: roll number is required", ErrValidationFailed)
	}

	if s.cacheTTL <= 0 || !s.cache.Available() {
		return s.lookup(ctx, normalized)
	}

	var resp models.StudentMarksResponse
	err := s.cache.CacheOrExecute(ctx, normalized, &resp, s.cacheTTL, func() (interface{}, error) {
		return s.lookup(ctx, normalized)
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *marksService) lookup(ctx context.Context, rollNo string) (*models.StudentMarksResponse, error) {
	sheets, err := s.scanner.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load gradesheets: %w", err)
	}

	schema := s.scanner.Schema()
	resp := &models.StudentMarksResponse{
		RollNo:  rollNo,
		Courses: []models.CourseMarks{},
	}

	for _, sheet := range sheets {
		row, ok := schema.FindRow(sheet, rollNo)
		if !ok {
			continue
		}

		name := schema.Name(row)
		if len(resp.Courses) == 0 {
			resp.Name = name
		}
		resp.Courses = append(resp.Courses, models.CourseMarks{
			CourseName:  sheet.Course,
			StudentName: name,
			Marks:       schema.Marks(sheet.Headers, row),
		})
	}

	if len(resp.Courses) == 0 {
		return nil, fmt.Errorf("%w: no marks found for roll number %s", ErrNotFound, rollNo)
	}

	s.logger.DebugContext(ctx, "Marks resolved", "roll_no", rollNo, "courses", len(resp.Courses))
	return resp, nil
}

// FindStudent returns the student as listed in the first gradesheet that
// contains the roll number, with every course they appear in
func (s *marksService) FindStudent(ctx context.Context, rollNo string) (*models.RosterEntry, error) {
	normalized := identity.Normalize(rollNo)
	if normalized == "" {
		return nil, fmt.Errorf("%w: roll number is required", ErrValidationFailed)
	}

	sheets, err := s.scanner.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load gradesheets: %w", err)
	}

	schema := s.scanner.Schema()
	var entry *models.RosterEntry
	for _, sheet := range sheets {
		row, ok := schema.FindRow(sheet, normalized)
		if !ok {
			continue
		}
		if entry == nil {
			entry = &models.RosterEntry{RollNo: normalized, Name: schema.Name(row)}
		}
		entry.Courses = append(entry.Courses, sheet.Course)
	}

	if entry == nil {
		return nil, fmt.Errorf("%w: roll number %s is not in any gradesheet", ErrNotFound, normalized)
	}
	return entry, nil
}

// ListGradesheets describes every gradesheet the scanner would load
func (s *marksService) ListGradesheets(ctx context.Context) ([]models.GradesheetInfo, error) {
	sheets, err := s.scanner.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load gradesheets: %w", err)
	}

	infos := make([]models.GradesheetInfo, 0, len(sheets))
	for _, sheet := range sheets {
		infos = append(infos, models.GradesheetInfo{
			Course:   sheet.Course,
			File:     filepath.Base(sheet.Path),
			Headers:  sheet.Headers,
			Students: len(sheet.Rows),
		})
	}
	return infos, nil
}
