package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/student-portal/internal/cache"
	"github.com/SAP-F-2025/student-portal/internal/events"
	"github.com/SAP-F-2025/student-portal/internal/gradesheet"
	"github.com/SAP-F-2025/student-portal/internal/identity"
	"github.com/SAP-F-2025/student-portal/internal/metrics"
	"github.com/SAP-F-2025/student-portal/internal/models"
	"github.com/SAP-F-2025/student-portal/internal/repositories"
)

// DefaultRegisteredBy is recorded on students created by bulk registration
const DefaultRegisteredBy = "TA"

type registrationService struct {
	repo           repositories.Repository
	identity       repositories.IdentityProvider
	scanner        *gradesheet.Scanner
	deriver        *identity.Deriver
	cache          *cache.CacheManager
	publisher      events.EventPublisher
	passwordLength int
	logger         *slog.Logger
}

func NewRegistrationService(
	repo repositories.Repository,
	identityProvider repositories.IdentityProvider,
	scanner *gradesheet.Scanner,
	deriver *identity.Deriver,
	cacheManager *cache.CacheManager,
	publisher events.EventPublisher,
	passwordLength int,
	logger *slog.Logger,
) RegistrationService {
	if cacheManager == nil {
		cacheManager = cache.NewCacheManager(nil)
	}
	return &registrationService{
		repo:           repo,
		identity:       identityProvider,
		scanner:        scanner,
		deriver:        deriver,
		cache:          cacheManager,
		publisher:      publisher,
		passwordLength: passwordLength,
		logger:         logger,
	}
}

// BuildRoster merges gradesheets into one entry per normalized roll number.
// Rows missing a roll number or a name are ignored. Entries keep first-seen
// order and the name of their first occurrence; courses accumulate in sheet
// order.
func BuildRoster(sheets []*gradesheet.Sheet, schema gradesheet.Schema) []models.RosterEntry {
	index := make(map[string]int)
	var roster []models.RosterEntry

	for _, sheet := range sheets {
		for _, row := range sheet.Rows {
			rollNo := schema.RollNo(row)
			name := schema.Name(row)
			if rollNo == "" || name == "" {
				continue
			}

			key := identity.Normalize(rollNo)
			if i, ok := index[key]; ok {
				roster[i].Courses = append(roster[i].Courses, sheet.Course)
				continue
			}

			index[key] = len(roster)
			roster = append(roster, models.RosterEntry{
				RollNo:  key,
				Name:    name,
				Courses: []string{sheet.Course},
			})
		}
	}

	return roster
}

// ReconcileAndRegister provisions an account and a student record for every
// roster entry not yet registered. Entries are processed one at a time and a
// failure on one never stops the run.
func (s *registrationService) ReconcileAndRegister(ctx context.Context, registeredBy string) (*models.RegistrationResult, error) {
	if registeredBy == "" {
		registeredBy = DefaultRegisteredBy
	}

	files, err := s.scanner.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list gradesheets: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoGradesheets, s.scanner.Dir())
	}

	sheets, err := s.scanner.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load gradesheets: %w", err)
	}

	roster := BuildRoster(sheets, s.scanner.Schema())
	s.logger.InfoContext(ctx, "Starting bulk registration",
		"files", len(files),
		"students", len(roster),
		"registered_by", registeredBy)

	result := &models.RegistrationResult{
		Total:    len(roster),
		Students: []models.ProvisionedCredential{},
		Skipped:  []models.RosterEntry{},
		Failures: []models.RegistrationFailure{},
	}

	for _, entry := range roster {
		cred, outcome, err := s.registerOne(ctx, entry, registeredBy)
		metrics.Registrations.WithLabelValues(outcome).Inc()

		switch outcome {
		case metrics.OutcomeRegistered:
			result.Registered++
			result.Students = append(result.Students, *cred)
			events.SafePublish(ctx, s.publisher, s.logger, events.NewEvent(events.StudentRegistered, events.StudentRegisteredEvent{
				RollNo:       cred.RollNo,
				Name:         cred.Name,
				Email:        cred.Email,
				Courses:      cred.Courses,
				RegisteredBy: registeredBy,
			}))
		case metrics.OutcomeAlreadyRegistered:
			result.AlreadyRegistered++
			result.Skipped = append(result.Skipped, entry)
		default:
			result.Errors++
			result.Failures = append(result.Failures, models.RegistrationFailure{
				RollNo: entry.RollNo,
				Reason: err.Error(),
			})
			s.logger.WarnContext(ctx, "Student registration failed",
				"roll_no", entry.RollNo,
				"error", err)
		}
	}

	result.CompletedAt = time.Now().UTC()

	if result.Registered > 0 {
		cache.SafeInvalidatePattern(ctx, s.cache.Marks, "*")
	}

	events.SafePublish(ctx, s.publisher, s.logger, events.NewEvent(events.RegistrationCompleted, events.RegistrationCompletedEvent{
		Total:             result.Total,
		Registered:        result.Registered,
		AlreadyRegistered: result.AlreadyRegistered,
		Errors:            result.Errors,
		RegisteredBy:      registeredBy,
	}))

	s.logger.InfoContext(ctx, "Bulk registration completed",
		"total", result.Total,
		"registered", result.Registered,
		"already_registered", result.AlreadyRegistered,
		"errors", result.Errors)

	return result, nil
}

// registerOne places one roster entry into exactly one outcome bucket
func (s *registrationService) registerOne(ctx context.Context, entry models.RosterEntry, registeredBy string) (*models.ProvisionedCredential, string, error) {
	_, err := s.repo.Student().GetByRollNo(ctx, entry.RollNo)
	if err == nil {
		return nil, metrics.OutcomeAlreadyRegistered, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, metrics.OutcomeError, storeError("lookup student record", err)
	}

	email := s.deriver.ToEmail(entry.RollNo)
	password := identity.GeneratePassword(s.passwordLength)

	account, err := s.identity.CreateAccount(ctx, &models.Account{
		Name:        s.deriver.AccountName(entry.RollNo),
		DisplayName: entry.Name,
		Email:       email,
		RollNo:      entry.RollNo,
	}, password)
	if err != nil {
		if errors.Is(err, repositories.ErrAccountExists) {
			return nil, metrics.OutcomeAlreadyRegistered, nil
		}
		return nil, metrics.OutcomeError, fmt.Errorf("create account: %w", err)
	}

	student := &models.Student{
		RollNo:          entry.RollNo,
		Name:            entry.Name,
		Email:           email,
		AccountID:       account.ID,
		Courses:         entry.Courses,
		InitialPassword: password,
		RegisteredBy:    registeredBy,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.repo.Student().Create(ctx, student); err != nil {
		return nil, metrics.OutcomeError, storeError("store student record", err)
	}

	return &models.ProvisionedCredential{
		RollNo:   entry.RollNo,
		Name:     entry.Name,
		Email:    email,
		Password: password,
		Courses:  entry.Courses,
	}, metrics.OutcomeRegistered, nil
}
