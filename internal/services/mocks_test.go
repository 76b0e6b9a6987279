package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/student-portal/internal/gradesheet"
	"github.com/SAP-F-2025/student-portal/internal/models"
	"github.com/SAP-F-2025/student-portal/internal/repositories"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ===== REPOSITORY MOCKS =====

type mockStudentRepo struct {
	mu        sync.Mutex
	items     map[string]*models.Student
	createErr map[string]error
	err       error
}

func (m *mockStudentRepo) GetByRollNo(ctx context.Context, rollNo string) (*models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	s, ok := m.items[rollNo]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *mockStudentRepo) Create(ctx context.Context, student *models.Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.createErr[student.RollNo]; err != nil {
		return err
	}
	if _, ok := m.items[student.RollNo]; ok {
		return repositories.ErrDuplicate
	}
	cp := *student
	m.items[student.RollNo] = &cp
	return nil
}

func (m *mockStudentRepo) List(ctx context.Context) ([]*models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]*models.Student, 0, len(m.items))
	for _, s := range m.items {
		cp := *s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RollNo < out[j].RollNo })
	return out, nil
}

func (m *mockStudentRepo) Count(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.items)), nil
}

type mockQueryRepo struct {
	mu    sync.Mutex
	items map[string]*models.Query
	err   error
}

func (m *mockQueryRepo) Create(ctx context.Context, q *models.Query) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	cp := *q
	m.items[q.ID] = &cp
	return nil
}

func (m *mockQueryRepo) GetByID(ctx context.Context, id string) (*models.Query, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.items[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *q
	return &cp, nil
}

func (m *mockQueryRepo) Update(ctx context.Context, q *models.Query) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[q.ID]; !ok {
		return repositories.ErrNotFound
	}
	cp := *q
	m.items[q.ID] = &cp
	return nil
}

func (m *mockQueryRepo) sorted(filter func(*models.Query) bool) []*models.Query {
	out := []*models.Query{}
	for _, q := range m.items {
		if filter(q) {
			cp := *q
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *mockQueryRepo) ListByRollNo(ctx context.Context, rollNo string) ([]*models.Query, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.sorted(func(q *models.Query) bool { return q.RollNo == rollNo }), nil
}

func (m *mockQueryRepo) List(ctx context.Context) ([]*models.Query, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.sorted(func(*models.Query) bool { return true }), nil
}

type mockActivityRepo struct {
	mu      sync.Mutex
	entries []*models.ActivityLog
	err     error
	listErr error
	limit   int
}

func (m *mockActivityRepo) Create(ctx context.Context, entry *models.ActivityLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	cp := *entry
	m.entries = append(m.entries, &cp)
	return nil
}

func (m *mockActivityRepo) List(ctx context.Context, limit int) ([]*models.ActivityLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.limit = limit
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]*models.ActivityLog, 0, len(m.entries))
	for i := len(m.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.entries[i])
	}
	return out, nil
}

func (m *mockActivityRepo) types() []models.ActivityType {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ActivityType
	for _, e := range m.entries {
		out = append(out, e.ActivityType)
	}
	return out
}

type mockRepository struct {
	students *mockStudentRepo
	queries  *mockQueryRepo
	activity *mockActivityRepo
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		students: &mockStudentRepo{items: map[string]*models.Student{}, createErr: map[string]error{}},
		queries:  &mockQueryRepo{items: map[string]*models.Query{}},
		activity: &mockActivityRepo{},
	}
}

func (m *mockRepository) Student() repositories.StudentRepository   { return m.students }
func (m *mockRepository) Query() repositories.QueryRepository       { return m.queries }
func (m *mockRepository) Activity() repositories.ActivityRepository { return m.activity }
func (m *mockRepository) Ping(ctx context.Context) error            { return nil }
func (m *mockRepository) Close() error                              { return nil }

type mockRepositoryManager struct {
	repo      *mockRepository
	healthErr error
	shutdown  bool
}

func (m *mockRepositoryManager) Initialize() error                      { return nil }
func (m *mockRepositoryManager) GetRepository() repositories.Repository { return m.repo }
func (m *mockRepositoryManager) HealthCheck(ctx context.Context) error  { return m.healthErr }

func (m *mockRepositoryManager) Shutdown(ctx context.Context) error {
	m.shutdown = true
	return nil
}

// ===== IDENTITY PROVIDER MOCK =====

type fakeAccount struct {
	account  models.Account
	password string
}

type mockIdentity struct {
	mu         sync.Mutex
	accounts   map[string]*fakeAccount
	createErr  map[string]error
	authErr    error
	authCalls  int
	resetCalls int
}

func newMockIdentity() *mockIdentity {
	return &mockIdentity{accounts: map[string]*fakeAccount{}, createErr: map[string]error{}}
}

func (m *mockIdentity) addAccount(email, password string) {
	m.accounts[email] = &fakeAccount{account: models.Account{ID: "id-" + email, Email: email}, password: password}
}

func (m *mockIdentity) Authenticate(ctx context.Context, email, password string) (*models.AuthToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.authCalls++
	if m.authErr != nil {
		return nil, m.authErr
	}
	a, ok := m.accounts[email]
	if !ok || a.password != password {
		return nil, repositories.ErrInvalidCredentials
	}
	return &models.AuthToken{AccessToken: "token-" + email, TokenType: "Bearer", ExpiresAt: 1700000000}, nil
}

func (m *mockIdentity) CreateAccount(ctx context.Context, account *models.Account, password string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.createErr[account.Email]; err != nil {
		return nil, err
	}
	if _, ok := m.accounts[account.Email]; ok {
		return nil, repositories.ErrAccountExists
	}
	created := *account
	created.ID = "id-" + account.Email
	m.accounts[account.Email] = &fakeAccount{account: created, password: password}
	return &created, nil
}

func (m *mockIdentity) ChangePassword(ctx context.Context, email, oldPassword, newPassword string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[email]
	if !ok {
		return repositories.ErrNotFound
	}
	if a.password != oldPassword {
		return repositories.ErrInvalidCredentials
	}
	a.password = newPassword
	return nil
}

func (m *mockIdentity) ResetPassword(ctx context.Context, email, newPassword string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetCalls++
	a, ok := m.accounts[email]
	if !ok {
		return repositories.ErrNotFound
	}
	a.password = newPassword
	return nil
}

func (m *mockIdentity) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[email]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := a.account
	return &cp, nil
}

func (m *mockIdentity) VerifyToken(ctx context.Context, token string) (*models.User, error) {
	return nil, errors.New("not implemented")
}

func (m *mockIdentity) password(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.accounts[email]; ok {
		return a.password
	}
	return ""
}

// ===== GRADESHEET FIXTURES =====

func writeGradesheet(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func newTestScanner(dir string) *gradesheet.Scanner {
	return gradesheet.NewScanner(dir, nil, gradesheet.DefaultSchema(), testLogger())
}
