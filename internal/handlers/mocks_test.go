package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/student-portal/internal/cache"
	"github.com/SAP-F-2025/student-portal/internal/events"
	"github.com/SAP-F-2025/student-portal/internal/models"
	"github.com/SAP-F-2025/student-portal/internal/repositories"
	"github.com/SAP-F-2025/student-portal/internal/services"
	"github.com/SAP-F-2025/student-portal/internal/utils"
	"github.com/SAP-F-2025/student-portal/internal/validator"
)

const (
	adminEmail   = "ta@portal.test"
	adminToken   = "admin-token"
	studentToken = "student-token"
	otherToken   = "other-token"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubIdentity resolves fixed tokens to principals
type stubIdentity struct {
	repositories.IdentityProvider
	users map[string]*models.User
}

func newStubIdentity() *stubIdentity {
	return &stubIdentity{users: map[string]*models.User{
		adminToken:   {ID: "1", FullName: "TA", Email: "TA@portal.test"},
		studentToken: {ID: "2", FullName: "Ali", Email: "f223277@cfd.nu.edu.pk", RollNo: "22f3277"},
		otherToken:   {ID: "3", FullName: "Sara", Email: "f221111@cfd.nu.edu.pk", RollNo: "22F-1111"},
	}}
}

func (s *stubIdentity) VerifyToken(ctx context.Context, token string) (*models.User, error) {
	user, ok := s.users[token]
	if !ok {
		return nil, repositories.ErrInvalidToken
	}
	copied := *user
	return &copied, nil
}

type stubAuth struct {
	signInResp *models.LoginResponse
	signInErr  error
	resetErr   error
	changed    *models.User
	loggedOut  int
}

func (s *stubAuth) SignIn(ctx context.Context, req *models.LoginRequest, ua string) (*models.LoginResponse, error) {
	return s.signInResp, s.signInErr
}

func (s *stubAuth) SignUp(ctx context.Context) error { return services.ErrSignUpDisabled }

func (s *stubAuth) Logout(ctx context.Context, user *models.User, ua string) error {
	s.loggedOut++
	return nil
}

func (s *stubAuth) ChangePassword(ctx context.Context, user *models.User, req *models.ChangePasswordRequest, ua string) error {
	s.changed = user
	return nil
}

func (s *stubAuth) RequestPasswordReset(ctx context.Context, req *models.PasswordResetRequest) (*models.PasswordResetResponse, error) {
	if s.resetErr != nil {
		return nil, s.resetErr
	}
	return &models.PasswordResetResponse{Message: "sent", Email: "f223277@cfd.nu.edu.pk"}, nil
}

func (s *stubAuth) ConfirmPasswordReset(ctx context.Context, req *models.PasswordResetConfirmRequest, ua string) error {
	return nil
}

func (s *stubAuth) IsAdminEmail(email string) bool {
	return strings.EqualFold(email, adminEmail)
}

type stubMarks struct {
	requested string
	err       error
}

func (s *stubMarks) GetMarks(ctx context.Context, rollNo string) (*models.StudentMarksResponse, error) {
	s.requested = rollNo
	if s.err != nil {
		return nil, s.err
	}
	return &models.StudentMarksResponse{
		RollNo: rollNo,
		Name:   "Ali",
		Courses: []models.CourseMarks{{
			CourseName:  "OOP",
			StudentName: "Ali",
			Marks:       map[string]string{"Quiz 1": "8"},
		}},
	}, nil
}

func (s *stubMarks) FindStudent(ctx context.Context, rollNo string) (*models.RosterEntry, error) {
	return &models.RosterEntry{RollNo: rollNo, Name: "Ali", Courses: []string{"OOP"}}, nil
}

func (s *stubMarks) ListGradesheets(ctx context.Context) ([]models.GradesheetInfo, error) {
	return []models.GradesheetInfo{{Course: "OOP", File: "OOP.csv", Students: 2}}, nil
}

type stubQueries struct {
	submitted *models.SubmitQueryRequest
	markedBy  *models.User
	markErr   error
}

func (s *stubQueries) Submit(ctx context.Context, req *models.SubmitQueryRequest, ua string) (*models.Query, error) {
	s.submitted = req
	return &models.Query{ID: "q1", RollNo: req.RollNo, Subject: req.Subject, Status: models.QueryStatusOpen}, nil
}

func (s *stubQueries) ListForStudent(ctx context.Context, rollNo string) ([]*models.Query, error) {
	return []*models.Query{{ID: "q1", RollNo: rollNo}}, nil
}

func (s *stubQueries) ListAll(ctx context.Context) ([]*models.Query, error) {
	return []*models.Query{{ID: "q1"}, {ID: "q2"}}, nil
}

func (s *stubQueries) Update(ctx context.Context, id string, req *models.UpdateQueryRequest, ua string) (*models.Query, error) {
	if id == "missing" {
		return nil, services.ErrNotFound
	}
	return &models.Query{ID: id, Status: *req.Status}, nil
}

func (s *stubQueries) MarkRead(ctx context.Context, id string, user *models.User) (*models.Query, error) {
	s.markedBy = user
	if s.markErr != nil {
		return nil, s.markErr
	}
	return &models.Query{ID: id}, nil
}

type stubRegistration struct {
	err error
}

func (s *stubRegistration) ReconcileAndRegister(ctx context.Context, registeredBy string) (*models.RegistrationResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.RegistrationResult{Total: 1, Registered: 1}, nil
}

type stubActivity struct {
	limit int
}

func (s *stubActivity) Record(ctx context.Context, entry *models.ActivityLog) error { return nil }

func (s *stubActivity) List(ctx context.Context, limit int) ([]*models.ActivityLog, error) {
	s.limit = limit
	return []*models.ActivityLog{{ID: "a1", ActivityType: models.ActivityLogin}}, nil
}

type stubExport struct {
	format services.ExportFormat
	creds  []models.ProvisionedCredential
}

func (s *stubExport) ExportCredentials(ctx context.Context, creds []models.ProvisionedCredential, format services.ExportFormat) (*services.ExportFile, error) {
	s.creds, s.format = creds, format
	return &services.ExportFile{Filename: "student-credentials-2025-01-02." + string(format), ContentType: services.ContentTypeCSV, Data: []byte("Roll No\n")}, nil
}

func (s *stubExport) ExportAllUsers(ctx context.Context, format services.ExportFormat) (*services.ExportFile, error) {
	s.format = format
	return &services.ExportFile{Filename: "all-users-2025-01-02." + string(format), ContentType: services.ContentTypeXLSX, Data: []byte("PK")}, nil
}

type stubServiceManager struct {
	auth         *stubAuth
	marks        *stubMarks
	queries      *stubQueries
	registration *stubRegistration
	activity     *stubActivity
	export       *stubExport
	healthErr    error
}

func newStubServiceManager() *stubServiceManager {
	return &stubServiceManager{
		auth:         &stubAuth{},
		marks:        &stubMarks{},
		queries:      &stubQueries{},
		registration: &stubRegistration{},
		activity:     &stubActivity{},
		export:       &stubExport{},
	}
}

func (m *stubServiceManager) Marks() services.MarksService               { return m.marks }
func (m *stubServiceManager) Registration() services.RegistrationService { return m.registration }
func (m *stubServiceManager) Auth() services.AuthService                 { return m.auth }
func (m *stubServiceManager) Query() services.QueryService               { return m.queries }
func (m *stubServiceManager) Activity() services.ActivityService         { return m.activity }
func (m *stubServiceManager) Export() services.ExportService             { return m.export }
func (m *stubServiceManager) Initialize(ctx context.Context) error       { return nil }
func (m *stubServiceManager) HealthCheck(ctx context.Context) error      { return m.healthErr }
func (m *stubServiceManager) Shutdown(ctx context.Context) error         { return nil }

// downQueryRepo fails every call the way an unreachable database does
type downQueryRepo struct {
	repositories.QueryRepository
	err error
}

func (r downQueryRepo) List(ctx context.Context) ([]*models.Query, error) { return nil, r.err }

func (r downQueryRepo) ListByRollNo(ctx context.Context, rollNo string) ([]*models.Query, error) {
	return nil, r.err
}

type downRepository struct {
	repositories.Repository
	err error
}

func (r downRepository) Query() repositories.QueryRepository { return downQueryRepo{err: r.err} }

// queryBackedManager serves a real query service over repo and stubs the rest
type queryBackedManager struct {
	*stubServiceManager
	query services.QueryService
}

func (m *queryBackedManager) Query() services.QueryService { return m.query }

func newQueryBackedManager(repo repositories.Repository) *queryBackedManager {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &queryBackedManager{
		stubServiceManager: newStubServiceManager(),
		query:              services.NewQueryService(repo, nil, events.NewMockEventPublisher(logger), validator.New(), logger),
	}
}

func testLogger() utils.Logger {
	return utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestRouter(t *testing.T, sm *stubServiceManager, limiter *cache.RateLimiter) *gin.Engine {
	t.Helper()
	router := gin.New()
	SetupMiddleware(router, testLogger())
	NewHandlerManager(sm, newStubIdentity(), limiter, testLogger()).SetupRoutes(router)
	return router
}

func doRequest(router http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func serve(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}
