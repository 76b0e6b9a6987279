package services

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/student-portal/internal/cache"
	"github.com/SAP-F-2025/student-portal/internal/identity"
	"github.com/SAP-F-2025/student-portal/internal/mail"
	"github.com/SAP-F-2025/student-portal/internal/models"
	"github.com/SAP-F-2025/student-portal/internal/validator"
)

const (
	adminEmail   = "ta@portal.test"
	studentEmail = "f223277@cfd.nu.edu.pk"
)

type authFixture struct {
	svc      AuthService
	repo     *mockRepository
	identity *mockIdentity
	mailer   *mail.ConsoleMailer
	redis    *miniredis.Miniredis
}

func newAuthFixture(t *testing.T, withRedis bool) *authFixture {
	t.Helper()
	f := &authFixture{
		repo:     newMockRepository(),
		identity: newMockIdentity(),
		mailer:   mail.NewConsoleMailer(testLogger()),
	}

	var rdb *redis.Client
	if withRedis {
		f.redis = miniredis.RunT(t)
		rdb = redis.NewClient(&redis.Options{Addr: f.redis.Addr()})
		t.Cleanup(func() { rdb.Close() })
	}

	f.repo.students.items["22F-3277"] = &models.Student{RollNo: "22F-3277", Name: "Ali Khan", Email: studentEmail}
	f.identity.addAccount(studentEmail, "secret1")
	f.identity.addAccount(adminEmail, "adminpass")

	f.svc = NewAuthService(
		f.repo,
		f.identity,
		identity.NewDeriver("cfd.nu.edu.pk"),
		cache.NewCacheManager(rdb),
		f.mailer,
		NewActivityService(f.repo, testLogger()),
		validator.New(),
		AuthConfig{AdminEmail: "TA@portal.test", ResetTokenTTL: time.Hour, ResetBaseURL: "http://portal.test/"},
		testLogger(),
	)
	return f
}

func TestAuthService_StudentSignIn(t *testing.T) {
	f := newAuthFixture(t, false)

	resp, err := f.svc.SignIn(context.Background(), &models.LoginRequest{Identifier: " 22f 3277 ", Password: "secret1"}, "test-agent")
	require.NoError(t, err)

	assert.Equal(t, models.RoleStudent, resp.Role)
	assert.Equal(t, "token-"+studentEmail, resp.AccessToken)
	require.NotNil(t, resp.Student)
	assert.Equal(t, "Ali Khan", resp.Student.Name)

	require.Len(t, f.repo.activity.entries, 1)
	entry := f.repo.activity.entries[0]
	assert.Equal(t, models.ActivityLogin, entry.ActivityType)
	assert.Equal(t, "22F-3277", entry.RollNo)
	assert.Equal(t, "test-agent", entry.UserAgent)
}

func TestAuthService_SignInSurvivesAuditFailure(t *testing.T) {
	f := newAuthFixture(t, false)
	f.repo.activity.err = errors.New("activity store down")

	resp, err := f.svc.SignIn(context.Background(), &models.LoginRequest{Identifier: "22F-3277", Password: "secret1"}, "")
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, resp.Role)
}

func TestAuthService_SignInFailures(t *testing.T) {
	f := newAuthFixture(t, false)
	ctx := context.Background()

	_, err := f.svc.SignIn(ctx, &models.LoginRequest{Identifier: "22F-3277", Password: "wrong"}, "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	f.identity.addAccount("f220504@cfd.nu.edu.pk", "pw")
	_, err = f.svc.SignIn(ctx, &models.LoginRequest{Identifier: "22F-0504", Password: "pw"}, "")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.SignIn(ctx, &models.LoginRequest{Identifier: "22F-3277"}, "")
	assert.ErrorIs(t, err, ErrValidationFailed)

	f.identity.authErr = errors.New("connection refused")
	_, err = f.svc.SignIn(ctx, &models.LoginRequest{Identifier: "22F-3277", Password: "secret1"}, "")
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestAuthService_SignInRejectsMalformedRollNumber(t *testing.T) {
	f := newAuthFixture(t, false)
	ctx := context.Background()

	for _, identifier := range []string{"hello", "22F-12", "2F-32771", "F22-3277"} {
		t.Run(identifier, func(t *testing.T) {
			calls := f.identity.authCalls
			_, err := f.svc.SignIn(ctx, &models.LoginRequest{Identifier: identifier, Password: "secret1"}, "")
			assert.ErrorIs(t, err, ErrValidationFailed)
			assert.Equal(t, calls, f.identity.authCalls, "provider must not be contacted")
		})
	}
}

func TestAuthService_AdminSignIn(t *testing.T) {
	f := newAuthFixture(t, false)
	ctx := context.Background()

	resp, err := f.svc.SignIn(ctx, &models.LoginRequest{Identifier: "ta@portal.test", Password: "adminpass"}, "")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, resp.Role)
	assert.Nil(t, resp.Student)

	calls := f.identity.authCalls
	_, err = f.svc.SignIn(ctx, &models.LoginRequest{Identifier: studentEmail, Password: "secret1"}, "")
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, calls, f.identity.authCalls, "provider must not be contacted for non-admin emails")

	assert.True(t, f.svc.IsAdminEmail(" TA@Portal.Test "))
	assert.False(t, f.svc.IsAdminEmail(studentEmail))
}

func TestAuthService_SignUpDisabled(t *testing.T) {
	f := newAuthFixture(t, false)
	assert.ErrorIs(t, f.svc.SignUp(context.Background()), ErrSignUpDisabled)
}

func TestAuthService_Logout(t *testing.T) {
	f := newAuthFixture(t, false)
	f.repo.activity.err = errors.New("down")

	err := f.svc.Logout(context.Background(), &models.User{RollNo: "22F-3277", Email: studentEmail}, "ua")
	assert.NoError(t, err)
}

func TestAuthService_ChangePassword(t *testing.T) {
	f := newAuthFixture(t, false)
	ctx := context.Background()
	user := &models.User{RollNo: "22F-3277", FullName: "Ali Khan", Email: studentEmail, Role: models.RoleStudent}

	err := f.svc.ChangePassword(ctx, user, &models.ChangePasswordRequest{CurrentPassword: "secret1", NewPassword: "abc"}, "")
	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.Zero(t, f.identity.authCalls)

	err = f.svc.ChangePassword(ctx, user, &models.ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "newsecret"}, "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	err = f.svc.ChangePassword(ctx, user, &models.ChangePasswordRequest{CurrentPassword: "secret1", NewPassword: "newsecret"}, "")
	require.NoError(t, err)
	assert.Equal(t, "newsecret", f.identity.password(studentEmail))
	assert.Contains(t, f.repo.activity.types(), models.ActivityPasswordChange)

	admin := &models.User{Email: adminEmail, Role: models.RoleAdmin}
	err = f.svc.ChangePassword(ctx, admin, &models.ChangePasswordRequest{CurrentPassword: "adminpass", NewPassword: "newsecret"}, "")
	assert.ErrorIs(t, err, ErrForbidden)
}

func resetToken(t *testing.T, m mail.Message) string {
	t.Helper()
	for _, field := range strings.Fields(m.Text) {
		if strings.HasPrefix(field, "http") {
			u, err := url.Parse(field)
			require.NoError(t, err)
			assert.Equal(t, "/reset-password", u.Path)
			return u.Query().Get("token")
		}
	}
	t.Fatal("no reset link in message")
	return ""
}

func TestAuthService_PasswordResetFlow(t *testing.T) {
	f := newAuthFixture(t, true)
	ctx := context.Background()

	resp, err := f.svc.RequestPasswordReset(ctx, &models.PasswordResetRequest{RollNo: "22f-3277"})
	require.NoError(t, err)
	assert.Equal(t, studentEmail, resp.Email)

	sent := f.mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, studentEmail, sent[0].To)
	token := resetToken(t, sent[0])
	require.NotEmpty(t, token)

	req := &models.PasswordResetConfirmRequest{Token: token, NewPassword: "brandnew"}
	require.NoError(t, f.svc.ConfirmPasswordReset(ctx, req, "ua"))
	assert.Equal(t, "brandnew", f.identity.password(studentEmail))
	assert.Contains(t, f.repo.activity.types(), models.ActivityPasswordReset)

	err = f.svc.ConfirmPasswordReset(ctx, req, "ua")
	assert.ErrorIs(t, err, ErrValidationFailed, "reset tokens are single use")
}

func TestAuthService_PasswordResetExpires(t *testing.T) {
	f := newAuthFixture(t, true)
	ctx := context.Background()

	_, err := f.svc.RequestPasswordReset(ctx, &models.PasswordResetRequest{RollNo: "22F-3277"})
	require.NoError(t, err)
	token := resetToken(t, f.mailer.Sent()[0])

	f.redis.FastForward(2 * time.Hour)

	err = f.svc.ConfirmPasswordReset(ctx, &models.PasswordResetConfirmRequest{Token: token, NewPassword: "brandnew"}, "")
	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.Zero(t, f.identity.resetCalls)
}

func TestAuthService_PasswordResetUnknownStudent(t *testing.T) {
	f := newAuthFixture(t, true)

	_, err := f.svc.RequestPasswordReset(context.Background(), &models.PasswordResetRequest{RollNo: "23F-0001"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, f.mailer.Sent())
	assert.Zero(t, f.identity.authCalls)
	assert.Empty(t, f.redis.Keys())
}

func TestAuthService_PasswordResetWithoutRedis(t *testing.T) {
	f := newAuthFixture(t, false)

	_, err := f.svc.RequestPasswordReset(context.Background(), &models.PasswordResetRequest{RollNo: "22F-3277"})
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Empty(t, f.mailer.Sent())
}
