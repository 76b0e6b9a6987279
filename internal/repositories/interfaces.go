package repositories

import (
	"context"

	"github.com/SAP-F-2025/student-portal/internal/models"
)

// StudentRepository stores registration records keyed by roll number
type StudentRepository interface {
	// GetByRollNo returns ErrNotFound when no record exists
	GetByRollNo(ctx context.Context, rollNo string) (*models.Student, error)

	// Create returns ErrDuplicate when the roll number is already registered
	Create(ctx context.Context, student *models.Student) error

	// List returns all records ordered by roll number
	List(ctx context.Context) ([]*models.Student, error)

	Count(ctx context.Context) (int64, error)
}

// QueryRepository stores support tickets
type QueryRepository interface {
	Create(ctx context.Context, query *models.Query) error
	GetByID(ctx context.Context, id string) (*models.Query, error)
	Update(ctx context.Context, query *models.Query) error

	// ListByRollNo returns a student's queries, newest first
	ListByRollNo(ctx context.Context, rollNo string) ([]*models.Query, error)

	// List returns every query, newest first
	List(ctx context.Context) ([]*models.Query, error)
}

// ActivityRepository is the append-only audit log
type ActivityRepository interface {
	Create(ctx context.Context, entry *models.ActivityLog) error

	// List returns up to limit entries, newest first
	List(ctx context.Context, limit int) ([]*models.ActivityLog, error)
}

// IdentityProvider is the external authentication service owning accounts
// and passwords. Accounts are addressed by email.
type IdentityProvider interface {
	// Authenticate returns ErrInvalidCredentials on a wrong email or password
	Authenticate(ctx context.Context, email, password string) (*models.AuthToken, error)

	// CreateAccount returns ErrAccountExists when the email is taken
	CreateAccount(ctx context.Context, account *models.Account, password string) (*models.Account, error)

	ChangePassword(ctx context.Context, email, oldPassword, newPassword string) error

	// ResetPassword sets a new password without the old one
	ResetPassword(ctx context.Context, email, newPassword string) error

	// GetByEmail returns ErrNotFound when no account exists
	GetByEmail(ctx context.Context, email string) (*models.Account, error)

	// VerifyToken validates an access token and returns its principal
	// without a role; roles are assigned by the caller.
	VerifyToken(ctx context.Context, token string) (*models.User, error)
}
