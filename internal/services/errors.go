package services

import (
	"errors"
	"fmt"

	"github.com/SAP-F-2025/student-portal/internal/repositories"
	"github.com/SAP-F-2025/student-portal/internal/validator"
)

var (
	ErrValidationFailed   = errors.New("validation failed")
	ErrNotFound           = errors.New("not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrUpstream           = errors.New("upstream service failure")
	ErrSignUpDisabled     = errors.New("sign up is disabled")
	ErrNoGradesheets      = errors.New("no gradesheets found")
)

// validationError wraps field errors so both ErrValidationFailed and the
// field list can be recovered by callers
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrValidationFailed, verrs)
	}
	return fmt.Errorf("%w: %v", ErrValidationFailed, err)
}

// upstream wraps a collaborator failure
func upstream(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrUpstream, op, err)
}

// storeError classifies a repository failure. Duplicates are conflicts;
// anything else means the store is unavailable or rejected the call.
func storeError(op string, err error) error {
	if errors.Is(err, repositories.ErrDuplicate) {
		return fmt.Errorf("%w: %s", ErrConflict, op)
	}
	return upstream(op, err)
}
