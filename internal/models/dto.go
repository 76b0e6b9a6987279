package models

import "time"

// ===== AUTH =====

type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required,max=255"`
	Password   string `json:"password" validate:"required,max=128"`
}

type LoginResponse struct {
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	ExpiresAt   int64    `json:"expires_at"`
	Role        UserRole `json:"role"`
	Student     *Student `json:"student,omitempty"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6,max=128"`
}

type PasswordResetRequest struct {
	RollNo string `json:"roll_no" validate:"required,rollno"`
}

type PasswordResetResponse struct {
	Message string `json:"message"`
	Email   string `json:"email"`
}

type PasswordResetConfirmRequest struct {
	Token       string `json:"token" validate:"required,uuid"`
	NewPassword string `json:"new_password" validate:"required,min=6,max=128"`
}

// ===== QUERIES =====

type SubmitQueryRequest struct {
	RollNo  string   `json:"roll_no" validate:"required,rollno"`
	Name    string   `json:"name" validate:"max=200"`
	Email   string   `json:"email" validate:"omitempty,email"`
	Courses []string `json:"courses"`
	Subject string   `json:"subject" validate:"required,max=200"`
	Message string   `json:"message" validate:"required,max=5000"`
}

type UpdateQueryRequest struct {
	Status        *QueryStatus `json:"status" validate:"omitempty,query_status"`
	AdminResponse *string      `json:"admin_response" validate:"omitempty,max=5000"`
	AdminComment  *string      `json:"admin_comment" validate:"omitempty,max=5000"`
}

// ===== REGISTRATION =====

// ProvisionedCredential is returned once, at account creation
type ProvisionedCredential struct {
	RollNo   string   `json:"roll_no" validate:"required"`
	Name     string   `json:"name"`
	Email    string   `json:"email" validate:"required"`
	Password string   `json:"password" validate:"required"`
	Courses  []string `json:"courses"`
}

type RegistrationFailure struct {
	RollNo string `json:"roll_no"`
	Reason string `json:"reason"`
}

// RegistrationResult reports a bulk registration run. Every roster entry is
// counted in exactly one of Registered, AlreadyRegistered or Errors.
type RegistrationResult struct {
	Total             int                     `json:"total"`
	Registered        int                     `json:"registered"`
	AlreadyRegistered int                     `json:"already_registered"`
	Errors            int                     `json:"errors"`
	Students          []ProvisionedCredential `json:"students"`
	Skipped           []RosterEntry           `json:"skipped"`
	Failures          []RegistrationFailure   `json:"failures"`
	CompletedAt       time.Time               `json:"completed_at"`
}

type ExportCredentialsRequest struct {
	Students []ProvisionedCredential `json:"students" validate:"required,min=1,dive"`
}
