package casdoor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"golang.org/x/oauth2"

	"github.com/SAP-F-2025/student-portal/internal/cache"
	"github.com/SAP-F-2025/student-portal/internal/models"
	"github.com/SAP-F-2025/student-portal/internal/repositories"
)

// RollNoProperty is the Casdoor user property holding the student roll number
const RollNoProperty = "roll_no"

// CasdoorConfig holds the configuration for Casdoor connection
type CasdoorConfig struct {
	Endpoint         string
	ClientID         string
	ClientSecret     string
	Certificate      string
	OrganizationName string
	ApplicationName  string
}

// client is the subset of the Casdoor SDK used by the portal
type client interface {
	GetUserByEmail(email string) (*casdoorsdk.User, error)
	AddUser(user *casdoorsdk.User) (bool, error)
	SetPassword(owner, name, oldPassword, newPassword string) (bool, error)
	UpdateUserForColumns(user *casdoorsdk.User, columns []string) (bool, error)
	ParseJwtToken(token string) (*casdoorsdk.Claims, error)
}

// IdentityCasdoor implements repositories.IdentityProvider against Casdoor.
// Sign-in uses the OAuth2 resource owner password grant of the configured
// application.
type IdentityCasdoor struct {
	client client
	oauth  *oauth2.Config
	cache  *cache.CacheHelper
	config CasdoorConfig
}

func NewIdentityCasdoor(config CasdoorConfig, cacheManager *cache.CacheManager) repositories.IdentityProvider {
	sdk := casdoorsdk.NewClient(
		config.Endpoint,
		config.ClientID,
		config.ClientSecret,
		config.Certificate,
		config.OrganizationName,
		config.ApplicationName,
	)
	return newIdentityCasdoor(sdk, config, cacheManager)
}

func newIdentityCasdoor(c client, config CasdoorConfig, cacheManager *cache.CacheManager) *IdentityCasdoor {
	if cacheManager == nil {
		cacheManager = cache.NewCacheManager(nil)
	}

	return &IdentityCasdoor{
		client: c,
		oauth: &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  strings.TrimRight(config.Endpoint, "/") + "/api/login/oauth/access_token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		cache:  cacheManager.User,
		config: config,
	}
}

// ===== CONVERSION METHODS =====

func (p *IdentityCasdoor) toAccount(u *casdoorsdk.User) *models.Account {
	return &models.Account{
		ID:          u.Id,
		Name:        u.Name,
		DisplayName: u.DisplayName,
		Email:       u.Email,
		RollNo:      u.Properties[RollNoProperty],
	}
}

// getUser loads the raw Casdoor user by email
func (p *IdentityCasdoor) getUser(email string) (*casdoorsdk.User, error) {
	user, err := p.client.GetUserByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email from Casdoor: %w", err)
	}
	if user == nil || user.Name == "" {
		return nil, fmt.Errorf("user %s: %w", email, repositories.ErrNotFound)
	}
	return user, nil
}

// ===== READ OPERATIONS =====

// GetByEmail retrieves an account by email
func (p *IdentityCasdoor) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	email = strings.ToLower(email)

	var cached models.Account
	if err := p.cache.Get(ctx, email, &cached); err == nil {
		return &cached, nil
	}

	user, err := p.getUser(email)
	if err != nil {
		return nil, err
	}

	account := p.toAccount(user)
	cache.SafeSet(ctx, p.cache, email, account, cache.UserCacheConfig)

	return account, nil
}

// VerifyToken validates a Casdoor-issued JWT
func (p *IdentityCasdoor) VerifyToken(ctx context.Context, token string) (*models.User, error) {
	claims, err := p.client.ParseJwtToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", repositories.ErrInvalidToken, err)
	}
	if claims.Id == "" || claims.Email == "" {
		return nil, fmt.Errorf("%w: token carries no user", repositories.ErrInvalidToken)
	}

	return &models.User{
		ID:       claims.Id,
		FullName: claims.DisplayName,
		Email:    strings.ToLower(claims.Email),
		RollNo:   claims.Properties[RollNoProperty],
	}, nil
}

// ===== AUTHENTICATION =====

// Authenticate exchanges email and password for an access token
func (p *IdentityCasdoor) Authenticate(ctx context.Context, email, password string) (*models.AuthToken, error) {
	user, err := p.getUser(strings.ToLower(email))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, repositories.ErrInvalidCredentials
		}
		return nil, err
	}

	token, err := p.oauth.PasswordCredentialsToken(ctx, user.Name, password)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return nil, repositories.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("casdoor token request failed: %w", err)
	}

	authToken := &models.AuthToken{
		AccessToken: token.AccessToken,
		TokenType:   token.Type(),
	}
	if !token.Expiry.IsZero() {
		authToken.ExpiresAt = token.Expiry.Unix()
	}
	return authToken, nil
}

// ===== WRITE OPERATIONS =====

// CreateAccount registers a new Casdoor user in the configured organization
func (p *IdentityCasdoor) CreateAccount(ctx context.Context, account *models.Account, password string) (*models.Account, error) {
	email := strings.ToLower(account.Email)

	existing, err := p.client.GetUserByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil && existing.Name != "" {
		return nil, fmt.Errorf("user %s: %w", email, repositories.ErrAccountExists)
	}

	user := &casdoorsdk.User{
		Owner:       p.config.OrganizationName,
		Name:        account.Name,
		DisplayName: account.DisplayName,
		Email:       email,
		Password:    password,
		Type:        "normal-user",
		Properties:  map[string]string{},
	}
	if account.RollNo != "" {
		user.Properties[RollNoProperty] = account.RollNo
	}

	affected, err := p.client.AddUser(user)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "exist") {
			return nil, fmt.Errorf("user %s: %w", email, repositories.ErrAccountExists)
		}
		return nil, fmt.Errorf("failed to add user to Casdoor: %w", err)
	}
	if !affected {
		return nil, fmt.Errorf("user %s: %w", email, repositories.ErrAccountExists)
	}

	cache.SafeDelete(ctx, p.cache, email)

	created := p.toAccount(user)
	if stored, err := p.client.GetUserByEmail(email); err == nil && stored != nil {
		created.ID = stored.Id
	}
	return created, nil
}

// ChangePassword sets a new password after checking the old one
func (p *IdentityCasdoor) ChangePassword(ctx context.Context, email, oldPassword, newPassword string) error {
	user, err := p.getUser(strings.ToLower(email))
	if err != nil {
		return err
	}

	ok, err := p.client.SetPassword(user.Owner, user.Name, oldPassword, newPassword)
	if err != nil {
		return fmt.Errorf("failed to set password in Casdoor: %w", err)
	}
	if !ok {
		return repositories.ErrInvalidCredentials
	}
	return nil
}

// ResetPassword overwrites the password without the old one
func (p *IdentityCasdoor) ResetPassword(ctx context.Context, email, newPassword string) error {
	user, err := p.getUser(strings.ToLower(email))
	if err != nil {
		return err
	}

	user.Password = newPassword
	if _, err := p.client.UpdateUserForColumns(user, []string{"password"}); err != nil {
		return fmt.Errorf("failed to reset password in Casdoor: %w", err)
	}
	return nil
}
