// Package auth implements admin login, token refresh and password changes.
//
// Users live in the users table with bcrypt hashes; tokens are HS256 JWTs
// carrying {id, role, exp}. The package is HTTP-agnostic; the handler layer
// maps its errors onto 400/401 responses.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"tlwd-backend/internal/domain/entity"
	"tlwd-backend/internal/repository"
)

// Roles allowed through AdminOnly.
const (
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super-admin"
)

var (
	ErrMissingCredentials = &entity.ValidationError{Field: "email", Message: "Please provide email and password"}
	ErrMissingPasswords   = &entity.ValidationError{Field: "password", Message: "Please provide current and new password"}
	ErrUserNotFound       = &entity.NotFoundError{Resource: "User"}

	// ErrInvalidCredentials and ErrInvalidCurrentPassword are 401 responses.
	ErrInvalidCredentials     = errors.New("Invalid credentials")
	ErrInvalidCurrentPassword = errors.New("Invalid current password")
)

// IsAdminRole reports whether role may use the admin API.
func IsAdminRole(role string) bool {
	return role == RoleAdmin || role == RoleSuperAdmin
}

// Credentials represents authentication credentials.
type Credentials struct {
	Email    string
	Password string
}

// LoginResult is returned by a successful Login.
type LoginResult struct {
	Token string
	User  *entity.User
}

// AuthService handles authentication business logic.
type AuthService struct {
	Users        repository.UserRepository
	Tokens       *Tokens
	Requirements CredentialRequirements
	// Cost is the bcrypt cost for new hashes; zero means bcrypt.DefaultCost.
	Cost   int
	Logger *slog.Logger
}

// NewAuthService creates a new authentication service with the default
// password policy.
func NewAuthService(users repository.UserRepository, tokens *Tokens) *AuthService {
	return &AuthService{Users: users, Tokens: tokens, Requirements: DefaultRequirements()}
}

// Login verifies the credentials and issues a token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, creds Credentials) (*LoginResult, error) {
	email := entity.NormalizeEmail(creds.Email)
	if email == "" || creds.Password == "" {
		return nil, ErrMissingCredentials
	}
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if u == nil || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(creds.Password)) != nil {
		return nil, ErrInvalidCredentials
	}
	token, err := s.Tokens.Issue(u.ID, u.Role)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, User: u}, nil
}

// Me returns the user behind a verified token.
func (s *AuthService) Me(ctx context.Context, id string) (*entity.User, error) {
	u, err := s.Users.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// Refresh issues a fresh token, re-reading the role from storage.
func (s *AuthService) Refresh(ctx context.Context, id string) (string, error) {
	u, err := s.Me(ctx, id)
	if err != nil {
		return "", err
	}
	return s.Tokens.Issue(u.ID, u.Role)
}

// ChangePassword replaces the password after checking the current one.
func (s *AuthService) ChangePassword(ctx context.Context, id, current, next string) error {
	if current == "" || next == "" {
		return ErrMissingPasswords
	}
	u, err := s.Me(ctx, id)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)) != nil {
		return ErrInvalidCurrentPassword
	}
	if err := s.Requirements.Validate(next); err != nil {
		return err
	}
	hash, err := s.hash(next)
	if err != nil {
		return err
	}
	if err := s.Users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// SeedSuperAdmin creates the super-admin account when no user with email
// exists. It reports whether an account was created.
func (s *AuthService) SeedSuperAdmin(ctx context.Context, name, email, password string) (bool, error) {
	email = entity.NormalizeEmail(email)
	if email == "" || password == "" {
		return false, nil
	}
	existing, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		return false, fmt.Errorf("get user: %w", err)
	}
	if existing != nil {
		return false, nil
	}
	hash, err := s.hash(password)
	if err != nil {
		return false, err
	}
	if strings.TrimSpace(name) == "" {
		name = "Super Admin"
	}
	u := &entity.User{Name: name, Email: email, PasswordHash: hash, Role: RoleSuperAdmin}
	if err := s.Users.Create(ctx, u); err != nil {
		return false, fmt.Errorf("create super admin: %w", err)
	}
	s.logger().InfoContext(ctx, "super admin seeded", slog.String("user_id", u.ID))
	return true, nil
}

// HashPassword hashes pass with the service's bcrypt cost.
func (s *AuthService) HashPassword(pass string) (string, error) {
	return s.hash(pass)
}

func (s *AuthService) hash(pass string) (string, error) {
	cost := s.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(pass), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

func (s *AuthService) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
