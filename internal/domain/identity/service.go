package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/patientpanel/patientpanel/internal/platform/auth"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotFound           = errors.New("user not found")
	ErrValidation         = errors.New("validation failed")
)

// Service provides registration, login and token validation.
type Service struct {
	repo      UserRepository
	jwtSecret string
	tokenTTL  time.Duration
}

// NewService creates a new identity service.
func NewService(repo UserRepository, jwtSecret string, tokenTTL time.Duration) *Service {
	return &Service{repo: repo, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

var validRoles = map[string]bool{
	auth.RolePatient: true,
	auth.RoleDoctor:  true,
	auth.RoleStaff:   true,
}

// Register creates a new account and immediately issues a bearer token.
// The role defaults to patient when absent.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*AuthResponse, error) {
	in.Email = strings.TrimSpace(in.Email)
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		return nil, fmt.Errorf("%w: valid email is required", ErrValidation)
	}
	if len(in.Password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if in.Role == "" {
		in.Role = auth.RolePatient
	}
	if !validRoles[in.Role] {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, in.Role)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &User{
		Email:        in.Email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(in.Name),
		Role:         in.Role,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	return s.respond(u)
}

// Login verifies credentials and issues a bearer token.
func (s *Service) Login(ctx context.Context, in LoginInput) (*AuthResponse, error) {
	u, err := s.repo.GetByEmail(ctx, strings.TrimSpace(in.Email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(u.PasswordHash, in.Password) {
		return nil, ErrInvalidCredentials
	}
	return s.respond(u)
}

// Validate resolves the user behind an already-verified token subject.
func (s *Service) Validate(ctx context.Context, userID uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, userID)
}

func (s *Service) respond(u *User) (*AuthResponse, error) {
	token, err := auth.NewToken(u.ID, u.Role, s.jwtSecret, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &AuthResponse{Token: token, User: u}, nil
}
