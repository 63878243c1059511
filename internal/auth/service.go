// Package auth provides minimal account handling: registration with bcrypt
// password hashing, login with HS256 token issuance, and OAuth login-URL
// construction. Nothing else in the service is gated on authentication.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// User is a registered account. Only the hash of the password is stored.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    string // ISO-8601, UTC
}

var (
	// ErrEmailTaken is returned by Register for an already-registered email.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials is returned by Login for an unknown email or a
	// wrong password; callers must not distinguish the two cases.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// UserStore persists users. A missing user is reported as (nil, nil); errors
// indicate store unavailability.
type UserStore interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// bcrypt keys on at most 72 bytes. Longer passwords are truncated so any
// length is accepted and registration and login agree on the effective
// secret, instead of GenerateFromPassword failing the request.
const maxPasswordBytes = 72

func passwordKey(password string) []byte {
	key := []byte(password)
	if len(key) > maxPasswordBytes {
		key = key[:maxPasswordBytes]
	}
	return key
}

// Service implements registration and login.
type Service struct {
	users     UserStore
	jwtSecret []byte
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates an auth service signing tokens with the given secret.
func NewService(users UserStore, jwtSecret string, logger *zap.Logger) *Service {
	return &Service{
		users:     users,
		jwtSecret: []byte(jwtSecret),
		logger:    logger,
		now:       time.Now,
	}
}

// Register creates a new account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, email, password string) error {
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword(passwordKey(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC().Format(time.RFC3339),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User registered", zap.String("user_id", user.ID))
	return nil
}

// Login verifies the credentials and returns a signed HS256 bearer token.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), passwordKey(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"iat":   s.now().UTC().Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return token, nil
}
