// Package service provides the dev server's business logic, delegating
// persistence to repository interfaces.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/apartey/apartey-client/internal/models"
	"github.com/apartey/apartey-client/internal/repository"
	"github.com/apartey/apartey-client/internal/session"
)

var (
	// ErrInvalidCredentials signals a wrong email or password.
	ErrInvalidCredentials = errors.New("service: invalid credentials")
	// ErrWeakPassword signals a password below the minimum length.
	ErrWeakPassword = errors.New("service: password must be at least 8 characters")
	// ErrEmailTaken signals a signup against an existing account.
	ErrEmailTaken = errors.New("service: email already registered")
)

// UserRepository defines the persistence operations required by AuthService.
type UserRepository interface {
	UserExists(ctx context.Context, email string) (bool, error)
	CreateUser(ctx context.Context, u models.User) error
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	SetOnboarded(ctx context.Context, email string, done bool) error
}

// AuthService implements signup, signin, and token verification.
type AuthService struct {
	repo      UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewAuthService constructs an AuthService over repo using secret for JWT
// signing.
func NewAuthService(repo UserRepository, secret string) *AuthService {
	return &AuthService{
		repo:      repo,
		jwtSecret: []byte(secret),
		tokenTTL:  24 * time.Hour,
	}
}

// SignUp creates a new account and returns the user plus a session token.
func (s *AuthService) SignUp(ctx context.Context, email, password, role string) (models.User, string, error) {
	if email == "" {
		return models.User{}, "", fmt.Errorf("service: email is required")
	}
	if len(password) < 8 {
		return models.User{}, "", ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, "", fmt.Errorf("service: hash password: %w", err)
	}

	u := models.User{
		ID:           uuid.NewString(),
		Email:        email,
		Role:         string(session.ParseRole(role)),
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return models.User{}, "", ErrEmailTaken
		}
		return models.User{}, "", err
	}

	token, err := s.generateToken(u.Email, u.Role)
	if err != nil {
		return models.User{}, "", err
	}
	return u, token, nil
}

// SignIn authenticates a user and returns the user plus a session token.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (models.User, string, error) {
	u, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return models.User{}, "", ErrInvalidCredentials
		}
		return models.User{}, "", err
	}

	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		return models.User{}, "", ErrInvalidCredentials
	}

	token, err := s.generateToken(u.Email, u.Role)
	if err != nil {
		return models.User{}, "", err
	}
	return u, token, nil
}

// CurrentUser fetches the user record for an authenticated email.
func (s *AuthService) CurrentUser(ctx context.Context, email string) (models.User, error) {
	return s.repo.GetUserByEmail(ctx, email)
}

// CompleteOnboarding marks the account's onboarding as done.
func (s *AuthService) CompleteOnboarding(ctx context.Context, email string) error {
	return s.repo.SetOnboarded(ctx, email, true)
}

// VerifyToken validates a session token and returns the account email.
func (s *AuthService) VerifyToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return "", fmt.Errorf("service: parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("service: invalid token")
	}
	email, ok := claims["email"].(string)
	if !ok || email == "" {
		return "", fmt.Errorf("service: invalid email in token")
	}
	return email, nil
}

// generateToken mints a signed JWT for the account.
func (s *AuthService) generateToken(email, role string) (string, error) {
	claims := jwt.MapClaims{
		"email": email,
		"role":  role,
		"exp":   time.Now().Add(s.tokenTTL).Unix(),
		"iat":   time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("service: sign token: %w", err)
	}
	return signed, nil
}
