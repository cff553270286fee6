// Package repository provides persistence implementations for the dev
// server. The dev server stands in for the real backend, so state is held
// in memory and lost on restart.
package repository

import (
	"context"
	"errors"
	"sync"

	"github.com/apartey/apartey-client/internal/models"
)

var (
	// ErrUserExists signals a signup with an already-registered email.
	ErrUserExists = errors.New("repository: user already exists")
	// ErrUserNotFound signals a lookup for an unknown email.
	ErrUserNotFound = errors.New("repository: user not found")
)

// MemoryUserRepository stores users in a mutex-guarded map keyed by email.
type MemoryUserRepository struct {
	mu      sync.RWMutex
	byEmail map[string]models.User
}

// NewMemoryUserRepository creates an empty MemoryUserRepository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{byEmail: make(map[string]models.User)}
}

// UserExists checks whether a user with the given email exists.
func (r *MemoryUserRepository) UserExists(_ context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byEmail[email]
	return ok, nil
}

// CreateUser stores a new user record. Returns ErrUserExists on conflict.
func (r *MemoryUserRepository) CreateUser(_ context.Context, u models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[u.Email]; ok {
		return ErrUserExists
	}
	r.byEmail[u.Email] = u
	return nil
}

// GetUserByEmail fetches a user record by email.
func (r *MemoryUserRepository) GetUserByEmail(_ context.Context, email string) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byEmail[email]
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	return u, nil
}

// SetOnboarded updates the onboarding flag for the given email.
func (r *MemoryUserRepository) SetOnboarded(_ context.Context, email string, done bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byEmail[email]
	if !ok {
		return ErrUserNotFound
	}
	u.IsOnboarded = done
	r.byEmail[email] = u
	return nil
}
