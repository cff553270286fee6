// Package http provides the dev server's HTTP handlers for authentication,
// profiles, and review submission.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/apartey/apartey-client/internal/models"
	"github.com/apartey/apartey-client/internal/service"
)

// AuthService defines the authentication operations required by the HTTP
// handlers.
type AuthService interface {
	SignUp(ctx context.Context, email, password, role string) (models.User, string, error)
	SignIn(ctx context.Context, email, password string) (models.User, string, error)
	CurrentUser(ctx context.Context, email string) (models.User, error)
	CompleteOnboarding(ctx context.Context, email string) error
}

// AuthHandler handles signup and signin requests.
type AuthHandler struct {
	// AuthService performs the underlying authentication operations.
	AuthService AuthService
}

// credentialsRequest is the JSON payload for signup and signin.
type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// authResponse mirrors the real backend's auth response shape: token at the
// top level, profile fields nested under "user".
type authResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// SignUp handles POST /api/auth/signup.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	u, token, err := h.AuthService.SignUp(r.Context(), req.Email, req.Password, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			writeError(w, http.StatusConflict, "user already exists")
		case errors.Is(err, service.ErrWeakPassword):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{Token: token, User: u})
}

// SignIn handles POST /api/auth/signin.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	u, token, err := h.AuthService.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, authResponse{Token: token, User: u})
}

// writeJSON encodes v as the JSON response body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a {"message": ...} error body.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}
