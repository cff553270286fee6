package http

import (
	"net/http"

	"github.com/apartey/apartey-client/internal/middleware"
)

// UserHandler serves profile and onboarding endpoints.
type UserHandler struct {
	AuthService AuthService
}

// Me handles GET /api/users/me, returning the authenticated user's profile.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	email := middleware.GetUserFromContext(r.Context())
	u, err := h.AuthService.CurrentUser(r.Context(), email)
	if err != nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// CompleteOnboarding handles POST /api/users/me/onboarding.
func (h *UserHandler) CompleteOnboarding(w http.ResponseWriter, r *http.Request) {
	email := middleware.GetUserFromContext(r.Context())
	if err := h.AuthService.CompleteOnboarding(r.Context(), email); err != nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
