package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/apartey/apartey-client/internal/middleware"
	"github.com/apartey/apartey-client/internal/models"
)

// ReviewService defines the review operations required by the HTTP handlers.
type ReviewService interface {
	Submit(ctx context.Context, email string, rev models.Review) (models.Review, error)
	ByUser(ctx context.Context, email string) ([]models.Review, error)
}

// ReviewHandler serves review submission and listing.
type ReviewHandler struct {
	ReviewService ReviewService
}

// Submit handles POST /api/reviews.
func (h *ReviewHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var rev models.Review
	if err := json.NewDecoder(r.Body).Decode(&rev); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	email := middleware.GetUserFromContext(r.Context())
	stored, err := h.ReviewService.Submit(r.Context(), email, rev)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, stored)
}

// Mine handles GET /api/reviews, listing the caller's reviews.
func (h *ReviewHandler) Mine(w http.ResponseWriter, r *http.Request) {
	email := middleware.GetUserFromContext(r.Context())
	reviews, err := h.ReviewService.ByUser(r.Context(), email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if reviews == nil {
		reviews = []models.Review{}
	}
	writeJSON(w, http.StatusOK, reviews)
}

// Contact handles POST /api/contact. The dev server just acknowledges.
func Contact(w http.ResponseWriter, r *http.Request) {
	var msg models.ContactMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil || msg.Message == "" {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "received"})
}
