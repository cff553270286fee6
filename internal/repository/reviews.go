package repository

import (
	"context"
	"sync"

	"github.com/apartey/apartey-client/internal/models"
)

// MemoryReviewRepository stores submitted reviews in memory.
type MemoryReviewRepository struct {
	mu      sync.RWMutex
	reviews []models.Review
}

// NewMemoryReviewRepository creates an empty MemoryReviewRepository.
func NewMemoryReviewRepository() *MemoryReviewRepository {
	return &MemoryReviewRepository{}
}

// AddReview appends a review record.
func (r *MemoryReviewRepository) AddReview(_ context.Context, rev models.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reviews = append(r.reviews, rev)
	return nil
}

// ReviewsByUser returns the reviews submitted under the given email.
func (r *MemoryReviewRepository) ReviewsByUser(_ context.Context, email string) ([]models.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.Review
	for _, rev := range r.reviews {
		if rev.UserEmail == email {
			out = append(out, rev)
		}
	}
	return out, nil
}
