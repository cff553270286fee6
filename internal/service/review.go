package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/apartey/apartey-client/internal/models"
)

// ReviewRepository defines the persistence operations required by
// ReviewService.
type ReviewRepository interface {
	AddReview(ctx context.Context, rev models.Review) error
	ReviewsByUser(ctx context.Context, email string) ([]models.Review, error)
}

// ReviewService records submitted reviews.
type ReviewService struct {
	repo ReviewRepository
}

// NewReviewService constructs a ReviewService over repo.
func NewReviewService(repo ReviewRepository) *ReviewService {
	return &ReviewService{repo: repo}
}

// Submit stores a review for the given account. Anonymous submissions drop
// the account attribution.
func (s *ReviewService) Submit(ctx context.Context, email string, rev models.Review) (models.Review, error) {
	if rev.ID == "" {
		rev.ID = uuid.NewString()
	}
	rev.CreatedAt = time.Now().UTC()
	if rev.SubmitAnonymously {
		rev.UserEmail = ""
	} else {
		rev.UserEmail = email
	}
	if err := s.repo.AddReview(ctx, rev); err != nil {
		return models.Review{}, err
	}
	return rev, nil
}

// ByUser returns the reviews attributed to the given account.
func (s *ReviewService) ByUser(ctx context.Context, email string) ([]models.Review, error) {
	return s.repo.ReviewsByUser(ctx, email)
}
