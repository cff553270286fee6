package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/apartey/apartey-client/internal/models"
)

type mockReviewService struct {
	SubmitFunc func(ctx context.Context, email string, rev models.Review) (models.Review, error)
	ByUserFunc func(ctx context.Context, email string) ([]models.Review, error)
}

func (m *mockReviewService) Submit(ctx context.Context, email string, rev models.Review) (models.Review, error) {
	return m.SubmitFunc(ctx, email, rev)
}
func (m *mockReviewService) ByUser(ctx context.Context, email string) ([]models.Review, error) {
	return m.ByUserFunc(ctx, email)
}

func TestReviewSubmit(t *testing.T) {
	var got models.Review
	h := &ReviewHandler{ReviewService: &mockReviewService{
		SubmitFunc: func(_ context.Context, _ string, rev models.Review) (models.Review, error) {
			got = rev
			rev.ID = "r1"
			return rev, nil
		},
	}}

	req := httptest.NewRequest(http.MethodPost, "/api/reviews",
		strings.NewReader(`{"ratings":{"overall":4.5},"submitAnonymously":true}`))
	rec := httptest.NewRecorder()
	h.Submit(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d; want 201", rec.Code)
	}
	if got.Ratings["overall"] != 4.5 || !got.SubmitAnonymously {
		t.Errorf("submitted review = %+v", got)
	}
}

func TestReviewSubmit_InvalidBody(t *testing.T) {
	h := &ReviewHandler{ReviewService: &mockReviewService{}}
	req := httptest.NewRequest(http.MethodPost, "/api/reviews", strings.NewReader(`not json`))
	rec := httptest.NewRecorder()
	h.Submit(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d; want 400", rec.Code)
	}
}

func TestReviewMine_EmptyIsArray(t *testing.T) {
	h := &ReviewHandler{ReviewService: &mockReviewService{
		ByUserFunc: func(context.Context, string) ([]models.Review, error) {
			return nil, nil
		},
	}}

	req := httptest.NewRequest(http.MethodGet, "/api/reviews", nil)
	rec := httptest.NewRecorder()
	h.Mine(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Errorf("body = %q; want []", body)
	}
}

func TestContact(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/contact",
		strings.NewReader(`{"name":"Mari","email":"mari@apartey.com","message":"hello"}`))
	rec := httptest.NewRecorder()
	Contact(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d; want 202", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "received" {
		t.Errorf("status field = %q", body["status"])
	}
}

func TestContact_MissingMessage(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(`{"name":"Mari"}`))
	rec := httptest.NewRecorder()
	Contact(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d; want 400", rec.Code)
	}
}
