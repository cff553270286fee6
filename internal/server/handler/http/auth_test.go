package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/apartey/apartey-client/internal/models"
	"github.com/apartey/apartey-client/internal/service"
)

type mockAuthService struct {
	SignUpFunc             func(ctx context.Context, email, password, role string) (models.User, string, error)
	SignInFunc             func(ctx context.Context, email, password string) (models.User, string, error)
	CurrentUserFunc        func(ctx context.Context, email string) (models.User, error)
	CompleteOnboardingFunc func(ctx context.Context, email string) error
}

func (m *mockAuthService) SignUp(ctx context.Context, email, password, role string) (models.User, string, error) {
	return m.SignUpFunc(ctx, email, password, role)
}
func (m *mockAuthService) SignIn(ctx context.Context, email, password string) (models.User, string, error) {
	return m.SignInFunc(ctx, email, password)
}
func (m *mockAuthService) CurrentUser(ctx context.Context, email string) (models.User, error) {
	return m.CurrentUserFunc(ctx, email)
}
func (m *mockAuthService) CompleteOnboarding(ctx context.Context, email string) error {
	return m.CompleteOnboardingFunc(ctx, email)
}

func TestSignUp_Success(t *testing.T) {
	h := &AuthHandler{AuthService: &mockAuthService{
		SignUpFunc: func(_ context.Context, email, _, role string) (models.User, string, error) {
			return models.User{ID: "u1", Email: email, Role: role}, "tok-1", nil
		},
	}}

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup",
		strings.NewReader(`{"email":"a@b.c","password":"longenough","role":"agent"}`))
	rec := httptest.NewRecorder()
	h.SignUp(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d; want 201", rec.Code)
	}
	var resp struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Token != "tok-1" || resp.User.Email != "a@b.c" {
		t.Errorf("response = %+v", resp)
	}
}

func TestSignUp_Conflict(t *testing.T) {
	h := &AuthHandler{AuthService: &mockAuthService{
		SignUpFunc: func(context.Context, string, string, string) (models.User, string, error) {
			return models.User{}, "", service.ErrEmailTaken
		},
	}}

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup",
		strings.NewReader(`{"email":"a@b.c","password":"longenough"}`))
	rec := httptest.NewRecorder()
	h.SignUp(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d; want 409", rec.Code)
	}
}

func TestSignUp_InvalidBody(t *testing.T) {
	h := &AuthHandler{AuthService: &mockAuthService{}}

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", strings.NewReader(`{broken`))
	rec := httptest.NewRecorder()
	h.SignUp(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d; want 400", rec.Code)
	}
}

func TestSignIn_InvalidCredentials(t *testing.T) {
	h := &AuthHandler{AuthService: &mockAuthService{
		SignInFunc: func(context.Context, string, string) (models.User, string, error) {
			return models.User{}, "", service.ErrInvalidCredentials
		},
	}}

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signin",
		strings.NewReader(`{"email":"a@b.c","password":"nope"}`))
	rec := httptest.NewRecorder()
	h.SignIn(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d; want 401", rec.Code)
	}
	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Message != "invalid credentials" {
		t.Errorf("message = %q", body.Message)
	}
}

func TestSignIn_Success(t *testing.T) {
	h := &AuthHandler{AuthService: &mockAuthService{
		SignInFunc: func(_ context.Context, email, _ string) (models.User, string, error) {
			return models.User{Email: email, Role: "homeowner", IsOnboarded: true}, "tok-2", nil
		},
	}}

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signin",
		strings.NewReader(`{"email":"mari@apartey.com","password":"pw123456"}`))
	rec := httptest.NewRecorder()
	h.SignIn(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}
	var resp map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp["token"] != "tok-2" {
		t.Errorf("token = %v", resp["token"])
	}
	user, _ := resp["user"].(map[string]any)
	if user["isOnboarded"] != true {
		t.Errorf("user = %v", user)
	}
}
