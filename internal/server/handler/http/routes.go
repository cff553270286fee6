package http

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/apartey/apartey-client/internal/middleware"
)

// NewRouter constructs the dev server's HTTP handler. It applies JSON
// content-type enforcement, request logging, and bearer-token authentication,
// and mounts the auth, profile, review, and contact endpoints under /api.
//
// Routes:
//
//	POST /api/auth/signup          → authHandler.SignUp (public)
//	POST /api/auth/signin          → authHandler.SignIn (public)
//	GET  /api/users/me             → userHandler.Me
//	POST /api/users/me/onboarding  → userHandler.CompleteOnboarding
//	POST /api/reviews              → reviewHandler.Submit
//	GET  /api/reviews              → reviewHandler.Mine
//	POST /api/contact              → Contact
func NewRouter(
	authHandler *AuthHandler,
	userHandler *UserHandler,
	reviewHandler *ReviewHandler,
	verifier middleware.TokenVerifier,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.AllowContentType("application/json"))
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(middleware.BearerAuth(verifier))

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/signup", authHandler.SignUp)
		r.Post("/auth/signin", authHandler.SignIn)

		r.Get("/users/me", userHandler.Me)
		r.Post("/users/me/onboarding", userHandler.CompleteOnboarding)

		r.Post("/reviews", reviewHandler.Submit)
		r.Get("/reviews", reviewHandler.Mine)

		r.Post("/contact", Contact)
	})

	return r
}
