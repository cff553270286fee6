package auth

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/apartey/apartey-client/internal/models"
	"github.com/apartey/apartey-client/internal/review"
	"github.com/apartey/apartey-client/internal/session"
	"github.com/apartey/apartey-client/internal/storage"
)

// Navigator performs page navigation on behalf of the orchestrator.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(path string)

// Navigate calls f(path).
func (f NavigatorFunc) Navigate(path string) { f(path) }

// Backend is the slice of the API the orchestrator needs: the current user's
// authoritative role and onboarding status.
type Backend interface {
	CurrentUser(ctx context.Context) (*models.User, error)
}

// SubmitFunc submits a finished review to the backend.
type SubmitFunc func(ctx context.Context, d review.Draft) error

// Orchestrator decides, after an authentication event, the single correct
// page to navigate to, and manages a review draft that survives a login
// detour. Store changes made by another process are reflected through the
// store subscription.
type Orchestrator struct {
	kv      storage.Store
	sess    *session.Store
	nav     Navigator
	backend Backend
	log     *zap.Logger

	// navDelay lets the token write settle before a route guard re-reads it.
	navDelay time.Duration
	// guardCooldown keeps the re-entrancy guard held briefly after navigating.
	guardCooldown time.Duration

	mu          sync.Mutex
	redirecting bool
	authed      bool
	pending     *review.Draft
	unsubscribe func()
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithBackend supplies the API used to resolve role and onboarding status.
func WithBackend(b Backend) Option {
	return func(o *Orchestrator) { o.backend = b }
}

// WithDelays overrides the navigation delay and guard cooldown.
func WithDelays(navDelay, guardCooldown time.Duration) Option {
	return func(o *Orchestrator) {
		o.navDelay = navDelay
		o.guardCooldown = guardCooldown
	}
}

// NewOrchestrator builds an Orchestrator over the given store and navigator,
// reads the initial token and draft state, and subscribes to store changes.
// Call Close when done.
func NewOrchestrator(kv storage.Store, nav Navigator, log *zap.Logger, opts ...Option) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	o := &Orchestrator{
		kv:            kv,
		sess:          session.New(kv),
		nav:           nav,
		log:           log,
		navDelay:      100 * time.Millisecond,
		guardCooldown: time.Second,
	}
	for _, opt := range opts {
		opt(o)
	}

	o.authed = o.sess.HasToken()
	if d, ok := review.Load(kv); ok {
		o.pending = &d
	}
	o.unsubscribe = kv.Subscribe(o.onStoreChange)
	return o
}

// Close releases the store subscription.
func (o *Orchestrator) Close() {
	if o.unsubscribe != nil {
		o.unsubscribe()
	}
}

// onStoreChange re-derives in-memory state when the underlying store changes,
// whichever process made the change.
func (o *Orchestrator) onStoreChange(key, _ string) {
	switch key {
	case session.KeyToken, session.KeyAuthToken, session.KeyAccessToken:
		authed := o.sess.HasToken()
		o.mu.Lock()
		o.authed = authed
		o.mu.Unlock()
	case session.KeyPendingReview:
		var pending *review.Draft
		if d, ok := review.Load(o.kv); ok {
			pending = &d
		}
		o.mu.Lock()
		o.pending = pending
		o.mu.Unlock()
	}
}

// CheckAuthentication reports token presence. It never fails; a broken
// store reads as not authenticated.
func (o *Orchestrator) CheckAuthentication() bool {
	return o.sess.HasToken()
}

// IsAuthenticated returns the tracked authentication state.
func (o *Orchestrator) IsAuthenticated() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.authed
}

// HasPendingData reports whether a review draft awaits resumption.
func (o *Orchestrator) HasPendingData() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.pending != nil
}

// PendingReview returns a copy of the tracked draft, if any.
func (o *Orchestrator) PendingReview() (review.Draft, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.pending == nil {
		return review.Draft{}, false
	}
	return *o.pending, true
}

// HandleAuthRedirect is called when an unauthenticated user attempts an
// action requiring auth. It normalizes and persists the draft, remembers
// currentPath for return navigation, and navigates to sign-in. Navigation
// happens even when persistence fails.
func (o *Orchestrator) HandleAuthRedirect(form review.Draft, currentPath string) {
	d := review.Normalize(form)
	if err := review.Save(o.kv, d); err != nil {
		o.log.Warn("failed to persist pending review draft", zap.Error(err))
	} else {
		o.mu.Lock()
		o.pending = &d
		o.mu.Unlock()
	}

	o.sess.SetRedirectPath(currentPath)
	o.nav.Navigate(RouteSignin)
}

// HandlePostLoginRedirect runs the post-login decision procedure once. A
// second call within the re-entrancy window is a no-op, so overlapping
// handlers produce exactly one navigation. Any unexpected failure falls back
// to the home page; the guard is always released after the cooldown.
func (o *Orchestrator) HandlePostLoginRedirect(ctx context.Context) {
	o.mu.Lock()
	if o.redirecting {
		o.mu.Unlock()
		return
	}
	o.redirecting = true
	o.mu.Unlock()

	defer time.AfterFunc(o.guardCooldown, func() {
		o.mu.Lock()
		o.redirecting = false
		o.mu.Unlock()
	})

	target := o.decideTarget(ctx)

	o.sess.ClearAuthMode()
	o.sess.ClearRedirectPath()

	// Let the token write settle before any route guard re-checks it.
	if o.navDelay > 0 {
		time.Sleep(o.navDelay)
	}
	o.nav.Navigate(target)
}

// decideTarget gathers the decision inputs and applies DecideRoute,
// degrading to the home page on panic.
func (o *Orchestrator) decideTarget(ctx context.Context) (target string) {
	target = RouteHome
	defer func() {
		if r := recover(); r != nil {
			o.log.Error("post-login redirect failed, falling back to home",
				zap.Any("panic", r))
			target = RouteHome
		}
	}()

	mode := o.sess.AuthMode()
	_, hasDraft := review.Load(o.kv)
	remembered := o.sess.RedirectPath()

	role, roleKnown := o.sess.RoleIfSet()
	onboarded := o.sess.Onboarded()

	// The backend is authoritative for role and onboarding; tolerate its
	// absence or failure and keep the cached values.
	if o.backend != nil && mode != session.AuthModeSignup {
		if u, err := o.backend.CurrentUser(ctx); err != nil {
			o.log.Warn("current user lookup failed, using cached flags", zap.Error(err))
		} else if u != nil {
			if !roleKnown {
				role = session.ParseRole(u.Role)
			}
			onboarded = onboarded || u.IsOnboarded
		}
	}

	return DecideRoute(RouteInput{
		AuthMode:        mode,
		Role:            role,
		Onboarded:       onboarded,
		HasPendingDraft: hasDraft,
		RememberedPath:  remembered,
	})
}

// ClearPendingData removes the persisted draft and resets in-memory state.
func (o *Orchestrator) ClearPendingData() {
	review.Clear(o.kv)
	o.mu.Lock()
	o.pending = nil
	o.mu.Unlock()
}

// SubmitPendingReview submits the draft through the supplied mutation,
// clears pending data, and routes to the role landing page. The mutation
// error is returned as-is so the caller can surface it.
func (o *Orchestrator) SubmitPendingReview(ctx context.Context, d review.Draft, submit SubmitFunc) error {
	if err := submit(ctx, review.Normalize(d)); err != nil {
		return err
	}
	o.ClearPendingData()
	// Role is read fresh from storage at call time.
	o.nav.Navigate(LandingRoute(o.sess.Role()))
	return nil
}
