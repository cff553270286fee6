// Package session is the single point of truth for auth credentials and the
// session facts derived from them (role, onboarding status, pending redirect
// state) held in the client's persistent key-value store.
package session

import (
	"github.com/apartey/apartey-client/internal/storage"
)

// Persisted key layout. Tokens may live under any of the three legacy key
// names; writes always collapse to one key.
const (
	KeyToken       = "token"
	KeyAuthToken   = "authToken"
	KeyAccessToken = "accessToken"

	KeyUserRole           = "userRole"
	KeyOnboarded          = "hasCompletedOnboarding"
	KeyAuthMode           = "authMode"
	KeyRedirectAfterLogin = "redirectAfterLogin"
	KeyPendingReview      = "pendingReviewData"
	KeyUserLocation       = "userLocation"
	KeySelectedCountry    = "selectedCountryCode"
	KeyAdminLogin         = "isAdminLogin"
	KeyEmail              = "email"
	KeyProfileRoute       = "profileRoute"
)

// tokenKeys lists the known token key names in read priority order.
var tokenKeys = []string{KeyToken, KeyAuthToken, KeyAccessToken}

// Role identifies the user's marketplace role.
type Role string

const (
	RoleRenter    Role = "renter"
	RoleHomeowner Role = "homeowner"
	RoleAgent     Role = "agent"
)

// ParseRole maps a raw string to a Role, defaulting to RoleRenter for
// anything absent or unknown.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleHomeowner:
		return RoleHomeowner
	case RoleAgent:
		return RoleAgent
	default:
		return RoleRenter
	}
}

// AuthMode is a transient flag recording how the current auth flow started.
type AuthMode string

const (
	AuthModeSignin AuthMode = "signin"
	AuthModeSignup AuthMode = "signup"
)

// Store reads and writes session facts through a storage.Store.
type Store struct {
	kv storage.Store
}

// New constructs a session Store over kv.
func New(kv storage.Store) *Store {
	return &Store{kv: kv}
}

// Token returns the first non-empty token found across the known key names,
// in priority order, or "" when none is present.
func (s *Store) Token() string {
	for _, key := range tokenKeys {
		if v, ok := s.kv.Get(key); ok && v != "" {
			return v
		}
	}
	return ""
}

// HasToken reports whether any token is stored.
func (s *Store) HasToken() bool {
	return s.Token() != ""
}

// SetToken clears all known token keys and writes value under preferredKey.
// An empty or unknown preferredKey falls back to the canonical key, so at
// most one key holds a value afterwards.
func (s *Store) SetToken(value, preferredKey string) {
	key := KeyToken
	for _, k := range tokenKeys {
		if k == preferredKey {
			key = preferredKey
		}
		s.kv.Delete(k)
	}
	s.kv.Set(key, value)
}

// ClearAllTokens removes every token key plus the cached profile route.
// Used on logout and on a 401 from the backend.
func (s *Store) ClearAllTokens() {
	for _, k := range tokenKeys {
		s.kv.Delete(k)
	}
	s.kv.Delete(KeyProfileRoute)
}

// UpdateFromResponse probes a decoded backend response for a token under any
// of the known field names and stores the first hit. Fields the backend may
// or may not include (email, role, isOnboarded) are mirrored into the store
// when present, either at the top level or under a nested "user" object.
// Returns whether a token was found. The backend response shape is not
// guaranteed, so every access is optional.
func (s *Store) UpdateFromResponse(payload map[string]any) bool {
	if payload == nil {
		return false
	}

	token := ""
	for _, field := range []string{"token", "authToken", "accessToken"} {
		if v, ok := payload[field].(string); ok && v != "" {
			token = v
			break
		}
	}
	if token == "" {
		return false
	}
	s.SetToken(token, KeyToken)

	s.mirrorFields(payload)
	if user, ok := payload["user"].(map[string]any); ok {
		s.mirrorFields(user)
	}
	return true
}

func (s *Store) mirrorFields(obj map[string]any) {
	if v, ok := obj["email"].(string); ok && v != "" {
		s.kv.Set(KeyEmail, v)
	}
	if v, ok := obj["role"].(string); ok && v != "" {
		s.kv.Set(KeyUserRole, string(ParseRole(v)))
	}
	if v, ok := obj["isOnboarded"].(bool); ok {
		s.SetOnboarded(v)
	}
}

// Role returns the persisted role, defaulting to RoleRenter.
func (s *Store) Role() Role {
	r, _ := s.RoleIfSet()
	return r
}

// RoleIfSet returns the persisted role and whether a valid role was actually
// stored, so callers can fall back to other sources before defaulting.
func (s *Store) RoleIfSet() (Role, bool) {
	v, ok := s.kv.Get(KeyUserRole)
	if !ok {
		return RoleRenter, false
	}
	switch Role(v) {
	case RoleRenter, RoleHomeowner, RoleAgent:
		return Role(v), true
	default:
		return RoleRenter, false
	}
}

// SetRole persists the role.
func (s *Store) SetRole(r Role) {
	s.kv.Set(KeyUserRole, string(ParseRole(string(r))))
}

// Onboarded reports the locally cached onboarding flag.
func (s *Store) Onboarded() bool {
	v, _ := s.kv.Get(KeyOnboarded)
	return v == "true"
}

// SetOnboarded persists the onboarding flag.
func (s *Store) SetOnboarded(done bool) {
	if done {
		s.kv.Set(KeyOnboarded, "true")
	} else {
		s.kv.Set(KeyOnboarded, "false")
	}
}

// AuthMode returns the transient auth-flow flag, or "" when unset.
func (s *Store) AuthMode() AuthMode {
	v, _ := s.kv.Get(KeyAuthMode)
	switch AuthMode(v) {
	case AuthModeSignin, AuthModeSignup:
		return AuthMode(v)
	default:
		return ""
	}
}

// SetAuthMode records how the current auth flow started.
func (s *Store) SetAuthMode(m AuthMode) {
	s.kv.Set(KeyAuthMode, string(m))
}

// ClearAuthMode removes the transient auth-flow flag.
func (s *Store) ClearAuthMode() {
	s.kv.Delete(KeyAuthMode)
}

// RedirectPath returns the remembered pre-redirect path, or "".
func (s *Store) RedirectPath() string {
	v, _ := s.kv.Get(KeyRedirectAfterLogin)
	return v
}

// SetRedirectPath remembers the path to return to after sign-in.
func (s *Store) SetRedirectPath(path string) {
	s.kv.Set(KeyRedirectAfterLogin, path)
}

// ClearRedirectPath forgets the remembered path.
func (s *Store) ClearRedirectPath() {
	s.kv.Delete(KeyRedirectAfterLogin)
}

// Email returns the persisted account email, or "".
func (s *Store) Email() string {
	v, _ := s.kv.Get(KeyEmail)
	return v
}

// IsAdminLogin reports whether the session carries the admin marker.
func (s *Store) IsAdminLogin() bool {
	v, _ := s.kv.Get(KeyAdminLogin)
	return v == "true"
}
