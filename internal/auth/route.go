// Package auth decides where the user lands after an authentication event
// and carries a review draft across the sign-in detour.
package auth

import (
	"regexp"
	"strings"

	"github.com/apartey/apartey-client/internal/session"
)

// Application routes referenced by the redirect decision.
const (
	RouteHome           = "/"
	RouteSignin         = "/signin"
	RouteOnboarding     = "/onboarding"
	RouteProfile        = "/profile"
	RouteLandlord       = "/landlord"
	RouteAgentProfile   = "/agent-profile"
	RouteReviewUnlisted = "/write-reviews/unlisted"
)

// listedReviewPath matches the "write review for a listed property" pages.
var listedReviewPath = regexp.MustCompile(`^/write-reviews/listed/[^/]+$`)

// RouteInput is everything the post-login route decision depends on.
type RouteInput struct {
	// AuthMode records how the flow started: signup, signin, or "" for a
	// continuing session.
	AuthMode session.AuthMode
	// Role is the resolved user role.
	Role session.Role
	// Onboarded reports whether onboarding is complete.
	Onboarded bool
	// HasPendingDraft reports whether a review draft awaits resumption.
	HasPendingDraft bool
	// RememberedPath is the pre-redirect path to return to, or "".
	RememberedPath string
}

// DecideRoute maps the post-login state to the single page to navigate to.
// First matching rule wins:
//
//  1. a fresh sign-up goes to onboarding;
//  2. a pending review draft resumes the review flow, back at the listed
//     property's page when the remembered path names one;
//  3. a remembered non-auth path is returned to;
//  4. otherwise an explicit sign-in lands on the role page (signed-in users
//     are assumed onboarded), a continuing session checks onboarding first.
func DecideRoute(in RouteInput) string {
	if in.AuthMode == session.AuthModeSignup {
		return RouteOnboarding
	}

	if in.HasPendingDraft {
		if listedReviewPath.MatchString(in.RememberedPath) {
			return in.RememberedPath
		}
		return RouteReviewUnlisted
	}

	if p := in.RememberedPath; p != "" && !isAuthPath(p) {
		return p
	}

	if in.AuthMode == session.AuthModeSignin {
		return LandingRoute(in.Role)
	}
	if !in.Onboarded {
		return RouteOnboarding
	}
	return LandingRoute(in.Role)
}

// LandingRoute returns the role-based landing page.
func LandingRoute(role session.Role) string {
	switch role {
	case session.RoleHomeowner:
		return RouteLandlord
	case session.RoleAgent:
		return RouteAgentProfile
	default:
		return RouteProfile
	}
}

// isAuthPath reports whether p is itself part of the auth/onboarding flow
// and therefore never a return destination.
func isAuthPath(p string) bool {
	for _, prefix := range []string{RouteSignin, "/signup", RouteOnboarding} {
		if p == prefix || strings.HasPrefix(p, prefix+"/") {
			return true
		}
	}
	return false
}
