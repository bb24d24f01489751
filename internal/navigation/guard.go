package navigation

import "context"

// Decision is a guard's verdict on a transition.
type Decision struct {
	redirect string
}

// Allow lets the transition proceed unmodified.
func Allow() Decision {
	return Decision{}
}

// Redirect aborts the transition and navigates to path instead.
func Redirect(path string) Decision {
	return Decision{redirect: path}
}

// Redirected reports the redirect target, if any.
func (d Decision) Redirected() (string, bool) {
	return d.redirect, d.redirect != ""
}

// Guard is invoked before every transition. from is the zero Location on
// the first navigation.
type Guard func(ctx context.Context, to, from Location) Decision

// AuthChecker reports whether a credential is present.
type AuthChecker interface {
	IsAuthenticated() bool
}

// RequireAuth redirects to loginPath when the target requires
// authentication and checker is not authenticated.
func RequireAuth(checker AuthChecker, loginPath string) Guard {
	return func(_ context.Context, to, _ Location) Decision {
		if to.RequiresAuth && !checker.IsAuthenticated() {
			return Redirect(loginPath)
		}
		return Allow()
	}
}
