package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"marketplace-portal/internal/metrics"
	"marketplace-portal/internal/model"
)

// RedirectTarget is where unauthenticated visitors of a guarded route land.
const RedirectTarget = "/"

type GuardState int

const (
	GuardChecking GuardState = iota
	GuardAuthorized
	GuardRedirected
)

func (s GuardState) String() string {
	switch s {
	case GuardAuthorized:
		return "authorized"
	case GuardRedirected:
		return "redirected"
	default:
		return "checking"
	}
}

type credentialResolver interface {
	Resolve(ctx context.Context, role model.Role) (string, bool, error)
}

// SessionGuard admits a request to a role's routes only while that role has a
// stored credential. The check runs on every request; nothing is cached.
type SessionGuard struct {
	resolver credentialResolver
}

func NewSessionGuard(resolver credentialResolver) *SessionGuard {
	return &SessionGuard{resolver: resolver}
}

// Check evaluates the guard once. A store failure counts as no credential.
func (g *SessionGuard) Check(ctx context.Context, role model.Role) GuardState {
	state := GuardChecking

	_, ok, err := g.resolver.Resolve(ctx, role)
	switch {
	case err != nil:
		slog.Error("session guard lookup failed", "role", role, "error", err)
		state = GuardRedirected
	case ok:
		state = GuardAuthorized
	default:
		state = GuardRedirected
	}

	metrics.GuardDecisionsTotal.WithLabelValues(role.String(), state.String()).Inc()
	return state
}

func (g *SessionGuard) Require(role model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if g.Check(r.Context(), role) != GuardAuthorized {
				slog.Debug("session guard redirect", "role", role, "path", r.URL.Path)
				http.Redirect(w, r, RedirectTarget, http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
