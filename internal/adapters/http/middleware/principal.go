package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

// Headers set by the fronting identity proxy.
const (
	HeaderUser = "X-Arff-User"
	HeaderRole = "X-Arff-Role"
)

// Role is a caller's visibility level.
type Role string

// Roles, from most to least privileged.
const (
	RoleAdmin       Role = "admin"
	RoleCoordinator Role = "coordinator"
	RoleInstructor  Role = "instructor"
	RoleViewer      Role = "viewer"
)

// ParseRole returns the role named by s, case-insensitively.
func ParseRole(s string) (Role, bool) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleAdmin, RoleCoordinator, RoleInstructor, RoleViewer:
		return r, true
	}
	return "", false
}

// Principal identifies the caller of a request.
type Principal struct {
	User string
	Role Role
}

// Known reports whether the principal carries both a user and a valid role.
func (p Principal) Known() bool {
	return p.User != "" && p.Role != ""
}

// Allows reports whether the principal may act as any of roles.
// Admin is allowed everything.
func (p Principal) Allows(roles ...Role) bool {
	if p.Role == RoleAdmin {
		return true
	}
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}

type contextKey string

const principalContextKey contextKey = "principal"

// ContextWithPrincipal stores p in ctx.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

// PrincipalFromContext returns the caller stored by the Identity middleware.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalContextKey).(Principal)
	return p, ok && p.Known()
}

// Identity reads the proxy identity headers into the request context.
// An unrecognised role leaves the principal without a role.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := Principal{User: strings.TrimSpace(r.Header.Get(HeaderUser))}
		p.Role, _ = ParseRole(r.Header.Get(HeaderRole))
		next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), p)))
	})
}

// RequireRole wraps next so only callers holding one of roles reach it.
// PRE: Identity ran earlier in the chain
// POST: 401 without a known principal, 403 for a role outside roles
func RequireRole(next http.Handler, roles ...Role) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFromContext(r.Context())
		if !ok {
			slog.Warn("auth_denied", "reason", "no_principal", "path", r.URL.Path)
			http.Error(w, "not authenticated", http.StatusUnauthorized)
			return
		}
		if !p.Allows(roles...) {
			slog.Warn("auth_denied", "reason", "role", "user", p.User, "role", p.Role, "path", r.URL.Path)
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
