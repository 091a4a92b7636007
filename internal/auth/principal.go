package auth

import (
	"context"

	"github.com/google/uuid"
)

// Principal represents the authenticated identity making a request,
// independent of any tenant membership. It is created by the session
// resolver from a validated credential, never persisted, and immutable
// for the request's lifetime.
type Principal struct {
	PrincipalID uuid.UUID
	Email       string
}

type contextKey int

const (
	principalContextKey contextKey = iota
)

// WithPrincipal returns a context carrying the authenticated principal.
func WithPrincipal(ctx context.Context, principal *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, principal)
}

// PrincipalFromContext extracts the authenticated principal from the request
// context. Returns nil if no principal is present (unauthenticated request).
func PrincipalFromContext(ctx context.Context) *Principal {
	principal, _ := ctx.Value(principalContextKey).(*Principal)
	return principal
}
