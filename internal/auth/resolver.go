package auth

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/teamspace-io/teamspace/internal/models"
)

// SessionProvider provides access to server-side sessions from HTTP requests.
// This interface decouples the resolver from the cookie implementation.
type SessionProvider interface {
	// GetSession extracts and validates the session from a request.
	GetSession(r *http.Request) (*models.Session, error)
}

// Resolver turns a raw request's credential material into a verified
// Principal. It supports both bearer JWTs (CLI, service integrations) and
// session cookies (browsers) behind one contract: a request that presents a
// bearer token is decided on that token alone - an invalid token never falls
// back to the cookie path.
type Resolver struct {
	tokens   *TokenVerifier
	sessions SessionProvider
}

// NewResolver creates a session resolver. Either credential path may be nil
// when the deployment doesn't use it.
func NewResolver(tokens *TokenVerifier, sessions SessionProvider) *Resolver {
	return &Resolver{
		tokens:   tokens,
		sessions: sessions,
	}
}

// Resolve validates the request's credential and returns the principal it
// asserts. On missing, malformed, or expired credentials it fails with the
// Unauthenticated taxonomy error. No side effects; credential contents are
// never logged.
func (r *Resolver) Resolve(req *http.Request) (*Principal, error) {
	if token := extractBearerToken(req); token != "" {
		if r.tokens == nil {
			log.Debug().Msg("Bearer token presented but token auth is not configured")
			return nil, ErrUnauthenticated(nil)
		}

		principal, err := r.tokens.Verify(token)
		if err != nil {
			log.Debug().Err(err).Msg("Bearer token verification failed")
			return nil, ErrUnauthenticated(err)
		}

		return principal, nil
	}

	if r.sessions == nil {
		return nil, ErrUnauthenticated(nil)
	}

	session, err := r.sessions.GetSession(req)
	if err != nil {
		log.Debug().Err(err).Msg("Session authentication failed")
		return nil, ErrUnauthenticated(err)
	}

	return &Principal{
		PrincipalID: session.PrincipalID,
		Email:       session.Email,
	}, nil
}

// extractBearerToken extracts the JWT from the Authorization header.
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return parts[1]
}
