package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/teamspace-io/teamspace/internal/models"
	"github.com/teamspace-io/teamspace/internal/store"
)

const sessionCookieName = "_session"

var (
	ErrInvalidSession = errors.New("invalid session")
)

// CookieSessions resolves browser sessions. The cookie carries only the
// session ID signed with HMAC-SHA256; all session data lives server-side in
// the session store. The signature stops offline guessing of session IDs
// without a store round trip.
type CookieSessions struct {
	sessions store.SessionStore
	secret   []byte
}

// NewCookieSessions creates a cookie-based session provider.
// The secret must be at least 32 bytes.
func NewCookieSessions(sessions store.SessionStore, secret []byte) (*CookieSessions, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("session secret must be at least 32 bytes")
	}

	return &CookieSessions{
		sessions: sessions,
		secret:   secret,
	}, nil
}

// sign computes the cookie signature for a session ID.
func (c *CookieSessions) sign(sessionID string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(sessionID))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// IssueCookie sets the session cookie on the response.
func (c *CookieSessions) IssueCookie(w http.ResponseWriter, session *models.Session) {
	id := session.SessionID.String()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    id + "." + c.sign(id),
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		Expires:  session.ExpiresAt,
	})
}

// ClearCookie expires the session cookie on the response.
func (c *CookieSessions) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}

// GetSession extracts, validates, and loads the session for a request.
// Returns ErrInvalidSession on any malformed or unsigned cookie, and the
// store's sentinel errors for unknown or expired sessions.
func (c *CookieSessions) GetSession(r *http.Request) (*models.Session, error) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return nil, ErrInvalidSession
	}

	id, sig, found := strings.Cut(cookie.Value, ".")
	if !found {
		log.Debug().Msg("Invalid session cookie format")
		return nil, ErrInvalidSession
	}

	if !hmac.Equal([]byte(sig), []byte(c.sign(id))) {
		log.Debug().Msg("Session cookie signature validation failed")
		return nil, ErrInvalidSession
	}

	sessionID, err := uuid.Parse(id)
	if err != nil {
		log.Debug().Msg("Invalid session ID encoding")
		return nil, ErrInvalidSession
	}

	session, err := c.sessions.Get(r.Context(), sessionID)
	if err != nil {
		return nil, err
	}

	// Best effort; an audit timestamp must not fail the request
	if err := c.sessions.Touch(r.Context(), sessionID); err != nil {
		log.Debug().Err(err).Msg("Failed to touch session")
	}

	return session, nil
}

// DeleteSession removes the server-side session referenced by the request's
// cookie. Used by logout.
func (c *CookieSessions) DeleteSession(r *http.Request) error {
	session, err := c.GetSession(r)
	if err != nil {
		return err
	}
	return c.sessions.Delete(r.Context(), session.SessionID)
}
