package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/teamspace-io/teamspace/internal/models"
)

// Sentinel errors for session store operations
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
)

// SessionStore defines the interface for server-side session storage.
// The browser cookie carries only the opaque session ID.
type SessionStore interface {
	// Create creates a new session.
	Create(ctx context.Context, session *models.Session) error

	// Get retrieves a session by ID.
	// Returns ErrSessionNotFound if the session doesn't exist and
	// ErrSessionExpired if it exists but is past its expiry.
	Get(ctx context.Context, sessionID uuid.UUID) (*models.Session, error)

	// Delete removes a session (logout).
	// Returns ErrSessionNotFound if the session doesn't exist.
	Delete(ctx context.Context, sessionID uuid.UUID) error

	// Touch updates the session's last-used timestamp. Best effort; callers
	// may ignore the error.
	Touch(ctx context.Context, sessionID uuid.UUID) error
}
