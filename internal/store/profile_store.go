package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/teamspace-io/teamspace/internal/models"
)

// Sentinel errors for profile store operations
var (
	ErrProfileNotFound      = errors.New("profile not found")
	ErrProfileAlreadyExists = errors.New("profile already exists")
	ErrNotProfileOwner      = errors.New("profile not owned by principal")
)

// ProfileStore defines the interface for profile storage operations.
// Profiles bind a principal to a workspace; absence of a profile is an
// expected pre-onboarding state, not a storage failure.
type ProfileStore interface {
	// Create creates a new profile.
	// Returns ErrProfileAlreadyExists if the (principal, workspace) pair
	// already has a profile.
	Create(ctx context.Context, profile *models.Profile) error

	// Get retrieves a profile by ID.
	// Returns ErrProfileNotFound if the profile doesn't exist.
	Get(ctx context.Context, profileID uuid.UUID) (*models.Profile, error)

	// GetByPrincipal retrieves the profile for a principal. When workspaceHint
	// is non-nil the lookup is narrowed to that workspace; when nil, the
	// principal's sole profile is returned (most recently updated if the
	// principal somehow holds several).
	// Returns ErrProfileNotFound if no matching profile exists.
	GetByPrincipal(ctx context.Context, principalID uuid.UUID, workspaceHint *uuid.UUID) (*models.Profile, error)

	// Update updates the mutable fields of an existing profile. The caller's
	// principal and workspace ids are passed explicitly so the store can
	// re-validate ownership and scope independently of the gateway.
	// Returns ErrProfileNotFound if the profile doesn't exist, and
	// ErrNotProfileOwner if it is not owned by ownerPrincipalID or lives in
	// a different workspace.
	Update(ctx context.Context, profile *models.Profile, ownerPrincipalID uuid.UUID, workspaceID uuid.UUID) error

	// ListByWorkspace returns all profiles belonging to a workspace.
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*models.Profile, error)
}
