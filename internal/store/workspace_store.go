package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/teamspace-io/teamspace/internal/models"
)

// Sentinel errors for workspace store operations
var (
	ErrWorkspaceNotFound      = errors.New("workspace not found")
	ErrWorkspaceAlreadyExists = errors.New("workspace already exists")
	ErrSettingsNotFound       = errors.New("workspace settings not found")
	ErrInviteNotFound         = errors.New("invite not found")
	ErrInviteExpired          = errors.New("invite expired")
)

// WorkspaceStore defines the interface for workspace (tenant) storage
// operations. Workspaces are never mutated by the access gateway; it only
// performs read-only lookups for scope checks and settings fallback.
type WorkspaceStore interface {
	// Create creates a new workspace.
	// Returns ErrWorkspaceAlreadyExists if a workspace with the same ID exists.
	Create(ctx context.Context, ws *models.Workspace) error

	// Get retrieves a workspace by ID.
	// Returns ErrWorkspaceNotFound if the workspace doesn't exist.
	Get(ctx context.Context, workspaceID uuid.UUID) (*models.Workspace, error)

	// GetSettings retrieves the settings row for a workspace.
	// Returns ErrSettingsNotFound when no row exists; callers fall back to
	// the documented defaults rather than treating absence as a failure.
	GetSettings(ctx context.Context, workspaceID uuid.UUID) (*models.WorkspaceSettings, error)

	// PutSettings replaces the settings row for a workspace, creating it if
	// absent. Returns ErrWorkspaceNotFound if the workspace doesn't exist.
	PutSettings(ctx context.Context, settings *models.WorkspaceSettings) error
}

// InviteStore manages workspace invite codes minted during onboarding.
type InviteStore interface {
	// Create stores a new invite code.
	Create(ctx context.Context, invite *models.Invite) error

	// GetByCode retrieves an invite by its base58 code.
	// Returns ErrInviteNotFound for unknown codes and ErrInviteExpired for
	// codes past their expiry.
	GetByCode(ctx context.Context, code string) (*models.Invite, error)
}
