package models

import (
	"time"

	"github.com/google/uuid"
)

// Workspace represents a tenant in the system. Each workspace owns zero or
// more profiles; all resource access is scoped to exactly one workspace.
type Workspace struct {
	WorkspaceID      uuid.UUID // UUIDv7
	Name             string
	OwnerPrincipalID uuid.UUID // Principal who created the workspace
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// DefaultDepartments is the department list served when a workspace has no
// settings row yet. Returned as a fresh copy so callers can't mutate it.
func DefaultDepartments() []string {
	return []string{"General", "Engineering", "Design", "Operations"}
}

// WorkspaceSettings holds named tenant configuration values. Settings are
// read-only to the access gateway; only workspace admins may replace them.
type WorkspaceSettings struct {
	WorkspaceID uuid.UUID
	Departments []string
	Values      map[string]string // Free-form named configuration values
	UpdatedAt   time.Time
}

// Invite is a redeemable code that admits a principal into a workspace
// during onboarding. Codes are random bytes, base58-encoded.
type Invite struct {
	Code        string // base58
	WorkspaceID uuid.UUID
	CreatedBy   uuid.UUID // Profile that minted the invite
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// IsExpired returns true if the invite can no longer be redeemed.
func (i *Invite) IsExpired() bool {
	return time.Now().After(i.ExpiresAt)
}
