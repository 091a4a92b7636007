package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile roles within a workspace.
const (
	RoleAdmin  = "admin"  // Can manage workspace settings and invites
	RoleMember = "member" // Regular workspace member
)

// Profile represents a principal's identity and membership within one workspace.
// A principal may hold profiles in multiple workspaces, but exactly one profile
// exists per (principal, workspace) pair. WorkspaceID is nil until onboarding
// completes; a profile without a workspace is "incomplete" and must not pass
// the profile-required gate.
type Profile struct {
	ProfileID   uuid.UUID  // UUIDv7
	PrincipalID uuid.UUID  // Identity provider subject, FK-equivalent to the principal
	WorkspaceID *uuid.UUID // UUIDv7, nil until onboarding completes
	Username    string
	FullName    *string
	Email       string
	Role        string // "admin" or "member", empty until workspace-bound

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Complete returns true if the profile is bound to a workspace.
// Only complete profiles satisfy the profile-required gate.
func (p *Profile) Complete() bool {
	return p.WorkspaceID != nil
}

// OwnedBy returns true if the profile belongs to the given principal.
func (p *Profile) OwnedBy(principalID uuid.UUID) bool {
	return p.PrincipalID == principalID
}

// IsAdmin returns true if the profile carries the admin role.
func (p *Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}
