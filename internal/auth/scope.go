package auth

import (
	"github.com/google/uuid"
	"github.com/teamspace-io/teamspace/internal/models"
)

// CheckScope is the single tenant-isolation boundary: it allows access iff
// the profile's workspace equals the target workspace. Every mismatch -
// nil profile, incomplete profile, absent target - fails closed with
// ForbiddenWorkspace, never open. There is no third outcome.
func CheckScope(profile *models.Profile, targetWorkspaceID *uuid.UUID) error {
	if profile == nil || profile.WorkspaceID == nil {
		return ErrForbiddenWorkspace()
	}
	if targetWorkspaceID == nil {
		return ErrForbiddenWorkspace()
	}
	if *profile.WorkspaceID != *targetWorkspaceID {
		return ErrForbiddenWorkspace()
	}
	return nil
}

// ParseWorkspaceID parses a raw workspace identifier from a path or query
// parameter. A missing or malformed value fails closed: the caller receives
// a taxonomy error, never a zero UUID that might accidentally match.
func ParseWorkspaceID(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, ErrValidation("workspace id is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrValidation("workspace id is not a valid UUID")
	}
	if id == uuid.Nil {
		return uuid.Nil, ErrValidation("workspace id is required")
	}
	return id, nil
}
