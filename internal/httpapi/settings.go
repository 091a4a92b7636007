package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/teamspace-io/teamspace/internal/auth"
	"github.com/teamspace-io/teamspace/internal/models"
	"github.com/teamspace-io/teamspace/internal/store"
)

type settingsResponse struct {
	WorkspaceID string            `json:"workspace_id"`
	Departments []string          `json:"departments"`
	Values      map[string]string `json:"values,omitempty"`
	Defaulted   bool              `json:"defaulted"`
	UpdatedAt   *string           `json:"updated_at,omitempty"`
}

// handleGetSettings returns the workspace's settings, falling back to the
// documented default department list when no settings row exists yet.
// Absence of a row is an expected state for young workspaces, not a 404.
func (s *Server) handleGetSettings(ctx context.Context, rc *auth.RequestContext, r *http.Request) (any, error) {
	if err := auth.CheckScope(rc.Profile, rc.TargetWorkspace); err != nil {
		return nil, err
	}

	settings, err := s.workspaces.GetSettings(ctx, *rc.TargetWorkspace)
	if err != nil {
		if errors.Is(err, store.ErrSettingsNotFound) {
			return &settingsResponse{
				WorkspaceID: rc.TargetWorkspace.String(),
				Departments: models.DefaultDepartments(),
				Defaulted:   true,
			}, nil
		}
		return nil, err
	}

	updatedAt := settings.UpdatedAt.UTC().Format(time.RFC3339)
	return &settingsResponse{
		WorkspaceID: settings.WorkspaceID.String(),
		Departments: settings.Departments,
		Values:      settings.Values,
		UpdatedAt:   &updatedAt,
	}, nil
}

type putSettingsRequest struct {
	Departments []string          `json:"departments"`
	Values      map[string]string `json:"values,omitempty"`
}

// handlePutSettings replaces the workspace's settings. Admin only.
func (s *Server) handlePutSettings(ctx context.Context, rc *auth.RequestContext, r *http.Request) (any, error) {
	if err := auth.CheckScope(rc.Profile, rc.TargetWorkspace); err != nil {
		return nil, err
	}
	if !rc.Profile.IsAdmin() {
		return nil, auth.NewError(auth.KindForbiddenWorkspace, "Admin role required")
	}

	var req putSettingsRequest
	if err := decodeJSON(r, &req); err != nil {
		return nil, err
	}
	if len(req.Departments) == 0 {
		return nil, auth.ErrValidation("departments must not be empty")
	}

	settings := &models.WorkspaceSettings{
		WorkspaceID: *rc.TargetWorkspace,
		Departments: req.Departments,
		Values:      req.Values,
	}

	if err := s.workspaces.PutSettings(ctx, settings); err != nil {
		return nil, err
	}

	// Re-read so the response carries the store's timestamp
	stored, err := s.workspaces.GetSettings(ctx, settings.WorkspaceID)
	if err != nil {
		return nil, err
	}

	updatedAt := stored.UpdatedAt.UTC().Format(time.RFC3339)
	return &settingsResponse{
		WorkspaceID: stored.WorkspaceID.String(),
		Departments: stored.Departments,
		Values:      stored.Values,
		UpdatedAt:   &updatedAt,
	}, nil
}
