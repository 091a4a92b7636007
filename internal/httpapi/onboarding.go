package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/teamspace-io/teamspace/internal/auth"
	"github.com/teamspace-io/teamspace/internal/models"
	"github.com/teamspace-io/teamspace/internal/telemetry"
)

type onboardingRequest struct {
	Username      string  `json:"username"`
	FullName      *string `json:"full_name,omitempty"`
	WorkspaceName string  `json:"workspace_name,omitempty"`
	InviteCode    string  `json:"invite_code,omitempty"`
}

type onboardingResponse struct {
	Profile     *profileResponse `json:"profile"`
	WorkspaceID string           `json:"workspace_id"`
}

// handleOnboarding completes onboarding for an authenticated principal:
// either create a fresh workspace (the caller becomes its admin) or join an
// existing one via invite code. Exactly one of the two paths must be chosen.
func (s *Server) handleOnboarding(ctx context.Context, rc *auth.RequestContext, r *http.Request) (any, error) {
	var req onboardingRequest
	if err := decodeJSON(r, &req); err != nil {
		return nil, err
	}

	if req.Username == "" {
		return nil, auth.ErrValidation("username is required")
	}
	if (req.WorkspaceName == "") == (req.InviteCode == "") {
		return nil, auth.ErrValidation("exactly one of workspace_name or invite_code is required")
	}
	if rc.Profile != nil && rc.Profile.Complete() {
		return nil, auth.ErrValidation("onboarding already completed")
	}

	var (
		workspaceID uuid.UUID
		role        string
	)

	switch {
	case req.WorkspaceName != "":
		ws := &models.Workspace{
			WorkspaceID:      uuid.Must(uuid.NewV7()),
			Name:             req.WorkspaceName,
			OwnerPrincipalID: rc.Principal.PrincipalID,
			CreatedAt:        time.Now(),
			UpdatedAt:        time.Now(),
		}
		if err := s.workspaces.Create(ctx, ws); err != nil {
			return nil, err
		}
		workspaceID = ws.WorkspaceID
		role = models.RoleAdmin

	default:
		invite, err := s.invites.GetByCode(ctx, req.InviteCode)
		if err != nil {
			return nil, err
		}
		workspaceID = invite.WorkspaceID
		role = models.RoleMember
		telemetry.GetMetrics().InvitesRedeemedTotal.Add(ctx, 1)
	}

	profile := &models.Profile{
		ProfileID:   uuid.Must(uuid.NewV7()),
		PrincipalID: rc.Principal.PrincipalID,
		WorkspaceID: &workspaceID,
		Username:    req.Username,
		FullName:    req.FullName,
		Email:       rc.Principal.Email,
		Role:        role,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, err
	}

	telemetry.GetMetrics().OnboardingCompletions.Add(ctx, 1)

	return &Result{
		Status: http.StatusCreated,
		Data: &onboardingResponse{
			Profile:     toProfileResponse(profile),
			WorkspaceID: workspaceID.String(),
		},
	}, nil
}
