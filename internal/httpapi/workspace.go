package httpapi

import (
	"context"
	"crypto/rand"
	"net/http"
	"time"

	"github.com/mr-tron/base58"
	"github.com/teamspace-io/teamspace/internal/auth"
	"github.com/teamspace-io/teamspace/internal/models"
)

const (
	inviteCodeBytes = 12
	inviteTTL       = 7 * 24 * time.Hour
)

type workspaceResponse struct {
	WorkspaceID string `json:"workspace_id"`
	Name        string `json:"name"`
	CreatedAt   string `json:"created_at"`
}

func (s *Server) handleGetWorkspace(ctx context.Context, rc *auth.RequestContext, r *http.Request) (any, error) {
	if err := auth.CheckScope(rc.Profile, rc.TargetWorkspace); err != nil {
		return nil, err
	}

	ws, err := s.workspaces.Get(ctx, *rc.TargetWorkspace)
	if err != nil {
		return nil, err
	}

	return &workspaceResponse{
		WorkspaceID: ws.WorkspaceID.String(),
		Name:        ws.Name,
		CreatedAt:   ws.CreatedAt.UTC().Format(time.RFC3339),
	}, nil
}

type membersResponse struct {
	Members []*profileResponse `json:"members"`
}

func (s *Server) handleListMembers(ctx context.Context, rc *auth.RequestContext, r *http.Request) (any, error) {
	if err := auth.CheckScope(rc.Profile, rc.TargetWorkspace); err != nil {
		return nil, err
	}

	profiles, err := s.profiles.ListByWorkspace(ctx, *rc.TargetWorkspace)
	if err != nil {
		return nil, err
	}

	resp := &membersResponse{Members: make([]*profileResponse, 0, len(profiles))}
	for _, p := range profiles {
		resp.Members = append(resp.Members, toProfileResponse(p))
	}
	return resp, nil
}

type inviteResponse struct {
	Code      string `json:"code"`
	ExpiresAt string `json:"expires_at"`
}

// handleCreateInvite mints a redeemable invite code for the workspace.
// Admin only.
func (s *Server) handleCreateInvite(ctx context.Context, rc *auth.RequestContext, r *http.Request) (any, error) {
	if err := auth.CheckScope(rc.Profile, rc.TargetWorkspace); err != nil {
		return nil, err
	}
	if !rc.Profile.IsAdmin() {
		return nil, auth.NewError(auth.KindForbiddenWorkspace, "Admin role required")
	}

	buf := make([]byte, inviteCodeBytes)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}

	invite := &models.Invite{
		Code:        base58.Encode(buf),
		WorkspaceID: *rc.TargetWorkspace,
		CreatedBy:   rc.Profile.ProfileID,
		CreatedAt:   time.Now(),
		ExpiresAt:   time.Now().Add(inviteTTL),
	}

	if err := s.invites.Create(ctx, invite); err != nil {
		return nil, err
	}

	return &Result{
		Status: http.StatusCreated,
		Data: &inviteResponse{
			Code:      invite.Code,
			ExpiresAt: invite.ExpiresAt.UTC().Format(time.RFC3339),
		},
	}, nil
}
