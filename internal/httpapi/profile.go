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

type principalResponse struct {
	PrincipalID string `json:"principal_id"`
	Email       string `json:"email"`
}

type profileResponse struct {
	ProfileID   string  `json:"profile_id"`
	PrincipalID string  `json:"principal_id"`
	WorkspaceID *string `json:"workspace_id"`
	Username    string  `json:"username"`
	FullName    *string `json:"full_name,omitempty"`
	Email       string  `json:"email"`
	Role        string  `json:"role,omitempty"`
	UpdatedAt   string  `json:"updated_at"`
}

func toProfileResponse(p *models.Profile) *profileResponse {
	resp := &profileResponse{
		ProfileID:   p.ProfileID.String(),
		PrincipalID: p.PrincipalID.String(),
		Username:    p.Username,
		FullName:    p.FullName,
		Email:       p.Email,
		Role:        p.Role,
		UpdatedAt:   p.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if p.WorkspaceID != nil {
		id := p.WorkspaceID.String()
		resp.WorkspaceID = &id
	}
	return resp
}

type meResponse struct {
	Principal principalResponse `json:"principal"`
	Profile   *profileResponse  `json:"profile"`
	State     string            `json:"state"`
}

// handleGetMe is the server-side source of truth the client auth state
// machine mirrors: it reports the principal, the profile when one exists,
// and the terminal auth state the client must act on.
func (s *Server) handleGetMe(ctx context.Context, rc *auth.RequestContext, r *http.Request) (any, error) {
	resp := &meResponse{
		Principal: principalResponse{
			PrincipalID: rc.Principal.PrincipalID.String(),
			Email:       rc.Principal.Email,
		},
		State: auth.ResolveState(rc.Principal, rc.Profile).String(),
	}
	if rc.Profile != nil {
		resp.Profile = toProfileResponse(rc.Profile)
	}
	return resp, nil
}

func (s *Server) handleGetProfile(ctx context.Context, rc *auth.RequestContext, r *http.Request) (any, error) {
	return toProfileResponse(rc.Profile), nil
}

type updateProfileRequest struct {
	ProfileID *string `json:"profile_id,omitempty"`
	Username  string  `json:"username"`
	FullName  *string `json:"full_name,omitempty"`
}

// handleUpdateProfile updates the mutable fields of a profile. The target
// defaults to the caller's own profile; a caller naming another profile_id
// is rejected by the store's ownership predicate, so the check holds even
// if a future route bypasses this handler's context.
func (s *Server) handleUpdateProfile(ctx context.Context, rc *auth.RequestContext, r *http.Request) (any, error) {
	var req updateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		return nil, err
	}

	if req.Username == "" {
		return nil, auth.ErrValidation("username is required")
	}

	targetID := rc.Profile.ProfileID
	if req.ProfileID != nil {
		id, err := uuid.Parse(*req.ProfileID)
		if err != nil {
			return nil, auth.ErrValidation("profile_id is not a valid UUID")
		}
		targetID = id
	}

	updated := *rc.Profile
	updated.ProfileID = targetID
	updated.Username = req.Username
	updated.FullName = req.FullName

	if err := s.profiles.Update(ctx, &updated, rc.Principal.PrincipalID, *rc.WorkspaceID()); err != nil {
		return nil, err
	}

	telemetry.GetMetrics().ProfileUpdatesTotal.Add(ctx, 1)

	profile, err := s.profiles.Get(ctx, targetID)
	if err != nil {
		return nil, err
	}

	return toProfileResponse(profile), nil
}
