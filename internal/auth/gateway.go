package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/teamspace-io/teamspace/internal/models"
	"github.com/teamspace-io/teamspace/internal/store"
	"github.com/teamspace-io/teamspace/internal/telemetry"
)

// Requirement declares what a protected handler needs before it may run.
type Requirement int

const (
	// AuthenticatedOnly requires a verified principal; a profile is loaded
	// when one exists but its absence does not block the handler.
	AuthenticatedOnly Requirement = iota

	// ProfileRequired additionally requires a workspace-bound profile.
	// Handlers behind this gate never observe a nil or incomplete profile.
	ProfileRequired
)

func (r Requirement) String() string {
	switch r {
	case ProfileRequired:
		return "profile_required"
	default:
		return "authenticated_only"
	}
}

// RequestContext is the immutable request-scoped aggregate handed to
// protected handlers. It is threaded explicitly through call parameters, so
// a handler can never observe a stale or wrong-tenant context. Lifetime is
// one request; it is never persisted.
type RequestContext struct {
	Principal *Principal
	Profile   *models.Profile // nil when the principal has not onboarded

	// TargetWorkspace is the workspace identifier carried by the request's
	// path, when present. Handlers pass it to CheckScope themselves, since
	// which resource a request targets is handler-specific.
	TargetWorkspace *uuid.UUID
}

// WorkspaceID returns the caller's workspace, or nil for incomplete profiles.
func (rc *RequestContext) WorkspaceID() *uuid.UUID {
	if rc.Profile == nil {
		return nil
	}
	return rc.Profile.WorkspaceID
}

// Gateway resolves a raw request into a verified principal, loads the
// principal's profile, and enforces onboarding-completion preconditions.
// It is stateless per request: concurrent requests do not interact and the
// same request resolved twice yields the same decision.
type Gateway struct {
	resolver *Resolver
	profiles store.ProfileStore
}

// NewGateway creates an access-control gateway.
func NewGateway(resolver *Resolver, profiles store.ProfileStore) *Gateway {
	return &Gateway{
		resolver: resolver,
		profiles: profiles,
	}
}

// Authorize runs the resolution pipeline for one request:
//
//  1. Resolve the credential into a Principal (401 on failure).
//  2. Load the principal's profile; absence is only fatal under
//     ProfileRequired (403 ProfileIncomplete).
//  3. Build the immutable RequestContext, attaching the target workspace
//     from the request path for the handler's own scope check.
//
// The decision is recorded in metrics by requirement and outcome.
func (g *Gateway) Authorize(ctx context.Context, r *http.Request, requirement Requirement) (*RequestContext, error) {
	m := telemetry.GetMetrics()

	principal, err := g.resolver.Resolve(r)
	if err != nil {
		m.RecordAuthDecision(ctx, requirement.String(), "unauthenticated")
		return nil, err
	}

	// A workspace id in the path doubles as the profile lookup hint: it
	// narrows the lookup, never widens it.
	targetWorkspace, err := targetWorkspaceFromPath(r)
	if err != nil {
		m.RecordAuthDecision(ctx, requirement.String(), "invalid_target")
		return nil, err
	}

	profile, err := g.loadProfile(ctx, principal.PrincipalID, targetWorkspace)
	if err != nil {
		m.RecordAuthDecision(ctx, requirement.String(), "upstream_failure")
		return nil, err
	}

	if requirement == ProfileRequired && (profile == nil || !profile.Complete()) {
		log.Debug().
			Str("principal_id", principal.PrincipalID.String()).
			Msg("Gateway: profile incomplete")
		m.RecordAuthDecision(ctx, requirement.String(), "profile_incomplete")
		return nil, ErrProfileIncomplete()
	}

	m.RecordAuthDecision(ctx, requirement.String(), "allowed")

	return &RequestContext{
		Principal:       principal,
		Profile:         profile,
		TargetWorkspace: targetWorkspace,
	}, nil
}

// loadProfile loads the profile for a principal. Absence is a legitimate
// pre-onboarding state, reported as a nil profile rather than an error.
//
// When a workspace hint matches no profile, the lookup is retried without the
// hint: a caller whose profile lives in another workspace must surface as a
// scope denial downstream, not as an incomplete profile. The fallback cannot
// widen access, since CheckScope still compares the profile's workspace
// against the target.
func (g *Gateway) loadProfile(ctx context.Context, principalID uuid.UUID, workspaceHint *uuid.UUID) (*models.Profile, error) {
	profile, err := g.profiles.GetByPrincipal(ctx, principalID, workspaceHint)
	if errors.Is(err, store.ErrProfileNotFound) && workspaceHint != nil {
		profile, err = g.profiles.GetByPrincipal(ctx, principalID, nil)
	}
	if err != nil {
		if errors.Is(err, store.ErrProfileNotFound) {
			return nil, nil
		}
		return nil, ErrUpstream(err)
	}
	return profile, nil
}

// targetWorkspaceFromPath extracts the {workspace} path parameter when the
// matched route carries one. A present-but-malformed value fails closed.
func targetWorkspaceFromPath(r *http.Request) (*uuid.UUID, error) {
	raw := r.PathValue("workspace")
	if raw == "" {
		return nil, nil
	}
	id, err := ParseWorkspaceID(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
