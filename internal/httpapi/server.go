package httpapi

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/teamspace-io/teamspace/internal/auth"
	"github.com/teamspace-io/teamspace/internal/store"
	"github.com/teamspace-io/teamspace/internal/telemetry"
)

// HandlerFunc is the shape of a protected handler. Handlers receive the
// immutable RequestContext the gateway built and return a payload or a
// failure; they never touch the ResponseWriter, which is how the envelope
// keeps its one-response-per-request guarantee.
type HandlerFunc func(ctx context.Context, rc *auth.RequestContext, r *http.Request) (any, error)

// Server holds the API's dependencies and exposes the routed handler.
type Server struct {
	gateway    *auth.Gateway
	profiles   store.ProfileStore
	workspaces store.WorkspaceStore
	invites    store.InviteStore
}

// NewServer creates the API server.
func NewServer(gateway *auth.Gateway, profiles store.ProfileStore, workspaces store.WorkspaceStore, invites store.InviteStore) *Server {
	return &Server{
		gateway:    gateway,
		profiles:   profiles,
		workspaces: workspaces,
		invites:    invites,
	}
}

// Handler returns the HTTP handler for the API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint for load balancer
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("GET /api/v1/me", s.wrap(auth.AuthenticatedOnly, s.handleGetMe))
	mux.Handle("POST /api/v1/onboarding", s.wrap(auth.AuthenticatedOnly, s.handleOnboarding))

	mux.Handle("GET /api/v1/profile", s.wrap(auth.ProfileRequired, s.handleGetProfile))
	mux.Handle("PATCH /api/v1/profile", s.wrap(auth.ProfileRequired, s.handleUpdateProfile))

	mux.Handle("GET /api/v1/workspaces/{workspace}", s.wrap(auth.ProfileRequired, s.handleGetWorkspace))
	mux.Handle("GET /api/v1/workspaces/{workspace}/settings", s.wrap(auth.ProfileRequired, s.handleGetSettings))
	mux.Handle("PUT /api/v1/workspaces/{workspace}/settings", s.wrap(auth.ProfileRequired, s.handlePutSettings))
	mux.Handle("GET /api/v1/workspaces/{workspace}/members", s.wrap(auth.ProfileRequired, s.handleListMembers))
	mux.Handle("POST /api/v1/workspaces/{workspace}/invites", s.wrap(auth.ProfileRequired, s.handleCreateInvite))

	return mux
}

// wrap composes the access gateway and the response envelope around a
// handler. The pipeline per request:
//
//	resolve credential -> load profile -> requirement gate -> handler -> envelope
//
// Failures at any step are caught here exactly once; nothing escapes as a
// raw transport-level fault, including panics.
func (s *Server) wrap(requirement auth.Requirement, h HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error().Interface("panic", rec).Str("path", r.URL.Path).Msg("Recovered panic in handler")
				telemetry.GetMetrics().PanicsRecoveredTotal.Add(r.Context(), 1)
				writeFailure(r.Context(), w, auth.NewError(auth.KindInternal, "Internal error"))
			}
		}()

		rc, err := s.gateway.Authorize(r.Context(), r, requirement)
		if err != nil {
			writeFailure(r.Context(), w, err)
			return
		}

		ctx := auth.WithPrincipal(r.Context(), rc.Principal)

		data, err := h(ctx, rc, r)
		if err != nil {
			writeFailure(ctx, w, err)
			return
		}

		if result, ok := data.(*Result); ok {
			writeSuccess(w, result.Status, result.Data)
			return
		}

		writeSuccess(w, http.StatusOK, data)
	})
}
