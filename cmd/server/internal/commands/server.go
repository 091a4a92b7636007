package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"filippo.io/csrf"
	"github.com/rs/cors"

	"github.com/teamspace-io/teamspace/internal/auth"
	httpmiddleware "github.com/teamspace-io/teamspace/internal/http"
	"github.com/teamspace-io/teamspace/internal/httpapi"
	"github.com/teamspace-io/teamspace/internal/logger"
	"github.com/teamspace-io/teamspace/internal/login"
	"github.com/teamspace-io/teamspace/internal/store"
	memorystore "github.com/teamspace-io/teamspace/internal/store/memory"
	postgresstore "github.com/teamspace-io/teamspace/internal/store/postgres"
	"github.com/teamspace-io/teamspace/internal/telemetry"
)

type ServerCmd struct {
	// Server configuration
	Listen string `help:"HTTP server listen address" default:"0.0.0.0:8443" env:"TEAMSPACE_LISTEN"`
	Cert   string `help:"path to TLS cert file" default:"" env:"TEAMSPACE_TLS_CERT"`
	Key    string `help:"path to TLS key file" default:"" env:"TEAMSPACE_TLS_KEY"`

	// CORS configuration
	CORSOrigins []string `help:"allowed CORS origins for API requests" default:"https://localhost" env:"TEAMSPACE_CORS_ORIGINS"`

	// GitHub OAuth configuration
	ClientID     string        `help:"GitHub client ID" default:"" env:"TEAMSPACE_GITHUB_CLIENT_ID"`
	ClientSecret string        `help:"GitHub client secret" default:"" env:"TEAMSPACE_GITHUB_CLIENT_SECRET"`
	CallbackURL  string        `help:"GitHub callback URL" default:"" env:"TEAMSPACE_GITHUB_CALLBACK_URL"`
	SessionTTL   time.Duration `help:"session TTL" default:"168h" env:"TEAMSPACE_SESSION_TTL"`

	// Session cookie signing
	SessionSecret string `help:"secret key for HMAC signing of session cookies (min 32 bytes)" env:"TEAMSPACE_SESSION_SECRET"`

	// Bearer token verification
	JWTPublicKeyFile string `help:"path to ECDSA public key PEM for bearer token verification" default:"" env:"TEAMSPACE_JWT_PUBLIC_KEY_FILE"`

	// Operational modes
	Tracing bool `help:"enable tracing" default:"false" env:"TEAMSPACE_TRACING"`

	// Store configuration
	StoreType     string             `help:"store type (memory or postgres)" default:"memory" env:"TEAMSPACE_STORE_TYPE" enum:"memory,postgres"`
	PostgresStore PostgresStoreFlags `embed:"" prefix:"postgres-"`
}

type PostgresStoreFlags struct {
	// Connection Configuration
	ConnString string `help:"PostgreSQL connection string" env:"POSTGRES_CONNECTION_STRING"`

	// Connection Pool Configuration
	MaxConns        int32 `help:"maximum number of connections in pool" default:"20"`
	MinConns        int32 `help:"minimum number of connections in pool" default:"5"`
	MaxConnLifetime int32 `help:"maximum connection lifetime in seconds" default:"3600"`
	MaxConnIdleTime int32 `help:"maximum connection idle time in seconds" default:"1800"`

	// Startup behavior
	ConnectRetryTimeout int32 `help:"seconds to retry the initial connection before giving up" default:"0" env:"TEAMSPACE_POSTGRES_CONNECT_RETRY_TIMEOUT"`
	AutoMigrate         bool  `help:"run database migrations on startup" default:"false" env:"TEAMSPACE_POSTGRES_AUTO_MIGRATE"`
}

func (s *PostgresStoreFlags) Validate() error {
	if s.ConnString == "" {
		return errors.New("PostgreSQL connection string is required (--postgres-conn-string or POSTGRES_CONNECTION_STRING)")
	}
	return nil
}

// stores bundles the backing stores the server wires together.
type stores struct {
	profiles   store.ProfileStore
	workspaces store.WorkspaceStore
	invites    store.InviteStore
	sessions   store.SessionStore
}

func (c *ServerCmd) Run(globals *Globals) error {
	log := logger.Setup(globals.Debug)
	ctx := context.Background()

	log.Info().Str("version", globals.Version).Bool("debug", globals.Debug).Msg("Starting server")

	// Setup telemetry if enabled
	if c.Tracing {
		log.Info().Msg("Tracing is enabled")
		shutdown, err := telemetry.InitTelemetry(ctx, "teamspace-server", globals.Version)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize telemetry, continuing without metrics")
			shutdown = func(ctx context.Context) error { return nil }
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("Failed to shutdown telemetry")
			}
		}()
	}

	st, err := c.createStores(ctx)
	if err != nil {
		return err
	}

	if len(c.SessionSecret) < 32 {
		return errors.New("session secret must be at least 32 bytes (--session-secret or TEAMSPACE_SESSION_SECRET)")
	}

	cookies, err := auth.NewCookieSessions(st.sessions, []byte(c.SessionSecret))
	if err != nil {
		return fmt.Errorf("failed to initialize session provider: %w", err)
	}

	// Bearer tokens are optional; without a verification key only browser
	// sessions authenticate.
	var verifier *auth.TokenVerifier
	if c.JWTPublicKeyFile != "" {
		pemBytes, err := os.ReadFile(c.JWTPublicKeyFile)
		if err != nil {
			return fmt.Errorf("failed to read JWT public key: %w", err)
		}
		verifier, err = auth.NewTokenVerifier(string(pemBytes))
		if err != nil {
			return fmt.Errorf("failed to initialize token verifier: %w", err)
		}
		log.Info().Msg("Bearer token verification enabled")
	}

	gateway := auth.NewGateway(auth.NewResolver(verifier, cookies), st.profiles)
	api := httpapi.NewServer(gateway, st.profiles, st.workspaces, st.invites)

	gh, err := login.NewGithub(c.ClientID, c.ClientSecret, c.CallbackURL, st.sessions, cookies, st.profiles, c.SessionTTL)
	if err != nil {
		return fmt.Errorf("failed to initialize GitHub OAuth: %w", err)
	}

	mux := http.NewServeMux()

	// API routes carry their own method+path patterns
	apiHandler := api.Handler()
	mux.Handle("/api/", apiHandler)
	mux.Handle("/healthz", apiHandler)

	// Client IP middleware for session audit fields
	clientIPMiddleware := httpmiddleware.ClientIPMiddleware()

	// OAuth routes (public)
	mux.Handle("/auth/login", clientIPMiddleware(http.HandlerFunc(gh.LoginHandler)))
	mux.Handle("/auth/callback", clientIPMiddleware(http.HandlerFunc(gh.CallbackHandler)))
	mux.Handle("/auth/logout", clientIPMiddleware(http.HandlerFunc(gh.LogoutHandler)))

	// CSRF protection for browser-facing routes; API routes get CORS instead
	protection := csrf.New()

	routed := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isAPIRoute(r.URL.Path) {
			withCORS(c.CORSOrigins, mux).ServeHTTP(w, r)
		} else {
			protection.Handler(mux).ServeHTTP(w, r)
		}
	})

	handler := logger.Requests(log)(routed)

	if c.Cert != "" || c.Key != "" {
		if _, err := os.Stat(c.Cert); err != nil {
			return fmt.Errorf("TLS certificate not found at %s: %w", c.Cert, err)
		}
		if _, err := os.Stat(c.Key); err != nil {
			return fmt.Errorf("TLS key not found at %s: %w", c.Key, err)
		}

		log.Info().Str("addr", c.Listen).Msg("Starting HTTPS server")
		return configureHTTPServer(c.Listen, handler).ListenAndServeTLS(c.Cert, c.Key)
	}

	log.Warn().Msg("TLS is not configured; serving plain HTTP. Do not do this in production")
	log.Info().Str("addr", c.Listen).Msg("Starting HTTP server")
	return configureHTTPServer(c.Listen, handler).ListenAndServe()
}

// createStores builds the configured store backend.
func (c *ServerCmd) createStores(ctx context.Context) (*stores, error) {
	switch c.StoreType {
	case "postgres":
		if err := c.PostgresStore.Validate(); err != nil {
			return nil, fmt.Errorf("failed to validate postgres flags: %w", err)
		}

		pool, err := postgresstore.NewPool(ctx, &postgresstore.PoolConfig{
			ConnString:          c.PostgresStore.ConnString,
			MaxConns:            c.PostgresStore.MaxConns,
			MinConns:            c.PostgresStore.MinConns,
			MaxConnLifetime:     c.PostgresStore.MaxConnLifetime,
			MaxConnIdleTime:     c.PostgresStore.MaxConnIdleTime,
			ConnectRetryTimeout: c.PostgresStore.ConnectRetryTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create connection pool: %w", err)
		}

		if c.PostgresStore.AutoMigrate {
			if err := postgresstore.RunMigrations(ctx, pool); err != nil {
				return nil, fmt.Errorf("failed to run migrations: %w", err)
			}
		}

		return &stores{
			profiles:   postgresstore.NewProfileStore(pool),
			workspaces: postgresstore.NewWorkspaceStore(pool),
			invites:    postgresstore.NewInviteStore(pool),
			sessions:   postgresstore.NewSessionStore(pool),
		}, nil

	default:
		return &stores{
			profiles:   memorystore.NewProfileStore(),
			workspaces: memorystore.NewWorkspaceStore(),
			invites:    memorystore.NewInviteStore(),
			sessions:   memorystore.NewSessionStore(),
		}, nil
	}
}

// isAPIRoute returns true if the path is an API route that needs CORS instead of CSRF
func isAPIRoute(path string) bool {
	return strings.HasPrefix(path, "/api/") || path == "/healthz"
}

// withCORS adds CORS support for browser API clients.
func withCORS(allowedOrigins []string, h http.Handler) http.Handler {
	middleware := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true, // Required for cookie-based authentication
	})
	return middleware.Handler(h)
}
