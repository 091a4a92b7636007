package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	pgmodule "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/teamspace-io/teamspace/internal/models"
	"github.com/teamspace-io/teamspace/internal/store"
)

// setupTestPool starts a PostgreSQL container, runs migrations, and returns a
// connected pool. Tests are skipped if a container runtime is not available.
func setupTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	if os.Getenv("SKIP_INTEGRATION") == "true" {
		t.Skip("SKIP_INTEGRATION=true, skipping PostgreSQL integration tests")
	}

	ctx := context.Background()

	container, err := pgmodule.Run(ctx,
		"postgres:16-alpine",
		pgmodule.WithDatabase("teamspace_test"),
		pgmodule.WithUsername("test"),
		pgmodule.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Skipf("skipping: could not start PostgreSQL container: %v", err)
	}

	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := NewPool(ctx, &PoolConfig{
		ConnString:          connStr,
		MaxConns:            5,
		MinConns:            1,
		ConnectRetryTimeout: 30,
	})
	require.NoError(t, err)

	t.Cleanup(pool.Close)

	require.NoError(t, RunMigrations(ctx, pool))

	return pool
}

func createTestWorkspace(t *testing.T, ctx context.Context, workspaces *WorkspaceStore) *models.Workspace {
	t.Helper()

	ws := &models.Workspace{
		WorkspaceID:      uuid.Must(uuid.NewV7()),
		Name:             "acme",
		OwnerPrincipalID: uuid.Must(uuid.NewV7()),
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
	require.NoError(t, workspaces.Create(ctx, ws))
	return ws
}

func TestProfileStore_postgres(t *testing.T) {
	pool := setupTestPool(t)
	ctx := context.Background()

	workspaces := NewWorkspaceStore(pool)
	profiles := NewProfileStore(pool)

	ws := createTestWorkspace(t, ctx, workspaces)

	principalID := uuid.Must(uuid.NewV7())
	profile := &models.Profile{
		ProfileID:   uuid.Must(uuid.NewV7()),
		PrincipalID: principalID,
		WorkspaceID: &ws.WorkspaceID,
		Username:    "jane",
		Email:       "jane@example.com",
		Role:        models.RoleAdmin,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	require.NoError(t, profiles.Create(ctx, profile))
	require.ErrorIs(t, profiles.Create(ctx, profile), store.ErrProfileAlreadyExists)

	got, err := profiles.GetByPrincipal(ctx, principalID, nil)
	require.NoError(t, err)
	require.Equal(t, profile.ProfileID, got.ProfileID)

	got, err = profiles.GetByPrincipal(ctx, principalID, &ws.WorkspaceID)
	require.NoError(t, err)
	require.Equal(t, profile.ProfileID, got.ProfileID)

	other := uuid.Must(uuid.NewV7())
	_, err = profiles.GetByPrincipal(ctx, principalID, &other)
	require.ErrorIs(t, err, store.ErrProfileNotFound)

	// Ownership is re-validated inside the UPDATE predicate
	profile.Username = "jane-doe"
	require.NoError(t, profiles.Update(ctx, profile, principalID, ws.WorkspaceID))
	require.ErrorIs(t,
		profiles.Update(ctx, profile, uuid.Must(uuid.NewV7()), ws.WorkspaceID),
		store.ErrNotProfileOwner)

	got, err = profiles.Get(ctx, profile.ProfileID)
	require.NoError(t, err)
	require.Equal(t, "jane-doe", got.Username)

	members, err := profiles.ListByWorkspace(ctx, ws.WorkspaceID)
	require.NoError(t, err)
	require.Len(t, members, 1)
}

func TestWorkspaceStore_postgres_settings(t *testing.T) {
	pool := setupTestPool(t)
	ctx := context.Background()

	workspaces := NewWorkspaceStore(pool)
	ws := createTestWorkspace(t, ctx, workspaces)

	// No settings row yet
	_, err := workspaces.GetSettings(ctx, ws.WorkspaceID)
	require.ErrorIs(t, err, store.ErrSettingsNotFound)

	settings := &models.WorkspaceSettings{
		WorkspaceID: ws.WorkspaceID,
		Departments: []string{"Research", "Sales"},
		Values:      map[string]string{"currency": "EUR"},
	}
	require.NoError(t, workspaces.PutSettings(ctx, settings))

	got, err := workspaces.GetSettings(ctx, ws.WorkspaceID)
	require.NoError(t, err)
	require.Equal(t, []string{"Research", "Sales"}, got.Departments)
	require.Equal(t, "EUR", got.Values["currency"])

	// Upsert replaces
	settings.Departments = []string{"Research"}
	require.NoError(t, workspaces.PutSettings(ctx, settings))
	got, err = workspaces.GetSettings(ctx, ws.WorkspaceID)
	require.NoError(t, err)
	require.Equal(t, []string{"Research"}, got.Departments)

	// Settings for an unknown workspace hit the FK
	require.ErrorIs(t, workspaces.PutSettings(ctx, &models.WorkspaceSettings{
		WorkspaceID: uuid.Must(uuid.NewV7()),
		Departments: []string{"X"},
	}), store.ErrWorkspaceNotFound)
}

func TestInviteStore_postgres(t *testing.T) {
	pool := setupTestPool(t)
	ctx := context.Background()

	workspaces := NewWorkspaceStore(pool)
	invites := NewInviteStore(pool)

	ws := createTestWorkspace(t, ctx, workspaces)

	invite := &models.Invite{
		Code:        "3vQB7B6MsGNYa",
		WorkspaceID: ws.WorkspaceID,
		CreatedBy:   uuid.Must(uuid.NewV7()),
		CreatedAt:   time.Now(),
		ExpiresAt:   time.Now().Add(time.Hour),
	}
	require.NoError(t, invites.Create(ctx, invite))

	got, err := invites.GetByCode(ctx, invite.Code)
	require.NoError(t, err)
	require.Equal(t, ws.WorkspaceID, got.WorkspaceID)

	_, err = invites.GetByCode(ctx, "unknown")
	require.ErrorIs(t, err, store.ErrInviteNotFound)

	expired := &models.Invite{
		Code:        "8fE9ab2",
		WorkspaceID: ws.WorkspaceID,
		CreatedBy:   invite.CreatedBy,
		CreatedAt:   time.Now().Add(-2 * time.Hour),
		ExpiresAt:   time.Now().Add(-time.Hour),
	}
	require.NoError(t, invites.Create(ctx, expired))
	_, err = invites.GetByCode(ctx, expired.Code)
	require.ErrorIs(t, err, store.ErrInviteExpired)
}

func TestSessionStore_postgres(t *testing.T) {
	pool := setupTestPool(t)
	ctx := context.Background()

	sessions := NewSessionStore(pool)

	session := &models.Session{
		SessionID:   uuid.Must(uuid.NewV7()),
		PrincipalID: uuid.Must(uuid.NewV7()),
		Email:       "jane@example.com",
		CreatedAt:   time.Now(),
		ExpiresAt:   time.Now().Add(time.Hour),
		LastUsedAt:  time.Now(),
		UserAgent:   "test-agent",
		IPAddress:   "192.0.2.1",
	}

	require.NoError(t, sessions.Create(ctx, session))

	got, err := sessions.Get(ctx, session.SessionID)
	require.NoError(t, err)
	require.Equal(t, session.PrincipalID, got.PrincipalID)
	require.Equal(t, "jane@example.com", got.Email)

	require.NoError(t, sessions.Touch(ctx, session.SessionID))

	require.NoError(t, sessions.Delete(ctx, session.SessionID))
	_, err = sessions.Get(ctx, session.SessionID)
	require.ErrorIs(t, err, store.ErrSessionNotFound)

	// Expired sessions are reported as expired, not returned
	expired := &models.Session{
		SessionID:   uuid.Must(uuid.NewV7()),
		PrincipalID: session.PrincipalID,
		Email:       session.Email,
		CreatedAt:   time.Now().Add(-2 * time.Hour),
		ExpiresAt:   time.Now().Add(-time.Hour),
		LastUsedAt:  time.Now().Add(-2 * time.Hour),
	}
	require.NoError(t, sessions.Create(ctx, expired))
	_, err = sessions.Get(ctx, expired.SessionID)
	require.ErrorIs(t, err, store.ErrSessionExpired)
}
