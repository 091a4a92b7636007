package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/teamspace-io/teamspace/internal/models"
	"github.com/teamspace-io/teamspace/internal/store"
)

// WorkspaceStore implements store.WorkspaceStore using PostgreSQL.
type WorkspaceStore struct {
	pool *pgxpool.Pool
}

// NewWorkspaceStore creates a new PostgreSQL-backed workspace store.
// It shares the connection pool with other stores.
func NewWorkspaceStore(pool *pgxpool.Pool) *WorkspaceStore {
	return &WorkspaceStore{
		pool: pool,
	}
}

// Create creates a new workspace in the database.
func (s *WorkspaceStore) Create(ctx context.Context, ws *models.Workspace) error {
	query := `
		INSERT INTO workspaces (
			workspace_id, name, owner_principal_id, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5
		)
	`

	_, err := s.pool.Exec(ctx, query,
		ws.WorkspaceID,
		ws.Name,
		ws.OwnerPrincipalID,
		ws.CreatedAt,
		ws.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrWorkspaceAlreadyExists
		}
		return wrapError("create workspace", err)
	}

	log.Debug().
		Str("workspace_id", ws.WorkspaceID.String()).
		Str("name", ws.Name).
		Msg("Created workspace")

	return nil
}

// Get retrieves a workspace by ID.
func (s *WorkspaceStore) Get(ctx context.Context, workspaceID uuid.UUID) (*models.Workspace, error) {
	query := `
		SELECT workspace_id, name, owner_principal_id, created_at, updated_at
		FROM workspaces
		WHERE workspace_id = $1
	`

	var ws models.Workspace
	err := s.pool.QueryRow(ctx, query, workspaceID).Scan(
		&ws.WorkspaceID,
		&ws.Name,
		&ws.OwnerPrincipalID,
		&ws.CreatedAt,
		&ws.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrWorkspaceNotFound
		}
		return nil, wrapError("get workspace", err)
	}

	return &ws, nil
}

// GetSettings retrieves the settings row for a workspace.
func (s *WorkspaceStore) GetSettings(ctx context.Context, workspaceID uuid.UUID) (*models.WorkspaceSettings, error) {
	query := `
		SELECT workspace_id, departments, config, updated_at
		FROM workspace_settings
		WHERE workspace_id = $1
	`

	var settings models.WorkspaceSettings
	err := s.pool.QueryRow(ctx, query, workspaceID).Scan(
		&settings.WorkspaceID,
		&settings.Departments,
		&settings.Values,
		&settings.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrSettingsNotFound
		}
		return nil, wrapError("get workspace settings", err)
	}

	return &settings, nil
}

// PutSettings replaces the settings row for a workspace, creating it if absent.
func (s *WorkspaceStore) PutSettings(ctx context.Context, settings *models.WorkspaceSettings) error {
	settings.UpdatedAt = time.Now()

	query := `
		INSERT INTO workspace_settings (workspace_id, departments, config, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (workspace_id) DO UPDATE SET
			departments = EXCLUDED.departments,
			config = EXCLUDED.config,
			updated_at = EXCLUDED.updated_at
	`

	_, err := s.pool.Exec(ctx, query,
		settings.WorkspaceID,
		settings.Departments,
		settings.Values,
		settings.UpdatedAt,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			return store.ErrWorkspaceNotFound
		}
		return wrapError("put workspace settings", err)
	}

	log.Debug().
		Str("workspace_id", settings.WorkspaceID.String()).
		Msg("Updated workspace settings")

	return nil
}
