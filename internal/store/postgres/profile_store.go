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

// ProfileStore implements store.ProfileStore using PostgreSQL.
type ProfileStore struct {
	pool *pgxpool.Pool
}

// NewProfileStore creates a new PostgreSQL-backed profile store.
// It shares the connection pool with other stores.
func NewProfileStore(pool *pgxpool.Pool) *ProfileStore {
	return &ProfileStore{
		pool: pool,
	}
}

const profileColumns = `
	profile_id, principal_id, workspace_id, username, full_name, email, role,
	created_at, updated_at
`

// Create creates a new profile in the database.
func (s *ProfileStore) Create(ctx context.Context, profile *models.Profile) error {
	query := `
		INSERT INTO profiles (` + profileColumns + `
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
	`

	_, err := s.pool.Exec(ctx, query,
		profile.ProfileID,
		profile.PrincipalID,
		profile.WorkspaceID,
		profile.Username,
		profile.FullName,
		profile.Email,
		profile.Role,
		profile.CreatedAt,
		profile.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrProfileAlreadyExists
		}
		return wrapError("create profile", err)
	}

	log.Debug().
		Str("profile_id", profile.ProfileID.String()).
		Str("principal_id", profile.PrincipalID.String()).
		Msg("Created profile")

	return nil
}

// Get retrieves a profile by ID.
func (s *ProfileStore) Get(ctx context.Context, profileID uuid.UUID) (*models.Profile, error) {
	query := `
		SELECT ` + profileColumns + `
		FROM profiles
		WHERE profile_id = $1
	`

	profile, err := scanProfile(s.pool.QueryRow(ctx, query, profileID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrProfileNotFound
		}
		return nil, wrapError("get profile", err)
	}

	return profile, nil
}

// GetByPrincipal retrieves the profile for a principal, optionally narrowed
// to a workspace. Without a hint, the most recently updated profile wins.
func (s *ProfileStore) GetByPrincipal(ctx context.Context, principalID uuid.UUID, workspaceHint *uuid.UUID) (*models.Profile, error) {
	query := `
		SELECT ` + profileColumns + `
		FROM profiles
		WHERE principal_id = $1
		  AND ($2::uuid IS NULL OR workspace_id = $2)
		ORDER BY updated_at DESC
		LIMIT 1
	`

	profile, err := scanProfile(s.pool.QueryRow(ctx, query, principalID, workspaceHint))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrProfileNotFound
		}
		return nil, wrapError("get profile by principal", err)
	}

	return profile, nil
}

// Update updates the mutable fields of a profile. Ownership and workspace
// scope are re-validated in the UPDATE predicate so a compromised caller
// cannot route around the gateway's checks.
func (s *ProfileStore) Update(ctx context.Context, profile *models.Profile, ownerPrincipalID uuid.UUID, workspaceID uuid.UUID) error {
	profile.UpdatedAt = time.Now()

	query := `
		UPDATE profiles SET
			username = $2,
			full_name = $3,
			updated_at = $4
		WHERE profile_id = $1
		  AND principal_id = $5
		  AND workspace_id = $6
	`

	result, err := s.pool.Exec(ctx, query,
		profile.ProfileID,
		profile.Username,
		profile.FullName,
		profile.UpdatedAt,
		ownerPrincipalID,
		workspaceID,
	)

	if err != nil {
		return wrapError("update profile", err)
	}

	if result.RowsAffected() == 0 {
		// Distinguish a missing row from an ownership/scope mismatch
		var exists bool
		if err := s.pool.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM profiles WHERE profile_id = $1)`,
			profile.ProfileID,
		).Scan(&exists); err != nil {
			return wrapError("update profile", err)
		}
		if !exists {
			return store.ErrProfileNotFound
		}
		return store.ErrNotProfileOwner
	}

	log.Debug().
		Str("profile_id", profile.ProfileID.String()).
		Msg("Updated profile")

	return nil
}

// ListByWorkspace returns all profiles belonging to a workspace.
func (s *ProfileStore) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*models.Profile, error) {
	query := `
		SELECT ` + profileColumns + `
		FROM profiles
		WHERE workspace_id = $1
		ORDER BY created_at
	`

	rows, err := s.pool.Query(ctx, query, workspaceID)
	if err != nil {
		return nil, wrapError("list profiles", err)
	}
	defer rows.Close()

	var profiles []*models.Profile
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, wrapError("scan profile", err)
		}
		profiles = append(profiles, profile)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapError("iterate profiles", err)
	}

	return profiles, nil
}

// scanProfile scans one profile row from a pgx.Row or pgx.Rows.
func scanProfile(row pgx.Row) (*models.Profile, error) {
	var profile models.Profile
	err := row.Scan(
		&profile.ProfileID,
		&profile.PrincipalID,
		&profile.WorkspaceID,
		&profile.Username,
		&profile.FullName,
		&profile.Email,
		&profile.Role,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
