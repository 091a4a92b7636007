package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/teamspace-io/teamspace/internal/models"
	"github.com/teamspace-io/teamspace/internal/store"
)

// InviteStore implements store.InviteStore using PostgreSQL.
type InviteStore struct {
	pool *pgxpool.Pool
}

// NewInviteStore creates a new PostgreSQL-backed invite store.
func NewInviteStore(pool *pgxpool.Pool) *InviteStore {
	return &InviteStore{
		pool: pool,
	}
}

// Create stores a new invite code.
func (s *InviteStore) Create(ctx context.Context, invite *models.Invite) error {
	query := `
		INSERT INTO invites (code, workspace_id, created_by, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.pool.Exec(ctx, query,
		invite.Code,
		invite.WorkspaceID,
		invite.CreatedBy,
		invite.CreatedAt,
		invite.ExpiresAt,
	)

	if err != nil {
		return wrapError("create invite", err)
	}

	log.Debug().
		Str("workspace_id", invite.WorkspaceID.String()).
		Msg("Created invite")

	return nil
}

// GetByCode retrieves an invite by its base58 code.
func (s *InviteStore) GetByCode(ctx context.Context, code string) (*models.Invite, error) {
	query := `
		SELECT code, workspace_id, created_by, created_at, expires_at
		FROM invites
		WHERE code = $1
	`

	var invite models.Invite
	err := s.pool.QueryRow(ctx, query, code).Scan(
		&invite.Code,
		&invite.WorkspaceID,
		&invite.CreatedBy,
		&invite.CreatedAt,
		&invite.ExpiresAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrInviteNotFound
		}
		return nil, wrapError("get invite", err)
	}

	if invite.IsExpired() {
		return nil, store.ErrInviteExpired
	}

	return &invite, nil
}
