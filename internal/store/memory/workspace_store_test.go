package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/teamspace-io/teamspace/internal/models"
	"github.com/teamspace-io/teamspace/internal/store"
)

func createTestWorkspace(t *testing.T, s *WorkspaceStore) *models.Workspace {
	t.Helper()

	ws := &models.Workspace{
		WorkspaceID:      uuid.Must(uuid.NewV7()),
		Name:             "acme",
		OwnerPrincipalID: uuid.Must(uuid.NewV7()),
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
	require.NoError(t, s.Create(context.Background(), ws))
	return ws
}

func TestWorkspaceStore_createAndGet(t *testing.T) {
	s := NewWorkspaceStore()
	ws := createTestWorkspace(t, s)

	got, err := s.Get(context.Background(), ws.WorkspaceID)
	require.NoError(t, err)
	require.Equal(t, ws.Name, got.Name)

	require.ErrorIs(t, s.Create(context.Background(), ws), store.ErrWorkspaceAlreadyExists)
}

func TestWorkspaceStore_getMissing(t *testing.T) {
	s := NewWorkspaceStore()

	_, err := s.Get(context.Background(), uuid.Must(uuid.NewV7()))
	require.ErrorIs(t, err, store.ErrWorkspaceNotFound)
}

func TestWorkspaceStore_settingsRoundTrip(t *testing.T) {
	s := NewWorkspaceStore()
	ws := createTestWorkspace(t, s)

	// Nothing stored yet: callers fall back to defaults
	_, err := s.GetSettings(context.Background(), ws.WorkspaceID)
	require.ErrorIs(t, err, store.ErrSettingsNotFound)

	require.NoError(t, s.PutSettings(context.Background(), &models.WorkspaceSettings{
		WorkspaceID: ws.WorkspaceID,
		Departments: []string{"Research"},
		Values:      map[string]string{"theme": "dark"},
	}))

	got, err := s.GetSettings(context.Background(), ws.WorkspaceID)
	require.NoError(t, err)
	require.Equal(t, []string{"Research"}, got.Departments)
	require.Equal(t, "dark", got.Values["theme"])
	require.False(t, got.UpdatedAt.IsZero())
}

func TestWorkspaceStore_putSettingsUnknownWorkspace(t *testing.T) {
	s := NewWorkspaceStore()

	err := s.PutSettings(context.Background(), &models.WorkspaceSettings{
		WorkspaceID: uuid.Must(uuid.NewV7()),
		Departments: []string{"Research"},
	})
	require.ErrorIs(t, err, store.ErrWorkspaceNotFound)
}

func TestWorkspaceStore_settingsCloneIsolation(t *testing.T) {
	s := NewWorkspaceStore()
	ws := createTestWorkspace(t, s)

	in := &models.WorkspaceSettings{
		WorkspaceID: ws.WorkspaceID,
		Departments: []string{"Research"},
	}
	require.NoError(t, s.PutSettings(context.Background(), in))

	// Mutating the caller's slice must not affect the stored copy
	in.Departments[0] = "mutated"

	got, err := s.GetSettings(context.Background(), ws.WorkspaceID)
	require.NoError(t, err)
	require.Equal(t, []string{"Research"}, got.Departments)

	// Mutating a read result must not affect later reads
	got.Departments[0] = "mutated"

	again, err := s.GetSettings(context.Background(), ws.WorkspaceID)
	require.NoError(t, err)
	require.Equal(t, []string{"Research"}, again.Departments)
}

func TestSessionStore_lifecycle(t *testing.T) {
	s := NewSessionStore()

	session := &models.Session{
		SessionID:   uuid.Must(uuid.NewV7()),
		PrincipalID: uuid.Must(uuid.NewV7()),
		Email:       "p1@example.com",
		CreatedAt:   time.Now(),
		ExpiresAt:   time.Now().Add(time.Hour),
		LastUsedAt:  time.Now().Add(-time.Minute),
	}
	require.NoError(t, s.Create(context.Background(), session))

	got, err := s.Get(context.Background(), session.SessionID)
	require.NoError(t, err)
	require.Equal(t, session.Email, got.Email)

	require.NoError(t, s.Touch(context.Background(), session.SessionID))
	touched, err := s.Get(context.Background(), session.SessionID)
	require.NoError(t, err)
	require.True(t, touched.LastUsedAt.After(got.LastUsedAt))

	require.NoError(t, s.Delete(context.Background(), session.SessionID))
	_, err = s.Get(context.Background(), session.SessionID)
	require.ErrorIs(t, err, store.ErrSessionNotFound)
}

func TestSessionStore_expired(t *testing.T) {
	s := NewSessionStore()

	session := &models.Session{
		SessionID:   uuid.Must(uuid.NewV7()),
		PrincipalID: uuid.Must(uuid.NewV7()),
		CreatedAt:   time.Now().Add(-2 * time.Hour),
		ExpiresAt:   time.Now().Add(-time.Hour),
		LastUsedAt:  time.Now().Add(-2 * time.Hour),
	}
	require.NoError(t, s.Create(context.Background(), session))

	_, err := s.Get(context.Background(), session.SessionID)
	require.ErrorIs(t, err, store.ErrSessionExpired)
}

func TestInviteStore_roundTripAndExpiry(t *testing.T) {
	s := NewInviteStore()

	invite := &models.Invite{
		Code:        "fresh-code",
		WorkspaceID: uuid.Must(uuid.NewV7()),
		CreatedBy:   uuid.Must(uuid.NewV7()),
		CreatedAt:   time.Now(),
		ExpiresAt:   time.Now().Add(time.Hour),
	}
	require.NoError(t, s.Create(context.Background(), invite))

	got, err := s.GetByCode(context.Background(), "fresh-code")
	require.NoError(t, err)
	require.Equal(t, invite.WorkspaceID, got.WorkspaceID)

	_, err = s.GetByCode(context.Background(), "missing-code")
	require.ErrorIs(t, err, store.ErrInviteNotFound)

	expired := &models.Invite{
		Code:        "stale-code",
		WorkspaceID: invite.WorkspaceID,
		CreatedBy:   invite.CreatedBy,
		CreatedAt:   time.Now().Add(-8 * 24 * time.Hour),
		ExpiresAt:   time.Now().Add(-time.Hour),
	}
	require.NoError(t, s.Create(context.Background(), expired))

	_, err = s.GetByCode(context.Background(), "stale-code")
	require.ErrorIs(t, err, store.ErrInviteExpired)
}
