package memory

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/teamspace-io/teamspace/internal/models"
	"github.com/teamspace-io/teamspace/internal/store"
)

// WorkspaceStore implements store.WorkspaceStore using in-memory storage.
// This implementation is for testing and development only - data is lost on restart.
type WorkspaceStore struct {
	mu sync.RWMutex

	workspaces map[uuid.UUID]*models.Workspace
	settings   map[uuid.UUID]*models.WorkspaceSettings
}

// NewWorkspaceStore creates a new in-memory workspace store.
func NewWorkspaceStore() *WorkspaceStore {
	return &WorkspaceStore{
		workspaces: make(map[uuid.UUID]*models.Workspace),
		settings:   make(map[uuid.UUID]*models.WorkspaceSettings),
	}
}

// Create creates a new workspace in memory.
func (s *WorkspaceStore) Create(ctx context.Context, ws *models.Workspace) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.workspaces[ws.WorkspaceID]; exists {
		return store.ErrWorkspaceAlreadyExists
	}

	clone := *ws
	s.workspaces[ws.WorkspaceID] = &clone

	return nil
}

// Get retrieves a workspace by ID.
func (s *WorkspaceStore) Get(ctx context.Context, workspaceID uuid.UUID) (*models.Workspace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ws, exists := s.workspaces[workspaceID]
	if !exists {
		return nil, store.ErrWorkspaceNotFound
	}

	clone := *ws
	return &clone, nil
}

// GetSettings retrieves the settings row for a workspace.
func (s *WorkspaceStore) GetSettings(ctx context.Context, workspaceID uuid.UUID) (*models.WorkspaceSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	settings, exists := s.settings[workspaceID]
	if !exists {
		return nil, store.ErrSettingsNotFound
	}

	return cloneSettings(settings), nil
}

// PutSettings replaces the settings row for a workspace.
func (s *WorkspaceStore) PutSettings(ctx context.Context, settings *models.WorkspaceSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.workspaces[settings.WorkspaceID]; !exists {
		return store.ErrWorkspaceNotFound
	}

	clone := cloneSettings(settings)
	clone.UpdatedAt = time.Now()
	s.settings[settings.WorkspaceID] = clone

	return nil
}

// cloneSettings deep-copies settings to avoid external modifications.
func cloneSettings(in *models.WorkspaceSettings) *models.WorkspaceSettings {
	clone := *in
	clone.Departments = slices.Clone(in.Departments)
	if in.Values != nil {
		clone.Values = maps.Clone(in.Values)
	}
	return &clone
}
