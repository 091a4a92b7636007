package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/teamspace-io/teamspace/internal/models"
	"github.com/teamspace-io/teamspace/internal/store"
)

// ProfileStore implements store.ProfileStore using in-memory storage.
// This implementation is for testing and development only - data is lost on restart.
type ProfileStore struct {
	mu sync.RWMutex

	profiles map[uuid.UUID]*models.Profile // profile_id -> Profile
}

// NewProfileStore creates a new in-memory profile store.
func NewProfileStore() *ProfileStore {
	return &ProfileStore{
		profiles: make(map[uuid.UUID]*models.Profile),
	}
}

// Create creates a new profile in memory.
func (s *ProfileStore) Create(ctx context.Context, profile *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.profiles[profile.ProfileID]; exists {
		return store.ErrProfileAlreadyExists
	}

	// One profile per (principal, workspace) pair
	for _, p := range s.profiles {
		if p.PrincipalID != profile.PrincipalID {
			continue
		}
		if sameWorkspace(p.WorkspaceID, profile.WorkspaceID) {
			return store.ErrProfileAlreadyExists
		}
	}

	clone := cloneProfile(profile)
	s.profiles[profile.ProfileID] = clone

	return nil
}

// Get retrieves a profile by ID.
func (s *ProfileStore) Get(ctx context.Context, profileID uuid.UUID) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profile, exists := s.profiles[profileID]
	if !exists {
		return nil, store.ErrProfileNotFound
	}

	return cloneProfile(profile), nil
}

// GetByPrincipal retrieves the profile for a principal, optionally narrowed
// to a workspace.
func (s *ProfileStore) GetByPrincipal(ctx context.Context, principalID uuid.UUID, workspaceHint *uuid.UUID) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var found *models.Profile
	for _, p := range s.profiles {
		if p.PrincipalID != principalID {
			continue
		}
		if workspaceHint != nil {
			if p.WorkspaceID == nil || *p.WorkspaceID != *workspaceHint {
				continue
			}
			return cloneProfile(p), nil
		}
		// No hint: prefer the most recently updated profile
		if found == nil || p.UpdatedAt.After(found.UpdatedAt) {
			found = p
		}
	}

	if found == nil {
		return nil, store.ErrProfileNotFound
	}

	return cloneProfile(found), nil
}

// Update updates an existing profile after re-validating ownership and scope.
func (s *ProfileStore) Update(ctx context.Context, profile *models.Profile, ownerPrincipalID uuid.UUID, workspaceID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.profiles[profile.ProfileID]
	if !exists {
		return store.ErrProfileNotFound
	}

	// Re-validate independently of the gateway
	if existing.PrincipalID != ownerPrincipalID {
		return store.ErrNotProfileOwner
	}
	if existing.WorkspaceID == nil || *existing.WorkspaceID != workspaceID {
		return store.ErrNotProfileOwner
	}

	updated := cloneProfile(existing)
	updated.Username = profile.Username
	updated.FullName = profile.FullName
	updated.UpdatedAt = time.Now()

	s.profiles[profile.ProfileID] = updated

	return nil
}

// ListByWorkspace returns all profiles belonging to a workspace.
func (s *ProfileStore) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.Profile
	for _, p := range s.profiles {
		if p.WorkspaceID == nil || *p.WorkspaceID != workspaceID {
			continue
		}
		result = append(result, cloneProfile(p))
	}

	return result, nil
}

func sameWorkspace(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// cloneProfile deep-copies a profile to avoid external modifications.
func cloneProfile(p *models.Profile) *models.Profile {
	clone := *p
	if p.WorkspaceID != nil {
		id := *p.WorkspaceID
		clone.WorkspaceID = &id
	}
	if p.FullName != nil {
		name := *p.FullName
		clone.FullName = &name
	}
	return &clone
}
