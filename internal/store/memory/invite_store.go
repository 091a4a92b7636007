package memory

import (
	"context"
	"sync"

	"github.com/teamspace-io/teamspace/internal/models"
	"github.com/teamspace-io/teamspace/internal/store"
)

// InviteStore implements store.InviteStore using in-memory storage.
type InviteStore struct {
	mu sync.RWMutex

	invites map[string]*models.Invite // code -> Invite
}

// NewInviteStore creates a new in-memory invite store.
func NewInviteStore() *InviteStore {
	return &InviteStore{
		invites: make(map[string]*models.Invite),
	}
}

// Create stores a new invite code.
func (s *InviteStore) Create(ctx context.Context, invite *models.Invite) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *invite
	s.invites[invite.Code] = &clone

	return nil
}

// GetByCode retrieves an invite by its base58 code.
func (s *InviteStore) GetByCode(ctx context.Context, code string) (*models.Invite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	invite, exists := s.invites[code]
	if !exists {
		return nil, store.ErrInviteNotFound
	}

	if invite.IsExpired() {
		return nil, store.ErrInviteExpired
	}

	clone := *invite
	return &clone, nil
}
