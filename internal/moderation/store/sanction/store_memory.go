// Package sanction provides stores for moderation sanctions.
package sanction

import (
	"context"
	"sync"

	"commune/internal/moderation/models"
)

// InMemoryStore implements ports.SanctionStore backed by a slice. The
// create-if-none-active check runs under the store mutex, giving the same
// single-sanction guarantee the postgres partial unique index provides.
type InMemoryStore struct {
	mu        sync.RWMutex
	sanctions []models.Sanction
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) CreateIfNoneActive(_ context.Context, sanction models.Sanction) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.sanctions {
		if existing.Target == sanction.Target &&
			existing.Type == sanction.Type &&
			existing.Status == models.SanctionActive {
			return false, nil
		}
	}
	s.sanctions = append(s.sanctions, sanction)
	return true, nil
}

func (s *InMemoryStore) FindActive(_ context.Context, target models.Target, sanctionType models.SanctionType) (*models.Sanction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, existing := range s.sanctions {
		if existing.Target == target &&
			existing.Type == sanctionType &&
			existing.Status == models.SanctionActive {
			found := existing
			return &found, nil
		}
	}
	return nil, nil
}

// All returns every stored sanction. Test helper.
func (s *InMemoryStore) All() []models.Sanction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Sanction, len(s.sanctions))
	copy(out, s.sanctions)
	return out
}
