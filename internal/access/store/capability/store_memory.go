// Package capability provides read stores over the membership-owned grant
// model. The in-memory store doubles as the test fake: tests Grant/Revoke
// directly to shape the read model.
package capability

import (
	"context"
	"sync"

	"commune/internal/access/models"
	id "commune/pkg/domain"
	"commune/pkg/platform/sentinel"
)

type territoryGrant struct {
	subject   id.UserID
	territory id.TerritoryID
}

// InMemoryStore implements ports.CapabilityStore backed by maps. Grant
// existence implies the capability; Revoke deletes the row, matching the
// production read model where revocation is a delete, not a status flag.
type InMemoryStore struct {
	mu           sync.RWMutex
	capGrants    map[territoryGrant]map[models.Capability]struct{}
	permGrants   map[id.UserID]map[models.SystemPermission]struct{}
	unavailable  bool
	listCapCalls int
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		capGrants:  make(map[territoryGrant]map[models.Capability]struct{}),
		permGrants: make(map[id.UserID]map[models.SystemPermission]struct{}),
	}
}

// SetUnavailable makes every read fail with sentinel.ErrUnavailable. Test
// hook for fail-closed behavior.
func (s *InMemoryStore) SetUnavailable(unavailable bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unavailable = unavailable
}

// Grant adds a territory capability to the read model.
func (s *InMemoryStore) Grant(subject id.UserID, territory id.TerritoryID, capability models.Capability) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := territoryGrant{subject: subject, territory: territory}
	if s.capGrants[key] == nil {
		s.capGrants[key] = make(map[models.Capability]struct{})
	}
	s.capGrants[key][capability] = struct{}{}
}

// Revoke removes a territory capability from the read model.
func (s *InMemoryStore) Revoke(subject id.UserID, territory id.TerritoryID, capability models.Capability) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.capGrants[territoryGrant{subject: subject, territory: territory}], capability)
}

// GrantSystem adds a platform-wide permission to the read model.
func (s *InMemoryStore) GrantSystem(subject id.UserID, permission models.SystemPermission) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.permGrants[subject] == nil {
		s.permGrants[subject] = make(map[models.SystemPermission]struct{})
	}
	s.permGrants[subject][permission] = struct{}{}
}

// RevokeSystem removes a platform-wide permission from the read model.
func (s *InMemoryStore) RevokeSystem(subject id.UserID, permission models.SystemPermission) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.permGrants[subject], permission)
}

// ListCapabilitiesCalls reports how often ListCapabilities was queried. Test
// hook for asserting that a check short-circuited without hitting the
// territory read model.
func (s *InMemoryStore) ListCapabilitiesCalls() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listCapCalls
}

func (s *InMemoryStore) ListCapabilities(_ context.Context, subject id.UserID, territory id.TerritoryID) ([]models.Capability, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCapCalls++
	if s.unavailable {
		return nil, sentinel.ErrUnavailable
	}
	grants := s.capGrants[territoryGrant{subject: subject, territory: territory}]
	out := make([]models.Capability, 0, len(grants))
	for c := range grants {
		out = append(out, c)
	}
	return out, nil
}

func (s *InMemoryStore) ListSystemPermissions(_ context.Context, subject id.UserID) ([]models.SystemPermission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.unavailable {
		return nil, sentinel.ErrUnavailable
	}
	grants := s.permGrants[subject]
	out := make([]models.SystemPermission, 0, len(grants))
	for p := range grants {
		out = append(out, p)
	}
	return out, nil
}
