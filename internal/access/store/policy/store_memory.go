// Package policy provides read stores over policy-publication state. A
// subject's pending set is derived from published mandatory policies minus
// recorded acceptances.
package policy

import (
	"context"
	"sync"

	"commune/internal/access/models"
	id "commune/pkg/domain"
	"commune/pkg/platform/sentinel"
)

// PolicyKind distinguishes the two mandatory policy families.
type PolicyKind string

const (
	KindTerms   PolicyKind = "terms"
	KindPrivacy PolicyKind = "privacy"
)

type published struct {
	id   id.PolicyID
	kind PolicyKind
}

// InMemoryStore implements ports.PolicyStore and doubles as the test fake:
// tests Publish policies and Accept them per subject.
type InMemoryStore struct {
	mu          sync.RWMutex
	policies    []published
	acceptances map[id.UserID]map[id.PolicyID]struct{}
	unavailable bool
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		acceptances: make(map[id.UserID]map[id.PolicyID]struct{}),
	}
}

// SetUnavailable makes every read fail with sentinel.ErrUnavailable.
func (s *InMemoryStore) SetUnavailable(unavailable bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unavailable = unavailable
}

// Publish registers a mandatory policy every subject must accept.
func (s *InMemoryStore) Publish(policyID id.PolicyID, kind PolicyKind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.policies = append(s.policies, published{id: policyID, kind: kind})
}

// Accept records a subject's acceptance of a policy.
func (s *InMemoryStore) Accept(subject id.UserID, policyID id.PolicyID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.acceptances[subject] == nil {
		s.acceptances[subject] = make(map[id.PolicyID]struct{})
	}
	s.acceptances[subject][policyID] = struct{}{}
}

func (s *InMemoryStore) GetPendingPolicies(_ context.Context, subject id.UserID) (models.PendingPolicies, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.unavailable {
		return models.PendingPolicies{}, sentinel.ErrUnavailable
	}
	accepted := s.acceptances[subject]
	var pending models.PendingPolicies
	for _, p := range s.policies {
		if _, ok := accepted[p.id]; ok {
			continue
		}
		switch p.kind {
		case KindTerms:
			pending.RequiredTerms = append(pending.RequiredTerms, p.id)
		case KindPrivacy:
			pending.RequiredPrivacyPolicies = append(pending.RequiredPrivacyPolicies, p.id)
		}
	}
	return pending, nil
}
