// Package report provides stores for counted moderation reports.
package report

import (
	"context"
	"sync"
	"time"

	"commune/internal/moderation/models"
	id "commune/pkg/domain"
)

// InMemoryStore implements ports.ReportStore backed by a slice. It
// intentionally favors clarity over performance; the distinct-reporter count
// is a set built per query, mirroring the COUNT(DISTINCT) the postgres store
// runs.
type InMemoryStore struct {
	mu      sync.RWMutex
	reports []models.Report
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) FindRecentByReporter(_ context.Context, reporter id.UserID, target models.Target, since time.Time) (*models.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.reports) - 1; i >= 0; i-- {
		r := s.reports[i]
		if r.ReporterID == reporter && r.Target == target && !r.CreatedAt.Before(since) {
			found := r
			return &found, nil
		}
	}
	return nil, nil
}

func (s *InMemoryStore) Insert(_ context.Context, report models.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, report)
	return nil
}

func (s *InMemoryStore) CountDistinctReporters(_ context.Context, target models.Target, since time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	reporters := make(map[id.UserID]struct{})
	for _, r := range s.reports {
		if r.Target == target && !r.CreatedAt.Before(since) {
			reporters[r.ReporterID] = struct{}{}
		}
	}
	return len(reporters), nil
}

// All returns every stored report. Test helper.
func (s *InMemoryStore) All() []models.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Report, len(s.reports))
	copy(out, s.reports)
	return out
}
