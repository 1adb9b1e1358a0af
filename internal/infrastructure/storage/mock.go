package storage

import (
	"sort"
	"sync"
)

// MockRepository is an in-memory Repository for tests.
type MockRepository struct {
	mu   sync.Mutex
	runs map[string]*ReconcileRun

	// SaveErr, when set, is returned by SaveRun.
	SaveErr error
}

var _ Repository = (*MockRepository)(nil)

// NewMockRepository creates an empty in-memory repository.
func NewMockRepository() *MockRepository {
	return &MockRepository{runs: make(map[string]*ReconcileRun)}
}

func (m *MockRepository) SaveRun(run *ReconcileRun) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *run
	m.runs[run.ID] = &copied
	return nil
}

func (m *MockRepository) GetRun(id string) (*ReconcileRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[id]
	if !ok {
		return nil, nil
	}
	copied := *run
	return &copied, nil
}

func (m *MockRepository) ListRuns(limit int) ([]*ReconcileRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 {
		limit = 20
	}

	runs := make([]*ReconcileRun, 0, len(m.runs))
	for _, run := range m.runs {
		copied := *run
		runs = append(runs, &copied)
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})
	if len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

func (m *MockRepository) GetStats() (*Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := &Stats{}
	for _, run := range m.runs {
		stats.TotalRuns++
		switch run.Status {
		case StatusSuccess:
			stats.SuccessCount++
		case StatusFailed:
			stats.FailureCount++
		case StatusDryRun:
			stats.DryRunCount++
		}
		if run.Status != StatusDryRun {
			stats.TotalMatches += run.Matches
		}
		if run.StartedAt.After(stats.LastRunAt) {
			stats.LastRunAt = run.StartedAt
		}
	}
	return stats, nil
}

func (m *MockRepository) Close() error { return nil }
