package runs

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory run store for tests and CLI runs.
type MemoryStore struct {
	mu   sync.Mutex
	runs map[string]*Run
}

// NewMemoryStore creates an empty in-memory run store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{runs: make(map[string]*Run)}
}

func (m *MemoryStore) Create(ctx context.Context, run *Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	clone := *run
	m.runs[run.RunID] = &clone
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, runID string) (*Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	run, ok := m.runs[runID]
	if !ok {
		return nil, ErrRunNotFound
	}
	clone := *run
	return &clone, nil
}

func (m *MemoryStore) ListByTenant(ctx context.Context, tenantID string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var result []Run
	for _, run := range m.runs {
		if run.TenantID == tenantID {
			result = append(result, *run)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *MemoryStore) MarkRunning(ctx context.Context, runID string, startedAt time.Time) error {
	return m.update(runID, []Status{StatusPending}, func(run *Run) {
		run.Status = StatusRunning
		run.StartedAt = &startedAt
	})
}

func (m *MemoryStore) MarkCompleted(ctx context.Context, runID string, attempts int, finishedAt time.Time) error {
	return m.update(runID, []Status{StatusPending, StatusRunning}, func(run *Run) {
		run.Status = StatusCompleted
		run.Attempts = attempts
		run.FinishedAt = &finishedAt
	})
}

func (m *MemoryStore) MarkFailed(ctx context.Context, runID string, attempts int, reason string, finishedAt time.Time) error {
	return m.update(runID, []Status{StatusPending, StatusRunning}, func(run *Run) {
		run.Status = StatusFailed
		run.Attempts = attempts
		run.FailureReason = reason
		run.FinishedAt = &finishedAt
	})
}

func (m *MemoryStore) SetAttempts(ctx context.Context, runID string, attempts int) error {
	return m.update(runID, []Status{StatusPending, StatusRunning}, func(run *Run) {
		run.Attempts = attempts
	})
}

// update applies the mutation only while the run is in one of the given
// states, mirroring the GormStore's status-guarded transitions.
func (m *MemoryStore) update(runID string, from []Status, apply func(*Run)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	run, ok := m.runs[runID]
	if !ok {
		return ErrRunNotFound
	}
	allowed := false
	for _, s := range from {
		if run.Status == s {
			allowed = true
			break
		}
	}
	if !allowed {
		return ErrRunConcluded
	}
	apply(run)
	return nil
}

func (m *MemoryStore) HasLiveRun(ctx context.Context, tenantID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, run := range m.runs {
		if run.TenantID == tenantID && !run.Status.Terminal() {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryStore) StaleRunning(ctx context.Context, cutoff time.Time) ([]Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []Run
	for _, run := range m.runs {
		if !run.Status.Terminal() && run.CreatedAt.Before(cutoff) {
			result = append(result, *run)
		}
	}
	return result, nil
}

var _ Store = (*MemoryStore)(nil)
