package runs

import (
	"context"
	"errors"
	"time"
)

// ErrAlreadyRunning is returned when a tenant already has a live run.
// No run record is created in that case.
var ErrAlreadyRunning = errors.New("runs: a run is already in progress for this tenant")

// ErrRunNotFound is returned when a run id does not exist.
var ErrRunNotFound = errors.New("runs: run not found")

// ErrRunConcluded is returned by state transitions on a run that already
// reached a terminal state. A run concludes exactly once: after the janitor
// reclaims a stale run, its late worker loses ownership and every further
// transition is refused.
var ErrRunConcluded = errors.New("runs: run already reached a terminal state")

// Store persists run records.
type Store interface {
	// Create inserts a new run record.
	Create(ctx context.Context, run *Run) error

	// Get returns the run or ErrRunNotFound.
	Get(ctx context.Context, runID string) (*Run, error)

	// ListByTenant returns the tenant's runs, newest first, up to limit.
	ListByTenant(ctx context.Context, tenantID string, limit int) ([]Run, error)

	// MarkRunning transitions a pending run to running, or ErrRunConcluded.
	MarkRunning(ctx context.Context, runID string, startedAt time.Time) error

	// MarkCompleted transitions a live run to completed. A run that already
	// concluded (e.g. reclaimed by the janitor) stays untouched and the
	// call returns ErrRunConcluded.
	MarkCompleted(ctx context.Context, runID string, attempts int, finishedAt time.Time) error

	// MarkFailed transitions a live run to failed with a reason, under the
	// same ownership rule as MarkCompleted.
	MarkFailed(ctx context.Context, runID string, attempts int, reason string, finishedAt time.Time) error

	// SetAttempts records the attempt counter on a live run, so retry
	// progress survives a process restart.
	SetAttempts(ctx context.Context, runID string, attempts int) error

	// HasLiveRun reports whether the tenant has a pending or running run.
	HasLiveRun(ctx context.Context, tenantID string) (bool, error)

	// StaleRunning returns non-terminal runs created before cutoff. The
	// janitor fails them so a crashed worker cannot block a tenant forever.
	StaleRunning(ctx context.Context, cutoff time.Time) ([]Run, error)
}
