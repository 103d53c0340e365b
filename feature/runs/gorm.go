package runs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// GormStore persists runs in the relational database.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a run store on top of db.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Create(ctx context.Context, run *Run) error {
	if err := s.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("create run %s: %w", run.RunID, err)
	}
	return nil
}

func (s *GormStore) Get(ctx context.Context, runID string) (*Run, error) {
	var run Run
	err := s.db.WithContext(ctx).First(&run, "run_id = ?", runID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", runID, err)
	}
	return &run, nil
}

func (s *GormStore) ListByTenant(ctx context.Context, tenantID string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	var result []Run
	err := s.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Limit(limit).
		Find(&result).Error
	if err != nil {
		return nil, fmt.Errorf("list runs for tenant %s: %w", tenantID, err)
	}
	return result, nil
}

func (s *GormStore) MarkRunning(ctx context.Context, runID string, startedAt time.Time) error {
	return s.transition(ctx, runID, []Status{StatusPending}, map[string]any{
		"status":     StatusRunning,
		"started_at": startedAt,
	})
}

func (s *GormStore) MarkCompleted(ctx context.Context, runID string, attempts int, finishedAt time.Time) error {
	return s.transition(ctx, runID, []Status{StatusPending, StatusRunning}, map[string]any{
		"status":      StatusCompleted,
		"attempts":    attempts,
		"finished_at": finishedAt,
	})
}

func (s *GormStore) MarkFailed(ctx context.Context, runID string, attempts int, reason string, finishedAt time.Time) error {
	return s.transition(ctx, runID, []Status{StatusPending, StatusRunning}, map[string]any{
		"status":         StatusFailed,
		"attempts":       attempts,
		"failure_reason": reason,
		"finished_at":    finishedAt,
	})
}

func (s *GormStore) SetAttempts(ctx context.Context, runID string, attempts int) error {
	return s.transition(ctx, runID, []Status{StatusPending, StatusRunning}, map[string]any{
		"attempts": attempts,
	})
}

// transition updates the run only while it is in one of the given states.
// The status guard in the WHERE clause is what makes a terminal state
// final: a late worker racing the janitor matches zero rows and learns it
// lost ownership instead of overwriting the recorded outcome.
func (s *GormStore) transition(ctx context.Context, runID string, from []Status, fields map[string]any) error {
	result := s.db.WithContext(ctx).Model(&Run{}).
		Where("run_id = ? AND status IN ?", runID, from).
		Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("update run %s: %w", runID, result.Error)
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := s.db.WithContext(ctx).Model(&Run{}).Where("run_id = ?", runID).Count(&count).Error; err != nil {
			return fmt.Errorf("update run %s: %w", runID, err)
		}
		if count == 0 {
			return ErrRunNotFound
		}
		return ErrRunConcluded
	}
	return nil
}

func (s *GormStore) HasLiveRun(ctx context.Context, tenantID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&Run{}).
		Where("tenant_id = ? AND status IN ?", tenantID, []Status{StatusPending, StatusRunning}).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("count live runs for tenant %s: %w", tenantID, err)
	}
	return count > 0, nil
}

func (s *GormStore) StaleRunning(ctx context.Context, cutoff time.Time) ([]Run, error) {
	var result []Run
	err := s.db.WithContext(ctx).
		Where("status IN ? AND created_at < ?", []Status{StatusPending, StatusRunning}, cutoff).
		Find(&result).Error
	if err != nil {
		return nil, fmt.Errorf("list stale runs: %w", err)
	}
	return result, nil
}

var _ Store = (*GormStore)(nil)
