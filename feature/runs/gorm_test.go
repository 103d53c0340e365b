package runs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Run{}))
	return db
}

func createRun(t *testing.T, store *GormStore, runID string, status Status) {
	t.Helper()
	require.NoError(t, store.Create(context.Background(), &Run{
		RunID:     runID,
		TenantID:  coordTenantID,
		Status:    status,
		CreatedAt: time.Now(),
	}))
}

func TestGormStore_TerminalStateIsFinal(t *testing.T) {
	store := NewGormStore(setupDB(t))
	ctx := context.Background()

	createRun(t, store, "run-1", StatusPending)
	require.NoError(t, store.MarkRunning(ctx, "run-1", time.Now()))
	require.NoError(t, store.MarkFailed(ctx, "run-1", 2, "timed out", time.Now()))

	err := store.MarkCompleted(ctx, "run-1", 3, time.Now())
	assert.ErrorIs(t, err, ErrRunConcluded, "a concluded run must refuse further transitions")

	assert.ErrorIs(t, store.SetAttempts(ctx, "run-1", 3), ErrRunConcluded)
	assert.ErrorIs(t, store.MarkRunning(ctx, "run-1", time.Now()), ErrRunConcluded)

	run, err := store.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, run.Status)
	assert.Equal(t, 2, run.Attempts)
	assert.Equal(t, "timed out", run.FailureReason)
}

func TestGormStore_MarkRunningRequiresPending(t *testing.T) {
	store := NewGormStore(setupDB(t))
	ctx := context.Background()

	createRun(t, store, "run-1", StatusPending)
	require.NoError(t, store.MarkRunning(ctx, "run-1", time.Now()))

	assert.ErrorIs(t, store.MarkRunning(ctx, "run-1", time.Now()), ErrRunConcluded)
}

func TestGormStore_TransitionsOnMissingRun(t *testing.T) {
	store := NewGormStore(setupDB(t))
	ctx := context.Background()

	assert.ErrorIs(t, store.MarkCompleted(ctx, "missing", 1, time.Now()), ErrRunNotFound)
	assert.ErrorIs(t, store.MarkFailed(ctx, "missing", 1, "boom", time.Now()), ErrRunNotFound)
}

func TestGormStore_SetAttemptsOnLiveRun(t *testing.T) {
	store := NewGormStore(setupDB(t))
	ctx := context.Background()

	createRun(t, store, "run-1", StatusRunning)
	require.NoError(t, store.SetAttempts(ctx, "run-1", 2))

	run, err := store.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, 2, run.Attempts)
}

func TestMemoryStore_TerminalStateIsFinal(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, &Run{
		RunID:     "run-1",
		TenantID:  coordTenantID,
		Status:    StatusRunning,
		CreatedAt: time.Now(),
	}))
	require.NoError(t, store.MarkFailed(ctx, "run-1", 1, "timed out", time.Now()))

	assert.ErrorIs(t, store.MarkCompleted(ctx, "run-1", 1, time.Now()), ErrRunConcluded)
	assert.ErrorIs(t, store.SetAttempts(ctx, "run-1", 2), ErrRunConcluded)

	run, err := store.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, run.Status)
}
