package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_FoldMatchesEntries(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()

	entries := []Entry{
		{SKU: "WIDGET", DeltaQuantity: 100, Reason: ReasonReceipt, OccurredAt: now.Add(-3 * time.Hour)},
		{SKU: "WIDGET", DeltaQuantity: -2, Reason: ReasonSale, OccurredAt: now.Add(-2 * time.Hour)},
		{SKU: "WIDGET", DeltaQuantity: -1, Reason: ReasonSale, OccurredAt: now.Add(-1 * time.Hour)},
		{SKU: "GADGET", DeltaQuantity: 10, Reason: ReasonReceipt, OccurredAt: now.Add(-2 * time.Hour)},
	}
	require.NoError(t, store.AppendEntries(ctx, "t1", entries))

	// The store's fold must equal replaying the entries by hand.
	observed, err := store.ObservedQuantities(ctx, "t1", now)
	require.NoError(t, err)

	read, err := store.ReadEntries(ctx, "t1", now)
	require.NoError(t, err)

	replayed := make(map[string]int64)
	for _, e := range read {
		replayed[e.SKU] += e.DeltaQuantity
	}
	assert.Equal(t, replayed, observed)
	assert.Equal(t, int64(97), observed["WIDGET"])
	assert.Equal(t, int64(10), observed["GADGET"])
}

func TestMemoryStore_AsOfCutoff(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.AppendEntries(ctx, "t1", []Entry{
		{SKU: "WIDGET", DeltaQuantity: 5, Reason: ReasonReceipt, OccurredAt: now.Add(-time.Hour)},
		{SKU: "WIDGET", DeltaQuantity: 7, Reason: ReasonReceipt, OccurredAt: now.Add(time.Hour)},
	}))

	observed, err := store.ObservedQuantities(ctx, "t1", now)
	require.NoError(t, err)
	assert.Equal(t, int64(5), observed["WIDGET"], "entries after asOf are excluded")
}

func TestMemoryStore_DuplicateRunBatchIsNoOp(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()

	batch := []Entry{
		{SKU: "WIDGET", DeltaQuantity: 3, Reason: ReasonCorrection, SourceRunID: "run-1", OccurredAt: now},
	}
	require.NoError(t, store.AppendEntries(ctx, "t1", batch))
	require.NoError(t, store.AppendEntries(ctx, "t1", batch))

	observed, err := store.ObservedQuantities(ctx, "t1", now)
	require.NoError(t, err)
	assert.Equal(t, int64(3), observed["WIDGET"], "second append of the same run batch must not change net effect")

	// A different run's batch still applies.
	require.NoError(t, store.AppendEntries(ctx, "t1", []Entry{
		{SKU: "WIDGET", DeltaQuantity: 1, Reason: ReasonCorrection, SourceRunID: "run-2", OccurredAt: now},
	}))
	observed, err = store.ObservedQuantities(ctx, "t1", now)
	require.NoError(t, err)
	assert.Equal(t, int64(4), observed["WIDGET"])
}

func TestMemoryStore_TenantIsolation(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.AppendEntries(ctx, "t1", []Entry{
		{SKU: "WIDGET", DeltaQuantity: 5, Reason: ReasonReceipt, OccurredAt: now},
	}))
	require.NoError(t, store.AppendEntries(ctx, "t2", []Entry{
		{SKU: "WIDGET", DeltaQuantity: 9, Reason: ReasonReceipt, OccurredAt: now},
	}))

	observed, err := store.ObservedQuantities(ctx, "t1", now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(5), observed["WIDGET"])

	observed, err = store.ObservedQuantities(ctx, "t2", now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(9), observed["WIDGET"])
}
