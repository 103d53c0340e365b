package ledger

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable signals the ledger store could not be read or written.
// It is transient: the coordinator retries runs that fail with it.
var ErrUnavailable = errors.New("ledger: store unavailable")

// Store is the contract for the append-only stock ledger.
//
// The ledger is the source of truth for stock quantities. Corrections are
// appended as new facts; nothing is ever edited in place.
type Store interface {
	// ReadEntries returns all entries for the tenant up to asOf, ordered by
	// occurrence.
	ReadEntries(ctx context.Context, tenantID string, asOf time.Time) ([]Entry, error)

	// AppendEntries appends a batch atomically: either the whole batch is
	// recorded or none of it. A batch whose SourceRunID was already appended
	// is a no-op, so retrying a run never double-applies corrections.
	AppendEntries(ctx context.Context, tenantID string, batch []Entry) error

	// ObservedQuantities folds the ledger into per-SKU quantity sums up to
	// asOf.
	ObservedQuantities(ctx context.Context, tenantID string, asOf time.Time) (map[string]int64, error)

	// Items returns the tenant's item catalog keyed by SKU.
	Items(ctx context.Context, tenantID string) (map[string]Item, error)
}
