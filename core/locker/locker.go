package locker

import (
	"context"
	"errors"
	"time"
)

// ErrNotObtained is returned when the lock for a key is already held.
var ErrNotObtained = errors.New("locker: lock not obtained")

// Lease represents a held lock. It expires on its own after the TTL passes,
// so a crashed holder cannot wedge the key forever.
type Lease interface {
	// Release frees the lock before its TTL expires.
	Release(ctx context.Context) error
	// Refresh extends the lease TTL for long-running work.
	Refresh(ctx context.Context, ttl time.Duration) error
}

// Locker hands out exclusive, expiring leases keyed by an arbitrary string.
// The coordinator keys leases by tenant id to serialize reconciliation runs
// per tenant without blocking other tenants.
type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration) (Lease, error)
}
