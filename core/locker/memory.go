package locker

import (
	"context"
	"sync"
	"time"
)

// MemoryLocker is an in-process Locker used when no Redis address is
// configured (single-instance deployments, tests, one-shot CLI runs).
// Expired leases are treated as free, mirroring the Redis TTL behavior.
type MemoryLocker struct {
	mu     sync.Mutex
	leases map[string]time.Time
}

// NewMemoryLocker creates an empty in-process locker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{leases: make(map[string]time.Time)}
}

// Obtain acquires the lease for key or fails with ErrNotObtained.
func (l *MemoryLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (Lease, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if expiry, held := l.leases[key]; held && time.Now().Before(expiry) {
		return nil, ErrNotObtained
	}

	l.leases[key] = time.Now().Add(ttl)
	return &memoryLease{locker: l, key: key}, nil
}

type memoryLease struct {
	locker *MemoryLocker
	key    string
}

func (m *memoryLease) Release(ctx context.Context) error {
	m.locker.mu.Lock()
	defer m.locker.mu.Unlock()
	delete(m.locker.leases, m.key)
	return nil
}

func (m *memoryLease) Refresh(ctx context.Context, ttl time.Duration) error {
	m.locker.mu.Lock()
	defer m.locker.mu.Unlock()
	m.locker.leases[m.key] = time.Now().Add(ttl)
	return nil
}

var _ Locker = (*MemoryLocker)(nil)
