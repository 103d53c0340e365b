package rates

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// Snapshot is a rate observed at a point in time during a run.
type Snapshot struct {
	From       string          `json:"from"`
	To         string          `json:"to"`
	Rate       decimal.Decimal `json:"rate"`
	ObservedAt time.Time       `json:"observed_at"`
}

// RunCache memoizes rates for the duration of a single reconciliation run.
//
// All SKUs sharing a currency pair reuse one gateway call, and concurrent
// lookups for the same pair are collapsed with singleflight. The cache must
// not outlive its run: rates reflect run time, so cross-run caching would
// hide rate movement.
type RunCache struct {
	gateway Gateway

	mu    sync.RWMutex
	pairs map[string]Snapshot
	sf    singleflight.Group
}

// NewRunCache creates a cache for one run on top of gateway.
func NewRunCache(gateway Gateway) *RunCache {
	return &RunCache{
		gateway: gateway,
		pairs:   make(map[string]Snapshot),
	}
}

// Rate returns the cached snapshot for from/to, fetching it once on first
// use. The identity pair never touches the gateway.
func (c *RunCache) Rate(ctx context.Context, from, to string) (Snapshot, error) {
	if from == to {
		return Snapshot{From: from, To: to, Rate: decimal.NewFromInt(1), ObservedAt: time.Now()}, nil
	}

	key := from + "/" + to

	c.mu.RLock()
	snap, ok := c.pairs[key]
	c.mu.RUnlock()
	if ok {
		return snap, nil
	}

	result, err, _ := c.sf.Do(key, func() (any, error) {
		c.mu.RLock()
		snap, ok := c.pairs[key]
		c.mu.RUnlock()
		if ok {
			return snap, nil
		}

		rate, err := c.gateway.FetchRate(ctx, from, to)
		if err != nil {
			return Snapshot{}, err
		}

		snap = Snapshot{From: from, To: to, Rate: rate, ObservedAt: time.Now()}
		c.mu.Lock()
		c.pairs[key] = snap
		c.mu.Unlock()
		return snap, nil
	})
	if err != nil {
		return Snapshot{}, err
	}

	return result.(Snapshot), nil
}

// Snapshots returns every pair priced during the run.
func (c *RunCache) Snapshots() []Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]Snapshot, 0, len(c.pairs))
	for _, snap := range c.pairs {
		result = append(result, snap)
	}
	return result
}
