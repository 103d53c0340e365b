package baseline

import (
	"context"
	"time"
)

// Static serves a fixed expected baseline for tests and CLI runs.
type Static struct {
	// Counts maps tenant id -> SKU -> expected quantity.
	Counts map[string]map[string]int64
}

func (s *Static) Expected(ctx context.Context, tenantID string, asOf time.Time) (map[string]int64, error) {
	expected := make(map[string]int64)
	for sku, qty := range s.Counts[tenantID] {
		expected[sku] = qty
	}
	return expected, nil
}

var _ Provider = (*Static)(nil)
