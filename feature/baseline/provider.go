package baseline

import (
	"context"
	"time"
)

// Provider supplies the expected stock quantities a reconciliation run
// compares the ledger against. The engine never invents expected values;
// where they come from (physical counts, a prior snapshot) is the
// provider's business.
type Provider interface {
	// Expected returns the expected quantity per SKU for the tenant as of
	// the given time.
	Expected(ctx context.Context, tenantID string, asOf time.Time) (map[string]int64, error)
}
