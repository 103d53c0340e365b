package rates

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// Static is a fixed-table Gateway for tests and offline CLI runs.
type Static struct {
	// Rates maps "FROM/TO" to a rate.
	Rates map[string]decimal.Decimal
}

func (s *Static) FetchRate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	if rate, ok := s.Rates[from+"/"+to]; ok {
		return rate, nil
	}
	return decimal.Zero, fmt.Errorf("%w: no static rate for %s/%s", ErrUnavailable, from, to)
}

func (s *Static) TestConnection(ctx context.Context) bool {
	return true
}

var _ Gateway = (*Static)(nil)
