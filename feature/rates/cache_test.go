package rates

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingGateway wraps Static and counts fetches.
type countingGateway struct {
	Static
	calls atomic.Int64
}

func (c *countingGateway) FetchRate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	c.calls.Add(1)
	return c.Static.FetchRate(ctx, from, to)
}

func TestRunCache_FetchesPairOnce(t *testing.T) {
	gw := &countingGateway{Static: Static{Rates: map[string]decimal.Decimal{
		"EUR/USD": decimal.RequireFromString("1.08"),
	}}}
	cache := NewRunCache(gw)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		snap, err := cache.Rate(ctx, "EUR", "USD")
		require.NoError(t, err)
		assert.True(t, snap.Rate.Equal(decimal.RequireFromString("1.08")))
	}

	assert.Equal(t, int64(1), gw.calls.Load(), "pair must be fetched once per run")
}

func TestRunCache_IdentityPairSkipsGateway(t *testing.T) {
	gw := &countingGateway{Static: Static{Rates: map[string]decimal.Decimal{}}}
	cache := NewRunCache(gw)

	snap, err := cache.Rate(context.Background(), "USD", "USD")
	require.NoError(t, err)
	assert.True(t, snap.Rate.Equal(decimal.NewFromInt(1)))
	assert.Equal(t, int64(0), gw.calls.Load())
}

func TestRunCache_ErrorNotCached(t *testing.T) {
	gw := &countingGateway{Static: Static{Rates: map[string]decimal.Decimal{}}}
	cache := NewRunCache(gw)
	ctx := context.Background()

	_, err := cache.Rate(ctx, "EUR", "USD")
	assert.ErrorIs(t, err, ErrUnavailable)

	// Provider recovers between attempts
	gw.Rates["EUR/USD"] = decimal.RequireFromString("1.10")
	snap, err := cache.Rate(ctx, "EUR", "USD")
	require.NoError(t, err)
	assert.True(t, snap.Rate.Equal(decimal.RequireFromString("1.10")))
}

func TestRunCache_ConcurrentLookupsCollapse(t *testing.T) {
	gw := &countingGateway{Static: Static{Rates: map[string]decimal.Decimal{
		"GBP/USD": decimal.RequireFromString("1.27"),
	}}}
	cache := NewRunCache(gw)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cache.Rate(context.Background(), "GBP", "USD")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, gw.calls.Load(), int64(2), "concurrent lookups must collapse to at most a couple of fetches")
	assert.Len(t, cache.Snapshots(), 1)
}
