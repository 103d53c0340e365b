package rates

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ErrUnavailable signals the rate provider could not price a currency pair.
// It is transient: the coordinator retries runs that fail with it.
var ErrUnavailable = errors.New("rates: rate unavailable")

// Gateway supplies a point-in-time conversion rate between two currency
// codes. Implementations are externally synchronized services; the engine
// only ever reads.
type Gateway interface {
	// FetchRate returns the rate converting one unit of from into to.
	FetchRate(ctx context.Context, from, to string) (decimal.Decimal, error)
	// TestConnection reports whether the provider is reachable. Used by
	// health checks, never mid-run.
	TestConnection(ctx context.Context) bool
}

// Config holds configuration for the exchange rate gateway.
type Config struct {
	// Endpoint is the base URL of the rate provider.
	Endpoint string `mapstructure:"endpoint" default:"http://localhost:9090"`
	// ApiKey authenticates against the provider, if required.
	ApiKey string `mapstructure:"api_key" default:""`
	// TimeoutSeconds bounds each provider call.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"10"`
}
