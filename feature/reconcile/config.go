package reconcile

// Config holds configuration for the balancing engine.
type Config struct {
	// ThresholdPct is the default minor/major boundary: a discrepancy is
	// minor when |delta| is at most this percentage of the expected
	// quantity. Tenants may override it.
	ThresholdPct float64 `mapstructure:"threshold_pct" default:"5"`

	// NegativeTolerance is how far below zero an observed quantity may dip
	// before the ledger is considered corrupt.
	NegativeTolerance int64 `mapstructure:"negative_tolerance" default:"0"`

	// BatchSize is the number of SKUs processed between cancellation
	// checks.
	BatchSize int `mapstructure:"batch_size" default:"500"`
}
