package runs

// Config holds configuration for the reconciliation coordinator.
type Config struct {
	// Workers caps how many runs execute concurrently across all tenants.
	Workers int `mapstructure:"workers" default:"4"`

	// MaxAttempts is how often a run is attempted before failing on
	// transient errors.
	MaxAttempts int `mapstructure:"max_attempts" default:"3"`

	// BackoffBaseMs is the base delay between retry attempts.
	BackoffBaseMs int `mapstructure:"backoff_base_ms" default:"200"`

	// BackoffCapMs caps the exponential backoff delay.
	BackoffCapMs int `mapstructure:"backoff_cap_ms" default:"5000"`

	// LeaseTTLSeconds is the per-tenant lock lease duration. It must exceed
	// the longest expected attempt; the lease is refreshed between attempts.
	LeaseTTLSeconds int `mapstructure:"lease_ttl_seconds" default:"60"`

	// StaleAfterMinutes is how old a non-terminal run must be before the
	// janitor fails it.
	StaleAfterMinutes int `mapstructure:"stale_after_minutes" default:"30"`

	// SweepIntervalSeconds is how often the janitor scans for stale runs.
	SweepIntervalSeconds int `mapstructure:"sweep_interval_seconds" default:"60"`

	// SchedulerEnabled turns the periodic auto-reconcile trigger on.
	SchedulerEnabled bool `mapstructure:"scheduler_enabled" default:"false"`

	// SchedulerIntervalMinutes is how often auto-reconcile tenants are
	// triggered.
	SchedulerIntervalMinutes int `mapstructure:"scheduler_interval_minutes" default:"60"`
}
