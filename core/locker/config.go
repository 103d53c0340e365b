package locker

// Config holds configuration for the distributed lock backend.
type Config struct {
	// Addr is the Redis address. Empty disables Redis and falls back to the
	// in-process locker.
	Addr string `mapstructure:"addr" default:""`
	// Password is the Redis password.
	Password string `mapstructure:"password" default:""`
	// DB is the Redis database index.
	DB int `mapstructure:"db" default:"0"`
	// KeyPrefix namespaces lock keys in a shared Redis instance.
	KeyPrefix string `mapstructure:"key_prefix" default:"reconcile:"`
}
