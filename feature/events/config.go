package events

// Config holds configuration for the event emitter.
type Config struct {
	// Brokers is a comma-separated list of Kafka broker addresses.
	Brokers string `mapstructure:"brokers" default:"localhost:9092"`

	// Topic is the topic completion events are published to.
	Topic string `mapstructure:"topic" default:"reconciliation.completed"`

	// TimeoutSeconds bounds a single publish attempt.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"10"`
}
