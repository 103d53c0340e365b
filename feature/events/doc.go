// Package events publishes reconciliation run outcomes.
//
// Two sinks exist: a Kafka completion event for downstream consumers and a
// JSON report archive in object storage. Both are advisory side effects of
// a run, never part of its success or failure.
package events
