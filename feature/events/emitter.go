package events

import "context"

// Emitter publishes run completion events.
//
// Publishing is advisory: a failed publish is logged by the caller and never
// changes the outcome of the run that produced it.
type Emitter interface {
	Publish(ctx context.Context, payload Payload) error
}
