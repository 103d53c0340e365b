package events

import (
	"context"
	"sync"
)

// MemoryEmitter records published events in memory. Tests use it to assert
// on emitted payloads; the reconcile CLI uses it when no broker is
// configured.
type MemoryEmitter struct {
	mu       sync.Mutex
	payloads []Payload

	// FailWith, when set, makes every publish fail with this error.
	FailWith error
}

func (e *MemoryEmitter) Publish(ctx context.Context, payload Payload) error {
	if e.FailWith != nil {
		return e.FailWith
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.payloads = append(e.payloads, payload)
	return nil
}

// Published returns a copy of everything published so far.
func (e *MemoryEmitter) Published() []Payload {
	e.mu.Lock()
	defer e.mu.Unlock()

	result := make([]Payload, len(e.payloads))
	copy(result, e.payloads)
	return result
}

var _ Emitter = (*MemoryEmitter)(nil)
