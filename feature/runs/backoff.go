package runs

import (
	"math/rand"
	"time"
)

// Backoff computes retry delays: exponential growth from Base, capped at
// Cap, with jitter so a burst of failing runs does not retry in lockstep.
type Backoff struct {
	Base time.Duration
	Cap  time.Duration
}

// Delay returns the wait before the given retry. attempt is 1-based: the
// delay after the first failed attempt is Delay(1). The returned duration
// is drawn uniformly from [d/2, d] where d is the capped exponential delay.
func (b Backoff) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	d := b.Base
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= b.Cap {
			d = b.Cap
			break
		}
	}
	if d > b.Cap {
		d = b.Cap
	}

	half := d / 2
	return half + time.Duration(rand.Int63n(int64(half)+1))
}
