package runs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoff_DelayGrowsAndStaysCapped(t *testing.T) {
	b := Backoff{Base: 100 * time.Millisecond, Cap: 800 * time.Millisecond}

	for attempt, want := range map[int]time.Duration{
		1: 100 * time.Millisecond,
		2: 200 * time.Millisecond,
		3: 400 * time.Millisecond,
		4: 800 * time.Millisecond,
		9: 800 * time.Millisecond,
	} {
		for i := 0; i < 50; i++ {
			d := b.Delay(attempt)
			assert.GreaterOrEqual(t, d, want/2, "attempt %d", attempt)
			assert.LessOrEqual(t, d, want, "attempt %d", attempt)
		}
	}
}

func TestBackoff_InvalidAttemptFallsBackToFirst(t *testing.T) {
	b := Backoff{Base: 100 * time.Millisecond, Cap: time.Second}

	d := b.Delay(0)
	assert.GreaterOrEqual(t, d, 50*time.Millisecond)
	assert.LessOrEqual(t, d, 100*time.Millisecond)
}
