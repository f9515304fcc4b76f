package pipeline

import (
	"context"
	"math/rand/v2"
	"time"
)

// Throttle pauses between consecutive per-task external calls for a duration
// drawn uniformly from [Min, Max].
type Throttle struct {
	Min, Max time.Duration
	// rand returns a value in [0, 1).
	rand func() float64
}

func NewThrottle(lo, hi time.Duration) *Throttle {
	return &Throttle{Min: lo, Max: hi, rand: rand.Float64}
}

// Delay draws the next pause.
func (t *Throttle) Delay() time.Duration {
	if t == nil {
		return 0
	}
	if t.Max <= t.Min {
		return t.Min
	}
	r := rand.Float64
	if t.rand != nil {
		r = t.rand
	}
	return t.Min + time.Duration(r()*float64(t.Max-t.Min))
}

// Wait blocks for the next pause or until ctx is done.
func (t *Throttle) Wait(ctx context.Context) error {
	d := t.Delay()
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
