package wavdac

import (
	"fmt"
	"time"
)

// Waiter blocks the caller for the time between two samples.
type Waiter interface {
	Wait(d time.Duration)
}

// SpinWaiter busy-waits on the monotonic clock. One core stays busy for the
// whole playback.
type SpinWaiter struct{}

// Wait implements Waiter.
func (SpinWaiter) Wait(d time.Duration) {
	if d <= 0 {
		return
	}

	start := time.Now()
	for time.Since(start) < d {
	}
}

// SleepWaiter hands the wait to the runtime timer.
type SleepWaiter struct{}

// Wait implements Waiter.
func (SleepWaiter) Wait(d time.Duration) {
	time.Sleep(d)
}

// NewWaiter returns the waiter registered under name ("spin" or "sleep").
func NewWaiter(name string) (Waiter, error) {
	switch name {
	case "", "spin":
		return SpinWaiter{}, nil
	case "sleep":
		return SleepWaiter{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown pacing %q", ErrConfig, name)
	}
}
