package application

import (
	"context"
	"time"
)

// Clock interface supaya gampang ditest
type Clock interface {
	Now() time.Time
}

// SystemClock implementasi default, pakai time.Now()
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Sleeper blocks for d or until ctx is done.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// SystemSleeper waits on a real timer.
type SystemSleeper struct{}

func (SystemSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// NoSleep returns immediately. Dipakai di test dan CLI.
type NoSleep struct{}

func (NoSleep) Sleep(ctx context.Context, _ time.Duration) error { return ctx.Err() }

// Range is a closed duration interval used for simulated latency.
type Range struct {
	Min time.Duration
	Max time.Duration
}

// Pick returns Min plus a fraction f in [0,1) of the span.
func (r Range) Pick(f float64) time.Duration {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + time.Duration(f*float64(r.Max-r.Min))
}
