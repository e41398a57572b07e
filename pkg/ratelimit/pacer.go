package ratelimit

import (
	"context"
	"time"
)

// Pacer inserts the courtesy delay between completed work units
type Pacer interface {
	Pace(ctx context.Context) error
}

// FixedDelay sleeps the same interval on every call
type FixedDelay struct {
	Interval time.Duration
}

// NewFixedDelay creates a pacer sleeping interval per call
func NewFixedDelay(interval time.Duration) *FixedDelay {
	return &FixedDelay{Interval: interval}
}

// Pace blocks for the interval. It returns ctx.Err() early if ctx is done.
func (f *FixedDelay) Pace(ctx context.Context) error {
	if f.Interval <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(f.Interval)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PacerFunc adapts a function to Pacer
type PacerFunc func(ctx context.Context) error

func (f PacerFunc) Pace(ctx context.Context) error {
	return f(ctx)
}
