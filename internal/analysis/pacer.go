package analysis

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer gates successive remote classification attempts.
type Pacer interface {
	Wait(ctx context.Context) error
}

// PacerFactory returns a fresh Pacer for one analysis run, so concurrent
// runs share no pacing state.
type PacerFactory func() Pacer

// IntervalPacer spaces attempts at least interval apart. The first attempt
// of a run is not delayed. A non-positive interval disables pacing.
func IntervalPacer(interval time.Duration) PacerFactory {
	if interval <= 0 {
		return NoPacing
	}
	return func() Pacer {
		return rate.NewLimiter(rate.Every(interval), 1)
	}
}

// NoPacing never waits.
func NoPacing() Pacer { return noPacer{} }

type noPacer struct{}

func (noPacer) Wait(ctx context.Context) error { return ctx.Err() }
