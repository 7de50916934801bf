package tiered

import (
	"context"
	"math/rand"
	"time"
)

// DelayProvider injects latency before a tier hop. Deployments use it to
// approximate the network cost of reaching a remote tier; tests use
// NoDelay for determinism.
type DelayProvider interface {
	// Wait blocks for the hop delay or until ctx is done.
	Wait(ctx context.Context) error
}

// NoDelay performs no waiting.
type NoDelay struct{}

// Wait returns immediately.
func (NoDelay) Wait(context.Context) error { return nil }

// FixedDelay waits a constant duration per hop.
type FixedDelay struct {
	D time.Duration
}

// Wait blocks for the configured duration.
func (d FixedDelay) Wait(ctx context.Context) error {
	return sleep(ctx, d.D)
}

// RandomDelay waits a uniformly random duration in [0, Max) per hop.
type RandomDelay struct {
	Max time.Duration
}

// Wait blocks for a random duration up to Max.
func (d RandomDelay) Wait(ctx context.Context) error {
	if d.Max <= 0 {
		return nil
	}
	return sleep(ctx, time.Duration(rand.Int63n(int64(d.Max))))
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
