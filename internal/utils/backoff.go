package utils

import (
	"context"
	"math/rand/v2"
	"time"
)

// Backoff computes exponential reconnect delays with full jitter.
type Backoff struct {
	Base time.Duration
	Max  time.Duration

	attempt int
}

// Default reconnect bounds.
const (
	DefaultBackoffBase = 100 * time.Millisecond
	DefaultBackoffMax  = 30 * time.Second
)

func NewBackoff(base, maxDelay time.Duration) *Backoff {
	if base <= 0 {
		base = DefaultBackoffBase
	}
	if maxDelay < base {
		maxDelay = DefaultBackoffMax
	}
	return &Backoff{Base: base, Max: maxDelay}
}

// Next returns the delay before the next attempt and advances the attempt
// counter. The delay is drawn from [ceiling/2, ceiling] where ceiling doubles
// per attempt up to Max.
func (b *Backoff) Next() time.Duration {
	ceiling := b.Base << min(b.attempt, 30)
	if ceiling <= 0 || ceiling > b.Max {
		ceiling = b.Max
	}
	b.attempt++

	half := ceiling / 2
	return half + rand.N(half+1)
}

// Reset starts the sequence over after a successful connection.
func (b *Backoff) Reset() {
	b.attempt = 0
}

// Attempt reports how many delays were handed out since the last Reset.
func (b *Backoff) Attempt() int {
	return b.attempt
}

// WaitWithContext sleeps for delay or until ctx is done.
func WaitWithContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
