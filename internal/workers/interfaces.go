// Package workers runs the daemon's long-lived loops together. The first
// loop to fail cancels the others.
package workers

import "context"

// Worker is a long-lived loop. Run blocks until ctx is done or the loop
// fails; a nil error means a clean stop.
type Worker interface {
	Run(ctx context.Context) error
}

// Func adapts a function to [Worker].
type Func func(ctx context.Context) error

// Run implements [Worker].
func (f Func) Run(ctx context.Context) error {
	return f(ctx)
}
