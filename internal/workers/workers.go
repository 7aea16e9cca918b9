package workers

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Named pairs a worker with the name used in its error.
type Named struct {
	Name   string
	Worker Worker
}

type Workers struct {
	workers []Named
}

func New(workers ...Named) *Workers {
	return &Workers{workers: workers}
}

// Add registers another worker. It must be called before Run.
func (w *Workers) Add(name string, worker Worker) {
	w.workers = append(w.workers, Named{Name: name, Worker: worker})
}

// Run starts every worker and waits for all of them. The first failure
// cancels the shared context and is returned.
func (w *Workers) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, named := range w.workers {
		g.Go(func() error {
			if err := named.Worker.Run(ctx); err != nil {
				return fmt.Errorf("%s: %w", named.Name, err)
			}
			return nil
		})
	}
	return g.Wait()
}
