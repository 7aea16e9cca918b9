package service

import (
	"context"
	"fmt"
	"time"

	"github.com/MKhiriev/go-lst-sync/internal/logger"
	"github.com/MKhiriev/go-lst-sync/internal/watcher"
)

type watchService struct {
	documents DocumentService
	root      string
	debounce  time.Duration
	logger    *logger.Logger
}

// NewWatchService creates a [WatchService] for the content root.
func NewWatchService(documents DocumentService, root string, debounce time.Duration, logger *logger.Logger) WatchService {
	return &watchService{
		documents: documents,
		root:      root,
		debounce:  debounce,
		logger:    logger,
	}
}

// Run starts watching before reconciling so that no edit made during the
// initial scan is missed.
func (w *watchService) Run(ctx context.Context) error {
	fw, err := watcher.New(w.root, w.debounce)
	if err != nil {
		return err
	}
	if err = fw.Start(); err != nil {
		return fmt.Errorf("error starting watcher: %w", err)
	}
	defer func() {
		if stopErr := fw.Stop(); stopErr != nil {
			w.logger.Err(stopErr).Str("func", "watchService.Run").Msg("error stopping watcher")
		}
	}()

	if err = w.documents.Reconcile(ctx); err != nil {
		return fmt.Errorf("error reconciling content root: %w", err)
	}
	w.logger.Info().Str("func", "watchService.Run").Str("root", fw.Root()).Msg("watching content root")

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-fw.Events():
			w.handle(ctx, ev)
		case err = <-fw.Errors():
			w.logger.Warn().Err(err).Str("func", "watchService.Run").Msg("watcher error")
		}
	}
}

func (w *watchService) handle(ctx context.Context, ev watcher.Event) {
	var err error
	switch ev.Op {
	case watcher.OpWrite:
		err = w.documents.ApplyLocalFile(ctx, ev.Path)
	case watcher.OpRemove:
		err = w.documents.ApplyLocalRemove(ctx, ev.Path)
	}
	if err != nil && ctx.Err() == nil {
		w.logger.Warn().Err(err).
			Str("func", "watchService.handle").
			Str("path", ev.Path).
			Stringer("op", ev.Op).
			Msg("file event not applied")
	}
}
