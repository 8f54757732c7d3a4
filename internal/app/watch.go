package app

import (
	"context"
	"fmt"
	"os"

	"github.com/amoebajs/builder-sub000/internal/ctxlog"
	"github.com/amoebajs/builder-sub000/internal/publish"
	"github.com/amoebajs/builder-sub000/internal/watch"
)

// Watch builds once, then rebuilds whenever a source file changes, until ctx
// is cancelled. Build failures are logged and the watcher keeps running.
// When a publish URL is configured and no publisher is installed, one is
// dialled for the duration of the watch.
func (a *App) Watch(ctx context.Context) error {
	ctx = a.withLogger(ctx)
	logger := ctxlog.FromContext(ctx)

	if a.cfg.PublishURL != "" && a.currentPublisher() == nil {
		pub, err := publish.Open(ctx, a.cfg.PublishTransport, publish.Config{
			URL:       a.cfg.PublishURL,
			Namespace: a.cfg.PublishNamespace,
			Event:     a.cfg.PublishEvent,
		})
		if err != nil {
			return fmt.Errorf("failed to connect publisher: %w", err)
		}
		a.SetPublisher(pub)
		defer func() {
			a.SetPublisher(nil)
			if err := pub.Close(); err != nil {
				logger.Warn("Failed to close publisher.", "error", err)
			}
		}()
	}

	if _, err := a.Build(ctx); err != nil {
		logger.Warn("Initial build failed, waiting for changes.", "error", err)
	}

	var roots []string
	for _, p := range a.cfg.sourcePaths() {
		if _, err := os.Stat(p); err == nil {
			roots = append(roots, p)
		}
	}
	w, err := watch.New(watch.Config{
		Roots:    roots,
		Debounce: a.cfg.Debounce,
		OnChange: func(ctx context.Context, changed []string) error {
			if err := a.Reload(ctx); err != nil {
				return err
			}
			_, err := a.Build(ctx)
			return err
		},
	})
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	logger.Info("Watching for changes.", "roots", roots)
	return w.Run(ctx)
}

func (a *App) currentPublisher() publish.Publisher {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.publisher
}
