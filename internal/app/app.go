package app

import (
	"context"
	"fmt"

	"scrolly/internal/config"
	"scrolly/internal/dataset"
	"scrolly/internal/engine"
	"scrolly/internal/journal"
	"scrolly/internal/logger"
	apihttp "scrolly/internal/transport/http/api"

	"golang.org/x/sync/errgroup"
)

// App wires config to the engine, HTTP server, watcher, and journal.
type App struct {
	cfg     *config.Config
	engine  *engine.Engine
	server  *apihttp.Server
	watcher *dataset.Watcher
	journal *journal.Journal
	Summary *StartupSummary
}

// NewApp builds the application without starting it.
func NewApp(cfg *config.Config, opts ...AppBuilderOption) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)
	logger.SetFormat(cfg.App.LogFormat)
	return buildAppWithWire(context.Background(), cfg, opts)
}

func (a *App) Engine() *engine.Engine {
	if a == nil {
		return nil
	}
	return a.engine
}

// Run loads the dataset and serves until ctx is cancelled. A failed load
// does not stop the server; it serves the diagnostic panel instead.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}
	if a.Summary != nil {
		a.Summary.Print()
	}
	group, ctx := errgroup.WithContext(ctx)

	if a.server != nil {
		group.Go(func() error {
			if err := a.server.Start(ctx); err != nil {
				return fmt.Errorf("http server error: %w", err)
			}
			return nil
		})
	}

	if a.journal != nil {
		group.Go(func() error {
			defer a.journal.Close()
			return a.journal.Run(ctx)
		})
	}

	group.Go(func() error {
		if err := a.engine.Load(ctx); err != nil {
			logger.Errorf("dataset unavailable: %v", err)
			return nil
		}
		if a.watcher == nil {
			return nil
		}
		return a.watcher.Run(ctx)
	})

	return group.Wait()
}
