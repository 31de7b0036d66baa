package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jsamuelsen/quotesync/internal/adapters/http"
	"github.com/jsamuelsen/quotesync/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quotesync/internal/app"
	"github.com/jsamuelsen/quotesync/internal/platform/telemetry"
	"github.com/jsamuelsen/quotesync/internal/ports"
)

func newServeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the periodic sync scheduler",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

func runServe(ctx context.Context, opts *options) error {
	cfg := opts.cfg

	logger := newLogger(cfg, os.Stdout)
	slog.SetDefault(logger)

	logger.Info("starting service",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
		slog.String("storage", cfg.Storage.Driver),
	)

	// Initialize telemetry (noop if disabled)
	telProvider, err := telemetry.New(ctx, &telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		Endpoint:     cfg.Telemetry.Endpoint,
		ServiceName:  cfg.Telemetry.ServiceName,
		Version:      cfg.App.Version,
		Environment:  cfg.App.Environment,
		SamplingRate: cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	defer func() {
		if shutdownErr := telProvider.Shutdown(context.WithoutCancel(ctx)); shutdownErr != nil {
			logger.Error("telemetry shutdown error", slog.Any("error", shutdownErr))
		}
	}()

	c, err := build(ctx, cfg, logger)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := c.Close(); closeErr != nil {
			logger.Error("storage close error", slog.Any("error", closeErr))
		}
	}()

	// The store is critical; the remote only degrades readiness.
	healthRegistry := ports.NewHealthRegistry()

	if err := healthRegistry.Register(c.store); err != nil {
		return fmt.Errorf("registering store health check: %w", err)
	}

	if err := healthRegistry.RegisterOptional(c.remote); err != nil {
		return fmt.Errorf("registering remote health check: %w", err)
	}

	server := http.New(&cfg.Server, logger)
	http.SetupRouter(server.Engine(), http.RouterConfig{
		Logger:        logger,
		ServiceName:   cfg.Telemetry.ServiceName,
		HealthHandler: handlers.NewHealthHandler(healthRegistry, handlers.NewBuildInfo(Version, Commit, BuildTime), c.metrics.Handler()),
		QuoteHandler:  handlers.NewQuoteHandler(c.quotes),
		SyncHandler:   handlers.NewSyncHandler(c.reconciler),
		BoardHandler:  handlers.NewBoardHandler(c.feed, c.board),
		Timeout:       http.DefaultRequestTimeout,
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return server.Run(gctx)
	})

	if cfg.Sync.Enabled {
		scheduler := app.NewScheduler(app.SchedulerConfig{
			Runner:     c.reconciler,
			Interval:   cfg.Sync.Interval,
			RunOnStart: cfg.Sync.RunOnStart,
			Logger:     logger,
		})

		g.Go(func() error {
			return scheduler.Run(gctx)
		})
	} else {
		logger.Info("periodic sync disabled")
	}

	err = g.Wait()

	logger.Info("shutdown complete")

	return err
}
