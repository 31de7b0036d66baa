package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/jsamuelsen/quotesync/internal/adapters/clients"
	"github.com/jsamuelsen/quotesync/internal/adapters/clients/acl"
	"github.com/jsamuelsen/quotesync/internal/adapters/display"
	"github.com/jsamuelsen/quotesync/internal/adapters/notify"
	"github.com/jsamuelsen/quotesync/internal/adapters/storage"
	"github.com/jsamuelsen/quotesync/internal/app"
	"github.com/jsamuelsen/quotesync/internal/platform/config"
	"github.com/jsamuelsen/quotesync/internal/platform/logging"
	"github.com/jsamuelsen/quotesync/internal/platform/metrics"
)

// components is the object graph shared by serve, sync, add and list.
type components struct {
	logger     *slog.Logger
	backend    storage.Backend
	store      *app.QuoteStore
	feed       *notify.Feed
	board      *display.Board
	quotes     *app.QuoteService
	remote     *acl.Remote
	metrics    *metrics.SyncMetrics
	reconciler *app.Reconciler
}

func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	return logging.NewWithWriter(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	}, w)
}

// build opens storage, loads the store and wires the reconciler. The caller
// must Close the result.
func build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*components, error) {
	backend, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("opening %s storage: %w", cfg.Storage.Driver, err)
	}

	store, err := app.LoadQuoteStore(ctx, app.QuoteStoreConfig{
		Blobs:  backend,
		Key:    cfg.Storage.Key,
		Logger: logger,
	})
	if err != nil {
		return nil, errors.Join(fmt.Errorf("loading quote store: %w", err), backend.Close())
	}

	httpClient, err := clients.New(&clients.Config{
		BaseURL:     cfg.Remote.BaseURL,
		ServiceName: cfg.Remote.Name,
		Timeout:     cfg.Client.Timeout,
		Retry:       cfg.Client.Retry,
		Circuit:     cfg.Client.CircuitBreaker,
		Transport:   cfg.Client.Transport,
		Logger:      logger,
	})
	if err != nil {
		return nil, errors.Join(fmt.Errorf("creating HTTP client: %w", err), backend.Close())
	}

	c := &components{
		logger:  logger,
		backend: backend,
		store:   store,
		feed: notify.NewFeed(notify.FeedConfig{
			HistorySize: cfg.Notify.HistorySize,
			Logger:      logger,
		}),
		board:   display.NewBoard(),
		metrics: metrics.New(),
		remote: acl.NewRemote(acl.RemoteConfig{
			Client:          httpClient,
			Name:            cfg.Remote.Name,
			FetchPath:       cfg.Remote.FetchPath,
			PushPath:        cfg.Remote.PushPath,
			DefaultCategory: cfg.Remote.DefaultCategory,
			MaxFetch:        cfg.Remote.MaxFetch,
			Logger:          logger,
		}),
	}

	c.board.Refresh(ctx, store.List())
	c.metrics.SetQuotes(store.Len())

	c.quotes = app.NewQuoteService(app.QuoteServiceConfig{
		Store:     store,
		Notifier:  c.feed,
		Refresher: c.board,
		Logger:    logger,
	})

	c.reconciler = app.NewReconciler(app.ReconcilerConfig{
		Store:       store,
		Remote:      c.remote,
		Notifier:    c.feed,
		Refresher:   c.board,
		Observer:    c.metrics,
		PushEnabled: cfg.Sync.PushEnabled,
		Logger:      logger,
	})

	return c, nil
}

// Close releases the storage backend.
func (c *components) Close() error {
	if err := c.backend.Close(); err != nil {
		return fmt.Errorf("closing %s storage: %w", c.backend.Driver(), err)
	}

	return nil
}

// closeQuietly closes c for short-lived commands, logging any failure.
func closeQuietly(c *components) {
	if err := c.Close(); err != nil {
		c.logger.Error("close failed", slog.Any("error", err))
	}
}
