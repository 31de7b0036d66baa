package acl

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/jsamuelsen/quotesync/internal/adapters/clients"
	"github.com/jsamuelsen/quotesync/internal/domain"
	"github.com/jsamuelsen/quotesync/internal/platform/logging"
)

const (
	defaultFetchPath = "/posts"
	defaultPushPath  = "/posts"

	// maxFetchBody bounds a fetch response.
	maxFetchBody = 8 << 20
)

// RemoteConfig configures a Remote.
type RemoteConfig struct {
	// Client is the resilient HTTP client, already pointed at the remote base URL.
	Client *clients.Client

	// Name identifies the remote in errors and health checks.
	// Defaults to the client's service name.
	Name string

	FetchPath       string
	PushPath        string
	DefaultCategory string

	// MaxFetch caps how many records one fetch returns. Zero returns all.
	MaxFetch int

	Logger *slog.Logger
}

// Remote talks to the remote quote server. It implements ports.QuoteRemote
// and ports.HealthChecker.
type Remote struct {
	client     *clients.Client
	name       string
	fetchPath  string
	pushPath   string
	translator Translator
	logger     *slog.Logger
}

// NewRemote creates a Remote. Panics if Client is nil.
func NewRemote(cfg RemoteConfig) *Remote {
	if cfg.Client == nil {
		panic("Remote: Client is required")
	}

	name := cfg.Name
	if name == "" {
		name = cfg.Client.ServiceName()
	}

	fetchPath := cfg.FetchPath
	if fetchPath == "" {
		fetchPath = defaultFetchPath
	}

	pushPath := cfg.PushPath
	if pushPath == "" {
		pushPath = defaultPushPath
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Remote{
		client:    cfg.Client,
		name:      name,
		fetchPath: fetchPath,
		pushPath:  pushPath,
		translator: Translator{
			DefaultCategory: cfg.DefaultCategory,
			Limit:           cfg.MaxFetch,
		},
		logger: logger.With(slog.String("component", "acl.Remote")),
	}
}

// FetchQuotes retrieves the remote collection. Every failure, including a
// malformed body, is a *domain.UnavailableError.
func (r *Remote) FetchQuotes(ctx context.Context) ([]domain.Quote, error) {
	logger := logging.FromContextOr(ctx, r.logger)
	logger.Log(ctx, logging.LevelTrace, "starting request", slog.String("path", r.fetchPath))

	resp, err := r.client.Get(ctx, r.fetchPath)
	if err != nil {
		return nil, MapHTTPError(nil, err, r.name, "fetch quotes")
	}
	defer func() { _ = resp.Body.Close() }()

	logger.Log(ctx, logging.LevelTrace, "request complete",
		slog.String("path", r.fetchPath),
		slog.Int("status", resp.StatusCode))

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, asUnavailable(MapHTTPError(resp, nil, r.name, "fetch quotes"), r.name)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBody))
	if err != nil {
		return nil, domain.NewUnavailableError(r.name, fmt.Sprintf("reading fetch response: %v", err))
	}

	quotes, skipped, err := r.translator.DecodeQuotes(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.NewUnavailableError(r.name, "malformed fetch response"), err)
	}

	if skipped > 0 {
		logger.DebugContext(ctx, "skipped invalid remote records", slog.Int("skipped", skipped))
	}

	logger.DebugContext(ctx, "fetched remote quotes", slog.Int("count", len(quotes)))

	return quotes, nil
}

// PushQuotes posts the full collection. Any 2xx is success.
func (r *Remote) PushQuotes(ctx context.Context, quotes []domain.Quote) error {
	payload, err := EncodeQuotes(quotes)
	if err != nil {
		return err
	}

	resp, err := r.client.PostJSON(ctx, r.pushPath, payload)
	if err != nil {
		return MapHTTPError(nil, err, r.name, "push quotes")
	}
	defer func() { _ = resp.Body.Close() }()

	if err := MapHTTPError(resp, nil, r.name, "push quotes"); err != nil {
		return err
	}

	logging.FromContextOr(ctx, r.logger).DebugContext(ctx, "pushed quotes",
		slog.Int("count", len(quotes)),
		slog.Int("status", resp.StatusCode))

	return nil
}

// Name implements ports.HealthChecker.
func (r *Remote) Name() string {
	return r.name
}

// Check implements ports.HealthChecker by probing the fetch path.
func (r *Remote) Check(ctx context.Context) error {
	resp, err := r.client.Get(ctx, r.fetchPath)
	if err != nil {
		return MapHTTPError(nil, err, r.name, "health check")
	}
	defer func() { _ = resp.Body.Close() }()

	return MapHTTPError(resp, nil, r.name, "health check")
}

// asUnavailable keeps fetch failures in the "no data" class regardless of status.
func asUnavailable(err error, name string) error {
	if domain.IsUnavailable(err) {
		return err
	}

	return fmt.Errorf("%w: %w", domain.NewUnavailableError(name, "fetch rejected"), err)
}
