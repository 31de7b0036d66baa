//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotesync/internal/adapters/clients"
	"github.com/jsamuelsen/quotesync/internal/adapters/clients/acl"
	"github.com/jsamuelsen/quotesync/internal/adapters/display"
	apphttp "github.com/jsamuelsen/quotesync/internal/adapters/http"
	"github.com/jsamuelsen/quotesync/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quotesync/internal/adapters/notify"
	"github.com/jsamuelsen/quotesync/internal/app"
	"github.com/jsamuelsen/quotesync/internal/platform/config"
	"github.com/jsamuelsen/quotesync/internal/ports"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// remoteRecord is the wire form served by fakeRemote.
type remoteRecord struct {
	ID       any    `json:"id,omitempty"`
	Text     string `json:"text,omitempty"`
	Title    string `json:"title,omitempty"`
	Category string `json:"category,omitempty"`
}

// fakeRemote is a controllable remote quote server.
type fakeRemote struct {
	server *httptest.Server

	mu      sync.Mutex
	records []remoteRecord
	status  int
	delay   time.Duration
	fetches int
	pushes  [][]map[string]any
}

func newFakeRemote() *fakeRemote {
	f := &fakeRemote{status: http.StatusOK}
	f.server = httptest.NewServer(http.HandlerFunc(f.serve))

	return f
}

func (f *fakeRemote) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	status, delay, records := f.status, f.delay, f.records
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}

	switch r.Method {
	case http.MethodGet:
		f.mu.Lock()
		f.fetches++
		f.mu.Unlock()

		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}

		if records == nil {
			records = []remoteRecord{}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(records)

	case http.MethodPost:
		var body []map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		f.mu.Lock()
		f.pushes = append(f.pushes, body)
		f.mu.Unlock()

		w.WriteHeader(http.StatusCreated)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeRemote) offer(records ...remoteRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.records = append([]remoteRecord(nil), records...)
}

func (f *fakeRemote) fail(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.status = status
}

func (f *fakeRemote) slow(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.delay = d
}

func (f *fakeRemote) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.fetches
}

func (f *fakeRemote) pushed() [][]map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([][]map[string]any(nil), f.pushes...)
}

func (f *fakeRemote) Close() {
	f.server.Close()
}

// testClientConfig returns a client config with fast retries for integration testing.
func testClientConfig(baseURL string) *clients.Config {
	return &clients.Config{
		ServiceName: "quote-server",
		BaseURL:     baseURL,
		Timeout:     2 * time.Second,
		Retry: config.RetryConfig{
			MaxAttempts:     2,
			InitialInterval: 10 * time.Millisecond,
			MaxInterval:     50 * time.Millisecond,
			Multiplier:      2.0,
		},
		Circuit: config.CircuitBreakerConfig{
			MaxFailures:   3,
			Timeout:       100 * time.Millisecond,
			HalfOpenLimit: 1,
		},
		Logger: discardLogger(),
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// stackConfig selects the pieces of a stack.
type stackConfig struct {
	Blobs       ports.BlobStore
	RemoteURL   string
	PushEnabled bool
}

// stack is the full object graph the serve command builds, minus the listener.
type stack struct {
	store      *app.QuoteStore
	remote     *acl.Remote
	feed       *notify.Feed
	board      *display.Board
	quotes     *app.QuoteService
	reconciler *app.Reconciler
	router     *gin.Engine
}

func newStack(ctx context.Context, cfg stackConfig) (*stack, error) {
	logger := discardLogger()

	store, err := app.LoadQuoteStore(ctx, app.QuoteStoreConfig{Blobs: cfg.Blobs, Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("loading store: %w", err)
	}

	client, err := clients.New(testClientConfig(cfg.RemoteURL))
	if err != nil {
		return nil, fmt.Errorf("creating client: %w", err)
	}

	s := &stack{
		store:  store,
		remote: acl.NewRemote(acl.RemoteConfig{Client: client, DefaultCategory: "Server", Logger: logger}),
		feed:   notify.NewFeed(notify.FeedConfig{Logger: logger}),
		board:  display.NewBoard(),
	}

	s.board.Refresh(ctx, store.List())

	s.quotes = app.NewQuoteService(app.QuoteServiceConfig{
		Store:     store,
		Notifier:  s.feed,
		Refresher: s.board,
		Logger:    logger,
	})

	s.reconciler = app.NewReconciler(app.ReconcilerConfig{
		Store:       store,
		Remote:      s.remote,
		Notifier:    s.feed,
		Refresher:   s.board,
		PushEnabled: cfg.PushEnabled,
		Logger:      logger,
	})

	registry := ports.NewHealthRegistry()
	if err := registry.Register(store); err != nil {
		return nil, err
	}
	if err := registry.RegisterOptional(s.remote); err != nil {
		return nil, err
	}

	s.router = gin.New()
	apphttp.SetupRouter(s.router, apphttp.RouterConfig{
		Logger:        logger,
		ServiceName:   "quotesync-integration",
		HealthHandler: handlers.NewHealthHandler(registry, handlers.BuildInfo{Version: "integration"}, nil),
		QuoteHandler:  handlers.NewQuoteHandler(s.quotes),
		SyncHandler:   handlers.NewSyncHandler(s.reconciler),
		BoardHandler:  handlers.NewBoardHandler(s.feed, s.board),
		Timeout:       apphttp.DefaultRequestTimeout,
	})

	return s, nil
}

// texts returns the quote texts in store order.
func (s *stack) texts() []string {
	quotes := s.store.List()
	out := make([]string, len(quotes))

	for i, q := range quotes {
		out[i] = q.Text
	}

	return out
}

func (s *stack) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	return w
}
