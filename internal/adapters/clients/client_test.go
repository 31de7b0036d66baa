package clients

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotesync/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quotesync/internal/platform/config"
)

func testConfig(baseURL string) *Config {
	return &Config{
		BaseURL:     baseURL,
		ServiceName: "quote-server",
		Timeout:     5 * time.Second,
		Retry: config.RetryConfig{
			MaxAttempts:     3,
			InitialInterval: 5 * time.Millisecond,
			MaxInterval:     20 * time.Millisecond,
			Multiplier:      2.0,
		},
		Circuit: config.CircuitBreakerConfig{
			MaxFailures:   5,
			Timeout:       time.Second,
			HalfOpenLimit: 2,
		},
	}
}

func newTestClient(t *testing.T, cfg *Config) *Client {
	t.Helper()

	client, err := New(cfg)
	require.NoError(t, err)

	return client
}

func closeBody(t *testing.T, resp *http.Response) {
	t.Helper()
	if err := resp.Body.Close(); err != nil {
		t.Errorf("failed to close response body: %v", err)
	}
}

// statusSequence serves the given statuses in order, repeating the last one.
func statusSequence(calls *atomic.Int32, statuses ...int) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		n := int(calls.Add(1)) - 1
		if n >= len(statuses) {
			n = len(statuses) - 1
		}
		w.WriteHeader(statuses[n])
	}
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil)
	assert.ErrorContains(t, err, "config is required")

	cfg := testConfig("https://example.com")
	cfg.ServiceName = ""
	_, err = New(cfg)
	assert.ErrorContains(t, err, "service name is required")
}

func TestNew_Defaults(t *testing.T) {
	cfg := testConfig("https://example.com/")
	cfg.Timeout = 0
	cfg.Retry.MaxAttempts = 0
	cfg.Transport = config.TransportConfig{MaxIdleConns: 7, MaxIdleConnsPerHost: 3, IdleConnTimeout: time.Minute}

	client := newTestClient(t, cfg)

	assert.Equal(t, "https://example.com", client.baseURL)
	assert.Equal(t, defaultTimeout, client.http.Timeout)
	assert.Equal(t, 1, client.retry.MaxAttempts)
	assert.Equal(t, "quote-server", client.ServiceName())

	transport, ok := client.http.Transport.(*http.Transport)
	require.True(t, ok)
	assert.Equal(t, 7, transport.MaxIdleConns)
	assert.Equal(t, 3, transport.MaxIdleConnsPerHost)
	assert.Equal(t, time.Minute, transport.IdleConnTimeout)
}

func TestClient_Headers(t *testing.T) {
	var got http.Header

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.UserAgent = "quotesync/1.0"
	client := newTestClient(t, cfg)

	ctx := middleware.ContextWithRequestID(context.Background(), "req-123")
	ctx = middleware.ContextWithCorrelationID(ctx, "corr-456")

	resp, err := client.Get(ctx, "/posts")
	require.NoError(t, err)
	defer closeBody(t, resp)

	assert.Equal(t, "req-123", got.Get(middleware.HeaderRequestID))
	assert.Equal(t, "corr-456", got.Get(middleware.HeaderCorrelationID))
	assert.Equal(t, "quotesync/1.0", got.Get("User-Agent"))
	assert.Equal(t, "application/json", got.Get("Accept"))
}

func TestClient_Retry(t *testing.T) {
	tests := []struct {
		name       string
		statuses   []int
		wantErr    error
		wantStatus int
		wantCalls  int32
	}{
		{name: "recovers after server errors", statuses: []int{500, 502, 200}, wantStatus: 200, wantCalls: 3},
		{name: "retries rate limiting", statuses: []int{429, 200}, wantStatus: 200, wantCalls: 2},
		{name: "client error is returned without retry", statuses: []int{400}, wantStatus: 400, wantCalls: 1},
		{name: "gives up after max attempts", statuses: []int{503}, wantErr: ErrMaxRetriesExceeded, wantCalls: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32

			server := httptest.NewServer(statusSequence(&calls, tt.statuses...))
			defer server.Close()

			client := newTestClient(t, testConfig(server.URL))

			resp, err := client.Get(context.Background(), "/posts")

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				defer closeBody(t, resp)
				assert.Equal(t, tt.wantStatus, resp.StatusCode)
			}

			assert.Equal(t, tt.wantCalls, calls.Load())
		})
	}
}

func TestClient_PostJSONReplaysBodyOnRetry(t *testing.T) {
	var (
		calls  atomic.Int32
		bodies []string
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(body))
		assert.Equal(t, "application/json; charset=UTF-8", r.Header.Get("Content-Type"))

		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := newTestClient(t, testConfig(server.URL))

	resp, err := client.PostJSON(context.Background(), "/posts", []byte(`[{"text":"a"}]`))
	require.NoError(t, err)
	defer closeBody(t, resp)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, []string{`[{"text":"a"}]`, `[{"text":"a"}]`}, bodies)
}

func TestClient_CircuitBreaker(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(statusSequence(&calls, http.StatusServiceUnavailable))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.Retry.MaxAttempts = 1
	cfg.Circuit.MaxFailures = 2
	client := newTestClient(t, cfg)

	_, err := client.Get(context.Background(), "/posts")
	require.Error(t, err)
	assert.Equal(t, StateClosed, client.CircuitState())

	_, err = client.Get(context.Background(), "/posts")
	require.Error(t, err)
	assert.Equal(t, StateOpen, client.CircuitState())

	before := calls.Load()

	_, err = client.Get(context.Background(), "/posts")
	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, before, calls.Load())
}

func TestClient_Timeouts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(500 * time.Millisecond):
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	t.Run("per attempt timeout", func(t *testing.T) {
		cfg := testConfig(server.URL)
		cfg.Timeout = 50 * time.Millisecond
		cfg.Retry.MaxAttempts = 1

		_, err := newTestClient(t, cfg).Get(context.Background(), "/posts")
		require.Error(t, err)
	})

	t.Run("caller deadline", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := newTestClient(t, testConfig(server.URL)).Get(ctx, "/posts")
		require.Error(t, err)
	})
}

func TestClient_BuildURL(t *testing.T) {
	client := newTestClient(t, testConfig("https://api.example.com/"))

	assert.Equal(t, "https://api.example.com/posts", client.buildURL("/posts"))
	assert.Equal(t, "https://api.example.com/posts", client.buildURL("posts"))
}

func TestClient_NewBackOff(t *testing.T) {
	cfg := testConfig("https://example.com")
	cfg.Retry.InitialInterval = 100 * time.Millisecond
	cfg.Retry.MaxInterval = 300 * time.Millisecond
	cfg.Retry.Multiplier = 2.0
	cfg.Retry.JitterFactor = 0

	bo := newTestClient(t, cfg).newBackOff()

	assert.Equal(t, 100*time.Millisecond, bo.NextBackOff())
	assert.Equal(t, 200*time.Millisecond, bo.NextBackOff())
	assert.Equal(t, 300*time.Millisecond, bo.NextBackOff())
	assert.Equal(t, 300*time.Millisecond, bo.NextBackOff())
}

type testNetError struct {
	timeout bool
}

func (e testNetError) Error() string   { return "test net error" }
func (e testNetError) Timeout() bool   { return e.timeout }
func (e testNetError) Temporary() bool { return true }

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"nil error", nil, false},
		{"context canceled", context.Canceled, false},
		{"context deadline exceeded", context.DeadlineExceeded, false},
		{"net error with timeout", testNetError{timeout: true}, true},
		{"net error without timeout", testNetError{timeout: false}, false},
		{"connection refused", &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, isRetryableError(tt.err))
		})
	}
}
