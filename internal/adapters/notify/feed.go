// Package notify implements the user-facing notification feed.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jsamuelsen/quotesync/internal/platform/logging"
)

// DefaultHistorySize is used when FeedConfig.HistorySize is not positive.
const DefaultHistorySize = 50

// Notification is one delivered message.
type Notification struct {
	Seq     uint64    `json:"seq"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// FeedConfig configures a Feed.
type FeedConfig struct {
	HistorySize int
	Logger      *slog.Logger
}

// Feed keeps the most recent notifications in memory and logs each one.
// It implements ports.Notifier.
type Feed struct {
	mu      sync.Mutex
	history []Notification
	limit   int
	seq     uint64
	logger  *slog.Logger
	now     func() time.Time
}

// NewFeed creates an empty Feed.
func NewFeed(cfg FeedConfig) *Feed {
	limit := cfg.HistorySize
	if limit <= 0 {
		limit = DefaultHistorySize
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Feed{
		history: make([]Notification, 0, limit),
		limit:   limit,
		logger:  logger.With(slog.String("component", "notify.Feed")),
		now:     time.Now,
	}
}

// Notify records message and logs it. It never blocks on I/O beyond the log
// handler and never fails.
func (f *Feed) Notify(ctx context.Context, message string) {
	f.mu.Lock()
	f.seq++
	n := Notification{Seq: f.seq, Message: message, At: f.now().UTC()}

	if len(f.history) == f.limit {
		copy(f.history, f.history[1:])
		f.history = f.history[:f.limit-1]
	}
	f.history = append(f.history, n)
	f.mu.Unlock()

	logging.FromContextOr(ctx, f.logger).InfoContext(ctx, "notification",
		slog.Uint64("seq", n.Seq),
		slog.String("message", message),
	)
}

// Recent returns up to limit notifications, oldest first. A non-positive
// limit returns the whole history.
func (f *Feed) Recent(limit int) []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	start := 0
	if limit > 0 && limit < len(f.history) {
		start = len(f.history) - limit
	}

	out := make([]Notification, len(f.history)-start)
	copy(out, f.history[start:])

	return out
}

// Latest returns the newest notification, if any.
func (f *Feed) Latest() (Notification, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.history) == 0 {
		return Notification{}, false
	}

	return f.history[len(f.history)-1], true
}
