package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/jsamuelsen/quotesync/internal/domain"
	"github.com/jsamuelsen/quotesync/internal/platform/logging"
	"github.com/jsamuelsen/quotesync/internal/ports"
)

// DefaultStoreKey is the blob key used when none is configured.
const DefaultStoreKey = "quotes"

// storedQuote is the persisted layout of a quote.
// Unknown fields are ignored on read and not written back.
type storedQuote struct {
	ID       string        `json:"id,omitempty"`
	Text     string        `json:"text"`
	Category string        `json:"category"`
	Origin   domain.Origin `json:"origin,omitempty"`
}

// QuoteStoreConfig contains the dependencies of a QuoteStore.
type QuoteStoreConfig struct {
	// Blobs is the persistence collaborator. Required.
	Blobs ports.BlobStore

	// Key names the blob holding the serialized sequence.
	Key string

	Logger *slog.Logger
}

// QuoteStore owns the authoritative quote sequence and its persisted mirror.
//
// Every mutation is written through to the blob store before it becomes
// visible. A failed write leaves both memory and the mirror unchanged, so
// there is never committed-but-unpersisted state. No two entries share the
// same normalized text.
type QuoteStore struct {
	mu     sync.RWMutex
	quotes []domain.Quote
	keys   map[string]struct{}

	blobs  ports.BlobStore
	key    string
	logger *slog.Logger
}

// LoadQuoteStore creates a store from the persisted mirror.
//
// A missing mirror or one that fails to parse yields the seed quotes; the
// seeds are not written back until the first mutation. Only an I/O failure
// of the blob store itself is returned.
func LoadQuoteStore(ctx context.Context, cfg QuoteStoreConfig) (*QuoteStore, error) {
	if cfg.Blobs == nil {
		panic("app: QuoteStoreConfig.Blobs is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	key := cfg.Key
	if key == "" {
		key = DefaultStoreKey
	}

	s := &QuoteStore{
		blobs:  cfg.Blobs,
		key:    key,
		logger: logger.With(slog.String("component", "app.QuoteStore")),
	}

	quotes, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	s.swap(quotes)

	return s, nil
}

func (s *QuoteStore) load(ctx context.Context) ([]domain.Quote, error) {
	logger := logging.FromContextOr(ctx, s.logger)

	data, ok, err := s.blobs.ReadBlob(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("reading quote blob %q: %w", s.key, err)
	}

	if !ok {
		logger.InfoContext(ctx, "no persisted quotes, using seed set", slog.String("key", s.key))
		return domain.SeedQuotes(), nil
	}

	quotes, err := decodeQuotes(data)
	if err != nil {
		logger.WarnContext(ctx, "persisted quotes unreadable, using seed set",
			slog.String("key", s.key),
			slog.Any("error", err),
		)

		return domain.SeedQuotes(), nil
	}

	logger.DebugContext(ctx, "loaded persisted quotes", slog.Int("count", len(quotes)))

	return quotes, nil
}

// List returns a copy of the current sequence.
func (s *QuoteStore) List() []domain.Quote {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.quotes)
}

// Len returns the number of stored quotes.
func (s *QuoteStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.quotes)
}

// ListByCategory returns the quotes in category, in store order.
// An empty category or "all" returns everything.
func (s *QuoteStore) ListByCategory(category string) []domain.Quote {
	if isAllCategories(category) {
		return s.List()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Quote, 0, len(s.quotes))
	for _, q := range s.quotes {
		if q.Category == strings.TrimSpace(category) {
			out = append(out, q)
		}
	}

	return out
}

// Categories returns the distinct categories, sorted.
func (s *QuoteStore) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.quotes))
	for _, q := range s.quotes {
		out = append(out, q.Category)
	}

	slices.Sort(out)

	return slices.Compact(out)
}

// Add appends a quote and persists the sequence.
// Returns a *domain.DuplicateError if the normalized text is already present.
func (s *QuoteStore) Add(ctx context.Context, q domain.Quote) error {
	if err := q.Validate(); err != nil {
		return err
	}

	q = q.Normalize()
	if q.Origin == "" {
		q.Origin = domain.OriginLocal
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.keys[q.Key()]; exists {
		return domain.NewDuplicateError(q.Key())
	}

	next := append(slices.Clone(s.quotes), q)

	return s.commitLocked(ctx, next)
}

// ReplaceAll replaces the whole sequence and persists it.
// Duplicates are collapsed keeping the first occurrence; invalid entries are dropped.
func (s *QuoteStore) ReplaceAll(ctx context.Context, quotes []domain.Quote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.commitLocked(ctx, domain.Dedupe(quotes))
}

// Update computes the next sequence from the current one and commits it,
// holding the store lock for the whole read-modify-write. If fn returns an
// error nothing is changed.
func (s *QuoteStore) Update(ctx context.Context, fn func(current []domain.Quote) ([]domain.Quote, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fn(slices.Clone(s.quotes))
	if err != nil {
		return err
	}

	return s.commitLocked(ctx, domain.Dedupe(next))
}

// MergeHook observes a merge while the store lock is held, after the merge is
// computed and before it is persisted.
type MergeHook func(current []domain.Quote, merged domain.MergeResult)

// MergeAndCommit merges remote into the current sequence and commits the result.
// On a commit failure the store is unchanged and the zero result is returned.
func (s *QuoteStore) MergeAndCommit(ctx context.Context, remote []domain.Quote, hooks ...MergeHook) (domain.MergeResult, error) {
	var result domain.MergeResult

	err := s.Update(ctx, func(current []domain.Quote) ([]domain.Quote, error) {
		result = domain.Merge(current, remote)

		for _, hook := range hooks {
			hook(current, result)
		}

		return result.Quotes, nil
	})
	if err != nil {
		return domain.MergeResult{}, err
	}

	return result, nil
}

// Name implements ports.HealthChecker.
func (s *QuoteStore) Name() string {
	return "quote-store"
}

// Check implements ports.HealthChecker by reading the mirror back.
func (s *QuoteStore) Check(ctx context.Context) error {
	_, _, err := s.blobs.ReadBlob(ctx, s.key)
	return err
}

// commitLocked persists next and only then makes it the current sequence.
// Callers must hold s.mu for writing.
func (s *QuoteStore) commitLocked(ctx context.Context, next []domain.Quote) error {
	data, err := encodeQuotes(next)
	if err != nil {
		return fmt.Errorf("encoding quotes: %w", err)
	}

	if err := s.blobs.WriteBlob(ctx, s.key, data); err != nil {
		logging.FromContextOr(ctx, s.logger).ErrorContext(ctx, "persisting quotes failed",
			slog.String("key", s.key),
			slog.Any("error", err),
		)

		return fmt.Errorf("writing quote blob %q: %w", s.key, err)
	}

	s.swap(next)

	return nil
}

func (s *QuoteStore) swap(quotes []domain.Quote) {
	keys := make(map[string]struct{}, len(quotes))
	for _, q := range quotes {
		keys[q.Key()] = struct{}{}
	}

	s.quotes = quotes
	s.keys = keys
}

func encodeQuotes(quotes []domain.Quote) ([]byte, error) {
	records := make([]storedQuote, len(quotes))
	for i, q := range quotes {
		records[i] = storedQuote{ID: q.ID, Text: q.Text, Category: q.Category, Origin: q.Origin}
	}

	return json.Marshal(records)
}

// decodeQuotes parses a persisted blob. Invalid and duplicate entries are
// dropped rather than failing the whole blob.
func decodeQuotes(data []byte) ([]domain.Quote, error) {
	var records []storedQuote
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, domain.NewParseError("quote blob", err)
	}

	if records == nil {
		return nil, domain.NewParseError("quote blob", nil)
	}

	quotes := make([]domain.Quote, len(records))
	for i, r := range records {
		quotes[i] = domain.Quote{ID: r.ID, Text: r.Text, Category: r.Category, Origin: r.Origin}
	}

	return domain.Dedupe(quotes), nil
}

func isAllCategories(category string) bool {
	c := strings.TrimSpace(category)
	return c == "" || strings.EqualFold(c, "all")
}
