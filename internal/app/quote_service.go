// Package app contains application services that orchestrate use cases.
package app

import (
	"context"
	"log/slog"
	"math/rand/v2"

	"github.com/jsamuelsen/quotesync/internal/domain"
	"github.com/jsamuelsen/quotesync/internal/platform/logging"
	"github.com/jsamuelsen/quotesync/internal/ports"
)

// User-facing messages for local mutations.
const (
	MessageQuoteAdded     = "Quote added successfully!"
	MessageQuotesImported = "Quotes imported successfully!"
)

// ImportResult counts what an import did.
type ImportResult struct {
	Imported int
	Skipped  int
}

// QuoteService orchestrates the quote use cases a user drives directly.
// It depends on port interfaces, not concrete implementations,
// following the Dependency Inversion Principle.
type QuoteService struct {
	store     *QuoteStore
	notifier  ports.Notifier
	refresher ports.Refresher
	logger    *slog.Logger
	intn      func(n int) int
}

// QuoteServiceConfig contains configuration for the quote service.
type QuoteServiceConfig struct {
	Store     *QuoteStore
	Notifier  ports.Notifier
	Refresher ports.Refresher
	Logger    *slog.Logger
}

// NewQuoteService creates a new quote service with the provided dependencies.
func NewQuoteService(cfg QuoteServiceConfig) *QuoteService {
	if cfg.Store == nil {
		panic("app: QuoteServiceConfig.Store is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &QuoteService{
		store:     cfg.Store,
		notifier:  cfg.Notifier,
		refresher: cfg.Refresher,
		logger:    logger.With(slog.String("component", "app.QuoteService")),
		intn:      rand.IntN,
	}
}

// AddQuote stores a new local quote, refreshes the display and notifies the user.
// Returns a *domain.DuplicateError if the text is already present.
func (s *QuoteService) AddQuote(ctx context.Context, text, category string) (domain.Quote, error) {
	logger := logging.FromContextOr(ctx, s.logger)

	q := domain.NewQuote(text, category, domain.OriginLocal)

	if err := s.store.Add(ctx, q); err != nil {
		logger.InfoContext(ctx, "quote rejected",
			slog.String("category", q.Category),
			slog.Any("error", err),
		)

		return domain.Quote{}, err
	}

	logger.InfoContext(ctx, "quote added",
		slog.String("quote_id", q.ID),
		slog.String("category", q.Category),
	)

	s.committed(ctx, MessageQuoteAdded)

	return q, nil
}

// ImportQuotes appends every valid quote whose text is not yet stored.
// The whole import is committed in one write.
func (s *QuoteService) ImportQuotes(ctx context.Context, quotes []domain.Quote) (ImportResult, error) {
	var result ImportResult

	err := s.store.Update(ctx, func(current []domain.Quote) ([]domain.Quote, error) {
		seen := make(map[string]struct{}, len(current)+len(quotes))
		for _, q := range current {
			seen[q.Key()] = struct{}{}
		}

		for _, q := range quotes {
			if q.Validate() != nil {
				result.Skipped++
				continue
			}

			q = q.Normalize()
			if _, dup := seen[q.Key()]; dup {
				result.Skipped++
				continue
			}

			if q.Origin == "" {
				q.Origin = domain.OriginLocal
			}

			seen[q.Key()] = struct{}{}
			current = append(current, q)
			result.Imported++
		}

		return current, nil
	})
	if err != nil {
		return ImportResult{}, err
	}

	logging.FromContextOr(ctx, s.logger).InfoContext(ctx, "quotes imported",
		slog.Int("imported", result.Imported),
		slog.Int("skipped", result.Skipped),
	)

	s.committed(ctx, MessageQuotesImported)

	return result, nil
}

// ListQuotes returns the stored quotes, optionally filtered by category.
func (s *QuoteService) ListQuotes(_ context.Context, category string) []domain.Quote {
	return s.store.ListByCategory(category)
}

// Categories returns the distinct categories in the store.
func (s *QuoteService) Categories(_ context.Context) []string {
	return s.store.Categories()
}

// RandomQuote picks a quote at random, optionally within a category.
// Returns a *domain.NotFoundError when nothing matches.
func (s *QuoteService) RandomQuote(ctx context.Context, category string) (domain.Quote, error) {
	quotes := s.store.ListByCategory(category)
	if len(quotes) == 0 {
		return domain.Quote{}, domain.NewNotFoundError("quotes in category", category)
	}

	q := quotes[s.intn(len(quotes))]

	logging.FromContextOr(ctx, s.logger).DebugContext(ctx, "picked random quote",
		slog.String("quote_id", q.ID),
		slog.String("category", q.Category),
	)

	return q, nil
}

func (s *QuoteService) committed(ctx context.Context, message string) {
	if s.refresher != nil {
		s.refresher.Refresh(ctx, s.store.List())
	}

	if s.notifier != nil {
		s.notifier.Notify(ctx, message)
	}
}
