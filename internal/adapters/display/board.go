// Package display holds the in-process display board: the latest quote
// snapshot and the quote currently shown.
package display

import (
	"context"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/jsamuelsen/quotesync/internal/domain"
)

// Snapshot is a read-only view of the board.
type Snapshot struct {
	Quotes      []domain.Quote `json:"quotes"`
	Current     *domain.Quote  `json:"current,omitempty"`
	Version     uint64         `json:"version"`
	RefreshedAt time.Time      `json:"refreshed_at"`
}

// Board implements ports.Refresher. Each Refresh replaces the snapshot and
// bumps the version. The current quote survives a refresh when its text is
// still present.
type Board struct {
	mu          sync.RWMutex
	quotes      []domain.Quote
	current     *domain.Quote
	version     uint64
	refreshedAt time.Time

	now  func() time.Time
	intn func(int) int
}

// NewBoard creates an empty board.
func NewBoard() *Board {
	return &Board{now: time.Now, intn: rand.IntN}
}

// Refresh replaces the board contents.
func (b *Board) Refresh(_ context.Context, quotes []domain.Quote) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.quotes = slices.Clone(quotes)
	b.version++
	b.refreshedAt = b.now().UTC()

	if b.current == nil {
		return
	}

	i := slices.IndexFunc(b.quotes, func(q domain.Quote) bool { return q.Key() == b.current.Key() })
	if i < 0 {
		b.current = nil
		return
	}

	q := b.quotes[i]
	b.current = &q
}

// Show picks a random quote, optionally limited to one category, and makes
// it the current quote. It reports false when nothing matches.
func (b *Board) Show(category string) (domain.Quote, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	candidates := b.quotes
	if category != "" && category != "all" {
		candidates = slices.DeleteFunc(slices.Clone(b.quotes), func(q domain.Quote) bool {
			return q.Category != category
		})
	}

	if len(candidates) == 0 {
		return domain.Quote{}, false
	}

	q := candidates[b.intn(len(candidates))]
	b.current = &q

	return q, true
}

// Snapshot returns a copy of the board state.
func (b *Board) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	s := Snapshot{
		Quotes:      slices.Clone(b.quotes),
		Version:     b.version,
		RefreshedAt: b.refreshedAt,
	}

	if b.current != nil {
		q := *b.current
		s.Current = &q
	}

	if s.Quotes == nil {
		s.Quotes = []domain.Quote{}
	}

	return s
}
