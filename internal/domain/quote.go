// Package domain contains core business entities and rules.
package domain

import (
	"strings"

	"github.com/google/uuid"
)

// Origin records where a quote was first seen.
type Origin string

const (
	// OriginLocal marks quotes added on this side (seed set or user input).
	OriginLocal Origin = "local"

	// OriginRemote marks quotes that arrived from the remote quote server.
	OriginRemote Origin = "remote"
)

// quoteNamespace scopes synthesized quote IDs.
var quoteNamespace = uuid.MustParse("6f1c2b8e-3d4a-5e6f-8a9b-0c1d2e3f4a5b")

// Quote is a single user-facing quotation.
// This is a value type - copies are independent.
type Quote struct {
	// ID is a stable identifier. Synthesized from the text when absent.
	ID string

	// Text is the quotation itself. Identity for merging is the normalized text.
	Text string

	// Category groups quotes for filtering.
	Category string

	// Origin is optional provenance metadata.
	Origin Origin
}

// NewQuote builds a normalized quote with a synthesized ID.
func NewQuote(text, category string, origin Origin) Quote {
	q := Quote{
		Text:     strings.TrimSpace(text),
		Category: strings.TrimSpace(category),
		Origin:   origin,
	}
	q.ID = SynthesizeID(q.Text)

	return q
}

// NormalizeText returns the identity form of a quote text.
// Normalization trims surrounding whitespace and is case-sensitive.
func NormalizeText(text string) string {
	return strings.TrimSpace(text)
}

// SynthesizeID derives a deterministic ID from a quote text.
// The same normalized text always yields the same ID.
func SynthesizeID(text string) string {
	return uuid.NewSHA1(quoteNamespace, []byte(NormalizeText(text))).String()
}

// Key returns the merge identity of the quote.
func (q Quote) Key() string {
	return NormalizeText(q.Text)
}

// Normalize trims text and category and fills in a missing ID.
func (q Quote) Normalize() Quote {
	q.Text = strings.TrimSpace(q.Text)
	q.Category = strings.TrimSpace(q.Category)

	if strings.TrimSpace(q.ID) == "" {
		q.ID = SynthesizeID(q.Text)
	}

	return q
}

// Validate checks that both text and category are present.
func (q Quote) Validate() error {
	if NormalizeText(q.Text) == "" {
		return NewValidationError("text", "cannot be empty")
	}

	if strings.TrimSpace(q.Category) == "" {
		return NewValidationError("category", "cannot be empty")
	}

	return nil
}

// WithOrigin returns a copy of the quote tagged with origin.
func (q Quote) WithOrigin(origin Origin) Quote {
	q.Origin = origin
	return q
}

// SeedQuotes returns the default quote set used when nothing has been persisted yet.
func SeedQuotes() []Quote {
	return []Quote{
		NewQuote("The only limit to our realization of tomorrow is our doubts of today.", "Inspiration", OriginLocal),
		NewQuote("In the middle of difficulty lies opportunity.", "Motivation", OriginLocal),
		NewQuote("Life is 10% what happens to us and 90% how we react to it.", "Life", OriginLocal),
	}
}

// Dedupe drops invalid quotes and collapses duplicates by normalized text,
// keeping the first occurrence. Surviving quotes are normalized.
func Dedupe(quotes []Quote) []Quote {
	seen := make(map[string]struct{}, len(quotes))
	out := make([]Quote, 0, len(quotes))

	for _, q := range quotes {
		if q.Validate() != nil {
			continue
		}

		q = q.Normalize()
		if _, dup := seen[q.Key()]; dup {
			continue
		}

		seen[q.Key()] = struct{}{}
		out = append(out, q)
	}

	return out
}
