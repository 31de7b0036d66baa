package dto

import (
	"github.com/jsamuelsen/quotesync/internal/app"
	"github.com/jsamuelsen/quotesync/internal/domain"
)

// AddQuoteRequest is the body of POST /api/v1/quotes.
type AddQuoteRequest struct {
	Text     string `json:"text"     validate:"required,notempty,max=1000"`
	Category string `json:"category" validate:"required,notempty,max=100"`
}

// ImportQuote is one entry of an import file.
// Entries are validated by the service; invalid ones are skipped, not rejected.
type ImportQuote struct {
	ID       string `json:"id,omitempty"`
	Text     string `json:"text"`
	Category string `json:"category"`
}

// ImportRequest is the body of POST /api/v1/quotes/import.
type ImportRequest struct {
	Quotes []ImportQuote `json:"quotes" validate:"required,min=1,max=1000"`
}

// ToDomain converts the import entries to domain quotes.
func (r ImportRequest) ToDomain() []domain.Quote {
	quotes := make([]domain.Quote, 0, len(r.Quotes))
	for _, q := range r.Quotes {
		quotes = append(quotes, domain.Quote{
			ID:       q.ID,
			Text:     q.Text,
			Category: q.Category,
			Origin:   domain.OriginLocal,
		})
	}

	return quotes
}

// CategoryQuery filters list and random endpoints by category.
type CategoryQuery struct {
	Category string `form:"category" validate:"max=100"`
}

// QuoteResponse is the public representation of a quote.
type QuoteResponse struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Category string `json:"category"`
	Origin   string `json:"origin,omitempty"`
}

// QuoteFromDomain converts a domain quote to its response form.
func QuoteFromDomain(q domain.Quote) QuoteResponse {
	return QuoteResponse{
		ID:       q.ID,
		Text:     q.Text,
		Category: q.Category,
		Origin:   string(q.Origin),
	}
}

// QuotesFromDomain converts a slice of domain quotes. Never returns nil.
func QuotesFromDomain(quotes []domain.Quote) []QuoteResponse {
	out := make([]QuoteResponse, 0, len(quotes))
	for _, q := range quotes {
		out = append(out, QuoteFromDomain(q))
	}

	return out
}

// QuoteListResponse wraps a list of quotes.
type QuoteListResponse struct {
	Quotes []QuoteResponse `json:"quotes"`
	Count  int             `json:"count"`
}

// NewQuoteListResponse builds a list response from domain quotes.
func NewQuoteListResponse(quotes []domain.Quote) QuoteListResponse {
	items := QuotesFromDomain(quotes)
	return QuoteListResponse{Quotes: items, Count: len(items)}
}

// CategoriesResponse lists the distinct categories.
type CategoriesResponse struct {
	Categories []string `json:"categories"`
}

// ImportResponse reports what an import did.
type ImportResponse struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// ImportFromApp converts an app.ImportResult.
func ImportFromApp(r app.ImportResult) ImportResponse {
	return ImportResponse{Imported: r.Imported, Skipped: r.Skipped}
}
