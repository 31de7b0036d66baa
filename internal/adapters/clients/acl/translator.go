package acl

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jsamuelsen/quotesync/internal/domain"
)

var errNotArray = errors.New("expected a JSON array")

// remoteID accepts both string and numeric ids.
type remoteID string

func (id *remoteID) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = remoteID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or a number: %w", err)
	}

	*id = remoteID(n.String())

	return nil
}

// remoteQuote is the wire form of a remote record. Unknown fields are ignored.
type remoteQuote struct {
	ID       remoteID `json:"id"`
	Text     string   `json:"text"`
	Title    string   `json:"title"`
	Category string   `json:"category"`
}

// pushQuote is the wire form sent on push.
type pushQuote struct {
	ID       string `json:"id,omitempty"`
	Text     string `json:"text"`
	Category string `json:"category"`
}

// Translator converts remote records into domain quotes.
type Translator struct {
	// DefaultCategory fills in records that carry no category.
	DefaultCategory string

	// Limit caps how many valid records are kept. Zero keeps all.
	Limit int
}

// DecodeQuotes parses a fetch body. A body that is not a JSON array of
// objects is a *domain.ParseError. Records that fail validation are skipped
// and counted.
func (t Translator) DecodeQuotes(body []byte) ([]domain.Quote, int, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, 0, domain.NewParseError("remote quotes", errNotArray)
	}

	var records []json.RawMessage
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, 0, domain.NewParseError("remote quotes", err)
	}

	quotes := make([]domain.Quote, 0, len(records))
	skipped := 0

	for _, raw := range records {
		if t.Limit > 0 && len(quotes) >= t.Limit {
			break
		}

		var rec remoteQuote
		if err := json.Unmarshal(raw, &rec); err != nil {
			skipped++
			continue
		}

		q, err := t.toDomain(rec)
		if err != nil {
			skipped++
			continue
		}

		quotes = append(quotes, q)
	}

	return quotes, skipped, nil
}

// toDomain validates one remote record and tags it with the remote origin.
func (t Translator) toDomain(rec remoteQuote) (domain.Quote, error) {
	text := rec.Text
	if domain.NormalizeText(text) == "" {
		text = rec.Title
	}

	category := rec.Category
	if category == "" {
		category = t.DefaultCategory
	}

	q := domain.Quote{
		ID:       string(rec.ID),
		Text:     text,
		Category: category,
		Origin:   domain.OriginRemote,
	}

	if err := q.Validate(); err != nil {
		return domain.Quote{}, err
	}

	return q.Normalize(), nil
}

// EncodeQuotes renders the push payload.
func EncodeQuotes(quotes []domain.Quote) ([]byte, error) {
	out := make([]pushQuote, len(quotes))
	for i, q := range quotes {
		out[i] = pushQuote{ID: q.ID, Text: q.Text, Category: q.Category}
	}

	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encoding push payload: %w", err)
	}

	return data, nil
}
