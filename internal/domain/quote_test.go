package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "Hi", NormalizeText("  Hi \n"))
	assert.Equal(t, "", NormalizeText("   "))
	assert.NotEqual(t, NormalizeText("hi"), NormalizeText("Hi"), "normalization is case-sensitive")
}

func TestSynthesizeID_Deterministic(t *testing.T) {
	a := SynthesizeID("Hi")
	b := SynthesizeID("  Hi  ")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, SynthesizeID("Hello"))
	assert.Len(t, a, 36)
}

func TestNewQuote(t *testing.T) {
	q := NewQuote("  Hi ", " A ", OriginLocal)

	assert.Equal(t, "Hi", q.Text)
	assert.Equal(t, "A", q.Category)
	assert.Equal(t, OriginLocal, q.Origin)
	assert.Equal(t, SynthesizeID("Hi"), q.ID)
}

func TestQuote_Normalize_KeepsExistingID(t *testing.T) {
	q := Quote{ID: "42", Text: " Hi ", Category: "A"}.Normalize()

	assert.Equal(t, "42", q.ID)
	assert.Equal(t, "Hi", q.Text)
}

func TestQuote_Validate(t *testing.T) {
	tests := []struct {
		name      string
		quote     Quote
		wantField string
	}{
		{name: "valid", quote: Quote{Text: "Hi", Category: "A"}},
		{name: "empty text", quote: Quote{Text: "", Category: "A"}, wantField: "text"},
		{name: "whitespace text", quote: Quote{Text: "   ", Category: "A"}, wantField: "text"},
		{name: "empty category", quote: Quote{Text: "Hi", Category: " "}, wantField: "category"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.quote.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.wantField, vErr.Field)
		})
	}
}

func TestSeedQuotes(t *testing.T) {
	seeds := SeedQuotes()

	require.Len(t, seeds, 3)
	assert.Equal(t, "Inspiration", seeds[0].Category)
	assert.Equal(t, "Motivation", seeds[1].Category)
	assert.Equal(t, "Life", seeds[2].Category)

	for _, q := range seeds {
		require.NoError(t, q.Validate())
		assert.Equal(t, OriginLocal, q.Origin)
	}

	seeds[0].Text = "mutated"
	assert.NotEqual(t, "mutated", SeedQuotes()[0].Text, "each call returns a fresh slice")
}

func TestDedupe(t *testing.T) {
	in := []Quote{
		{Text: "Hi", Category: "A"},
		{Text: " Hi ", Category: "B"},
		{Text: "", Category: "C"},
		{Text: "Bye", Category: ""},
		{Text: "Yo", Category: "D"},
	}

	out := Dedupe(in)

	require.Len(t, out, 2)
	assert.Equal(t, "Hi", out[0].Text)
	assert.Equal(t, "A", out[0].Category, "first occurrence wins")
	assert.Equal(t, "Yo", out[1].Text)
	assert.NotEmpty(t, out[0].ID)
}
