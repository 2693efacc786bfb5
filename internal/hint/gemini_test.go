package hint

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/orderdesk/internal/orders"
)

type fakeGenerator struct {
	reply  string
	err    error
	prompt string
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.reply, f.err
}

func TestSuggestCodeColumnAcceptsKnownHeader(t *testing.T) {
	gen := &fakeGenerator{reply: `{"column": "Part Ref"}`}
	h := NewColumnHinter(gen)
	col, err := h.SuggestCodeColumn(context.Background(), []string{"Order No", "Part Ref"}, []orders.Row{{"Part Ref": "X1"}})
	require.NoError(t, err)
	require.Equal(t, "Part Ref", col)
	require.Contains(t, gen.prompt, `["Order No","Part Ref"]`)
	require.Contains(t, gen.prompt, `{"Part Ref":"X1"}`)
}

func TestSuggestCodeColumnIgnoresUnknownHeader(t *testing.T) {
	h := NewColumnHinter(&fakeGenerator{reply: `{"column": "SKU"}`})
	col, err := h.SuggestCodeColumn(context.Background(), []string{"Order No", "Part Ref"}, nil)
	require.NoError(t, err)
	require.Empty(t, col)
}

func TestSuggestCodeColumnPropagatesFailure(t *testing.T) {
	h := NewColumnHinter(&fakeGenerator{err: errors.New("quota exceeded")})
	_, err := h.SuggestCodeColumn(context.Background(), []string{"Code"}, nil)
	require.Error(t, err)
}

func TestParseSuggestion(t *testing.T) {
	cases := map[string]string{
		`{"column": "Item Code"}`:              "Item Code",
		"```json\n{\"column\": \"Code\"}\n```": "Code",
		`{"column": "B Code"`:                  "B Code",
		"  Part Number \n":                     "Part Number",
		`"Code"`:                               "Code",
		"":                                     "",
	}
	for in, want := range cases {
		require.Equal(t, want, parseSuggestion(in), in)
	}
}

func TestNewGeminiRequiresKey(t *testing.T) {
	_, err := NewGemini(context.Background(), "", "")
	require.Error(t, err)
}
