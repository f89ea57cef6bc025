package quote_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurokeita/quotable/internal/core/quote"
	"github.com/kurokeita/quotable/internal/platform/postgres"
	"github.com/kurokeita/quotable/pkg/pointer"
)

func TestParseTagExpression(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    *quote.TagExpression
		wantErr error
	}{
		{"blank", "  ", nil, nil},
		{"single", "wisdom", &quote.TagExpression{Mode: quote.AllOf, Names: []string{"wisdom"}}, nil},
		{"all_of", "wisdom, life ,wisdom", &quote.TagExpression{Mode: quote.AllOf, Names: []string{"wisdom", "life"}}, nil},
		{"any_of", "wisdom|life", &quote.TagExpression{Mode: quote.AnyOf, Names: []string{"wisdom", "life"}}, nil},
		{"only_separators", ",,", nil, nil},
		{"mixed", "a,b|c", nil, quote.ErrMixedTagSeparators},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := quote.ParseTagExpression(tt.raw)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"words", "stay hungry", []string{"stay", "hungry"}},
		{"strips_tsquery_operators", "life & (love | !hate):*", []string{"life", "love", "hate"}},
		{"unicode", "l'été arrive", []string{"l", "été", "arrive"}},
		{"only_punctuation", "!?&|", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := quote.Tokenize(tt.text)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func buildSQL(t *testing.T, f quote.Filter) (string, []any) {
	t.Helper()

	query, args, err := postgres.Builder.Select("q.id").From("quotes q").Where(quote.BuildPredicates(f)).ToSql()
	require.NoError(t, err)
	return query, args
}

func TestBuildPredicates(t *testing.T) {
	t.Run("empty_filter_adds_nothing", func(t *testing.T) {
		assert.Empty(t, quote.BuildPredicates(quote.Filter{}))
		assert.Empty(t, quote.BuildPredicates(quote.Filter{Query: " ?! "}))
	})

	t.Run("full_text_matches_all_tokens", func(t *testing.T) {
		query, args := buildSQL(t, quote.Filter{Query: "stay, hungry!"})

		assert.Contains(t, query, "to_tsvector('simple', q.content) @@ to_tsquery('simple', $1)")
		assert.Equal(t, []any{"stay & hungry"}, args)
	})

	t.Run("length_bounds_are_inclusive", func(t *testing.T) {
		query, args := buildSQL(t, quote.Filter{MinLength: pointer.To(10), MaxLength: pointer.To(100)})

		assert.Contains(t, query, "char_length(q.content) >= $1")
		assert.Contains(t, query, "char_length(q.content) <= $2")
		assert.Equal(t, []any{10, 100}, args)
	})

	t.Run("author_uses_normalized_slug", func(t *testing.T) {
		query, args := buildSQL(t, quote.Filter{Author: "Marcus Aurelius"})

		assert.Contains(t, query, "EXISTS (SELECT 1 FROM authors fa WHERE fa.id = q.author_id AND fa.slug = $1 AND fa.deleted_at IS NULL)")
		assert.Equal(t, []any{"marcus-aurelius"}, args)
	})

	t.Run("all_of_adds_one_exists_per_tag", func(t *testing.T) {
		query, args := buildSQL(t, quote.Filter{Tags: &quote.TagExpression{Mode: quote.AllOf, Names: []string{"a", "b"}}})

		assert.Equal(t, 2, strings.Count(query, "EXISTS"))
		assert.Contains(t, query, "ftg.name = $1)")
		assert.Contains(t, query, "ftg.name = $2)")
		assert.Equal(t, []any{"a", "b"}, args)
	})

	t.Run("any_of_adds_single_membership_check", func(t *testing.T) {
		query, args := buildSQL(t, quote.Filter{Tags: &quote.TagExpression{Mode: quote.AnyOf, Names: []string{"a", "b"}}})

		assert.Equal(t, 1, strings.Count(query, "EXISTS"))
		assert.Contains(t, query, "ftg.name = ANY($1))")
		assert.Equal(t, []any{[]string{"a", "b"}}, args)
	})

	t.Run("predicates_are_conjoined", func(t *testing.T) {
		query, args := buildSQL(t, quote.Filter{Query: "life", MinLength: pointer.To(1), Author: "seneca"})

		assert.Contains(t, query, "to_tsquery('simple', $1) AND char_length(q.content) >= $2 AND EXISTS")
		assert.Equal(t, []any{"life", 1, "seneca"}, args)
	})
}
