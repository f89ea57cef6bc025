package quote

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	sq "github.com/Masterminds/squirrel"

	"github.com/kurokeita/quotable/internal/core/tag"
	"github.com/kurokeita/quotable/internal/platform/database/schema"
	"github.com/kurokeita/quotable/pkg/query"
	"github.com/kurokeita/quotable/pkg/slug"
)

// ErrMixedTagSeparators is returned when a tags filter combines "," and "|".
var ErrMixedTagSeparators = errors.New("tags must use either ',' (all of) or '|' (any of), not both")

// TagMode selects how the names of a [TagExpression] combine.
type TagMode int

const (
	// AllOf matches quotes carrying every listed tag.
	AllOf TagMode = iota
	// AnyOf matches quotes carrying at least one listed tag.
	AnyOf
)

func (mode TagMode) String() string {
	if mode == AnyOf {
		return "anyOf"
	}
	return "allOf"
}

// TagExpression is a parsed tags filter.
type TagExpression struct {
	Mode  TagMode
	Names []string
}

// ParseTagExpression parses "a,b" as AllOf and "a|b" as AnyOf.
// A single name is AllOf. Blank input yields nil.
func ParseTagExpression(raw string) (*TagExpression, error) {
	hasComma := strings.Contains(raw, ",")
	hasPipe := strings.Contains(raw, "|")

	if hasComma && hasPipe {
		return nil, ErrMixedTagSeparators
	}

	mode, sep := AllOf, ","
	if hasPipe {
		mode, sep = AnyOf, "|"
	}

	names := tag.Normalize(query.Split(raw, sep))
	if len(names) == 0 {
		return nil, nil
	}
	return &TagExpression{Mode: mode, Names: names}, nil
}

// Filter narrows a quote listing or random draw. Zero values add no predicate.
type Filter struct {
	Author    string
	Query     string
	MinLength *int
	MaxLength *int
	Tags      *TagExpression
}

// Tokenize splits free text on every rune that is neither a letter nor a
// digit. This also removes the operators of the tsquery grammar.
func Tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

var (
	quoteCol = schema.Quote.Col

	contentLength = fmt.Sprintf("char_length(%s)", quoteCol(schema.Quote.Content))

	fullText = fmt.Sprintf("to_tsvector('simple', %s) @@ to_tsquery('simple', ?)", quoteCol(schema.Quote.Content))

	authorExists = fmt.Sprintf(
		"EXISTS (SELECT 1 FROM %[1]s fa WHERE fa.%[2]s = %[3]s AND fa.%[4]s = ? AND fa.%[5]s IS NULL)",
		schema.Author.Table, schema.Author.ID, quoteCol(schema.Quote.AuthorID), schema.Author.Slug, schema.Author.DeletedAt,
	)

	tagExists = fmt.Sprintf(
		"EXISTS (SELECT 1 FROM %[1]s ft JOIN %[2]s ftg ON ftg.%[3]s = ft.%[4]s"+
			" WHERE ft.%[5]s = %[6]s AND ftg.%[7]s IS NULL AND ftg.%[8]s",
		schema.QuoteTag.Table, schema.Tag.Table, schema.Tag.ID, schema.QuoteTag.TagID,
		schema.QuoteTag.QuoteID, quoteCol(schema.Quote.ID), schema.Tag.DeletedAt, schema.Tag.Name,
	)
)

// BuildPredicates translates f into a conjunction of SQL predicates over the
// quote alias. The result is empty when f sets nothing.
func BuildPredicates(f Filter) sq.And {
	predicates := sq.And{}

	if tokens := Tokenize(f.Query); len(tokens) > 0 {
		predicates = append(predicates, sq.Expr(fullText, strings.Join(tokens, " & ")))
	}

	if f.MinLength != nil {
		predicates = append(predicates, sq.Expr(contentLength+" >= ?", *f.MinLength))
	}
	if f.MaxLength != nil {
		predicates = append(predicates, sq.Expr(contentLength+" <= ?", *f.MaxLength))
	}

	if strings.TrimSpace(f.Author) != "" {
		predicates = append(predicates, sq.Expr(authorExists, slug.From(f.Author)))
	}

	if f.Tags != nil && len(f.Tags.Names) > 0 {
		switch f.Tags.Mode {
		case AnyOf:
			predicates = append(predicates, sq.Expr(tagExists+" = ANY(?))", f.Tags.Names))
		default:
			for _, name := range f.Tags.Names {
				predicates = append(predicates, sq.Expr(tagExists+" = ?)", name))
			}
		}
	}

	return predicates
}
