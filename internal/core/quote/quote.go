// Package quote manages quotations, their filters and random sampling.
package quote

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/kurokeita/quotable/internal/platform/database/schema"
	"github.com/kurokeita/quotable/pkg/pagination"
	"github.com/kurokeita/quotable/pkg/query"
)

// AuthorSummary is the author embedded in a hydrated quote.
type AuthorSummary struct {
	ID      string `json:"id"`
	ShortID string `json:"shortId"`
	Name    string `json:"name"`
	Slug    string `json:"slug"`
}

// TagSummary is a tag embedded in a hydrated quote.
type TagSummary struct {
	ID      string `json:"id"`
	ShortID string `json:"shortId"`
	Name    string `json:"name"`
}

// Quote is a quotation together with its author and tags.
type Quote struct {
	ID        string         `json:"id"`
	ShortID   string         `json:"shortId"`
	AuthorID  string         `json:"authorId"`
	Content   string         `json:"content"`
	Author    *AuthorSummary `json:"author"`
	Tags      []TagSummary   `json:"tags"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// TagList is a list of tag names. It decodes from a JSON array or from a
// comma separated string. An absent or null value stays nil.
type TagList []string

func (list *TagList) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*list = nil
		return nil
	}

	var joined string
	if err := json.Unmarshal(data, &joined); err == nil {
		names := query.StringSlice(joined)
		if names == nil {
			names = []string{}
		}
		*list = names
		return nil
	}

	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return fmt.Errorf("tags must be an array of strings or a comma separated string")
	}
	if names == nil {
		names = []string{}
	}
	*list = names
	return nil
}

// CreateInput is the payload accepted when creating a quote.
// Exactly one of AuthorID or Author (a slug or name) identifies the author.
type CreateInput struct {
	Content  string  `json:"content"`
	AuthorID string  `json:"authorId"`
	Author   string  `json:"author"`
	Tags     TagList `json:"tags"`
}

// UpdateInput is a partial update. A nil Tags leaves the tags untouched,
// an empty one removes them all.
type UpdateInput struct {
	Content *string `json:"content"`
	Tags    TagList `json:"tags"`
}

// SortField is a whitelisted ordering key for quote listings.
type SortField string

const (
	SortCreatedAt SortField = "createdAt"
	SortUpdatedAt SortField = "updatedAt"
	SortContent   SortField = "content"
	SortAuthor    SortField = "author"
)

var sortColumns = map[SortField]string{
	SortCreatedAt: schema.Quote.Col(schema.Quote.CreatedAt),
	SortUpdatedAt: schema.Quote.Col(schema.Quote.UpdatedAt),
	SortContent:   schema.Quote.Col(schema.Quote.Content),
	SortAuthor:    schema.Author.Col(schema.Author.Name),
}

// ParseSortField validates raw against the quote sort whitelist. Empty selects createdAt.
func ParseSortField(raw string) (SortField, error) {
	if raw == "" {
		return SortCreatedAt, nil
	}
	field := SortField(raw)
	if _, ok := sortColumns[field]; !ok {
		return "", fmt.Errorf("must be one of: createdAt, updatedAt, content, author")
	}
	return field, nil
}

// IndexParams holds the filter, paging and ordering of a quote listing.
type IndexParams struct {
	Filter Filter
	Page   pagination.Params
	SortBy SortField
	Order  pagination.Order
}

// RandomParams holds the filter and sample size of a random draw.
type RandomParams struct {
	Filter Filter
	Limit  int
}

const (
	// MaxRandomLimit caps the number of quotes one random draw returns.
	MaxRandomLimit = 100

	MaxContentLength = 10000
)

// Field names used in validation errors and query strings.
const (
	FieldContent   = "content"
	FieldAuthorID  = "authorId"
	FieldAuthor    = "author"
	FieldTags      = "tags"
	FieldQuery     = "query"
	FieldMinLength = "minLength"
	FieldMaxLength = "maxLength"
	FieldSortBy    = "sortBy"
	FieldOrder     = "order"
	FieldLimit     = "limit"
)

func trimContent(content string) string {
	return strings.TrimSpace(content)
}
