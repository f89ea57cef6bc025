// Package tag manages descriptive tags and their association with quotes.
package tag

import (
	"fmt"
	"strings"
	"time"

	"github.com/kurokeita/quotable/internal/platform/database/schema"
	"github.com/kurokeita/quotable/pkg/pagination"
	"github.com/kurokeita/quotable/pkg/slice"
)

// Tag is a label attached to quotes.
type Tag struct {
	ID          string    `json:"id"          db:"id"`
	ShortID     string    `json:"shortId"     db:"short_id"`
	Name        string    `json:"name"        db:"name"`
	QuotesCount int64     `json:"quotesCount" db:"quotes_count"`
	CreatedAt   time.Time `json:"createdAt"   db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt"   db:"updated_at"`
}

// SortField is a whitelisted ordering key for tag listings.
type SortField string

const (
	SortCreatedAt   SortField = "createdAt"
	SortUpdatedAt   SortField = "updatedAt"
	SortName        SortField = "name"
	SortQuotesCount SortField = "quotesCount"
)

var sortColumns = map[SortField]string{
	SortCreatedAt:   schema.Tag.Col(schema.Tag.CreatedAt),
	SortUpdatedAt:   schema.Tag.Col(schema.Tag.UpdatedAt),
	SortName:        schema.Tag.Col(schema.Tag.Name),
	SortQuotesCount: "quotes_count",
}

// ParseSortField validates raw against the tag sort whitelist. Empty selects createdAt.
func ParseSortField(raw string) (SortField, error) {
	if raw == "" {
		return SortCreatedAt, nil
	}
	field := SortField(raw)
	if _, ok := sortColumns[field]; !ok {
		return "", fmt.Errorf("must be one of: createdAt, updatedAt, name, quotesCount")
	}
	return field, nil
}

// ListParams controls the ordering of a tag listing.
type ListParams struct {
	SortBy SortField
	Order  pagination.Order
}

// Normalize trims names, drops blanks and removes duplicates in first-seen
// order. Case is preserved.
func Normalize(names []string) []string {
	trimmed := slice.Map(names, strings.TrimSpace)
	return slice.Unique(slice.Filter(trimmed, func(name string) bool { return name != "" }))
}

// Field names used in validation errors.
const (
	FieldName   = "name"
	FieldSortBy = "sortBy"
	FieldOrder  = "order"
)
