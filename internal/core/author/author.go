// Package author manages the people quotes are attributed to.
package author

import (
	"fmt"
	"time"

	"github.com/kurokeita/quotable/internal/platform/database/schema"
	"github.com/kurokeita/quotable/pkg/pagination"
)

// Author is the person a quote is attributed to.
type Author struct {
	ID          string    `json:"id"          db:"id"`
	ShortID     string    `json:"shortId"     db:"short_id"`
	Name        string    `json:"name"        db:"name"`
	Slug        string    `json:"slug"        db:"slug"`
	Description string    `json:"description" db:"description"`
	Bio         string    `json:"bio"         db:"bio"`
	Link        string    `json:"link"        db:"link"`
	QuotesCount int64     `json:"quotesCount" db:"quotes_count"`
	CreatedAt   time.Time `json:"createdAt"   db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt"   db:"updated_at"`
}

// CreateInput is the payload accepted when creating an author.
type CreateInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Bio         string `json:"bio"`
	Link        string `json:"link"`
}

// UpdateInput is a partial update. Nil fields keep their current value.
type UpdateInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Bio         *string `json:"bio"`
	Link        *string `json:"link"`
}

// IsEmpty reports whether the update changes nothing.
func (input UpdateInput) IsEmpty() bool {
	return input.Name == nil && input.Description == nil && input.Bio == nil && input.Link == nil
}

// SortField is a whitelisted ordering key for author listings.
type SortField string

const (
	SortCreatedAt   SortField = "createdAt"
	SortUpdatedAt   SortField = "updatedAt"
	SortName        SortField = "name"
	SortQuotesCount SortField = "quotesCount"
)

var sortColumns = map[SortField]string{
	SortCreatedAt:   schema.Author.Col(schema.Author.CreatedAt),
	SortUpdatedAt:   schema.Author.Col(schema.Author.UpdatedAt),
	SortName:        schema.Author.Col(schema.Author.Name),
	SortQuotesCount: "quotes_count",
}

// ParseSortField validates raw against the author sort whitelist. Empty selects createdAt.
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

// ListParams holds paging and ordering for an author listing.
type ListParams struct {
	Page   pagination.Params
	SortBy SortField
	Order  pagination.Order
}

// Global field names for validation
const (
	FieldName        = "name"
	FieldDescription = "description"
	FieldBio         = "bio"
	FieldLink        = "link"
	FieldSortBy      = "sortBy"
	FieldOrder       = "order"
	FieldPage        = "page"
	FieldLimit       = "limit"
)

// Length limits
const (
	MaxNameLength        = 255
	MaxDescriptionLength = 1000
	MaxBioLength         = 10000
	MaxLinkLength        = 2048
)
