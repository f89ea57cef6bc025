// Package upload ingests authors and quotes in bulk from one JSON document.
package upload

import (
	"github.com/kurokeita/quotable/internal/core/quote"
)

// DefaultChunkSize bounds the rows written per insert statement.
const DefaultChunkSize = 500

// AuthorItem is one author of an upload document.
type AuthorItem struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Bio         string `json:"bio,omitempty"`
	Link        string `json:"link,omitempty"`
}

// QuoteItem is one quote of an upload document. AuthorID wins over Author
// (a slug or name) when both are set.
type QuoteItem struct {
	Content  string        `json:"content"`
	AuthorID string        `json:"authorId,omitempty"`
	Author   string        `json:"author,omitempty"`
	Tags     quote.TagList `json:"tags,omitempty"`
}

// Document is the uploaded payload.
type Document struct {
	Authors []AuthorItem `json:"authors"`
	Quotes  []QuoteItem  `json:"quotes"`
}

// BulkResult reports the outcome of ingesting one entity list.
// Input counts every submitted item, including those rejected before the insert.
type BulkResult[T any] struct {
	Input       int `json:"input"`
	Created     int `json:"created"`
	Skipped     int `json:"skipped"`
	SkippedData []T `json:"skippedData"`
}

func newResult[T any](input int) BulkResult[T] {
	return BulkResult[T]{Input: input, SkippedData: []T{}}
}

func (result *BulkResult[T]) skip(item T) {
	result.Skipped++
	result.SkippedData = append(result.SkippedData, item)
}

// Result is the outcome of an upload.
type Result struct {
	Authors BulkResult[AuthorItem] `json:"authors"`
	Quotes  BulkResult[QuoteItem]  `json:"quotes"`
}
