package quote

import (
	"context"

	"github.com/kurokeita/quotable/internal/platform/dberr"
)

type Repository interface {
	Index(context context.Context, params IndexParams) ([]*Quote, int, error)

	// Random draws up to limit distinct quotes matching filter, fully hydrated.
	Random(context context.Context, filter Filter, limit int) ([]*Quote, error)

	GetByID(context context.Context, id string, mode dberr.FindMode) (*Quote, error)
	GetByShortID(context context.Context, shortID string, mode dberr.FindMode) (*Quote, error)
	Create(context context.Context, quote *Quote) error
	UpdateContent(context context.Context, id, content string) error
	SoftDelete(context context.Context, id string) error

	// BulkUpsert inserts quotes and skips those whose content is taken.
	// Only the inserted rows are returned, without author or tags.
	BulkUpsert(context context.Context, quotes []*Quote) ([]*Quote, error)
}
