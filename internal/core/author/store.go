package author

import (
	"context"

	"github.com/kurokeita/quotable/internal/platform/dberr"
)

// Changes are the columns written by [Repository.Update]. Nil fields are left untouched.
type Changes struct {
	Name        *string
	Slug        *string
	Description *string
	Bio         *string
	Link        *string
}

type Repository interface {
	List(context context.Context, params ListParams) ([]*Author, int, error)
	GetByID(context context.Context, id string, mode dberr.FindMode) (*Author, error)
	GetByShortID(context context.Context, shortID string, mode dberr.FindMode) (*Author, error)
	GetBySlug(context context.Context, slug string, mode dberr.FindMode) (*Author, error)
	Create(context context.Context, author *Author) error
	Update(context context.Context, id string, changes Changes) error
	SoftDelete(context context.Context, id string) error

	// BulkUpsert inserts authors and skips those whose slug is taken.
	// Only the inserted rows are returned.
	BulkUpsert(context context.Context, authors []*Author) ([]*Author, error)
	FindBySlugs(context context.Context, slugs []string) ([]*Author, error)
	FindByShortIDs(context context.Context, shortIDs []string) ([]*Author, error)
	ExistingIDs(context context.Context, ids []string) ([]string, error)
}
