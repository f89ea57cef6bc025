package tag

import (
	"context"

	"github.com/kurokeita/quotable/internal/platform/dberr"
)

// Repository is the read contract for tags. Writes happen through [Reconciler].
type Repository interface {
	List(context context.Context, params ListParams) ([]*Tag, error)
	GetByID(context context.Context, id string, mode dberr.FindMode) (*Tag, error)
	GetByShortID(context context.Context, shortID string, mode dberr.FindMode) (*Tag, error)
}
