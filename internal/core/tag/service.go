package tag

import (
	"context"
	"log/slog"

	"github.com/kurokeita/quotable/internal/platform/dberr"
	"github.com/kurokeita/quotable/pkg/uuid"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (service *Service) ListTags(context context.Context, params ListParams) ([]*Tag, error) {
	return service.repo.List(context, params)
}

// GetTag resolves identifier as a UUID first and as a shortId otherwise.
func (service *Service) GetTag(context context.Context, identifier string) (*Tag, error) {
	if uuid.IsValid(identifier) {
		return service.repo.GetByID(context, identifier, dberr.FindOrFail)
	}
	return service.repo.GetByShortID(context, identifier, dberr.FindOrFail)
}
