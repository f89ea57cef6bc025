package author

import (
	"context"
	"log/slog"
	"strings"

	"github.com/kurokeita/quotable/internal/platform/dberr"
	"github.com/kurokeita/quotable/internal/platform/validate"
	"github.com/kurokeita/quotable/pkg/pagination"
	"github.com/kurokeita/quotable/pkg/pointer"
	"github.com/kurokeita/quotable/pkg/shortid"
	"github.com/kurokeita/quotable/pkg/slug"
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

func (service *Service) ListAuthors(context context.Context, params ListParams) (pagination.Page[*Author], error) {
	params.Page = params.Page.Normalize()

	authors, total, err := service.repo.List(context, params)
	if err != nil {
		return pagination.Page[*Author]{}, err
	}

	return pagination.Page[*Author]{Data: authors, Metadata: pagination.NewMeta(params.Page, total)}, nil
}

// GetAuthor resolves identifier as a UUID first and as a shortId otherwise.
func (service *Service) GetAuthor(context context.Context, identifier string) (*Author, error) {
	if uuid.IsValid(identifier) {
		return service.repo.GetByID(context, identifier, dberr.FindOrFail)
	}
	return service.repo.GetByShortID(context, identifier, dberr.FindOrFail)
}

// GetAuthorBySlug normalizes raw the same way names are normalized on write.
func (service *Service) GetAuthorBySlug(context context.Context, raw string) (*Author, error) {
	normalized := slug.From(raw)
	if normalized == "" {
		return nil, validate.FieldError("slug", "Must contain at least one letter or digit")
	}
	return service.repo.GetBySlug(context, normalized, dberr.FindOrFail)
}

func (service *Service) CreateAuthor(context context.Context, input CreateInput) (*Author, error) {
	author := &Author{
		ID:          uuid.New(),
		ShortID:     shortid.New(),
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		Bio:         strings.TrimSpace(input.Bio),
		Link:        strings.TrimSpace(input.Link),
	}
	author.Slug = slug.From(author.Name)

	validator := &validate.Validator{}
	validator.Required(FieldName, author.Name).MaxLen(FieldName, author.Name, MaxNameLength)
	if author.Name != "" {
		validator.Custom(FieldName, author.Slug == "", "Must contain at least one letter or digit usable in a slug")
	}
	validateDetails(validator, author.Description, author.Bio, author.Link)

	if err := validator.Err(); err != nil {
		return nil, err
	}

	if err := service.repo.Create(context, author); err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "author_created",
		slog.String("author_id", author.ID),
		slog.String("slug", author.Slug),
	)
	return author, nil
}

// UpdateAuthor applies a partial update. Renaming an author recomputes its slug.
func (service *Service) UpdateAuthor(context context.Context, identifier string, input UpdateInput) (*Author, error) {
	current, err := service.GetAuthor(context, identifier)
	if err != nil {
		return nil, err
	}

	if input.IsEmpty() {
		return current, nil
	}

	changes := Changes{
		Description: trimmed(input.Description),
		Bio:         trimmed(input.Bio),
		Link:        trimmed(input.Link),
	}

	validator := &validate.Validator{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		newSlug := slug.From(name)

		validator.Required(FieldName, name).MaxLen(FieldName, name, MaxNameLength)
		if name != "" {
			validator.Custom(FieldName, newSlug == "", "Must contain at least one letter or digit usable in a slug")
		}

		changes.Name = &name
		changes.Slug = &newSlug
	}
	validateDetails(validator, pointer.Val(changes.Description), pointer.Val(changes.Bio), pointer.Val(changes.Link))

	if err := validator.Err(); err != nil {
		return nil, err
	}

	if err := service.repo.Update(context, current.ID, changes); err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "author_updated", slog.String("author_id", current.ID))
	return service.repo.GetByID(context, current.ID, dberr.FindOrFail)
}

func (service *Service) DeleteAuthor(context context.Context, identifier string) error {
	current, err := service.GetAuthor(context, identifier)
	if err != nil {
		return err
	}

	if err := service.repo.SoftDelete(context, current.ID); err != nil {
		return err
	}

	service.logger.WarnContext(context, "author_deleted", slog.String("author_id", current.ID))
	return nil
}

func validateDetails(validator *validate.Validator, description, bio, link string) {
	validator.
		MaxLen(FieldDescription, description, MaxDescriptionLength).
		MaxLen(FieldBio, bio, MaxBioLength).
		MaxLen(FieldLink, link, MaxLinkLength).
		URL(FieldLink, link)
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	clean := strings.TrimSpace(*value)
	return &clean
}
