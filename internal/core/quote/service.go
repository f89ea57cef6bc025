package quote

import (
	"context"
	"log/slog"
	"strings"

	"github.com/kurokeita/quotable/internal/core/author"
	"github.com/kurokeita/quotable/internal/core/tag"
	"github.com/kurokeita/quotable/internal/platform/dberr"
	"github.com/kurokeita/quotable/internal/platform/validate"
	"github.com/kurokeita/quotable/pkg/pagination"
	"github.com/kurokeita/quotable/pkg/shortid"
	"github.com/kurokeita/quotable/pkg/slug"
	"github.com/kurokeita/quotable/pkg/uuid"
)

// TxRunner runs fn inside one transaction carried by the context.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// TagSyncer reconciles the tags of one quote.
type TagSyncer interface {
	Sync(context context.Context, quoteID string, names []string) (tag.SyncResult, error)
}

// AuthorFinder resolves the author a new quote is attributed to.
type AuthorFinder interface {
	GetByID(context context.Context, id string, mode dberr.FindMode) (*author.Author, error)
	GetByShortID(context context.Context, shortID string, mode dberr.FindMode) (*author.Author, error)
	GetBySlug(context context.Context, slug string, mode dberr.FindMode) (*author.Author, error)
}

type Service struct {
	repo    Repository
	authors AuthorFinder
	tags    TagSyncer
	tx      TxRunner
	logger  *slog.Logger
}

func NewService(repo Repository, authors AuthorFinder, tags TagSyncer, tx TxRunner, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		authors: authors,
		tags:    tags,
		tx:      tx,
		logger:  logger,
	}
}

func (service *Service) IndexQuotes(context context.Context, params IndexParams) (pagination.Page[*Quote], error) {
	params.Page = params.Page.Normalize()

	quotes, total, err := service.repo.Index(context, params)
	if err != nil {
		return pagination.Page[*Quote]{}, err
	}

	return pagination.Page[*Quote]{Data: quotes, Metadata: pagination.NewMeta(params.Page, total)}, nil
}

// RandomQuote draws one quote matching filter. It returns nil when nothing matches.
func (service *Service) RandomQuote(context context.Context, filter Filter) (*Quote, error) {
	quotes, err := service.repo.Random(context, filter, 1)
	if err != nil || len(quotes) == 0 {
		return nil, err
	}
	return quotes[0], nil
}

// RandomQuotes draws up to params.Limit distinct quotes, clamped to 1..MaxRandomLimit.
func (service *Service) RandomQuotes(context context.Context, params RandomParams) ([]*Quote, error) {
	limit := min(max(params.Limit, 1), MaxRandomLimit)
	return service.repo.Random(context, params.Filter, limit)
}

// GetQuote resolves identifier as a UUID first and as a shortId otherwise.
func (service *Service) GetQuote(context context.Context, identifier string) (*Quote, error) {
	if uuid.IsValid(identifier) {
		return service.repo.GetByID(context, identifier, dberr.FindOrFail)
	}
	return service.repo.GetByShortID(context, identifier, dberr.FindOrFail)
}

// CreateQuote inserts the quote and its tags in one transaction.
func (service *Service) CreateQuote(ctx context.Context, input CreateInput) (*Quote, error) {
	content := trimContent(input.Content)
	authorID := strings.TrimSpace(input.AuthorID)
	authorRef := strings.TrimSpace(input.Author)

	validator := &validate.Validator{}
	validator.Required(FieldContent, content).MaxLen(FieldContent, content, MaxContentLength)
	validator.Custom(FieldAuthor, authorID == "" && authorRef == "", "Either authorId or author is required")
	if err := validator.Err(); err != nil {
		return nil, err
	}

	var created *Quote
	err := service.tx.RunInTx(ctx, func(txCtx context.Context) error {
		owner, err := service.resolveAuthor(txCtx, authorID, authorRef)
		if err != nil {
			return err
		}

		quote := &Quote{
			ID:       uuid.New(),
			ShortID:  shortid.New(),
			AuthorID: owner.ID,
			Content:  content,
		}
		if err := service.repo.Create(txCtx, quote); err != nil {
			return err
		}

		if _, err := service.tags.Sync(txCtx, quote.ID, input.Tags); err != nil {
			return err
		}

		created, err = service.repo.GetByID(txCtx, quote.ID, dberr.FindOrFail)
		return err
	})
	if err != nil {
		return nil, err
	}

	service.logger.InfoContext(ctx, "quote_created",
		slog.String("quote_id", created.ID),
		slog.String("author_id", created.AuthorID),
		slog.Int("tags", len(created.Tags)),
	)
	return created, nil
}

// UpdateQuote changes the content and/or tags of a quote in one transaction.
// The author of a quote is fixed at creation.
func (service *Service) UpdateQuote(ctx context.Context, identifier string, input UpdateInput) (*Quote, error) {
	var content string
	if input.Content != nil {
		content = trimContent(*input.Content)

		validator := &validate.Validator{}
		validator.Required(FieldContent, content).MaxLen(FieldContent, content, MaxContentLength)
		if err := validator.Err(); err != nil {
			return nil, err
		}
	}

	var updated *Quote
	err := service.tx.RunInTx(ctx, func(txCtx context.Context) error {
		current, err := service.GetQuote(txCtx, identifier)
		if err != nil {
			return err
		}

		if input.Content != nil && content != current.Content {
			if err := service.repo.UpdateContent(txCtx, current.ID, content); err != nil {
				return err
			}
		}

		if _, err := service.tags.Sync(txCtx, current.ID, input.Tags); err != nil {
			return err
		}

		updated, err = service.repo.GetByID(txCtx, current.ID, dberr.FindOrFail)
		return err
	})
	if err != nil {
		return nil, err
	}

	service.logger.InfoContext(ctx, "quote_updated", slog.String("quote_id", updated.ID))
	return updated, nil
}

func (service *Service) DeleteQuote(context context.Context, identifier string) error {
	current, err := service.GetQuote(context, identifier)
	if err != nil {
		return err
	}

	if err := service.repo.SoftDelete(context, current.ID); err != nil {
		return err
	}

	service.logger.WarnContext(context, "quote_deleted", slog.String("quote_id", current.ID))
	return nil
}

// resolveAuthor looks the author up by id (UUID or shortId) when given, and
// by the slug of ref otherwise.
func (service *Service) resolveAuthor(context context.Context, id, ref string) (*author.Author, error) {
	switch {
	case id != "" && uuid.IsValid(id):
		return service.authors.GetByID(context, id, dberr.FindOrFail)
	case id != "":
		return service.authors.GetByShortID(context, id, dberr.FindOrFail)
	}

	normalized := slug.From(ref)
	if normalized == "" {
		return nil, validate.FieldError(FieldAuthor, "Must contain at least one letter or digit")
	}
	return service.authors.GetBySlug(context, normalized, dberr.FindOrFail)
}
