package upload

import (
	"context"
	"log/slog"
	"strings"

	"github.com/kurokeita/quotable/internal/core/author"
	"github.com/kurokeita/quotable/internal/core/quote"
	"github.com/kurokeita/quotable/pkg/shortid"
	"github.com/kurokeita/quotable/pkg/slice"
	"github.com/kurokeita/quotable/pkg/slug"
	"github.com/kurokeita/quotable/pkg/uuid"
)

// AuthorStore is the author persistence used by an upload.
type AuthorStore interface {
	BulkUpsert(context context.Context, authors []*author.Author) ([]*author.Author, error)
	FindBySlugs(context context.Context, slugs []string) ([]*author.Author, error)
	FindByShortIDs(context context.Context, shortIDs []string) ([]*author.Author, error)
	ExistingIDs(context context.Context, ids []string) ([]string, error)
}

// QuoteStore is the quote persistence used by an upload.
type QuoteStore interface {
	BulkUpsert(context context.Context, quotes []*quote.Quote) ([]*quote.Quote, error)
}

// TagBulkSyncer attaches tags to many quotes at once.
type TagBulkSyncer interface {
	BulkSync(context context.Context, tagsByQuote map[string][]string) (int, error)
}

// TxRunner runs fn inside one transaction carried by the context.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Service struct {
	authors   AuthorStore
	quotes    QuoteStore
	tags      TagBulkSyncer
	tx        TxRunner
	chunkSize int
	logger    *slog.Logger
}

func NewService(authors AuthorStore, quotes QuoteStore, tags TagBulkSyncer, tx TxRunner, chunkSize int, logger *slog.Logger) *Service {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Service{
		authors:   authors,
		quotes:    quotes,
		tags:      tags,
		tx:        tx,
		chunkSize: chunkSize,
		logger:    logger,
	}
}

// Upload ingests doc in a single transaction, authors first so that quotes
// in the same document can reference them. Chunks run sequentially and any
// failure aborts the whole upload.
func (service *Service) Upload(ctx context.Context, doc Document) (Result, error) {
	var result Result

	err := service.tx.RunInTx(ctx, func(txCtx context.Context) error {
		authors, err := service.uploadAuthors(txCtx, doc.Authors)
		if err != nil {
			return err
		}

		quotes, err := service.uploadQuotes(txCtx, doc.Quotes)
		if err != nil {
			return err
		}

		result = Result{Authors: authors, Quotes: quotes}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	service.logger.InfoContext(ctx, "upload_completed",
		slog.Int("authors_input", result.Authors.Input),
		slog.Int("authors_created", result.Authors.Created),
		slog.Int("authors_skipped", result.Authors.Skipped),
		slog.Int("quotes_input", result.Quotes.Input),
		slog.Int("quotes_created", result.Quotes.Created),
		slog.Int("quotes_skipped", result.Quotes.Skipped),
	)
	return result, nil
}

func (service *Service) uploadAuthors(context context.Context, items []AuthorItem) (BulkResult[AuthorItem], error) {
	result := newResult[AuthorItem](len(items))

	for _, chunk := range slice.Chunk(items, service.chunkSize) {
		candidates := make([]*author.Author, 0, len(chunk))
		sources := make([]AuthorItem, 0, len(chunk))

		for _, item := range chunk {
			name := strings.TrimSpace(item.Name)
			authorSlug := slug.From(name)
			if authorSlug == "" {
				result.skip(item)
				continue
			}

			candidates = append(candidates, &author.Author{
				ID:          uuid.New(),
				ShortID:     shortid.New(),
				Name:        name,
				Slug:        authorSlug,
				Description: strings.TrimSpace(item.Description),
				Bio:         strings.TrimSpace(item.Bio),
				Link:        strings.TrimSpace(item.Link),
			})
			sources = append(sources, item)
		}

		if len(candidates) == 0 {
			continue
		}

		inserted, err := service.authors.BulkUpsert(context, candidates)
		if err != nil {
			return result, err
		}

		insertedIDs := idSet(inserted, func(a *author.Author) string { return a.ID })
		for i, candidate := range candidates {
			if insertedIDs[candidate.ID] {
				result.Created++
				continue
			}
			result.skip(sources[i])
		}
	}

	return result, nil
}

func (service *Service) uploadQuotes(context context.Context, items []QuoteItem) (BulkResult[QuoteItem], error) {
	result := newResult[QuoteItem](len(items))

	for _, chunk := range slice.Chunk(items, service.chunkSize) {
		resolve, err := service.authorResolver(context, chunk)
		if err != nil {
			return result, err
		}

		candidates := make([]*quote.Quote, 0, len(chunk))
		sources := make([]QuoteItem, 0, len(chunk))

		for _, item := range chunk {
			content := strings.TrimSpace(item.Content)
			authorID, ok := resolve(item)
			if content == "" || !ok {
				result.skip(item)
				continue
			}

			candidates = append(candidates, &quote.Quote{
				ID:       uuid.New(),
				ShortID:  shortid.New(),
				AuthorID: authorID,
				Content:  content,
			})
			sources = append(sources, item)
		}

		if len(candidates) == 0 {
			continue
		}

		inserted, err := service.quotes.BulkUpsert(context, candidates)
		if err != nil {
			return result, err
		}

		// Tags are matched back by content: the id is only trusted when the
		// returned row carries the content this candidate submitted.
		insertedByContent := make(map[string]string, len(inserted))
		for _, q := range inserted {
			insertedByContent[q.Content] = q.ID
		}

		tagsByQuote := make(map[string][]string)
		for i, candidate := range candidates {
			id, ok := insertedByContent[candidate.Content]
			if !ok || id != candidate.ID {
				result.skip(sources[i])
				continue
			}

			result.Created++
			if len(sources[i].Tags) > 0 {
				tagsByQuote[id] = sources[i].Tags
			}
		}

		if len(tagsByQuote) > 0 {
			if _, err := service.tags.BulkSync(context, tagsByQuote); err != nil {
				return result, err
			}
		}
	}

	return result, nil
}

// authorResolver builds the author lookup for one chunk. authorId accepts a
// UUID or a shortId, like quote creation does; author is matched by slug.
// Each identifier kind costs at most one batched query.
func (service *Service) authorResolver(context context.Context, chunk []QuoteItem) (func(QuoteItem) (string, bool), error) {
	var ids, shortIDs, slugs []string
	for _, item := range chunk {
		switch id := strings.TrimSpace(item.AuthorID); {
		case id != "" && uuid.IsValid(id):
			ids = append(ids, id)
		case id != "":
			shortIDs = append(shortIDs, id)
		default:
			if authorSlug := slug.From(item.Author); authorSlug != "" {
				slugs = append(slugs, authorSlug)
			}
		}
	}

	existing, err := service.authors.ExistingIDs(context, slice.Unique(ids))
	if err != nil {
		return nil, err
	}
	byRef := make(map[string]string, len(existing))
	for _, id := range existing {
		byRef[id] = id
	}

	byShortID, err := service.authors.FindByShortIDs(context, slice.Unique(shortIDs))
	if err != nil {
		return nil, err
	}
	for _, a := range byShortID {
		byRef[a.ShortID] = a.ID
	}

	found, err := service.authors.FindBySlugs(context, slice.Unique(slugs))
	if err != nil {
		return nil, err
	}
	bySlug := make(map[string]string, len(found))
	for _, a := range found {
		bySlug[a.Slug] = a.ID
	}

	return func(item QuoteItem) (string, bool) {
		if ref := strings.TrimSpace(item.AuthorID); ref != "" {
			id, ok := byRef[ref]
			return id, ok
		}
		id, ok := bySlug[slug.From(item.Author)]
		return id, ok
	}, nil
}

func idSet[T any](items []T, id func(T) string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[id(item)] = true
	}
	return set
}
