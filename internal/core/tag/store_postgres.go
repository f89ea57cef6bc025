package tag

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/kurokeita/quotable/internal/platform/database/schema"
	"github.com/kurokeita/quotable/internal/platform/dberr"
	"github.com/kurokeita/quotable/internal/platform/postgres"
)

// quotesCountColumn counts live quotes of live authors carrying the tag.
var quotesCountColumn = fmt.Sprintf(`(
	SELECT count(*)
	FROM %[1]s qt
	JOIN %[2]s q ON q.%[3]s = qt.%[4]s AND q.%[5]s IS NULL
	JOIN %[6]s a ON a.%[7]s = q.%[8]s AND a.%[9]s IS NULL
	WHERE qt.%[10]s = t.%[11]s
) AS quotes_count`,
	schema.QuoteTag.Table, schema.Quote.Table, schema.Quote.ID, schema.QuoteTag.QuoteID, schema.Quote.DeletedAt,
	schema.Author.Table, schema.Author.ID, schema.Quote.AuthorID, schema.Author.DeletedAt,
	schema.QuoteTag.TagID, schema.Tag.ID,
)

// PostgresRepository reads tags from PostgreSQL.
type PostgresRepository struct {
	db postgres.Querier
}

// NewPostgresRepository creates a new [PostgresRepository].
func NewPostgresRepository(db postgres.Querier) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (repository *PostgresRepository) baseSelect() sq.SelectBuilder {
	return postgres.Builder.
		Select(
			schema.Tag.Col(schema.Tag.ID),
			schema.Tag.Col(schema.Tag.ShortID),
			schema.Tag.Col(schema.Tag.Name),
			schema.Tag.Col(schema.Tag.CreatedAt),
			schema.Tag.Col(schema.Tag.UpdatedAt),
			quotesCountColumn,
		).
		From(schema.Tag.Table + " " + schema.Tag.Alias).
		Where(sq.Eq{schema.Tag.Col(schema.Tag.DeletedAt): nil})
}

// List returns every live tag ordered by params, with id as tie-break.
func (repository *PostgresRepository) List(context context.Context, params ListParams) ([]*Tag, error) {
	column, ok := sortColumns[params.SortBy]
	if !ok {
		column = sortColumns[SortCreatedAt]
	}

	query, args, err := repository.baseSelect().
		OrderBy(column+" "+params.Order.SQL(), schema.Tag.Col(schema.Tag.ID)+" ASC").
		ToSql()
	if err != nil {
		return nil, dberr.Wrap(err, "build_list_tags")
	}

	tags := make([]*Tag, 0)
	if err := pgxscan.Select(context, postgres.QuerierFromCtx(context, repository.db), &tags, query, args...); err != nil {
		return nil, dberr.Wrap(err, "list_tags")
	}

	return tags, nil
}

// GetByID fetches a live tag by its UUID.
func (repository *PostgresRepository) GetByID(context context.Context, id string, mode dberr.FindMode) (*Tag, error) {
	return repository.getOne(context, sq.Eq{schema.Tag.Col(schema.Tag.ID): id}, mode, "get_tag_by_id")
}

// GetByShortID fetches a live tag by its short token.
func (repository *PostgresRepository) GetByShortID(context context.Context, shortID string, mode dberr.FindMode) (*Tag, error) {
	return repository.getOne(context, sq.Eq{schema.Tag.Col(schema.Tag.ShortID): shortID}, mode, "get_tag_by_short_id")
}

func (repository *PostgresRepository) getOne(context context.Context, where sq.Sqlizer, mode dberr.FindMode, action string) (*Tag, error) {
	query, args, err := repository.baseSelect().Where(where).ToSql()
	if err != nil {
		return nil, dberr.Wrap(err, action)
	}

	tag := &Tag{}
	err = pgxscan.Get(context, postgres.QuerierFromCtx(context, repository.db), tag, query, args...)
	return dberr.Resolve(tag, err, mode, "Tag", action)
}
