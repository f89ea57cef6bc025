package author

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/kurokeita/quotable/internal/platform/apperr"
	"github.com/kurokeita/quotable/internal/platform/database/schema"
	"github.com/kurokeita/quotable/internal/platform/dberr"
	"github.com/kurokeita/quotable/internal/platform/postgres"
	"github.com/kurokeita/quotable/pkg/slice"
)

var (
	table = schema.Author

	// quotesCountColumn counts the live quotes attributed to a.
	quotesCountColumn = fmt.Sprintf(
		`(SELECT count(*) FROM %s q WHERE q.%s = a.%s AND q.%s IS NULL) AS quotes_count`,
		schema.Quote.Table, schema.Quote.AuthorID, table.ID, schema.Quote.DeletedAt,
	)

	returningColumns = "RETURNING " + table.ID + ", " + table.ShortID + ", " + table.Name + ", " +
		table.Slug + ", " + table.Description + ", " + table.Bio + ", " + table.Link + ", " +
		table.CreatedAt + ", " + table.UpdatedAt
)

type PostgresRepository struct {
	db postgres.Querier
}

func NewPostgresRepository(db postgres.Querier) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (repository *PostgresRepository) querier(context context.Context) postgres.Querier {
	return postgres.QuerierFromCtx(context, repository.db)
}

func (repository *PostgresRepository) baseSelect() sq.SelectBuilder {
	columns := slice.Map(table.Columns(), table.Col)
	return postgres.Builder.
		Select(columns...).
		Column(quotesCountColumn).
		From(table.Table + " " + table.Alias).
		Where(sq.Eq{table.Col(table.DeletedAt): nil})
}

func (repository *PostgresRepository) List(context context.Context, params ListParams) ([]*Author, int, error) {
	page := params.Page.Normalize()

	column, ok := sortColumns[params.SortBy]
	if !ok {
		column = sortColumns[SortCreatedAt]
	}

	countQuery, countArgs, err := postgres.Builder.
		Select("count(*)").
		From(table.Table).
		Where(sq.Eq{table.DeletedAt: nil}).
		ToSql()
	if err != nil {
		return nil, 0, dberr.Wrap(err, "build_count_authors")
	}

	var total int
	if err := repository.querier(context).QueryRow(context, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_authors")
	}

	query, args, err := repository.baseSelect().
		OrderBy(column+" "+params.Order.SQL(), table.Col(table.ID)+" ASC").
		Limit(uint64(page.Limit)).
		Offset(uint64(page.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, dberr.Wrap(err, "build_list_authors")
	}

	authors := make([]*Author, 0, page.Limit)
	if err := pgxscan.Select(context, repository.querier(context), &authors, query, args...); err != nil {
		return nil, 0, dberr.Wrap(err, "list_authors")
	}

	return authors, total, nil
}

func (repository *PostgresRepository) GetByID(context context.Context, id string, mode dberr.FindMode) (*Author, error) {
	return repository.getOne(context, sq.Eq{table.Col(table.ID): id}, mode, "get_author_by_id")
}

func (repository *PostgresRepository) GetByShortID(context context.Context, shortID string, mode dberr.FindMode) (*Author, error) {
	return repository.getOne(context, sq.Eq{table.Col(table.ShortID): shortID}, mode, "get_author_by_short_id")
}

func (repository *PostgresRepository) GetBySlug(context context.Context, slug string, mode dberr.FindMode) (*Author, error) {
	return repository.getOne(context, sq.Eq{table.Col(table.Slug): slug}, mode, "get_author_by_slug")
}

func (repository *PostgresRepository) getOne(context context.Context, where sq.Sqlizer, mode dberr.FindMode, action string) (*Author, error) {
	query, args, err := repository.baseSelect().Where(where).ToSql()
	if err != nil {
		return nil, dberr.Wrap(err, action)
	}

	found := &Author{}
	err = pgxscan.Get(context, repository.querier(context), found, query, args...)
	return dberr.Resolve(found, err, mode, "Author", action)
}

// Create inserts a and fills in its timestamps.
func (repository *PostgresRepository) Create(context context.Context, a *Author) error {
	query, args, err := postgres.Builder.
		Insert(table.Table).
		Columns(table.ID, table.ShortID, table.Name, table.Slug, table.Description, table.Bio, table.Link).
		Values(a.ID, a.ShortID, a.Name, a.Slug, a.Description, a.Bio, a.Link).
		Suffix("RETURNING " + table.CreatedAt + ", " + table.UpdatedAt).
		ToSql()
	if err != nil {
		return dberr.Wrap(err, "build_create_author")
	}

	err = repository.querier(context).QueryRow(context, query, args...).Scan(&a.CreatedAt, &a.UpdatedAt)
	return dberr.Wrap(err, "create_author")
}

func (repository *PostgresRepository) Update(context context.Context, id string, changes Changes) error {
	update := postgres.Builder.
		Update(table.Table).
		Set(table.UpdatedAt, sq.Expr("now()")).
		Where(sq.Eq{table.ID: id, table.DeletedAt: nil})

	columns := []struct {
		name  string
		value *string
	}{
		{table.Name, changes.Name},
		{table.Slug, changes.Slug},
		{table.Description, changes.Description},
		{table.Bio, changes.Bio},
		{table.Link, changes.Link},
	}
	for _, column := range columns {
		if column.value != nil {
			update = update.Set(column.name, *column.value)
		}
	}

	query, args, err := update.ToSql()
	if err != nil {
		return dberr.Wrap(err, "build_update_author")
	}

	tag, err := repository.querier(context).Exec(context, query, args...)
	if err != nil {
		return dberr.Wrap(err, "update_author")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Author")
	}
	return nil
}

func (repository *PostgresRepository) SoftDelete(context context.Context, id string) error {
	query, args, err := postgres.Builder.
		Update(table.Table).
		Set(table.DeletedAt, sq.Expr("now()")).
		Where(sq.Eq{table.ID: id, table.DeletedAt: nil}).
		ToSql()
	if err != nil {
		return dberr.Wrap(err, "build_delete_author")
	}

	tag, err := repository.querier(context).Exec(context, query, args...)
	if err != nil {
		return dberr.Wrap(err, "delete_author")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Author")
	}
	return nil
}

func (repository *PostgresRepository) BulkUpsert(context context.Context, authors []*Author) ([]*Author, error) {
	if len(authors) == 0 {
		return []*Author{}, nil
	}

	insert := postgres.Builder.
		Insert(table.Table).
		Columns(table.ID, table.ShortID, table.Name, table.Slug, table.Description, table.Bio, table.Link).
		Suffix("ON CONFLICT (" + table.Slug + ") WHERE " + table.DeletedAt + " IS NULL DO NOTHING").
		Suffix(returningColumns)
	for _, a := range authors {
		insert = insert.Values(a.ID, a.ShortID, a.Name, a.Slug, a.Description, a.Bio, a.Link)
	}

	query, args, err := insert.ToSql()
	if err != nil {
		return nil, dberr.Wrap(err, "build_bulk_upsert_authors")
	}

	inserted := make([]*Author, 0, len(authors))
	if err := pgxscan.Select(context, repository.querier(context), &inserted, query, args...); err != nil {
		return nil, dberr.Wrap(err, "bulk_upsert_authors")
	}
	return inserted, nil
}

func (repository *PostgresRepository) FindBySlugs(context context.Context, slugs []string) ([]*Author, error) {
	found := make([]*Author, 0, len(slugs))
	if len(slugs) == 0 {
		return found, nil
	}

	query, args, err := repository.baseSelect().Where(sq.Eq{table.Col(table.Slug): slugs}).ToSql()
	if err != nil {
		return nil, dberr.Wrap(err, "build_find_authors_by_slugs")
	}

	if err := pgxscan.Select(context, repository.querier(context), &found, query, args...); err != nil {
		return nil, dberr.Wrap(err, "find_authors_by_slugs")
	}
	return found, nil
}

func (repository *PostgresRepository) FindByShortIDs(context context.Context, shortIDs []string) ([]*Author, error) {
	found := make([]*Author, 0, len(shortIDs))
	if len(shortIDs) == 0 {
		return found, nil
	}

	query, args, err := repository.baseSelect().Where(sq.Eq{table.Col(table.ShortID): shortIDs}).ToSql()
	if err != nil {
		return nil, dberr.Wrap(err, "build_find_authors_by_short_ids")
	}

	if err := pgxscan.Select(context, repository.querier(context), &found, query, args...); err != nil {
		return nil, dberr.Wrap(err, "find_authors_by_short_ids")
	}
	return found, nil
}

func (repository *PostgresRepository) ExistingIDs(context context.Context, ids []string) ([]string, error) {
	existing := make([]string, 0, len(ids))
	if len(ids) == 0 {
		return existing, nil
	}

	query, args, err := postgres.Builder.
		Select(table.ID).
		From(table.Table).
		Where(sq.Eq{table.ID: ids, table.DeletedAt: nil}).
		ToSql()
	if err != nil {
		return nil, dberr.Wrap(err, "build_existing_author_ids")
	}

	if err := pgxscan.Select(context, repository.querier(context), &existing, query, args...); err != nil {
		return nil, dberr.Wrap(err, "existing_author_ids")
	}
	return existing, nil
}
