package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/kurokeita/quotable/internal/platform/apperr"
	"github.com/kurokeita/quotable/internal/platform/database/schema"
	"github.com/kurokeita/quotable/internal/platform/dberr"
	"github.com/kurokeita/quotable/internal/platform/postgres"
)

var (
	table = schema.Quote

	// fromLive joins every quote to its author and keeps only rows where both are live.
	fromLive = fmt.Sprintf("%s %s JOIN %s %s ON %s = %s AND %s IS NULL",
		table.Table, table.Alias,
		schema.Author.Table, schema.Author.Alias,
		schema.Author.Col(schema.Author.ID), table.Col(table.AuthorID),
		schema.Author.Col(schema.Author.DeletedAt),
	)

	authorJSON = fmt.Sprintf(
		"json_build_object('id', %s, 'shortId', %s, 'name', %s, 'slug', %s) AS author",
		schema.Author.Col(schema.Author.ID), schema.Author.Col(schema.Author.ShortID),
		schema.Author.Col(schema.Author.Name), schema.Author.Col(schema.Author.Slug),
	)

	// tagsJSON aggregates in a correlated subquery so the tag fan-out never
	// multiplies the root rows.
	tagsJSON = fmt.Sprintf(
		"COALESCE((SELECT json_agg(json_build_object('id', t.%[1]s, 'shortId', t.%[2]s, 'name', t.%[3]s) ORDER BY t.%[3]s)"+
			" FROM %[4]s qt JOIN %[5]s t ON t.%[1]s = qt.%[6]s AND t.%[7]s IS NULL"+
			" WHERE qt.%[8]s = %[9]s), '[]'::json) AS tags",
		schema.Tag.ID, schema.Tag.ShortID, schema.Tag.Name,
		schema.QuoteTag.Table, schema.Tag.Table, schema.QuoteTag.TagID, schema.Tag.DeletedAt,
		schema.QuoteTag.QuoteID, table.Col(table.ID),
	)

	returningColumns = "RETURNING " + table.ID + ", " + table.ShortID + ", " + table.AuthorID + ", " +
		table.Content + ", " + table.CreatedAt + ", " + table.UpdatedAt
)

// row is the scan target of hydrated selects. Author and tags arrive as JSON.
type row struct {
	ID        string    `db:"id"`
	ShortID   string    `db:"short_id"`
	AuthorID  string    `db:"author_id"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
	Author    []byte    `db:"author"`
	Tags      []byte    `db:"tags"`
}

func (r *row) toQuote() (*Quote, error) {
	quote := &Quote{
		ID:        r.ID,
		ShortID:   r.ShortID,
		AuthorID:  r.AuthorID,
		Content:   r.Content,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		Tags:      []TagSummary{},
	}

	if len(r.Author) > 0 {
		quote.Author = &AuthorSummary{}
		if err := json.Unmarshal(r.Author, quote.Author); err != nil {
			return nil, fmt.Errorf("decode quote author: %w", err)
		}
	}
	if len(r.Tags) > 0 {
		if err := json.Unmarshal(r.Tags, &quote.Tags); err != nil {
			return nil, fmt.Errorf("decode quote tags: %w", err)
		}
	}
	return quote, nil
}

func toQuotes(rows []*row) ([]*Quote, error) {
	quotes := make([]*Quote, 0, len(rows))
	for _, r := range rows {
		quote, err := r.toQuote()
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, quote)
	}
	return quotes, nil
}

type PostgresRepository struct {
	db postgres.Querier
}

func NewPostgresRepository(db postgres.Querier) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (repository *PostgresRepository) querier(context context.Context) postgres.Querier {
	return postgres.QuerierFromCtx(context, repository.db)
}

func (repository *PostgresRepository) hydratedSelect() sq.SelectBuilder {
	return postgres.Builder.
		Select(
			table.Col(table.ID), table.Col(table.ShortID), table.Col(table.AuthorID),
			table.Col(table.Content), table.Col(table.CreatedAt), table.Col(table.UpdatedAt),
		).
		Column(authorJSON).
		Column(tagsJSON).
		From(fromLive).
		Where(sq.Eq{table.Col(table.DeletedAt): nil})
}

// filtered applies the live-row predicate and f to builder.
func filtered(builder sq.SelectBuilder, f Filter) sq.SelectBuilder {
	builder = builder.Where(sq.Eq{table.Col(table.DeletedAt): nil})
	if predicates := BuildPredicates(f); len(predicates) > 0 {
		builder = builder.Where(predicates)
	}
	return builder
}

func (repository *PostgresRepository) selectRows(context context.Context, builder sq.SelectBuilder, action string) ([]*Quote, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, dberr.Wrap(err, "build_"+action)
	}

	var rows []*row
	if err := pgxscan.Select(context, repository.querier(context), &rows, query, args...); err != nil {
		return nil, dberr.Wrap(err, action)
	}
	return toQuotes(rows)
}

// Index returns one page of quotes matching params together with the number
// of distinct matching quotes.
func (repository *PostgresRepository) Index(context context.Context, params IndexParams) ([]*Quote, int, error) {
	countQuery, countArgs, err := filtered(
		postgres.Builder.Select("COUNT(DISTINCT "+table.Col(table.ID)+")").From(fromLive),
		params.Filter,
	).ToSql()
	if err != nil {
		return nil, 0, dberr.Wrap(err, "build_count_quotes")
	}

	var total int
	if err := repository.querier(context).QueryRow(context, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_quotes")
	}
	if total == 0 {
		return []*Quote{}, 0, nil
	}

	column, ok := sortColumns[params.SortBy]
	if !ok {
		column = sortColumns[SortCreatedAt]
	}

	builder := repository.hydratedSelect()
	if predicates := BuildPredicates(params.Filter); len(predicates) > 0 {
		builder = builder.Where(predicates)
	}
	builder = builder.
		OrderBy(column+" "+params.Order.SQL(), table.Col(table.ID)+" ASC").
		Limit(uint64(params.Page.Limit)).
		Offset(uint64(params.Page.Offset()))

	quotes, err := repository.selectRows(context, builder, "index_quotes")
	if err != nil {
		return nil, 0, err
	}
	return quotes, total, nil
}

// Random picks the ids first and hydrates them in a second query, so LIMIT
// counts quotes and not joined rows. The result keeps the random order.
func (repository *PostgresRepository) Random(context context.Context, f Filter, limit int) ([]*Quote, error) {
	if limit <= 0 {
		limit = 1
	}

	idQuery, idArgs, err := filtered(
		postgres.Builder.Select(table.Col(table.ID)).From(fromLive),
		f,
	).OrderBy("random()").Limit(uint64(limit)).ToSql()
	if err != nil {
		return nil, dberr.Wrap(err, "build_random_quote_ids")
	}

	var ids []string
	if err := pgxscan.Select(context, repository.querier(context), &ids, idQuery, idArgs...); err != nil {
		return nil, dberr.Wrap(err, "random_quote_ids")
	}
	if len(ids) == 0 {
		return []*Quote{}, nil
	}

	quotes, err := repository.selectRows(context,
		repository.hydratedSelect().Where(table.Col(table.ID)+" = ANY(?)", ids),
		"hydrate_random_quotes",
	)
	if err != nil {
		return nil, err
	}

	position := make(map[string]int, len(ids))
	for i, id := range ids {
		position[id] = i
	}
	ordered := make([]*Quote, len(ids))
	for _, quote := range quotes {
		ordered[position[quote.ID]] = quote
	}

	// A quote deleted between the two passes leaves a hole.
	result := ordered[:0]
	for _, quote := range ordered {
		if quote != nil {
			result = append(result, quote)
		}
	}
	return result, nil
}

func (repository *PostgresRepository) GetByID(context context.Context, id string, mode dberr.FindMode) (*Quote, error) {
	return repository.getOne(context, sq.Eq{table.Col(table.ID): id}, mode, "get_quote_by_id")
}

func (repository *PostgresRepository) GetByShortID(context context.Context, shortID string, mode dberr.FindMode) (*Quote, error) {
	return repository.getOne(context, sq.Eq{table.Col(table.ShortID): shortID}, mode, "get_quote_by_short_id")
}

func (repository *PostgresRepository) getOne(context context.Context, where sq.Sqlizer, mode dberr.FindMode, action string) (*Quote, error) {
	query, args, err := repository.hydratedSelect().Where(where).ToSql()
	if err != nil {
		return nil, dberr.Wrap(err, action)
	}

	found := &row{}
	if err := pgxscan.Get(context, repository.querier(context), found, query, args...); err != nil {
		_, err = dberr.Resolve(found, err, mode, "Quote", action)
		return nil, err
	}
	return found.toQuote()
}

// Create inserts q and fills in its timestamps.
func (repository *PostgresRepository) Create(context context.Context, q *Quote) error {
	query, args, err := postgres.Builder.
		Insert(table.Table).
		Columns(table.ID, table.ShortID, table.AuthorID, table.Content).
		Values(q.ID, q.ShortID, q.AuthorID, q.Content).
		Suffix("RETURNING " + table.CreatedAt + ", " + table.UpdatedAt).
		ToSql()
	if err != nil {
		return dberr.Wrap(err, "build_create_quote")
	}

	err = repository.querier(context).QueryRow(context, query, args...).Scan(&q.CreatedAt, &q.UpdatedAt)
	return dberr.Wrap(err, "create_quote")
}

func (repository *PostgresRepository) UpdateContent(context context.Context, id, content string) error {
	query, args, err := postgres.Builder.
		Update(table.Table).
		Set(table.Content, content).
		Set(table.UpdatedAt, sq.Expr("now()")).
		Where(sq.Eq{table.ID: id, table.DeletedAt: nil}).
		ToSql()
	if err != nil {
		return dberr.Wrap(err, "build_update_quote")
	}

	tag, err := repository.querier(context).Exec(context, query, args...)
	if err != nil {
		return dberr.Wrap(err, "update_quote")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Quote")
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
		return dberr.Wrap(err, "build_delete_quote")
	}

	tag, err := repository.querier(context).Exec(context, query, args...)
	if err != nil {
		return dberr.Wrap(err, "delete_quote")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Quote")
	}
	return nil
}

func (repository *PostgresRepository) BulkUpsert(context context.Context, quotes []*Quote) ([]*Quote, error) {
	if len(quotes) == 0 {
		return []*Quote{}, nil
	}

	insert := postgres.Builder.
		Insert(table.Table).
		Columns(table.ID, table.ShortID, table.AuthorID, table.Content).
		Suffix("ON CONFLICT (md5(" + table.Content + ")) DO NOTHING").
		Suffix(returningColumns)
	for _, q := range quotes {
		insert = insert.Values(q.ID, q.ShortID, q.AuthorID, q.Content)
	}

	query, args, err := insert.ToSql()
	if err != nil {
		return nil, dberr.Wrap(err, "build_bulk_upsert_quotes")
	}

	var rows []*row
	if err := pgxscan.Select(context, repository.querier(context), &rows, query, args...); err != nil {
		return nil, dberr.Wrap(err, "bulk_upsert_quotes")
	}
	return toQuotes(rows)
}
