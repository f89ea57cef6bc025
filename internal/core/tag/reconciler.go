package tag

import (
	"context"
	"log/slog"
	"maps"
	"slices"

	sq "github.com/Masterminds/squirrel"

	"github.com/kurokeita/quotable/internal/platform/database/schema"
	"github.com/kurokeita/quotable/internal/platform/dberr"
	"github.com/kurokeita/quotable/internal/platform/postgres"
	"github.com/kurokeita/quotable/pkg/shortid"
	"github.com/kurokeita/quotable/pkg/slice"
	"github.com/kurokeita/quotable/pkg/uuid"
)

// upsertChunkSize bounds the number of names per tag upsert statement.
const upsertChunkSize = 500

// SyncResult reports how many associations a [Reconciler.Sync] call wrote.
type SyncResult struct {
	Inserted int
	Deleted  int
}

// Changed reports whether any association was written.
func (r SyncResult) Changed() bool {
	return r.Inserted > 0 || r.Deleted > 0
}

// Reconciler keeps the quote_tags association table in line with the tag
// names requested for a quote.
//
// It runs on the transaction carried in the context when there is one, so a
// quote write and its tag sync commit or roll back together.
type Reconciler struct {
	db     postgres.Querier
	logger *slog.Logger
}

// NewReconciler creates a new [Reconciler].
func NewReconciler(db postgres.Querier, logger *slog.Logger) *Reconciler {
	return &Reconciler{db: db, logger: logger}
}

// Sync makes the tags of quoteID exactly match names.
//
//   - nil names: nothing changes.
//   - empty names (after normalization): every association is removed.
//   - otherwise missing tags are created, missing associations inserted and
//     stale associations deleted. Nothing else is written, so a repeated
//     call with the same names reports a zero result.
func (reconciler *Reconciler) Sync(context context.Context, quoteID string, names []string) (SyncResult, error) {
	if names == nil {
		return SyncResult{}, nil
	}

	querier := postgres.QuerierFromCtx(context, reconciler.db)
	desired := Normalize(names)

	if len(desired) == 0 {
		query, args, err := postgres.Builder.
			Delete(schema.QuoteTag.Table).
			Where(sq.Eq{schema.QuoteTag.QuoteID: quoteID}).
			ToSql()
		if err != nil {
			return SyncResult{}, dberr.Wrap(err, "build_clear_quote_tags")
		}

		tag, err := querier.Exec(context, query, args...)
		if err != nil {
			return SyncResult{}, dberr.Wrap(err, "clear_quote_tags")
		}
		return SyncResult{Deleted: int(tag.RowsAffected())}, nil
	}

	ids, err := reconciler.ensure(context, querier, desired)
	if err != nil {
		return SyncResult{}, err
	}

	current, err := reconciler.currentTagIDs(context, querier, quoteID)
	if err != nil {
		return SyncResult{}, err
	}

	desiredIDs := slice.Filter(slice.Map(desired, func(name string) string { return ids[name] }), isResolved)
	toInsert := slice.Difference(desiredIDs, current)
	toDelete := slice.Difference(current, desiredIDs)

	var result SyncResult

	if len(toInsert) > 0 {
		insert := postgres.Builder.
			Insert(schema.QuoteTag.Table).
			Columns(schema.QuoteTag.QuoteID, schema.QuoteTag.TagID).
			Suffix("ON CONFLICT DO NOTHING")
		for _, tagID := range toInsert {
			insert = insert.Values(quoteID, tagID)
		}

		query, args, err := insert.ToSql()
		if err != nil {
			return SyncResult{}, dberr.Wrap(err, "build_insert_quote_tags")
		}

		tag, err := querier.Exec(context, query, args...)
		if err != nil {
			return SyncResult{}, dberr.Wrap(err, "insert_quote_tags")
		}
		result.Inserted = int(tag.RowsAffected())
	}

	if len(toDelete) > 0 {
		query, args, err := postgres.Builder.
			Delete(schema.QuoteTag.Table).
			Where(sq.Eq{schema.QuoteTag.QuoteID: quoteID, schema.QuoteTag.TagID: toDelete}).
			ToSql()
		if err != nil {
			return SyncResult{}, dberr.Wrap(err, "build_delete_quote_tags")
		}

		tag, err := querier.Exec(context, query, args...)
		if err != nil {
			return SyncResult{}, dberr.Wrap(err, "delete_quote_tags")
		}
		result.Deleted = int(tag.RowsAffected())
	}

	if result.Changed() {
		reconciler.logger.DebugContext(context, "tags_synced",
			slog.String("quote_id", quoteID),
			slog.Int("inserted", result.Inserted),
			slog.Int("deleted", result.Deleted),
		)
	}

	return result, nil
}

// BulkSync attaches tags to many quotes at once and returns the number of
// associations created.
//
// It never removes associations. Tag names are upserted once for the whole
// batch and the association rows are written in a single statement.
func (reconciler *Reconciler) BulkSync(context context.Context, tagsByQuote map[string][]string) (int, error) {
	var names []string
	for _, quoteID := range slices.Sorted(maps.Keys(tagsByQuote)) {
		names = append(names, tagsByQuote[quoteID]...)
	}
	names = Normalize(names)
	if len(names) == 0 {
		return 0, nil
	}

	querier := postgres.QuerierFromCtx(context, reconciler.db)

	ids := make(map[string]string, len(names))
	for _, chunk := range slice.Chunk(names, upsertChunkSize) {
		chunkIDs, err := reconciler.ensure(context, querier, chunk)
		if err != nil {
			return 0, err
		}
		maps.Copy(ids, chunkIDs)
	}

	var quoteIDs, tagIDs []string
	for _, quoteID := range slices.Sorted(maps.Keys(tagsByQuote)) {
		for _, name := range Normalize(tagsByQuote[quoteID]) {
			if !isResolved(ids[name]) {
				continue
			}
			quoteIDs = append(quoteIDs, quoteID)
			tagIDs = append(tagIDs, ids[name])
		}
	}

	if len(quoteIDs) == 0 {
		return 0, nil
	}

	tag, err := querier.Exec(context, bulkAssociateSQL, quoteIDs, tagIDs)
	if err != nil {
		return 0, dberr.Wrap(err, "bulk_insert_quote_tags")
	}

	reconciler.logger.DebugContext(context, "tags_bulk_synced",
		slog.Int("quotes", len(tagsByQuote)),
		slog.Int("tags", len(names)),
		slog.Int64("associations", tag.RowsAffected()),
	)

	return int(tag.RowsAffected()), nil
}

var bulkAssociateSQL = "INSERT INTO " + schema.QuoteTag.Table +
	" (" + schema.QuoteTag.QuoteID + ", " + schema.QuoteTag.TagID + ")" +
	" SELECT * FROM unnest($1::uuid[], $2::uuid[]) ON CONFLICT DO NOTHING"

// ensure returns a name→id map for names, inserting the tags that do not
// exist yet. Concurrent inserts of the same name resolve through the second
// lookup instead of failing on the unique index.
func (reconciler *Reconciler) ensure(context context.Context, querier postgres.Querier, names []string) (map[string]string, error) {
	insert := postgres.Builder.
		Insert(schema.Tag.Table).
		Columns(schema.Tag.ID, schema.Tag.ShortID, schema.Tag.Name).
		Suffix("ON CONFLICT (" + schema.Tag.Name + ") WHERE " + schema.Tag.DeletedAt + " IS NULL DO NOTHING").
		Suffix("RETURNING " + schema.Tag.ID + ", " + schema.Tag.Name)
	for _, name := range names {
		insert = insert.Values(uuid.New(), shortid.New(), name)
	}

	query, args, err := insert.ToSql()
	if err != nil {
		return nil, dberr.Wrap(err, "build_upsert_tags")
	}

	ids := make(map[string]string, len(names))
	if err := collectIDs(context, querier, query, args, ids, "upsert_tags"); err != nil {
		return nil, err
	}

	missing := slice.Filter(names, func(name string) bool {
		_, ok := ids[name]
		return !ok
	})
	if len(missing) == 0 {
		return ids, nil
	}

	query, args, err = postgres.Builder.
		Select(schema.Tag.ID, schema.Tag.Name).
		From(schema.Tag.Table).
		Where(sq.Eq{schema.Tag.Name: missing, schema.Tag.DeletedAt: nil}).
		ToSql()
	if err != nil {
		return nil, dberr.Wrap(err, "build_resolve_tags")
	}

	if err := collectIDs(context, querier, query, args, ids, "resolve_tags"); err != nil {
		return nil, err
	}

	return ids, nil
}

func (reconciler *Reconciler) currentTagIDs(context context.Context, querier postgres.Querier, quoteID string) ([]string, error) {
	query, args, err := postgres.Builder.
		Select(schema.QuoteTag.TagID).
		From(schema.QuoteTag.Table).
		Where(sq.Eq{schema.QuoteTag.QuoteID: quoteID}).
		ToSql()
	if err != nil {
		return nil, dberr.Wrap(err, "build_current_quote_tags")
	}

	rows, err := querier.Query(context, query, args...)
	if err != nil {
		return nil, dberr.Wrap(err, "current_quote_tags")
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, dberr.Wrap(err, "scan_quote_tag")
		}
		ids = append(ids, id)
	}

	return ids, dberr.Wrap(rows.Err(), "current_quote_tags")
}

func isResolved(id string) bool { return id != "" }

// collectIDs runs a query returning (id, name) rows into ids.
func collectIDs(context context.Context, querier postgres.Querier, query string, args []any, ids map[string]string, action string) error {
	rows, err := querier.Query(context, query, args...)
	if err != nil {
		return dberr.Wrap(err, action)
	}
	defer rows.Close()

	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return dberr.Wrap(err, action)
		}
		ids[name] = id
	}

	return dberr.Wrap(rows.Err(), action)
}
