package tag_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurokeita/quotable/internal/core/tag"
	"github.com/kurokeita/quotable/internal/platform/postgres"
	"github.com/kurokeita/quotable/internal/platform/postgres/pgtest"
	"github.com/kurokeita/quotable/pkg/pagination"
	"github.com/kurokeita/quotable/pkg/shortid"
	"github.com/kurokeita/quotable/pkg/uuid"
)

func seedQuote(t *testing.T, pool *pgxpool.Pool, content string) string {
	t.Helper()
	ctx := context.Background()

	authorID := uuid.New()
	_, err := pool.Exec(ctx,
		`INSERT INTO authors (id, short_id, name, slug) VALUES ($1, $2, $3, $4)`,
		authorID, shortid.New(), "Seneca "+content, "seneca-"+shortid.New())
	require.NoError(t, err)

	id := uuid.New()
	_, err = pool.Exec(ctx,
		`INSERT INTO quotes (id, short_id, author_id, content) VALUES ($1, $2, $3, $4)`,
		id, shortid.New(), authorID, content)
	require.NoError(t, err)

	return id
}

func tagNames(t *testing.T, pool *pgxpool.Pool, quoteID string) []string {
	t.Helper()

	rows, err := pool.Query(context.Background(),
		`SELECT t.name FROM quote_tags qt JOIN tags t ON t.id = qt.tag_id WHERE qt.quote_id = $1 ORDER BY t.name`, quoteID)
	require.NoError(t, err)
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		names = append(names, name)
	}
	require.NoError(t, rows.Err())
	return names
}

func TestReconciler_Integration(t *testing.T) {
	pool := pgtest.Setup(t)
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reconciler := tag.NewReconciler(pool, logger)

	quoteID := seedQuote(t, pool, "Luck is what happens when preparation meets opportunity.")

	t.Run("sync_is_idempotent", func(t *testing.T) {
		first, err := reconciler.Sync(ctx, quoteID, []string{"a", "b"})
		require.NoError(t, err)
		assert.Equal(t, tag.SyncResult{Inserted: 2}, first)

		second, err := reconciler.Sync(ctx, quoteID, []string{"a", "b"})
		require.NoError(t, err)
		assert.Equal(t, tag.SyncResult{}, second)
		assert.Equal(t, []string{"a", "b"}, tagNames(t, pool, quoteID))
	})

	t.Run("nil_leaves_associations", func(t *testing.T) {
		_, err := reconciler.Sync(ctx, quoteID, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, tagNames(t, pool, quoteID))
	})

	t.Run("symmetric_difference", func(t *testing.T) {
		result, err := reconciler.Sync(ctx, quoteID, []string{"b", "c"})
		require.NoError(t, err)
		assert.Equal(t, tag.SyncResult{Inserted: 1, Deleted: 1}, result)
		assert.Equal(t, []string{"b", "c"}, tagNames(t, pool, quoteID))
	})

	t.Run("empty_removes_all", func(t *testing.T) {
		result, err := reconciler.Sync(ctx, quoteID, []string{})
		require.NoError(t, err)
		assert.Equal(t, 2, result.Deleted)
		assert.Empty(t, tagNames(t, pool, quoteID))
	})

	t.Run("rolls_back_with_transaction", func(t *testing.T) {
		manager := postgres.NewTxManager(pool, logger)

		err := manager.RunInTx(ctx, func(ctx context.Context) error {
			if _, err := reconciler.Sync(ctx, quoteID, []string{"rolled-back"}); err != nil {
				return err
			}
			return assert.AnError
		})

		require.ErrorIs(t, err, assert.AnError)
		assert.Empty(t, tagNames(t, pool, quoteID))
	})

	t.Run("bulk_sync_appends", func(t *testing.T) {
		other := seedQuote(t, pool, "We suffer more often in imagination than in reality.")

		created, err := reconciler.BulkSync(ctx, map[string][]string{
			quoteID: {"stoicism", "b"},
			other:   {"stoicism"},
		})
		require.NoError(t, err)
		assert.Equal(t, 3, created)

		created, err = reconciler.BulkSync(ctx, map[string][]string{other: {"stoicism"}})
		require.NoError(t, err)
		assert.Zero(t, created)

		assert.Equal(t, []string{"b", "stoicism"}, tagNames(t, pool, quoteID))
	})

	t.Run("repository_counts_quotes", func(t *testing.T) {
		repository := tag.NewPostgresRepository(pool)

		tags, err := repository.List(ctx, tag.ListParams{SortBy: tag.SortQuotesCount, Order: pagination.OrderDesc})
		require.NoError(t, err)
		require.NotEmpty(t, tags)
		assert.Equal(t, "stoicism", tags[0].Name)
		assert.EqualValues(t, 2, tags[0].QuotesCount)
	})
}
