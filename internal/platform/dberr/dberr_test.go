package dberr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurokeita/quotable/internal/platform/apperr"
	"github.com/kurokeita/quotable/internal/platform/dberr"
)

func TestWrap(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{"no_rows", pgx.ErrNoRows, "NOT_FOUND", http.StatusNotFound},
		{"wrapped_no_rows", fmt.Errorf("scan: %w", pgx.ErrNoRows), "NOT_FOUND", http.StatusNotFound},
		{"unique", &pgconn.PgError{Code: "23505", ConstraintName: "quotes_content_key"}, "CONFLICT", http.StatusConflict},
		{"foreign_key", &pgconn.PgError{Code: "23503"}, "UNPROCESSABLE", http.StatusUnprocessableEntity},
		{"check", &pgconn.PgError{Code: "23514"}, "VALIDATION_ERROR", http.StatusBadRequest},
		{"too_long", &pgconn.PgError{Code: "22001"}, "VALIDATION_ERROR", http.StatusBadRequest},
		{"other_pg", &pgconn.PgError{Code: "42P01"}, "INTERNAL_ERROR", http.StatusInternalServerError},
		{"plain", errors.New("connection reset"), "INTERNAL_ERROR", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ae := apperr.As(dberr.Wrap(tt.err, "test_action"))
			require.NotNil(t, ae)
			assert.Equal(t, tt.wantCode, ae.Code)
			assert.Equal(t, tt.wantStatus, ae.HTTPStatus)
		})
	}
}

func TestWrap_Nil(t *testing.T) {
	t.Parallel()
	assert.NoError(t, dberr.Wrap(nil, "noop"))
}

func TestWrap_KeepsAppError(t *testing.T) {
	t.Parallel()

	original := apperr.NotFound("Author")
	assert.Same(t, original, dberr.Wrap(original, "noop"))
}

func TestWrap_ConflictMessage(t *testing.T) {
	t.Parallel()

	err := dberr.Wrap(&pgconn.PgError{Code: "23505", ConstraintName: "authors_slug_active_key"}, "create_author")
	assert.Equal(t, "An author with this name already exists", err.Error())
}

func TestResolve(t *testing.T) {
	t.Parallel()

	value := "found"

	got, err := dberr.Resolve(&value, nil, dberr.FindOrFail, "Quote", "get_quote")
	require.NoError(t, err)
	assert.Equal(t, "found", *got)

	got, err = dberr.Resolve[string](nil, pgx.ErrNoRows, dberr.FindOptional, "Quote", "get_quote")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = dberr.Resolve[string](nil, pgx.ErrNoRows, dberr.FindOrFail, "Quote", "get_quote")
	require.Error(t, err)
	assert.Equal(t, "Quote not found", err.Error())

	_, err = dberr.Resolve[string](nil, errors.New("boom"), dberr.FindOptional, "Quote", "get_quote")
	assert.Equal(t, "INTERNAL_ERROR", apperr.As(err).Code)
}
