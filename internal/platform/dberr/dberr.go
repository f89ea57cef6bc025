// Copyright (c) 2026 Quotable. All rights reserved.

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/kurokeita/quotable/internal/platform/apperr"
)

// PostgreSQL SQLSTATE codes that map to client errors.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeStringTooLong       = "22001"
)

var (
	// ErrNotFound is a standard error returned when a queried row doesn't exist.
	ErrNotFound = apperr.NotFound("Resource")
)

// FindMode controls how single-row lookups report a missing row.
type FindMode bool

const (
	// FindOrFail turns a missing row into a NOT_FOUND error.
	FindOrFail FindMode = true
	// FindOptional returns (nil, nil) for a missing row.
	FindOptional FindMode = false
)

// Resolve applies mode to the result of a single-row lookup for resource.
//
// Errors other than "no rows" are passed through [Wrap].
func Resolve[T any](value *T, err error, mode FindMode, resource, action string) (*T, error) {
	if err == nil {
		return value, nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		if mode == FindOrFail {
			return nil, apperr.NotFound(resource)
		}
		return nil, nil
	}

	return nil, Wrap(err, action)
}

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the error type.
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	// Already classified further down the stack.
	if apperr.IsAppError(err) {
		return err
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return apperr.Conflict(conflictMessage(pgErr)).WithCause(err)
		case codeForeignKeyViolation:
			return apperr.Unprocessable("Referenced resource does not exist").WithCause(err)
		case codeCheckViolation, codeStringTooLong:
			return apperr.ValidationError("Value violates a storage constraint").WithCause(err)
		}
	}

	return apperr.Internal(errors.Join(errors.New(action), err))
}

func conflictMessage(pgErr *pgconn.PgError) string {
	switch pgErr.ConstraintName {
	case "authors_slug_active_key":
		return "An author with this name already exists"
	case "quotes_content_key":
		return "A quote with this content already exists"
	case "tags_name_active_key":
		return "A tag with this name already exists"
	}
	return "Resource already exists"
}
