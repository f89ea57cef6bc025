// Copyright (c) 2026 Quotable. All rights reserved.

/*
Package apperr defines the error taxonomy of the API.

An [AppError] carries a machine-readable code, a client-safe message and the
HTTP status it maps to. Storage errors are translated into AppErrors by
package dberr; handlers render them with respond.Error.

Taxonomy:

  - NOT_FOUND: lookup by id, slug or shortId found nothing.
  - VALIDATION_ERROR: malformed input, with per-field details.
  - CONFLICT: a natural key (slug, content, name) is already taken.
  - UNPROCESSABLE: the payload references something that does not exist.
  - INTERNAL_ERROR: anything unexpected. The cause is logged, never sent.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is the error type every layer returns to the transport.
//
// Cause never leaves the process: it is logged by respond.Error and
// excluded from the JSON body.
type AppError struct {
	Code       string       `json:"code"`
	Message    string       `json:"error"`
	HTTPStatus int          `json:"-"`
	Cause      error        `json:"-"`
	Details    []FieldError `json:"details,omitempty"`
}

// FieldError names one rejected input field, by its JSON name.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause returns a copy of e carrying cause for server-side logging.
func (e *AppError) WithCause(cause error) *AppError {
	clone := *e
	clone.Cause = cause
	return &clone
}

// newError builds an [AppError] for one row of the taxonomy.
func newError(code string, status int, msg string) *AppError {
	return &AppError{Code: code, Message: msg, HTTPStatus: status}
}

// # Client Errors (4xx)

// NotFound creates a 404 [AppError] for a named resource.
//
// Example:
//
//	apperr.NotFound("Quote") // Returns "Quote not found"
func NotFound(resource string) *AppError {
	return newError("NOT_FOUND", http.StatusNotFound, resource+" not found")
}

// Unauthorized creates a 401 [AppError]. Only the write guard emits it.
func Unauthorized(msg string) *AppError {
	return newError("UNAUTHORIZED", http.StatusUnauthorized, msg)
}

// Conflict creates a 409 [AppError] for a natural key that is already taken.
func Conflict(msg string) *AppError {
	return newError("CONFLICT", http.StatusConflict, msg)
}

// ValidationError creates a 400 [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	e := newError("VALIDATION_ERROR", http.StatusBadRequest, msg)
	e.Details = details
	return e
}

// RateLimited creates a 429 [AppError].
func RateLimited(retryAfterSeconds int) *AppError {
	return newError("RATE_LIMITED", http.StatusTooManyRequests,
		fmt.Sprintf("Too many requests. Try again in %ds.", retryAfterSeconds))
}

// Unprocessable creates a 422 [AppError] for a payload that parses but
// cannot be used, such as an upload file that is not JSON.
func Unprocessable(msg string) *AppError {
	return newError("UNPROCESSABLE", http.StatusUnprocessableEntity, msg)
}

// # Server Errors (5xx)

// Internal creates a 500 [AppError]. The cause is kept for logging only.
func Internal(cause error) *AppError {
	e := newError("INTERNAL_ERROR", http.StatusInternalServerError, "An unexpected error occurred")
	e.Cause = cause
	return e
}

// IsAppError reports whether err (or any error in its chain) is an [*AppError].
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}
