// Copyright (c) 2026 Quotable. All rights reserved.

// Package pagination provides shared types and helpers for API list endpoints.
//
// # Overview
//
// Pages are zero-indexed. The page size is restricted to [AllowedLimits] so
// that clients cannot request arbitrarily large result sets.
package pagination

import (
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"
)

const (
	// DefaultLimit is the number of items per page if not specified.
	DefaultLimit = 10
	// MaxLimit is the largest value in [AllowedLimits].
	MaxLimit = 100
	// DefaultPage is the first page (0-indexed).
	DefaultPage = 0
)

// AllowedLimits enumerates the accepted page sizes.
var AllowedLimits = []int{10, 25, 50, 100}

// Order is a sort direction.
type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// SQL returns the direction keyword. Anything unknown sorts ascending.
func (o Order) SQL() string {
	if o == OrderDesc {
		return "DESC"
	}
	return "ASC"
}

// ParseOrder parses "asc" or "desc" (case-insensitive). Empty means ascending.
func ParseOrder(raw string) (Order, error) {
	switch Order(strings.ToLower(raw)) {
	case "", OrderAsc:
		return OrderAsc, nil
	case OrderDesc:
		return OrderDesc, nil
	}
	return "", fmt.Errorf("must be one of: asc, desc")
}

// Params holds the parsed page and limit from a request's query string.
type Params struct {
	Page  int
	Limit int
}

// Normalize replaces out-of-range values with the defaults.
func (p Params) Normalize() Params {
	if p.Page < 0 {
		p.Page = DefaultPage
	}
	if !slices.Contains(AllowedLimits, p.Limit) {
		p.Limit = DefaultLimit
	}
	return p
}

// Offset returns the SQL OFFSET value derived from [Page] and [Limit].
func (p Params) Offset() int {
	return p.Page * p.Limit
}

// Meta is the pagination metadata included in API list responses.
type Meta struct {
	Total           int  `json:"total"`
	Page            int  `json:"page"`
	LastPage        int  `json:"lastPage"`
	HasNextPage     bool `json:"hasNextPage"`
	HasPreviousPage bool `json:"hasPreviousPage"`
}

// NewMeta constructs pagination metadata for a response.
//
// LastPage is never negative, so an empty result reports page 0 as the last one.
func NewMeta(params Params, total int) Meta {
	lastPage := 0
	if params.Limit > 0 && total > 0 {
		lastPage = (total+params.Limit-1)/params.Limit - 1
	}

	return Meta{
		Total:           total,
		Page:            params.Page,
		LastPage:        lastPage,
		HasNextPage:     params.Page < lastPage,
		HasPreviousPage: params.Page > 0,
	}
}

// Page is a slice of results together with its metadata.
type Page[T any] struct {
	Data     []T  `json:"data"`
	Metadata Meta `json:"metadata"`
}

// FieldError describes a rejected query parameter.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string { return e.Field + ": " + e.Message }

// FromRequest parses "page" and "limit" query parameters from an HTTP request.
//
// Unlike [Params.Normalize], malformed values are reported instead of clamped.
func FromRequest(r *http.Request) (Params, error) {
	params := Params{Page: DefaultPage, Limit: DefaultLimit}
	query := r.URL.Query()

	if raw := query.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 0 {
			return params, &FieldError{Field: "page", Message: "must be an integer >= 0"}
		}
		params.Page = page
	}

	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || !slices.Contains(AllowedLimits, limit) {
			return params, &FieldError{Field: "limit", Message: "must be one of: 10, 25, 50, 100"}
		}
		params.Limit = limit
	}

	return params, nil
}
