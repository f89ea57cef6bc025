// Copyright (c) 2026 Quotable. All rights reserved.

/*
Package convert provides type-conversion utilities for query parameters.

Missing parameters map to nil, malformed ones to an error, so handlers can
tell "not supplied" apart from "supplied but invalid".
*/
package convert

import (
	"strconv"
)

// OptionalInt parses s as a base-10 integer. An empty string yields nil.
func OptionalInt(s string) (*int, error) {
	if s == "" {
		return nil, nil
	}

	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
