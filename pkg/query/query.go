// Package query parses list-valued URL query parameters.
package query

import (
	"strings"
)

// StringSlice parses a single comma-separated query string
// into a trimmed slice of strings.
func StringSlice(val string) []string {
	return Split(val, ",")
}

// Split splits val on sep, trims every element and drops empty ones.
func Split(val, sep string) []string {
	if val == "" {
		return nil
	}
	var res []string
	for _, v := range strings.Split(val, sep) {
		clean := strings.TrimSpace(v)
		if clean != "" {
			res = append(res, clean)
		}
	}
	return res
}
