// Copyright (c) 2026 Quotable. All rights reserved.

// Package slug generates ASCII URL slugs from arbitrary Unicode strings.
//
// # Usage
//
// Author slugs are the human-readable secondary key ("albert-einstein"). The
// same function is applied when writing an author and when filtering quotes
// by author, so both sides always agree on the normalized form.
package slug

import (
	"regexp"
	"strings"

	gosimple "github.com/gosimple/slug"
	"golang.org/x/text/unicode/norm"
)

// multiHyphen collapses runs of separators left after replacing underscores.
var multiHyphen = regexp.MustCompile(`-{2,}`)

// From converts an arbitrary Unicode string into a URL-safe ASCII slug.
//
// # Transformation Pipeline
//
//  1. NFKC folds compatibility forms (full-width letters, ligatures).
//  2. gosimple/slug transliterates to ASCII ("Søren" → "soren",
//     "Gauß" → "gauss", "Лев" → "lev"), lowercases, and hyphenates.
//  3. Underscores become hyphens so the alphabet is [a-z0-9-].
//
// The output is a fixed point: From(From(s)) == From(s). An input with no
// transliterable letter or digit yields "".
func From(s string) string {
	result := gosimple.MakeLang(norm.NFKC.String(s), "en")

	result = strings.ReplaceAll(result, "_", "-")
	result = multiHyphen.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}
