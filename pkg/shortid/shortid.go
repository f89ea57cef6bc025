// Copyright (c) 2026 Quotable. All rights reserved.

// Package shortid generates the short public tokens exposed as "shortId".
//
// Tokens are sqids encodings of random 64-bit values, padded to at least
// [MinLength] characters. They are not decoded anywhere; uniqueness is
// enforced by a unique index on each table.
package shortid

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"

	"github.com/sqids/sqids-go"
)

// MinLength is the minimum token length.
const MinLength = 10

// Generator produces short tokens.
type Generator struct {
	encoder *sqids.Sqids
}

// NewGenerator builds a generator over the given alphabet. An empty alphabet
// selects the sqids default.
func NewGenerator(alphabet string) (*Generator, error) {
	encoder, err := sqids.New(sqids.Options{
		Alphabet:  alphabet,
		MinLength: MinLength,
	})
	if err != nil {
		return nil, fmt.Errorf("shortid: %w", err)
	}
	return &Generator{encoder: encoder}, nil
}

// Next returns a fresh token.
func (g *Generator) Next() string {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic("shortid: entropy source failed: " + err.Error())
	}

	token, err := g.encoder.Encode([]uint64{binary.BigEndian.Uint64(buf[:])})
	if err != nil {
		panic("shortid: encode failed: " + err.Error())
	}
	return token
}

var defaultGenerator = func() *Generator {
	g, err := NewGenerator("")
	if err != nil {
		panic(err)
	}
	return g
}()

// New returns a token from the package default generator.
func New() string {
	return defaultGenerator.Next()
}
