package shortid_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurokeita/quotable/pkg/shortid"
)

func TestNew_LengthAndUniqueness(t *testing.T) {
	seen := make(map[string]struct{}, 1000)

	for range 1000 {
		token := shortid.New()
		assert.GreaterOrEqual(t, len(token), shortid.MinLength)
		assert.LessOrEqual(t, len(token), 16)

		_, dup := seen[token]
		require.False(t, dup, "duplicate token %q", token)
		seen[token] = struct{}{}
	}
}

func TestNewGenerator_CustomAlphabet(t *testing.T) {
	generator, err := shortid.NewGenerator("abcdefghijklmnopqrstuvwxyz0123456789")
	require.NoError(t, err)

	token := generator.Next()
	for _, r := range token {
		assert.Contains(t, "abcdefghijklmnopqrstuvwxyz0123456789", string(r))
	}
}

func TestNewGenerator_RejectsShortAlphabet(t *testing.T) {
	_, err := shortid.NewGenerator("ab")
	assert.Error(t, err)
}
