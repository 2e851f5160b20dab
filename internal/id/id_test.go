package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	generated, err := Generate(PrefixStory)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(generated, "sty-"))
	assert.Greater(t, len(generated), len("sty-"))
}

func TestGenerate_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for range 1000 {
		generated := MustGenerate(PrefixChapter)
		assert.False(t, seen[generated], "duplicate ID %s", generated)
		seen[generated] = true
	}
}
