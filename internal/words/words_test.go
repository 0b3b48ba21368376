package words

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBank_LoadsEmbeddedList(t *testing.T) {
	b := NewBank()
	require.Positive(t, b.Len())
}

func TestPick_DistinctWords(t *testing.T) {
	b := NewBank()

	picked := b.Pick(3)
	require.Len(t, picked, 3)
	seen := make(map[string]struct{}, len(picked))
	for _, w := range picked {
		_, dup := seen[w]
		assert.False(t, dup, "duplicate word %q", w)
		seen[w] = struct{}{}
		assert.NotEmpty(t, w)
	}
}

func TestPick_MoreThanAvailable(t *testing.T) {
	b := &Bank{words: []string{"cat", "dog"}}
	assert.Len(t, b.Pick(5), 2)
	assert.Empty(t, (&Bank{}).Pick(3))
}
