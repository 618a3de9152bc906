package infra

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNaturalLess(t *testing.T) {
	less := LessFunc[int](NaturalLess[int])
	assert.True(t, less(1, 2))
	assert.False(t, less(2, 1))
	assert.False(t, less(2, 2))
	assert.True(t, less.Equal(3, 3))
	assert.False(t, less.Equal(3, 4))

	sless := LessFunc[string](NaturalLess[string])
	assert.True(t, sless("a", "b"))
}

func TestLessFuncReverse(t *testing.T) {
	desc := LessFunc[uint64](NaturalLess[uint64]).Reverse()
	keys := []uint64{5, 1, 9, 3}
	sort.Slice(keys, func(i, j int) bool {
		return desc(keys[i], keys[j])
	})
	require.Equal(t, []uint64{9, 5, 3, 1}, keys)

	var nilLess LessFunc[int]
	require.Nil(t, nilLess.Reverse())
}
