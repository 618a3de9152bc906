package tree

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRBNode_NilIsBlack(t *testing.T) {
	var n *RBNode[int, string]
	require.Equal(t, Black, n.Color())
	require.True(t, n.isBlack())
	require.False(t, n.isRed())
	require.Equal(t, "Black", n.Color().String())
	require.Equal(t, "Red", Red.String())
}

func TestRBTree_AscendingInsert(t *testing.T) {
	tree := NewRBTree[int, string]()
	for i := 1; i <= 7; i++ {
		require.NoError(t, tree.Insert(i, "v"))
		require.NoError(t, tree.Validate())
		require.Equal(t, Black, tree.Root().Color())
	}
	require.Equal(t, int64(7), tree.Len())
	require.Equal(t, 2, tree.Root().Key())
	require.Equal(t, []int{1, 2, 3, 4, 5, 6, 7}, tree.Keys())
}

func TestRBTree_InsertFixupCases(t *testing.T) {
	tree := NewRBTree[int, string]()
	require.NoError(t, tree.Insert(10, "v"))
	require.NoError(t, tree.Insert(5, "v"))
	require.NoError(t, tree.Insert(15, "v"))
	require.Equal(t, Red, tree.Root().left.Color())
	require.Equal(t, Red, tree.Root().right.Color())

	// Red uncle, recolor.
	require.NoError(t, tree.Insert(1, "v"))
	require.Equal(t, Black, tree.Root().left.Color())
	require.Equal(t, Black, tree.Root().right.Color())
	require.Equal(t, Red, tree.Search(1).Color())

	// Black uncle, inner grandchild then outer grandchild.
	require.NoError(t, tree.Insert(3, "v"))
	require.Equal(t, 3, tree.Root().left.Key())
	require.Equal(t, Black, tree.Search(3).Color())
	require.Equal(t, Red, tree.Search(1).Color())
	require.Equal(t, Red, tree.Search(5).Color())
	require.NoError(t, tree.Validate())
}

func TestRBTree_DeleteFixup(t *testing.T) {
	rnd := rand.New(rand.NewSource(99))
	for round := 0; round < 8; round++ {
		tree := NewRBTree[int, string]()
		keys := rnd.Perm(300)
		for _, k := range keys {
			require.NoError(t, tree.Insert(k, "v"))
		}
		rnd.Shuffle(len(keys), func(i, j int) {
			keys[i], keys[j] = keys[j], keys[i]
		})
		for i, k := range keys {
			n, err := tree.Delete(k)
			require.NoError(t, err)
			require.Equal(t, k, n.Key())
			require.Nil(t, n.parent)
			require.Nil(t, n.left)
			require.Nil(t, n.right)
			require.NoError(t, tree.Validate())
			require.Equal(t, int64(len(keys)-i-1), tree.Len())
		}
		require.True(t, tree.IsEmpty())
	}
}

func TestRBTree_HeightBound(t *testing.T) {
	tree := NewRBTree[int, string]()
	for i := 0; i < 4096; i++ {
		require.NoError(t, tree.Insert(i, "v"))
	}
	require.NoError(t, tree.Validate())
	require.LessOrEqual(t, float64(tree.Height()+1), rbHeightBound(float64(tree.Len())))
}
