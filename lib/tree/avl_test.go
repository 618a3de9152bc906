package tree

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAVLTree_AscendingInsert(t *testing.T) {
	tree := NewAVLTree[int, string]()
	for i := 1; i <= 7; i++ {
		require.NoError(t, tree.Insert(i, "v"))
		require.NoError(t, tree.Validate())
	}
	require.Equal(t, 2, tree.Height())
	require.Equal(t, 4, tree.Root().Key())
	require.Equal(t, 2, tree.Root().Height())

	preorder := []int{}
	tree.PreorderWalk(func(n *AVLNode[int, string]) bool {
		preorder = append(preorder, n.Key())
		return true
	})
	require.Equal(t, []int{4, 2, 1, 3, 6, 5, 7}, preorder)

	postorder := []int{}
	tree.PostorderWalk(func(n *AVLNode[int, string]) bool {
		postorder = append(postorder, n.Key())
		return true
	})
	require.Equal(t, []int{1, 3, 2, 5, 7, 6, 4}, postorder)
}

func TestAVLTree_RotationCases(t *testing.T) {
	testcases := []struct {
		name string
		keys []int
	}{
		{"LL", []int{3, 2, 1}},
		{"RR", []int{1, 2, 3}},
		{"LR", []int{3, 1, 2}},
		{"RL", []int{1, 3, 2}},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			tree := NewAVLTree[int, string]()
			for _, k := range tc.keys {
				require.NoError(tt, tree.Insert(k, "v"))
			}
			root := tree.Root()
			require.Equal(tt, 2, root.Key())
			require.Equal(tt, 1, root.left.Key())
			require.Equal(tt, 3, root.right.Key())
			require.Equal(tt, 0, root.BalanceFactor())
			require.Nil(tt, root.parent)
			require.Equal(tt, root, root.left.parent)
			require.Equal(tt, root, root.right.parent)
			require.NoError(tt, tree.Validate())
		})
	}
}

func TestAVLTree_DeleteRetracesToRoot(t *testing.T) {
	// A minimal AVL tree of height 3 (Fibonacci shaped). Deleting the
	// shallow side leaf needs rotations on two levels.
	tree := NewAVLTree[int, string]()
	for _, k := range []int{8, 5, 11, 3, 7, 10, 12, 2, 4, 6, 9, 1} {
		require.NoError(t, tree.Insert(k, "v"))
	}
	require.NoError(t, tree.Validate())
	require.Equal(t, 8, tree.Root().Key())
	require.Equal(t, 4, tree.Height())
	require.Equal(t, 1, tree.Root().BalanceFactor())

	_, err := tree.Delete(12)
	require.NoError(t, err)
	require.NoError(t, tree.Validate())
	require.Equal(t, 3, tree.Height())
	require.Equal(t, int64(11), tree.Len())
	require.Equal(t, 5, tree.Root().Key())
	require.Equal(t, 8, tree.Root().right.Key())
	require.Equal(t, 10, tree.Root().right.right.Key())
}

func TestAVLTree_HeightBound(t *testing.T) {
	tree := NewAVLTree[int, string]()
	const size = 1<<12 - 1
	for i := 0; i < size; i++ {
		require.NoError(t, tree.Insert(i, "v"))
	}
	// Sorted input builds a perfect tree.
	require.Equal(t, 11, tree.Height())
	require.NoError(t, tree.Validate())

	rnd := rand.New(rand.NewSource(7))
	for _, k := range rnd.Perm(size)[:3000] {
		_, err := tree.Delete(k)
		require.NoError(t, err)
	}
	require.NoError(t, tree.Validate())
	require.LessOrEqual(t, float64(tree.Height()+1), avlHeightBound(float64(tree.Len())))
}
