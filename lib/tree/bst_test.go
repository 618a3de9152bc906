package tree

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBSTree_SortedInputDegenerates(t *testing.T) {
	tree := NewBSTree[int, string]()
	for i := 0; i < 64; i++ {
		require.NoError(t, tree.Insert(i, "v"))
	}
	require.Equal(t, 63, tree.Height())
	require.NoError(t, tree.Validate())
}

func TestBSTree_DeleteCases(t *testing.T) {
	newTree := func() *BSTree[int, string] {
		tree := NewBSTree[int, string]()
		//        50
		//      /    \
		//    30      70
		//   /  \    /  \
		//  20  40  60   80
		//            \
		//            65
		for _, k := range []int{50, 30, 70, 20, 40, 60, 80, 65} {
			require.NoError(t, tree.Insert(k, "v"))
		}
		return tree
	}

	testcases := []struct {
		name     string
		key      int
		rootKey  int
		assertFn func(t *testing.T, tree *BSTree[int, string])
	}{
		{
			name:    "leaf",
			key:     20,
			rootKey: 50,
			assertFn: func(t *testing.T, tree *BSTree[int, string]) {
				require.Nil(t, tree.Search(30).left)
			},
		},
		{
			name:    "only right child",
			key:     60,
			rootKey: 50,
			assertFn: func(t *testing.T, tree *BSTree[int, string]) {
				require.Equal(t, 65, tree.Search(70).left.Key())
				require.Equal(t, 70, tree.Search(65).parent.Key())
			},
		},
		{
			name:    "successor is the right child",
			key:     30,
			rootKey: 50,
			assertFn: func(t *testing.T, tree *BSTree[int, string]) {
				n := tree.Root().left
				require.Equal(t, 40, n.Key())
				require.Equal(t, 20, n.left.Key())
			},
		},
		{
			name:    "successor deep in the right subtree",
			key:     50,
			rootKey: 60,
			assertFn: func(t *testing.T, tree *BSTree[int, string]) {
				root := tree.Root()
				require.Equal(t, 30, root.left.Key())
				require.Equal(t, 70, root.right.Key())
				require.Equal(t, 65, root.right.left.Key())
				require.Nil(t, root.parent)
			},
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			tree := newTree()
			n, err := tree.Delete(tc.key)
			require.NoError(tt, err)
			require.Equal(tt, tc.key, n.Key())
			require.Equal(tt, tc.rootKey, tree.Root().Key())
			require.Equal(tt, int64(7), tree.Len())
			require.NoError(tt, tree.Validate())
			tc.assertFn(tt, tree)
		})
	}
}
