package tree

import (
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/benz9527/xtree/lib/xlog"
)

func TestIterator_Order(t *testing.T) {
	tree := NewRBTree[int, string]()
	for _, k := range []int{4, 2, 6, 1, 3, 5, 7} {
		require.NoError(t, tree.Insert(k, "v"))
	}
	it := tree.Iterator()
	require.Equal(t, 7, it.Remaining())
	keys := []int{}
	for it.Next() {
		keys = append(keys, it.Key())
		require.Equal(t, "v", it.Val())
		require.Equal(t, it.Key(), it.Node().Key())
	}
	require.NoError(t, it.Err())
	require.Equal(t, []int{1, 2, 3, 4, 5, 6, 7}, keys)
	require.False(t, it.HasNext())
	require.Zero(t, it.Key())

	empty := NewAVLTree[int, string]().Iterator()
	require.False(t, empty.Next())
	require.NoError(t, empty.Err())
}

func TestIterator_FailFast(t *testing.T) {
	tree := NewAVLTree[int, string](WithTreeLogger(xlog.NewNopXLogger()))
	for i := 0; i < 5; i++ {
		require.NoError(t, tree.Insert(i, "v"))
	}

	it := tree.Iterator()
	require.True(t, it.Next())
	// Replacing a value is not a structural modification.
	_, err := tree.Upsert(0, "w")
	require.NoError(t, err)
	require.True(t, it.Next())

	require.NoError(t, tree.Insert(10, "v"))
	require.False(t, it.HasNext())
	require.False(t, it.Next())
	require.ErrorIs(t, it.Err(), ErrStaleIteration)
	require.ErrorIs(t, it.Remove(), ErrStaleIteration)

	// A failed mutation leaves the iterators valid.
	it = tree.Iterator()
	require.ErrorIs(t, tree.Insert(10, "v"), ErrDuplicateKey)
	_, err = tree.Delete(100)
	require.NoError(t, err)
	require.True(t, it.Next())
	require.NoError(t, it.Err())
}

func TestIterator_Remove(t *testing.T) {
	tree := NewBSTree[int, string]()
	for i := 1; i <= 6; i++ {
		require.NoError(t, tree.Insert(i, "v"))
	}

	it := tree.Iterator()
	require.ErrorIs(t, it.Remove(), ErrIteratorNoLast)
	for it.Next() {
		if it.Key()%2 == 0 {
			require.NoError(t, it.Remove())
			require.ErrorIs(t, it.Remove(), ErrIteratorNoLast)
		}
	}
	require.NoError(t, it.Err())
	require.Equal(t, []int{1, 3, 5}, tree.Keys())
	require.NoError(t, tree.Validate())

	// Another iterator turns stale by the removals of the first one.
	other := tree.Iterator()
	it = tree.Iterator()
	require.True(t, it.Next())
	require.NoError(t, it.Remove())
	require.False(t, other.Next())
	require.ErrorIs(t, other.Err(), ErrStaleIteration)
}

func TestIterator_ValuesWithConcurrentUpsert(t *testing.T) {
	tree := NewRBTree[int, string]()
	for i := 0; i < 100; i++ {
		require.NoError(t, tree.Insert(i, "a"))
	}

	it := tree.Iterator()
	wg := sync.WaitGroup{}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			_, _ = tree.Upsert(i, "b"+strconv.Itoa(i))
		}
	}()
	n := 0
	for it.Next() {
		// Values are copied when the iterator is created.
		require.Equal(t, "a", it.Val())
		n++
	}
	wg.Wait()
	require.NoError(t, it.Err())
	require.Equal(t, 100, n)

	v, ok := tree.Get(99)
	require.True(t, ok)
	require.Equal(t, "b99", v)
}
