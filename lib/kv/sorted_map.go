package kv

import (
	"io"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/multierr"

	"github.com/benz9527/xtree/lib/infra"
	"github.com/benz9527/xtree/lib/tree"
)

type sortedMap[K comparable, V any] struct {
	// Read-held by every tree operation, write-held by Replace and Purge
	// so neither interleaves with a single-entry write.
	lock           sync.RWMutex
	tree           *tree.RBTree[K, V]
	less           infra.LessFunc[K]
	treeOpts       []tree.TreeOption
	isClosableItem bool
}

func (m *sortedMap[K, V]) newTree() *tree.RBTree[K, V] {
	// The comparator is checked by the constructors.
	t, _ := tree.NewRBTreeFunc[K, V](m.less, m.treeOpts...)
	return t
}

func (m *sortedMap[K, V]) AddOrUpdate(key K, obj V) error {
	m.lock.RLock()
	defer m.lock.RUnlock()
	_, err := m.tree.Upsert(key, obj)
	return err
}

// Replace swaps in a tree built from items. The store is untouched if
// any entry is rejected.
func (m *sortedMap[K, V]) Replace(items map[K]V) error {
	t := m.newTree()
	var merr error
	for key, item := range items {
		merr = multierr.Append(merr, t.Insert(key, item))
	}
	if merr != nil {
		return merr
	}

	m.lock.Lock()
	defer m.lock.Unlock()
	m.tree = t
	return nil
}

func (m *sortedMap[K, V]) Delete(key K) (item V, err error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	n, err := m.tree.Delete(key)
	if err != nil || n == nil {
		return item, err
	}
	return n.Val(), nil
}

func (m *sortedMap[K, V]) Get(key K) (item V, exists bool) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.tree.Get(key)
}

func (m *sortedMap[K, V]) Len() int64 {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.tree.Len()
}

func (m *sortedMap[K, V]) ListKeys(filters ...SafeStoreKeyFilterFunc[K]) []K {
	realFilters := lo.Filter(filters, func(filter SafeStoreKeyFilterFunc[K], _ int) bool {
		return filter != nil
	})
	m.lock.RLock()
	keys := m.tree.Keys()
	m.lock.RUnlock()
	if len(realFilters) == 0 {
		return keys
	}
	return lo.Filter(keys, func(key K, _ int) bool {
		return lo.ContainsBy(realFilters, func(filter SafeStoreKeyFilterFunc[K]) bool {
			return filter(key)
		})
	})
}

// ListValues returns all values in key order, or the values of the
// present keys in the given order.
func (m *sortedMap[K, V]) ListValues(keys ...K) (items []V) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	if len(keys) == 0 {
		return m.tree.Values()
	}
	items = make([]V, 0, len(keys))
	for _, key := range keys {
		if item, ok := m.tree.Get(key); ok {
			items = append(items, item)
		}
	}
	return items
}

// Purge closes the io.Closer values if the check is enabled and
// empties the store.
func (m *sortedMap[K, V]) Purge() (merr error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.isClosableItem {
		for _, item := range m.tree.Values() {
			if closer, ok := any(item).(io.Closer); ok {
				merr = multierr.Append(merr, closer.Close())
			}
		}
	}
	m.tree.Clear()
	return merr
}

type SortedMapOption[K comparable, V any] func(*sortedMap[K, V])

func WithSortedMapCloseableItemCheck[K comparable, V any]() SortedMapOption[K, V] {
	return func(m *sortedMap[K, V]) {
		m.isClosableItem = true
	}
}

func WithSortedMapTreeOptions[K comparable, V any](opts ...tree.TreeOption) SortedMapOption[K, V] {
	return func(m *sortedMap[K, V]) {
		m.treeOpts = append(m.treeOpts, opts...)
	}
}

func NewSortedMap[K infra.OrderedKey, V any](opts ...SortedMapOption[K, V]) ThreadSafeStorer[K, V] {
	m, _ := NewSortedMapFunc[K, V](infra.NaturalLess[K], opts...)
	return m
}

func NewSortedMapFunc[K comparable, V any](less infra.LessFunc[K], opts ...SortedMapOption[K, V]) (ThreadSafeStorer[K, V], error) {
	if less == nil {
		return nil, infra.WrapErrorStackWithMessage(tree.ErrValidation, "comparator cannot be nil")
	}
	m := &sortedMap[K, V]{less: less}
	for _, o := range opts {
		if o != nil {
			o(m)
		}
	}
	m.tree = m.newTree()
	return m, nil
}
