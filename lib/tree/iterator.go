package tree

import (
	"go.uber.org/zap"

	"github.com/benz9527/xtree/lib/infra"
)

type iterEntry[K, V any, N Node[K, V, N]] struct {
	Entry[K, V]
	node N
}

// Iterator walks an in-order snapshot of the tree. It fails fast once the
// tree has been structurally modified by anything but its own Remove.
//
//	it := t.Iterator()
//	for it.Next() {
//		_ = it.Key()
//	}
//	if err := it.Err(); err != nil {
//		// stale
//	}
//
// Key and Val are copies taken with the snapshot. Node is the live handle,
// reading its value races a concurrent Upsert.
type Iterator[K, V any, N Node[K, V, N]] struct {
	tree            *engine[K, V, N]
	entries         []iterEntry[K, V, N]
	cursor          int
	last            *iterEntry[K, V, N]
	expectedVersion uint64
	err             error
}

func (it *Iterator[K, V, N]) stale() bool {
	if it.err != nil {
		return true
	}
	if it.tree.Version() != it.expectedVersion {
		it.err = infra.WrapErrorStackWithMessage(ErrStaleIteration, "iterator next")
		if it.tree.logger != nil {
			it.tree.logger.Warn("stale iteration",
				zap.Uint64("expected", it.expectedVersion),
				zap.Uint64("actual", it.tree.Version()),
			)
		}
		return true
	}
	return false
}

// HasNext reports whether an entry remains. It is false once the
// iterator turned stale.
func (it *Iterator[K, V, N]) HasNext() bool {
	return !it.stale() && it.cursor < len(it.entries)
}

// Next advances to the next entry in key order.
func (it *Iterator[K, V, N]) Next() bool {
	if !it.HasNext() {
		it.last = nil
		return false
	}
	it.last = &it.entries[it.cursor]
	it.cursor++
	return true
}

// Node is the entry returned by the latest Next.
func (it *Iterator[K, V, N]) Node() (n N) {
	if it.last == nil {
		return n
	}
	return it.last.node
}

func (it *Iterator[K, V, N]) Key() (key K) {
	if it.last == nil {
		return key
	}
	return it.last.Key
}

func (it *Iterator[K, V, N]) Val() (val V) {
	if it.last == nil {
		return val
	}
	return it.last.Val
}

func (it *Iterator[K, V, N]) Remaining() int {
	return len(it.entries) - it.cursor
}

func (it *Iterator[K, V, N]) Err() error {
	return it.err
}

// Remove deletes the entry returned by the latest Next from the tree.
// The iterator stays valid afterwards.
func (it *Iterator[K, V, N]) Remove() error {
	if it.stale() {
		return it.err
	}
	if it.last == nil {
		return infra.WrapErrorStackWithMessage(ErrIteratorNoLast, "iterator remove")
	}
	version, err := it.tree.deleteNodeAt(it.last.node, it.expectedVersion)
	if err != nil {
		return err
	}
	it.last = nil
	it.expectedVersion = version
	return nil
}
