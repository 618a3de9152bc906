package tree

import (
	"github.com/benz9527/xtree/lib/infra"
)

// BSTree is the unbalanced strategy. Its height follows the insertion
// order and degenerates to a list on sorted input.
type BSTree[K, V any] struct {
	engine[K, V, *BSTNode[K, V]]
}

var _ OrderedMap[int, int, *BSTNode[int, int]] = (*BSTree[int, int])(nil)

func (t *BSTree[K, V]) newNode(key K, val V) *BSTNode[K, V] {
	n := &BSTNode[K, V]{}
	n.key, n.val = key, val
	return n
}

func (t *BSTree[K, V]) insertFixup(*BSTNode[K, V]) {}

func (t *BSTree[K, V]) deleteNode(z *BSTNode[K, V]) {
	t.unlink(z)
}

func (t *BSTree[K, V]) Validate() error {
	return validateBST[K, V](&t.engine)
}

// NewBSTree orders the keys by their natural order.
func NewBSTree[K infra.OrderedKey, V any](opts ...TreeOption) *BSTree[K, V] {
	t := &BSTree[K, V]{}
	t.init("bst", infra.NaturalLess[K], t, opts...)
	return t
}

func NewBSTreeFunc[K, V any](less infra.LessFunc[K], opts ...TreeOption) (*BSTree[K, V], error) {
	if less == nil {
		return nil, infra.WrapErrorStackWithMessage(ErrValidation, "comparator cannot be nil")
	}
	t := &BSTree[K, V]{}
	t.init("bst", less, t, opts...)
	return t, nil
}
