package tree

import (
	"github.com/benz9527/xtree/lib/infra"
)

// AVLTree keeps |height(left) - height(right)| <= 1 at every node,
// retracing from the modified leaf towards the root after each mutation.
type AVLTree[K, V any] struct {
	engine[K, V, *AVLNode[K, V]]
}

var _ OrderedMap[int, int, *AVLNode[int, int]] = (*AVLTree[int, int])(nil)

func (t *AVLTree[K, V]) newNode(key K, val V) *AVLNode[K, V] {
	n := &AVLNode[K, V]{}
	n.key, n.val = key, val
	return n
}

// The rotation primitives take the unbalanced node x and its heavy child z,
// refresh the cached heights bottom up and return the new subtree root.

// rotateLeft lifts the right child z over x (RR).
func (t *AVLTree[K, V]) rotateLeft(x, z *AVLNode[K, V]) *AVLNode[K, V] {
	t.engine.rotateLeft(x)
	x.updateHeight()
	z.updateHeight()
	return z
}

// rotateRight lifts the left child z over x (LL).
func (t *AVLTree[K, V]) rotateRight(x, z *AVLNode[K, V]) *AVLNode[K, V] {
	t.engine.rotateRight(x)
	x.updateHeight()
	z.updateHeight()
	return z
}

// rotateLeftRight lifts the right child of the left child z over x (LR).
func (t *AVLTree[K, V]) rotateLeftRight(x, z *AVLNode[K, V]) *AVLNode[K, V] {
	y := z.right
	t.rotateLeft(z, y)
	return t.rotateRight(x, y)
}

// rotateRightLeft lifts the left child of the right child z over x (RL).
func (t *AVLTree[K, V]) rotateRightLeft(x, z *AVLNode[K, V]) *AVLNode[K, V] {
	y := z.left
	t.rotateRight(z, y)
	return t.rotateLeft(x, y)
}

// insertFixup retraces from the parent of the new leaf z. A zero balance
// factor means the subtree height is unchanged and the ancestors stay
// balanced. One (single or double) rotation restores the height from
// before the insertion, so the loop stops after the first fix.
func (t *AVLTree[K, V]) insertFixup(z *AVLNode[K, V]) {
	for p := z.parent; p != nil; p = p.parent {
		t.stats.IncreaseFixupStep()
		p.updateHeight()
		switch bf := p.BalanceFactor(); {
		case bf == 0:
			return
		case bf > 1:
			if t.less(z.key, p.left.key) {
				t.stats.IncreaseRotationCount(rotateLL)
				t.rotateRight(p, p.left)
			} else {
				t.stats.IncreaseRotationCount(rotateLR)
				t.rotateLeftRight(p, p.left)
			}
			return
		case bf < -1:
			if t.less(p.right.key, z.key) {
				t.stats.IncreaseRotationCount(rotateRR)
				t.rotateLeft(p, p.right)
			} else {
				t.stats.IncreaseRotationCount(rotateRL)
				t.rotateRightLeft(p, p.right)
			}
			return
		default:
		}
	}
}

// rebalance classifies by the balance factor of the heavy child. A zero
// factor only happens on deletion and takes the single rotation.
func (t *AVLTree[K, V]) rebalance(p *AVLNode[K, V]) {
	switch bf := p.BalanceFactor(); {
	case bf > 1:
		if z := p.left; z.BalanceFactor() >= 0 {
			t.stats.IncreaseRotationCount(rotateLL)
			t.rotateRight(p, z)
		} else {
			t.stats.IncreaseRotationCount(rotateLR)
			t.rotateLeftRight(p, z)
		}
	case bf < -1:
		if z := p.right; z.BalanceFactor() <= 0 {
			t.stats.IncreaseRotationCount(rotateRR)
			t.rotateLeft(p, z)
		} else {
			t.stats.IncreaseRotationCount(rotateRL)
			t.rotateRightLeft(p, z)
		}
	default:
	}
}

// deleteNode retraces from the parent of the node that moved into the
// vacated position up to the root. The height may shrink on every level,
// so the loop never stops after a fix.
func (t *AVLTree[K, V]) deleteNode(z *AVLNode[K, V]) {
	_, p := t.unlink(z)
	for p != nil {
		t.stats.IncreaseFixupStep()
		g := p.parent
		p.updateHeight()
		t.rebalance(p)
		p = g
	}
}

func (t *AVLTree[K, V]) Validate() error {
	return validateAVL[K, V](&t.engine)
}

// NewAVLTree orders the keys by their natural order.
func NewAVLTree[K infra.OrderedKey, V any](opts ...TreeOption) *AVLTree[K, V] {
	t := &AVLTree[K, V]{}
	t.init("avl", infra.NaturalLess[K], t, opts...)
	return t
}

func NewAVLTreeFunc[K, V any](less infra.LessFunc[K], opts ...TreeOption) (*AVLTree[K, V], error) {
	if less == nil {
		return nil, infra.WrapErrorStackWithMessage(ErrValidation, "comparator cannot be nil")
	}
	t := &AVLTree[K, V]{}
	t.init("avl", less, t, opts...)
	return t, nil
}
