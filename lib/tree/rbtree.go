package tree

import (
	"github.com/benz9527/xtree/lib/infra"
)

// RBTree is the Red-Black strategy.
//
// Properties:
//  1. Each node is either red or black.
//  2. The root is black.
//  3. The empty leaves (nil) are black.
//  4. A red node has no red child.
//  5. Every path from a node to its empty leaves has the same number
//     of black nodes (black height).
//
// The height never exceeds 2*log2(n+1).
type RBTree[K, V any] struct {
	engine[K, V, *RBNode[K, V]]
}

var _ OrderedMap[int, int, *RBNode[int, int]] = (*RBTree[int, int])(nil)

func (t *RBTree[K, V]) newNode(key K, val V) *RBNode[K, V] {
	n := &RBNode[K, V]{color: Red}
	n.key, n.val = key, val
	return n
}

func (t *RBTree[K, V]) leftRotate(x *RBNode[K, V]) {
	t.stats.IncreaseRotationCount(rotateL)
	t.engine.rotateLeft(x)
}

func (t *RBTree[K, V]) rightRotate(x *RBNode[K, V]) {
	t.stats.IncreaseRotationCount(rotateR)
	t.engine.rotateRight(x)
}

// insertFixup repairs the red violation between z and its parent.
//
//  1. The uncle is red. Recolor the parent and the uncle black, the
//     grandparent red and continue from the grandparent.
//  2. The uncle is black and z is an inner grandchild. Rotate the parent
//     so z becomes the outer grandchild (case 3).
//  3. The uncle is black and z is an outer grandchild. Recolor the parent
//     black, the grandparent red and rotate the grandparent.
func (t *RBTree[K, V]) insertFixup(z *RBNode[K, V]) {
	for z.parent.isRed() {
		t.stats.IncreaseFixupStep()
		// A red parent is never the root, so the grandparent exists.
		p, g := z.parent, z.parent.parent
		if p == g.left {
			if u := g.right; u.isRed() {
				p.color, u.color, g.color = Black, Black, Red
				z = g
				continue
			}
			if z == p.right {
				z = p
				t.leftRotate(z)
				p = z.parent
			}
			p.color, g.color = Black, Red
			t.rightRotate(g)
		} else {
			if u := g.left; u.isRed() {
				p.color, u.color, g.color = Black, Black, Red
				z = g
				continue
			}
			if z == p.left {
				z = p
				t.rightRotate(z)
				p = z.parent
			}
			p.color, g.color = Black, Red
			t.leftRotate(g)
		}
	}
	t.root.color = Black
}

// deleteNode removes z. When the removed color (z's own, or its successor's
// which takes over z's position and color) is black, the path through x
// lacks one black node and deleteFixup repairs it.
func (t *RBTree[K, V]) deleteNode(z *RBNode[K, V]) {
	y, yColor := z, z.color
	if z.left != nil && z.right != nil {
		y = minimum[K, V](z.right)
		yColor = y.color
	}
	x, xParent := t.unlink(z)
	if y != z {
		y.color = z.color
	}
	if yColor == Black {
		t.deleteFixup(x, xParent)
	}
}

// deleteFixup treats x as "doubly black". x may be nil, so its parent p is
// tracked apart. w is the sibling of x, never nil here by the black height.
//
//  1. w is red. Swap the colors of w and p, rotate p towards x (case 2, 3 or 4).
//  2. w is black with black children. Recolor w red and move up to p.
//  3. w is black with a red inner child. Rotate w outwards (case 4).
//  4. w is black with a red outer child. w takes p's color, p and the outer
//     child turn black, rotate p towards x. Done.
func (t *RBTree[K, V]) deleteFixup(x, p *RBNode[K, V]) {
	for x != t.root && x.isBlack() {
		t.stats.IncreaseFixupStep()
		if x == p.left {
			w := p.right
			if w.isRed() {
				w.color, p.color = Black, Red
				t.leftRotate(p)
				w = p.right
			}
			if w.left.isBlack() && w.right.isBlack() {
				w.color = Red
				x, p = p, p.parent
				continue
			}
			if w.right.isBlack() {
				w.left.color, w.color = Black, Red
				t.rightRotate(w)
				w = p.right
			}
			w.color, p.color = p.color, Black
			w.right.color = Black
			t.leftRotate(p)
		} else {
			w := p.left
			if w.isRed() {
				w.color, p.color = Black, Red
				t.rightRotate(p)
				w = p.left
			}
			if w.left.isBlack() && w.right.isBlack() {
				w.color = Red
				x, p = p, p.parent
				continue
			}
			if w.left.isBlack() {
				w.right.color, w.color = Black, Red
				t.leftRotate(w)
				w = p.left
			}
			w.color, p.color = p.color, Black
			w.left.color = Black
			t.rightRotate(p)
		}
		x, p = t.root, nil
	}
	if x != nil {
		x.color = Black
	}
}

func (t *RBTree[K, V]) Validate() error {
	return validateRB[K, V](&t.engine)
}

// NewRBTree orders the keys by their natural order.
func NewRBTree[K infra.OrderedKey, V any](opts ...TreeOption) *RBTree[K, V] {
	t := &RBTree[K, V]{}
	t.init("rb", infra.NaturalLess[K], t, opts...)
	return t
}

func NewRBTreeFunc[K, V any](less infra.LessFunc[K], opts ...TreeOption) (*RBTree[K, V], error) {
	if less == nil {
		return nil, infra.WrapErrorStackWithMessage(ErrValidation, "comparator cannot be nil")
	}
	t := &RBTree[K, V]{}
	t.init("rb", less, t, opts...)
	return t, nil
}
