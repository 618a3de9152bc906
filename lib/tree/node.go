package tree

// node is embedded by every strategy node type.
// left and right own the children; parent is a back-reference
// used by traversal and rebalancing only.
type node[K, V any, N comparable] struct {
	parent N
	left   N
	right  N
	// The tree instance that linked the node. Cleared on detach.
	owner any
	key   K
	val   V
}

func (n *node[K, V, N]) Key() K {
	return n.key
}

// Val reads the value without the tree lock. On a node still linked to a
// tree it must not race an Upsert; use Get or an Iterator instead.
func (n *node[K, V, N]) Val() V {
	return n.val
}

func (n *node[K, V, N]) links() *node[K, V, N] {
	return n
}

func isNil[N comparable](n N) bool {
	var zero N
	return n == zero
}

type BSTNode[K, V any] struct {
	node[K, V, *BSTNode[K, V]]
}

// AVLNode caches its subtree height; the balance factor
// is derived from the children heights.
type AVLNode[K, V any] struct {
	node[K, V, *AVLNode[K, V]]
	height int
}

// Height of an absent node is -1.
func (n *AVLNode[K, V]) Height() int {
	if n == nil {
		return -1
	}
	return n.height
}

// BalanceFactor is height(left) - height(right), positive means left-heavy.
func (n *AVLNode[K, V]) BalanceFactor() int {
	if n == nil {
		return 0
	}
	return n.left.Height() - n.right.Height()
}

func (n *AVLNode[K, V]) updateHeight() {
	n.height = 1 + max(n.left.Height(), n.right.Height())
}

// RBNode uses the nil node as the BLACK empty leaf.
type RBNode[K, V any] struct {
	node[K, V, *RBNode[K, V]]
	color Color
}

func (n *RBNode[K, V]) Color() Color {
	if n == nil {
		return Black
	}
	return n.color
}

func (n *RBNode[K, V]) isRed() bool {
	return n != nil && n.color == Red
}

func (n *RBNode[K, V]) isBlack() bool {
	return !n.isRed()
}
