package tree

import (
	"fmt"
	"math"

	"go.uber.org/multierr"

	"github.com/benz9527/xtree/lib/infra"
)

func violation(format string, args ...any) error {
	return infra.WrapErrorStackWithMessage(ErrInvariantViolation, fmt.Sprintf(format, args...))
}

// orderViolationValidate checks the strict in-order key order,
// so duplicated keys are reported too.
func orderViolationValidate[K, V any, N Node[K, V, N]](e *engine[K, V, N]) (err error) {
	var (
		prev    N
		visited int64
	)
	inorder[K, V](e.root, func(n N) bool {
		if !isNil(prev) && !e.less(prev.Key(), n.Key()) {
			err = multierr.Append(err, violation("key %v is not ordered after %v", n.Key(), prev.Key()))
		}
		prev = n
		visited++
		return true
	})
	if size := e.count.Load(); size != visited {
		err = multierr.Append(err, violation("size %d, but %d nodes reachable", size, visited))
	}
	return err
}

// parentLinkValidate checks that each child points back at its parent and
// every reachable node is owned by the tree.
func parentLinkValidate[K, V any, N Node[K, V, N]](e *engine[K, V, N]) (err error) {
	if isNil(e.root) {
		return nil
	}
	if !isNil(e.root.links().parent) {
		err = multierr.Append(err, violation("root %v has a parent", e.root.Key()))
	}
	preorder[K, V](e.root, func(n N) bool {
		l := n.links()
		if l.owner != any(e) {
			err = multierr.Append(err, violation("node %v is not owned by the tree", n.Key()))
		}
		if !isNil(l.left) && l.left.links().parent != n {
			err = multierr.Append(err, violation("left child %v lost its parent %v", l.left.Key(), n.Key()))
		}
		if !isNil(l.right) && l.right.links().parent != n {
			err = multierr.Append(err, violation("right child %v lost its parent %v", l.right.Key(), n.Key()))
		}
		return true
	})
	return err
}

func avlBalanceValidate[K, V any](e *engine[K, V, *AVLNode[K, V]]) (err error) {
	postorder[K, V](e.root, func(n *AVLNode[K, V]) bool {
		if expected := 1 + max(height[K, V](n.left), height[K, V](n.right)); n.height != expected {
			err = multierr.Append(err, violation("node %v caches height %d, actual %d", n.key, n.height, expected))
		}
		if bf := n.BalanceFactor(); bf > 1 || bf < -1 {
			err = multierr.Append(err, violation("node %v balance factor %d", n.key, bf))
		}
		return true
	})
	return err
}

func redViolationValidate[K, V any](e *engine[K, V, *RBNode[K, V]]) (err error) {
	if e.root.isRed() {
		err = multierr.Append(err, violation("root %v is red", e.root.key))
	}
	preorder[K, V](e.root, func(n *RBNode[K, V]) bool {
		if n.isRed() && (n.left.isRed() || n.right.isRed()) {
			err = multierr.Append(err, violation("red node %v has a red child", n.key))
		}
		return true
	})
	return err
}

// blackViolationValidate compares the black heights of both sides at
// every node.
func blackViolationValidate[K, V any](e *engine[K, V, *RBNode[K, V]]) (err error) {
	var blackHeight func(n *RBNode[K, V]) int
	blackHeight = func(n *RBNode[K, V]) int {
		if n == nil {
			return 1
		}
		l, r := blackHeight(n.left), blackHeight(n.right)
		if l != r {
			err = multierr.Append(err, violation("node %v black height left %d, right %d", n.key, l, r))
		}
		if n.isBlack() {
			return l + 1
		}
		return l
	}
	blackHeight(e.root)
	return err
}

// heightBoundValidate checks the levels (height + 1) against the bound
// of the strategy for the current size.
func heightBoundValidate[K, V any, N Node[K, V, N]](e *engine[K, V, N], bound func(size float64) float64) error {
	size := float64(e.count.Load())
	if levels := float64(height[K, V](e.root) + 1); levels > bound(size) {
		return violation("%s tree of %v entries has %v levels", e.kind, size, levels)
	}
	return nil
}

func avlHeightBound(size float64) float64 {
	return 1.4405*math.Log2(size+2) - 0.3277
}

func rbHeightBound(size float64) float64 {
	return 2 * math.Log2(size+1)
}

func validateBST[K, V any](e *engine[K, V, *BSTNode[K, V]]) error {
	e.lock.RLock()
	defer e.lock.RUnlock()
	return multierr.Combine(
		orderViolationValidate(e),
		parentLinkValidate(e),
	)
}

func validateAVL[K, V any](e *engine[K, V, *AVLNode[K, V]]) error {
	e.lock.RLock()
	defer e.lock.RUnlock()
	return multierr.Combine(
		orderViolationValidate(e),
		parentLinkValidate(e),
		avlBalanceValidate(e),
		heightBoundValidate(e, avlHeightBound),
	)
}

func validateRB[K, V any](e *engine[K, V, *RBNode[K, V]]) error {
	e.lock.RLock()
	defer e.lock.RUnlock()
	return multierr.Combine(
		orderViolationValidate(e),
		parentLinkValidate(e),
		redViolationValidate(e),
		blackViolationValidate(e),
		heightBoundValidate(e, rbHeightBound),
	)
}
