package tree

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/benz9527/xtree/lib/infra"
	"github.com/benz9527/xtree/lib/xlog"
)

// strategy is the balancing part a concrete tree plugs into the engine.
// Both hooks run with the write lock held.
type strategy[K, V any, N Node[K, V, N]] interface {
	newNode(key K, val V) N
	// insertFixup runs after z is linked as a leaf.
	insertFixup(z N)
	// deleteNode removes z from the structure. z is detached by the engine
	// afterwards.
	deleteNode(z N)
}

// engine is the comparator driven search tree shared by all strategies.
//
// One coarse RWMutex guards the whole tree. Mutations take the write lock,
// reads the read lock. The size and version counters are atomic, so the
// iterators are able to check the version without locking.
type engine[K, V any, N Node[K, V, N]] struct {
	lock     sync.RWMutex
	root     N
	less     infra.LessFunc[K]
	strategy strategy[K, V, N]
	count    atomic.Int64
	version  atomic.Uint64
	name     string
	kind     string
	logger   xlog.XLogger
	stats    *treeStats
}

func (e *engine[K, V, N]) init(kind string, less infra.LessFunc[K], s strategy[K, V, N], opts ...TreeOption) {
	cfg := &treeConfig{}
	for _, o := range opts {
		if o != nil {
			o(cfg)
		}
	}
	if len(strings.TrimSpace(cfg.name)) == 0 {
		cfg.name = kind
	}
	if cfg.isDesc {
		less = less.Reverse()
	}

	e.kind = kind
	e.name = cfg.name
	e.less = less
	e.strategy = s
	if cfg.logger != nil {
		e.logger = cfg.logger.Named("xtree/" + e.name)
		e.logger.Debug("tree created", zap.String("kind", kind), zap.Bool("desc", cfg.isDesc))
	}
	if cfg.stats {
		e.stats = newTreeStats(e.name, kind, e.count.Load)
	}
}

func (e *engine[K, V, N]) debug(msg string, fields ...zap.Field) {
	if e.logger == nil {
		return
	}
	e.logger.Debug(msg, fields...)
}

func (e *engine[K, V, N]) reject(reason string, err error) error {
	e.stats.IncreaseRejectCount(reason)
	if e.logger != nil {
		e.logger.Debug("mutation rejected", zap.String("reason", reason), zap.Error(err))
	}
	return err
}

func (e *engine[K, V, N]) Len() int64 {
	return e.count.Load()
}

func (e *engine[K, V, N]) IsEmpty() bool {
	return e.count.Load() == 0
}

// Version increases on every structural modification.
func (e *engine[K, V, N]) Version() uint64 {
	return e.version.Load()
}

func (e *engine[K, V, N]) Root() N {
	e.lock.RLock()
	defer e.lock.RUnlock()
	return e.root
}

// Height of an empty tree is -1, a single node tree is 0.
func (e *engine[K, V, N]) Height() int {
	e.lock.RLock()
	defer e.lock.RUnlock()
	return height[K, V](e.root)
}

func height[K, V any, N Node[K, V, N]](n N) int {
	if isNil(n) {
		return -1
	}
	return 1 + max(height[K, V](n.links().left), height[K, V](n.links().right))
}

func (e *engine[K, V, N]) owns(n N) bool {
	return !isNil(n) && n.links().owner == any(e)
}

func (e *engine[K, V, N]) checkNode(n N) error {
	if isNil(n) {
		return infra.WrapErrorStackWithMessage(ErrValidation, "node cannot be nil")
	}
	if !e.owns(n) {
		return infra.WrapErrorStackWithMessage(ErrForeignNode, fmt.Sprintf("node %v", n.Key()))
	}
	return nil
}

// locate descends by the comparator. If the key exists, found is its node,
// otherwise parent and dir address the empty slot for it.
func (e *engine[K, V, N]) locate(key K) (parent N, dir Direction, found N) {
	dir = Root
	for x := e.root; !isNil(x); {
		switch l := x.links(); {
		case e.less(key, l.key):
			parent, dir, x = x, Left, l.left
		case e.less(l.key, key):
			parent, dir, x = x, Right, l.right
		default:
			return parent, dir, x
		}
	}
	return parent, dir, found
}

func (e *engine[K, V, N]) search(key K) N {
	_, _, found := e.locate(key)
	return found
}

func (e *engine[K, V, N]) link(z, parent N, dir Direction) {
	zl := z.links()
	zl.owner = e
	zl.parent = parent
	switch dir {
	case Root:
		e.root = z
	case Left:
		parent.links().left = z
	case Right:
		parent.links().right = z
	default:
		panic("[xtree] unknown direction to link")
	}
}

func (e *engine[K, V, N]) Insert(key K, val V) error {
	if err := validateEntry(key, val); err != nil {
		return e.reject("validation", err)
	}

	e.lock.Lock()
	defer e.lock.Unlock()
	parent, dir, found := e.locate(key)
	if !isNil(found) {
		return e.reject("duplicate",
			infra.WrapErrorStackWithMessage(ErrDuplicateKey, fmt.Sprintf("key %v", key)),
		)
	}
	e.insertAt(key, val, parent, dir)
	return nil
}

func (e *engine[K, V, N]) insertAt(key K, val V, parent N, dir Direction) {
	z := e.strategy.newNode(key, val)
	e.link(z, parent, dir)
	e.strategy.insertFixup(z)
	e.count.Add(1)
	e.version.Add(1)
	e.stats.IncreaseInsertCount()
}

// Upsert does not bump the version when it replaces a value,
// the structure stays untouched.
func (e *engine[K, V, N]) Upsert(key K, val V) (replaced bool, err error) {
	if err = validateEntry(key, val); err != nil {
		return false, e.reject("validation", err)
	}

	e.lock.Lock()
	defer e.lock.Unlock()
	parent, dir, found := e.locate(key)
	if !isNil(found) {
		found.links().val = val
		return true, nil
	}
	e.insertAt(key, val, parent, dir)
	return false, nil
}

// remove runs with the write lock held.
func (e *engine[K, V, N]) remove(z N) {
	e.strategy.deleteNode(z)
	e.detach(z)
	e.count.Add(-1)
	e.version.Add(1)
	e.stats.IncreaseDeleteCount()
}

func (e *engine[K, V, N]) detach(z N) {
	var zero N
	zl := z.links()
	zl.parent, zl.left, zl.right = zero, zero, zero
	zl.owner = nil
}

// Delete is a no-op for an absent key, the version stays unchanged.
func (e *engine[K, V, N]) Delete(key K) (N, error) {
	var zero N
	if err := validateKey(key); err != nil {
		return zero, e.reject("validation", err)
	}

	e.lock.Lock()
	defer e.lock.Unlock()
	z := e.search(key)
	if isNil(z) {
		return zero, nil
	}
	e.remove(z)
	return z, nil
}

func (e *engine[K, V, N]) DeleteNode(n N) error {
	e.lock.Lock()
	defer e.lock.Unlock()
	if err := e.checkNode(n); err != nil {
		return e.reject("node", err)
	}
	e.remove(n)
	return nil
}

// deleteNodeAt removes n only if the tree is still at the expected version.
// It returns the version after the removal.
func (e *engine[K, V, N]) deleteNodeAt(n N, expected uint64) (uint64, error) {
	e.lock.Lock()
	defer e.lock.Unlock()
	if e.version.Load() != expected {
		return 0, infra.WrapErrorStackWithMessage(ErrStaleIteration, "remove through iterator")
	}
	if err := e.checkNode(n); err != nil {
		return 0, e.reject("node", err)
	}
	e.remove(n)
	return e.version.Load(), nil
}

// DeleteMin never fails yet, the error is reserved.
func (e *engine[K, V, N]) DeleteMin() (N, error) {
	e.lock.Lock()
	defer e.lock.Unlock()
	z := minimum[K, V](e.root)
	if !isNil(z) {
		e.remove(z)
	}
	return z, nil
}

func (e *engine[K, V, N]) DeleteMax() (N, error) {
	e.lock.Lock()
	defer e.lock.Unlock()
	z := maximum[K, V](e.root)
	if !isNil(z) {
		e.remove(z)
	}
	return z, nil
}

// Clear detaches every node, so the handles kept by the callers
// become foreign to the tree.
func (e *engine[K, V, N]) Clear() {
	e.lock.Lock()
	defer e.lock.Unlock()

	var zero N
	released := int64(0)
	stack := make([]N, 0, 64)
	if !isNil(e.root) {
		stack = append(stack, e.root)
	}
	for size := len(stack); size > 0; size = len(stack) {
		aux := stack[size-1]
		stack = stack[:size-1]
		if l := aux.links(); !isNil(l.left) {
			stack = append(stack, l.left)
		}
		if r := aux.links(); !isNil(r.right) {
			stack = append(stack, r.right)
		}
		e.detach(aux)
		released++
	}
	e.root = zero
	e.count.Store(0)
	e.version.Add(1)
	e.debug("tree cleared", zap.Int64("released", released))
}

// transplant replaces the subtree rooted at x by the one rooted at y
// in x's parent. y's children are left untouched.
func (e *engine[K, V, N]) transplant(x, y N) {
	p := x.links().parent
	switch {
	case isNil(p):
		e.root = y
	case p.links().left == x:
		p.links().left = y
	default:
		p.links().right = y
	}
	if !isNil(y) {
		y.links().parent = p
	}
}

// unlink is the canonical 3-case removal of z.
//  1. No left child, the right child takes z's place.
//  2. No right child, the left child takes z's place.
//  3. Two children, the in-order successor y (minimum of the right subtree)
//     takes z's place and inherits both subtrees of z.
//
// It returns the node x that moved into the vacated position (may be nil)
// and x's parent, where the rebalancing has to start.
func (e *engine[K, V, N]) unlink(z N) (x, xParent N) {
	zl := z.links()
	switch {
	case isNil(zl.left):
		x, xParent = zl.right, zl.parent
		e.transplant(z, zl.right)
	case isNil(zl.right):
		x, xParent = zl.left, zl.parent
		e.transplant(z, zl.left)
	default:
		y := minimum[K, V](zl.right)
		yl := y.links()
		x = yl.right
		if yl.parent == z {
			xParent = y
		} else {
			xParent = yl.parent
			e.transplant(y, yl.right)
			yl.right = zl.right
			yl.right.links().parent = y
		}
		e.transplant(z, y)
		yl.left = zl.left
		yl.left.links().parent = y
	}
	return x, xParent
}

// rotateLeft lifts x's right child y into x's position.
//
//	   x              y
//	  / \            / \
//	 a   y    =>    x   c
//	    / \        / \
//	   b   c      a   b
func (e *engine[K, V, N]) rotateLeft(x N) N {
	xl := x.links()
	y := xl.right
	yl := y.links()
	xl.right = yl.left
	if !isNil(yl.left) {
		yl.left.links().parent = x
	}
	e.transplant(x, y)
	yl.left = x
	xl.parent = y
	return y
}

// rotateRight is the mirror of rotateLeft.
func (e *engine[K, V, N]) rotateRight(x N) N {
	xl := x.links()
	y := xl.left
	yl := y.links()
	xl.left = yl.right
	if !isNil(yl.right) {
		yl.right.links().parent = x
	}
	e.transplant(x, y)
	yl.right = x
	xl.parent = y
	return y
}

func minimum[K, V any, N Node[K, V, N]](n N) N {
	if isNil(n) {
		return n
	}
	for !isNil(n.links().left) {
		n = n.links().left
	}
	return n
}

func maximum[K, V any, N Node[K, V, N]](n N) N {
	if isNil(n) {
		return n
	}
	for !isNil(n.links().right) {
		n = n.links().right
	}
	return n
}

// The succ node of the current node is its next node in sorted order.
func successor[K, V any, N Node[K, V, N]](n N) N {
	if r := n.links().right; !isNil(r) {
		return minimum[K, V](r)
	}
	// Backtrack to the first ancestor reached from a left child.
	x, aux := n, n.links().parent
	for !isNil(aux) && x == aux.links().right {
		x, aux = aux, aux.links().parent
	}
	return aux
}

// The pred node of the current node is its previous node in sorted order.
func predecessor[K, V any, N Node[K, V, N]](n N) N {
	if l := n.links().left; !isNil(l) {
		return maximum[K, V](l)
	}
	x, aux := n, n.links().parent
	for !isNil(aux) && x == aux.links().left {
		x, aux = aux, aux.links().parent
	}
	return aux
}

// Search returns nil if the key is absent or invalid.
func (e *engine[K, V, N]) Search(key K) N {
	if validateKey(key) != nil {
		var zero N
		return zero
	}
	e.lock.RLock()
	defer e.lock.RUnlock()
	return e.search(key)
}

func (e *engine[K, V, N]) Get(key K) (val V, ok bool) {
	if validateKey(key) != nil {
		return val, false
	}
	e.lock.RLock()
	defer e.lock.RUnlock()
	if n := e.search(key); !isNil(n) {
		return n.links().val, true
	}
	return val, false
}

func (e *engine[K, V, N]) Contains(key K) bool {
	return !isNil(e.Search(key))
}

func (e *engine[K, V, N]) Minimum() N {
	e.lock.RLock()
	defer e.lock.RUnlock()
	return minimum[K, V](e.root)
}

func (e *engine[K, V, N]) Maximum() N {
	e.lock.RLock()
	defer e.lock.RUnlock()
	return maximum[K, V](e.root)
}

func (e *engine[K, V, N]) SubtreeMinimum(n N) (N, error) {
	e.lock.RLock()
	defer e.lock.RUnlock()
	if err := e.checkNode(n); err != nil {
		return n, err
	}
	return minimum[K, V](n), nil
}

func (e *engine[K, V, N]) SubtreeMaximum(n N) (N, error) {
	e.lock.RLock()
	defer e.lock.RUnlock()
	if err := e.checkNode(n); err != nil {
		return n, err
	}
	return maximum[K, V](n), nil
}

func (e *engine[K, V, N]) Successor(n N) (N, error) {
	var zero N
	e.lock.RLock()
	defer e.lock.RUnlock()
	if err := e.checkNode(n); err != nil {
		return zero, err
	}
	return successor[K, V](n), nil
}

func (e *engine[K, V, N]) Predecessor(n N) (N, error) {
	var zero N
	e.lock.RLock()
	defer e.lock.RUnlock()
	if err := e.checkNode(n); err != nil {
		return zero, err
	}
	return predecessor[K, V](n), nil
}

// Tree walks. The visitors run with the read lock held and must not
// mutate the tree. Returning false stops the walk.

func inorder[K, V any, N Node[K, V, N]](n N, visit func(N) bool) bool {
	if isNil(n) {
		return true
	}
	return inorder[K, V](n.links().left, visit) &&
		visit(n) &&
		inorder[K, V](n.links().right, visit)
}

func preorder[K, V any, N Node[K, V, N]](n N, visit func(N) bool) bool {
	if isNil(n) {
		return true
	}
	return visit(n) &&
		preorder[K, V](n.links().left, visit) &&
		preorder[K, V](n.links().right, visit)
}

func postorder[K, V any, N Node[K, V, N]](n N, visit func(N) bool) bool {
	if isNil(n) {
		return true
	}
	return postorder[K, V](n.links().left, visit) &&
		postorder[K, V](n.links().right, visit) &&
		visit(n)
}

func (e *engine[K, V, N]) walk(
	from N,
	order func(N, func(N) bool) bool,
	visit func(N) bool,
) error {
	if visit == nil {
		return infra.WrapErrorStackWithMessage(ErrValidation, "visitor cannot be nil")
	}
	e.lock.RLock()
	defer e.lock.RUnlock()
	if err := e.checkNode(from); err != nil {
		return err
	}
	order(from, visit)
	return nil
}

func (e *engine[K, V, N]) walkAll(order func(N, func(N) bool) bool, visit func(N) bool) {
	if visit == nil {
		return
	}
	e.lock.RLock()
	defer e.lock.RUnlock()
	order(e.root, visit)
}

func (e *engine[K, V, N]) InorderWalk(visit func(n N) bool) {
	e.walkAll(inorder[K, V, N], visit)
}

func (e *engine[K, V, N]) PreorderWalk(visit func(n N) bool) {
	e.walkAll(preorder[K, V, N], visit)
}

func (e *engine[K, V, N]) PostorderWalk(visit func(n N) bool) {
	e.walkAll(postorder[K, V, N], visit)
}

func (e *engine[K, V, N]) InorderWalkFrom(n N, visit func(n N) bool) error {
	return e.walk(n, inorder[K, V, N], visit)
}

func (e *engine[K, V, N]) PreorderWalkFrom(n N, visit func(n N) bool) error {
	return e.walk(n, preorder[K, V, N], visit)
}

func (e *engine[K, V, N]) PostorderWalkFrom(n N, visit func(n N) bool) error {
	return e.walk(n, postorder[K, V, N], visit)
}

// snapshot copies the entries under the read lock, so the iterator never
// reads a value a concurrent Upsert is writing.
func (e *engine[K, V, N]) snapshot() ([]iterEntry[K, V, N], uint64) {
	e.lock.RLock()
	defer e.lock.RUnlock()
	entries := make([]iterEntry[K, V, N], 0, e.count.Load())
	inorder[K, V](e.root, func(n N) bool {
		l := n.links()
		entries = append(entries, iterEntry[K, V, N]{
			Entry: Entry[K, V]{Key: l.key, Val: l.val},
			node:  n,
		})
		return true
	})
	return entries, e.version.Load()
}

func (e *engine[K, V, N]) Keys() []K {
	e.lock.RLock()
	defer e.lock.RUnlock()
	keys := make([]K, 0, e.count.Load())
	inorder[K, V](e.root, func(n N) bool {
		keys = append(keys, n.links().key)
		return true
	})
	return keys
}

func (e *engine[K, V, N]) Values() []V {
	e.lock.RLock()
	defer e.lock.RUnlock()
	vals := make([]V, 0, e.count.Load())
	inorder[K, V](e.root, func(n N) bool {
		vals = append(vals, n.links().val)
		return true
	})
	return vals
}

func (e *engine[K, V, N]) Entries() []Entry[K, V] {
	e.lock.RLock()
	defer e.lock.RUnlock()
	entries := make([]Entry[K, V], 0, e.count.Load())
	inorder[K, V](e.root, func(n N) bool {
		entries = append(entries, Entry[K, V]{Key: n.links().key, Val: n.links().val})
		return true
	})
	return entries
}

// ToArray returns the values in key order.
func (e *engine[K, V, N]) ToArray() []V {
	return e.Values()
}

// String renders the entries in key order:
//
//	{
//	  1 -> a,
//	  2 -> b
//	}
//
// An empty tree renders as {}.
func (e *engine[K, V, N]) String() string {
	e.lock.RLock()
	defer e.lock.RUnlock()
	if isNil(e.root) {
		return "{}"
	}
	builder := strings.Builder{}
	builder.WriteString("{\n")
	first := true
	inorder[K, V](e.root, func(n N) bool {
		if !first {
			builder.WriteString(",\n")
		}
		first = false
		_, _ = fmt.Fprintf(&builder, "  %v -> %v", n.links().key, n.links().val)
		return true
	})
	builder.WriteString("\n}")
	return builder.String()
}

func (e *engine[K, V, N]) Iterator() *Iterator[K, V, N] {
	entries, version := e.snapshot()
	return &Iterator[K, V, N]{
		tree:            e,
		entries:         entries,
		expectedVersion: version,
	}
}
