package tree

type Color uint8

const (
	Black Color = iota
	Red
)

func (c Color) String() string {
	switch c {
	case Black:
		return "Black"
	case Red:
		return "Red"
	default:
	}
	return "Unknown"
}

type Direction int8

const (
	Left Direction = -1 + iota
	Root
	Right
)

func (d Direction) String() string {
	switch d {
	case Left:
		return "Left"
	case Root:
		return "Root"
	case Right:
		return "Right"
	default:
	}
	return "Unknown"
}

type Entry[K, V any] struct {
	Key K
	Val V
}

// Node is satisfied by the node types of this package only:
// *BSTNode, *AVLNode and *RBNode. A nil node means absent.
type Node[K, V any, N comparable] interface {
	comparable
	Key() K
	Val() V
	links() *node[K, V, N]
}

// OrderedMap is the surface shared by every balancing strategy.
// The node type N ties a node handle to its strategy, so passing
// an AVL node to a Red-Black tree does not compile.
type OrderedMap[K, V any, N Node[K, V, N]] interface {
	Len() int64
	IsEmpty() bool
	Height() int
	Version() uint64
	Root() N

	// Insert rejects nil/blank keys and values and duplicated keys.
	Insert(key K, val V) error
	// Upsert replaces the value of an existing key in place.
	Upsert(key K, val V) (replaced bool, err error)
	// Delete returns the detached node, or nil if the key is absent.
	Delete(key K) (N, error)
	DeleteNode(n N) error
	// DeleteMin and DeleteMax return nil on an empty tree. The error is
	// reserved and always nil for now, like Delete on an absent key.
	DeleteMin() (N, error)
	DeleteMax() (N, error)
	Clear()

	Search(key K) N
	Get(key K) (V, bool)
	Contains(key K) bool
	Minimum() N
	Maximum() N
	SubtreeMinimum(n N) (N, error)
	SubtreeMaximum(n N) (N, error)
	Successor(n N) (N, error)
	Predecessor(n N) (N, error)

	InorderWalk(visit func(n N) bool)
	PreorderWalk(visit func(n N) bool)
	PostorderWalk(visit func(n N) bool)
	InorderWalkFrom(n N, visit func(n N) bool) error
	PreorderWalkFrom(n N, visit func(n N) bool) error
	PostorderWalkFrom(n N, visit func(n N) bool) error

	Keys() []K
	Values() []V
	Entries() []Entry[K, V]
	ToArray() []V
	Iterator() *Iterator[K, V, N]

	// Validate checks every structural invariant of the strategy.
	Validate() error
	String() string
}
