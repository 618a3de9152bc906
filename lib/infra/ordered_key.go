package infra

type Signed interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

// Unsigned is a constraint that permits any unsigned integer type.
type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

type Integer interface {
	Signed | Unsigned
}

type Float interface {
	~float32 | ~float64
}

// OrderedKey
// Keys with an intrinsic ordering. Complex numbers are excluded,
// they have no total order.
type OrderedKey interface {
	Integer | Float | ~string
}

// LessFunc reports whether i strictly precedes j.
// It must define a strict total order:
//  1. !less(i, i)
//  2. less(i, j) implies !less(j, i)
//  3. less(i, j) && less(j, k) implies less(i, k)
type LessFunc[K any] func(i, j K) bool

func NaturalLess[K OrderedKey](i, j K) bool {
	return i < j
}

// Reverse flips the order of an existing comparator.
func (less LessFunc[K]) Reverse() LessFunc[K] {
	if less == nil {
		return nil
	}
	return func(i, j K) bool {
		return less(j, i)
	}
}

// Equal derives equality from the strict order.
func (less LessFunc[K]) Equal(i, j K) bool {
	return !less(i, j) && !less(j, i)
}
