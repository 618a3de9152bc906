package kv

import "io"

type SafeStoreKeyFilterFunc[K comparable] func(key K) bool

type Closable interface {
	io.Closer
}

// ThreadSafeStorer lists its keys and values in key order.
type ThreadSafeStorer[K comparable, V any] interface {
	Purge() error
	AddOrUpdate(key K, obj V) error
	Replace(items map[K]V) error
	Delete(key K) (V, error)
	Get(key K) (item V, exists bool)
	Len() int64
	ListKeys(filters ...SafeStoreKeyFilterFunc[K]) []K
	ListValues(keys ...K) (items []V)
}
