// Package store provides the ordered object store used by every module
// registry: a balanced tree keyed by a comparable key and holding one
// record per key.
//
// A Store is not safe for concurrent use. Callers hold their module lock
// around every sequence of operations.
package store

import (
	"cmp"

	"github.com/google/btree"

	"github.com/Nativu5/sai-adapter/pkg/types"
)

// degree of the underlying B-tree. Registries stay small (hundreds of
// sessions, a few attachments each), so a narrow node is enough.
const degree = 8

type entry[K any, V any] struct {
	key K
	val V
}

// Store is an ordered map from K to V.
type Store[K any, V any] struct {
	tree    *btree.BTreeG[entry[K, V]]
	compare func(a, b K) int
}

// New returns an empty store ordered by compare, which must return a
// negative number, zero or a positive number like cmp.Compare.
func New[K any, V any](compare func(a, b K) int) *Store[K, V] {
	less := func(a, b entry[K, V]) bool {
		return compare(a.key, b.key) < 0
	}
	return &Store[K, V]{
		tree:    btree.NewG[entry[K, V]](degree, less),
		compare: compare,
	}
}

// NewOrdered returns an empty store for a naturally ordered key type.
func NewOrdered[K cmp.Ordered, V any]() *Store[K, V] {
	return New[K, V](cmp.Compare[K])
}

// Insert adds val under key. It fails with StatusItemAlreadyExists, leaving
// the store unchanged, if the key is already present.
func (s *Store[K, V]) Insert(key K, val V) error {
	if s.tree.Has(entry[K, V]{key: key}) {
		return types.StatusItemAlreadyExists
	}
	s.tree.ReplaceOrInsert(entry[K, V]{key: key, val: val})
	return nil
}

// Get returns the record stored under key.
func (s *Store[K, V]) Get(key K) (V, bool) {
	e, ok := s.tree.Get(entry[K, V]{key: key})
	return e.val, ok
}

// Has reports whether key is present.
func (s *Store[K, V]) Has(key K) bool {
	return s.tree.Has(entry[K, V]{key: key})
}

// Remove deletes key and returns the record it held. A missing key is
// reported through the boolean, never as an error.
func (s *Store[K, V]) Remove(key K) (V, bool) {
	e, ok := s.tree.Delete(entry[K, V]{key: key})
	return e.val, ok
}

// First returns the smallest key and its record.
func (s *Store[K, V]) First() (K, V, bool) {
	e, ok := s.tree.Min()
	return e.key, e.val, ok
}

// Next returns the smallest key strictly greater than key. key itself need
// not be present, so iteration survives removal of the current record.
func (s *Store[K, V]) Next(key K) (K, V, bool) {
	var (
		next  entry[K, V]
		found bool
	)
	s.tree.AscendGreaterOrEqual(entry[K, V]{key: key}, func(e entry[K, V]) bool {
		if s.compare(e.key, key) == 0 {
			return true
		}
		next, found = e, true
		return false
	})
	return next.key, next.val, found
}

// Ascend calls fn for every record in key order until fn returns false.
// fn must not mutate the store.
func (s *Store[K, V]) Ascend(fn func(key K, val V) bool) {
	s.tree.Ascend(func(e entry[K, V]) bool {
		return fn(e.key, e.val)
	})
}

// Keys returns every key in order.
func (s *Store[K, V]) Keys() []K {
	keys := make([]K, 0, s.tree.Len())
	s.Ascend(func(key K, _ V) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

// Len returns the number of records.
func (s *Store[K, V]) Len() int {
	return s.tree.Len()
}

// Empty reports whether the store holds no records.
func (s *Store[K, V]) Empty() bool {
	return s.tree.Len() == 0
}
