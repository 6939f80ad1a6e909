package store

import (
	"cmp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nativu5/sai-adapter/pkg/types"
)

type pairKey struct {
	port uint32
	dir  uint8
}

func comparePair(a, b pairKey) int {
	if c := cmp.Compare(a.port, b.port); c != 0 {
		return c
	}
	return cmp.Compare(a.dir, b.dir)
}

func TestStore_InsertGetRemove(t *testing.T) {
	s := NewOrdered[uint64, string]()

	require.NoError(t, s.Insert(10, "ten"))
	require.NoError(t, s.Insert(5, "five"))

	v, ok := s.Get(10)
	assert.True(t, ok)
	assert.Equal(t, "ten", v)

	_, ok = s.Get(7)
	assert.False(t, ok)

	v, ok = s.Remove(5)
	assert.True(t, ok)
	assert.Equal(t, "five", v)
	assert.Equal(t, 1, s.Len())
}

func TestStore_DuplicateInsertRejected(t *testing.T) {
	s := NewOrdered[uint64, string]()
	require.NoError(t, s.Insert(1, "first"))

	err := s.Insert(1, "second")
	assert.ErrorIs(t, err, types.StatusItemAlreadyExists)

	v, _ := s.Get(1)
	assert.Equal(t, "first", v, "duplicate insert must not overwrite")
}

func TestStore_RemoveMissing(t *testing.T) {
	s := NewOrdered[uint64, int]()
	_, ok := s.Remove(42)
	assert.False(t, ok)
}

func TestStore_OrderedTraversal(t *testing.T) {
	s := NewOrdered[uint64, int]()
	for _, k := range []uint64{30, 10, 20, 40} {
		require.NoError(t, s.Insert(k, int(k)))
	}

	var got []uint64
	for k, _, ok := s.First(); ok; k, _, ok = s.Next(k) {
		got = append(got, k)
	}
	assert.Equal(t, []uint64{10, 20, 30, 40}, got)
	assert.Equal(t, got, s.Keys())
}

func TestStore_NextAfterRemoval(t *testing.T) {
	s := NewOrdered[uint64, int]()
	for _, k := range []uint64{1, 2, 3} {
		require.NoError(t, s.Insert(k, 0))
	}

	k, _, ok := s.First()
	require.True(t, ok)
	s.Remove(k)

	next, _, ok := s.Next(k)
	require.True(t, ok)
	assert.Equal(t, uint64(2), next)
}

func TestStore_CompositeKey(t *testing.T) {
	s := New[pairKey, string](comparePair)
	require.NoError(t, s.Insert(pairKey{port: 2, dir: 1}, "p2-egress"))
	require.NoError(t, s.Insert(pairKey{port: 2, dir: 0}, "p2-ingress"))
	require.NoError(t, s.Insert(pairKey{port: 1, dir: 1}, "p1-egress"))

	assert.Error(t, s.Insert(pairKey{port: 2, dir: 0}, "dup"))

	k, v, ok := s.First()
	require.True(t, ok)
	assert.Equal(t, pairKey{port: 1, dir: 1}, k)
	assert.Equal(t, "p1-egress", v)

	var vals []string
	s.Ascend(func(_ pairKey, v string) bool {
		vals = append(vals, v)
		return true
	})
	assert.Equal(t, []string{"p1-egress", "p2-ingress", "p2-egress"}, vals)
}

func TestStore_Empty(t *testing.T) {
	s := NewOrdered[uint64, int]()
	assert.True(t, s.Empty())
	_, _, ok := s.First()
	assert.False(t, ok)
	require.NoError(t, s.Insert(1, 1))
	assert.False(t, s.Empty())
}
