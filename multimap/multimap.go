// Package multimap provides a thread-safe multi-map from Key objects to a
// set of values of one comparable type. Keys are compared byte-wise, in
// the case of strings using normalized, bytewise-lexicographic order via
// Key's own encoding.
//
// Internally, keys are indexed in a github.com/mhio/critcell.Tree rather
// than a flat slice or hash map: lookups (ContainsKey, ValuesFor) are
// O(log n) key descents instead of a linear scan, and range queries
// (ValuesBetweenInclusive and friends) walk entries in key order via the
// tree's All iterator, the reason a clustered crit-bit tree belongs under
// this package at all.
//
// Concurrency: all exported methods are safe for concurrent use by
// multiple goroutines.
package multimap

import (
	"sync"

	set3 "github.com/TomTonic/Set3"
	"github.com/mhio/critcell"
)

// Key is the key type multi-map entries are ordered by. It is critcell's
// own Key: a byte-string with order-preserving constructors for strings
// and fixed-width integers.
type Key = critcell.Key

// FromString, FromInt64 and FromUint64 are re-exported so callers of this
// package need not import critcell directly for the common constructors.
var (
	FromString = critcell.FromString
	FromInt64  = critcell.FromInt64
	FromUint64 = critcell.FromUint64
)

type entry[T comparable] struct {
	key    Key
	values *set3.Set3[T]
}

func entryBytes[T comparable](e *entry[T]) []byte {
	return e.key.Bytes()
}

// MultiMap is a multi-map from Key to a set of values of type T. The zero
// value is not usable; construct with New.
type MultiMap[T comparable] struct {
	mu   sync.RWMutex
	tree *critcell.Tree[*entry[T]]
}

// New creates an empty MultiMap.
func New[T comparable]() *MultiMap[T] {
	return &MultiMap[T]{
		tree: critcell.New(critcell.CStrBitOps(entryBytes[T])),
	}
}

func (m *MultiMap[T]) probe(key Key) *entry[T] {
	return &entry[T]{key: key}
}

// AddValue adds v to the set of values stored under key, cloning key on
// first insertion so later mutation of the caller's slice cannot corrupt
// the index.
func (m *MultiMap[T]) AddValue(key Key, v T) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.tree.Find(m.probe(key)); ok {
		e.values.Add(v)
		return
	}
	e := &entry[T]{key: key.Clone(), values: set3.From(v)}
	if err := m.tree.Add(e); err != nil {
		// Add can only fail with ErrDuplicate here, and Find above just
		// established the key is absent; any other failure is a bug.
		panic(err)
	}
}

// RemoveValue removes v from key's value set. A no-op if key or v is
// absent. If v was the last value for key, key itself is removed.
func (m *MultiMap[T]) RemoveValue(key Key, v T) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.tree.Find(m.probe(key))
	if !ok {
		return
	}
	e.values.Remove(v)
	if e.values.Size() == 0 {
		_ = m.tree.Remove(e)
	}
}

// ContainsKey reports whether key has at least one value stored.
func (m *MultiMap[T]) ContainsKey(key Key) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tree.Contains(m.probe(key))
}

// RemoveKey removes key and all of its values. A no-op if key is absent.
func (m *MultiMap[T]) RemoveKey(key Key) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.tree.Find(m.probe(key)); ok {
		_ = m.tree.Remove(e)
	}
}

// ValuesFor returns a clone of the value set stored under key, or an
// empty set if key is absent.
func (m *MultiMap[T]) ValuesFor(key Key) *set3.Set3[T] {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.tree.Find(m.probe(key)); ok {
		return e.values.Clone()
	}
	return set3.Empty[T]()
}

// AllValues returns the union of every key's value set.
func (m *MultiMap[T]) AllValues() *set3.Set3[T] {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := set3.Empty[T]()
	for e := range m.tree.All() {
		out.AddAll(e.values)
	}
	return out
}

// NumberOfKeys returns the number of distinct keys currently stored.
func (m *MultiMap[T]) NumberOfKeys() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tree.Count()
}

// AllKeys returns every stored key, in ascending order.
func (m *MultiMap[T]) AllKeys() []Key {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Key, 0, m.tree.Count())
	for e := range m.tree.All() {
		out = append(out, e.key)
	}
	return out
}

// Clear removes every key and value.
func (m *MultiMap[T]) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tree.Destroy()
}

func (m *MultiMap[T]) rangeValues(match func(k Key) bool) *set3.Set3[T] {
	out := set3.Empty[T]()
	for e := range m.tree.All() {
		if match(e.key) {
			out.AddAll(e.values)
		}
	}
	return out
}

// ValuesBetweenInclusive returns the union of values for every key k with
// from <= k <= to.
func (m *MultiMap[T]) ValuesBetweenInclusive(from, to Key) *set3.Set3[T] {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rangeValues(func(k Key) bool { return !k.Less(from) && !to.Less(k) })
}

// ValuesBetweenExclusive returns the union of values for every key k with
// from < k < to.
func (m *MultiMap[T]) ValuesBetweenExclusive(from, to Key) *set3.Set3[T] {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rangeValues(func(k Key) bool { return from.Less(k) && k.Less(to) })
}

// ValuesFromInclusive returns the union of values for every key k >= from.
func (m *MultiMap[T]) ValuesFromInclusive(from Key) *set3.Set3[T] {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rangeValues(func(k Key) bool { return !k.Less(from) })
}

// ValuesFromExclusive returns the union of values for every key k > from.
func (m *MultiMap[T]) ValuesFromExclusive(from Key) *set3.Set3[T] {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rangeValues(func(k Key) bool { return from.Less(k) })
}

// ValuesToInclusive returns the union of values for every key k <= to.
func (m *MultiMap[T]) ValuesToInclusive(to Key) *set3.Set3[T] {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rangeValues(func(k Key) bool { return !to.Less(k) })
}

// ValuesToExclusive returns the union of values for every key k < to.
func (m *MultiMap[T]) ValuesToExclusive(to Key) *set3.Set3[T] {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rangeValues(func(k Key) bool { return k.Less(to) })
}
