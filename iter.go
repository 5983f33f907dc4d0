package critcell

import "iter"

// All yields every indexed object in ascending key order, as a Go 1.23
// range-func iterator over the cursor API's First/Next primitives
// (spec.md §4.6 names First/Next as the spec'd iteration primitive; this
// is sugar over it, matching modern idiomatic Go per koji-hirono's
// critbit reference in the example pack).
func (t *Tree[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		obj, cur, ok := t.First()
		for ok {
			if !yield(obj) {
				return
			}
			obj, cur, ok = t.Next(cur)
		}
	}
}

// Descending yields every indexed object in descending key order.
func (t *Tree[T]) Descending() iter.Seq[T] {
	return func(yield func(T) bool) {
		obj, cur, ok := t.Last()
		for ok {
			if !yield(obj) {
				return
			}
			obj, cur, ok = t.Prev(cur)
		}
	}
}

// Clone returns a new tree holding the same objects, built by
// re-insertion rather than a structural byte-copy — the cell layout a
// fresh Add sequence produces need not match the source tree's, and
// nothing in the contract requires it to.
func (t *Tree[T]) Clone() *Tree[T] {
	nt := NewWithConfig(t.ops, t.cfg)
	for obj := range t.All() {
		_ = nt.Add(obj)
	}
	return nt
}

// EqualKeySet reports whether t and other index the same set of keys
// (spec.md §8's "Insertion commutes" law property is checked against this
// in tests: inserting two keys in either order must yield trees that
// compare equal here).
func (t *Tree[T]) EqualKeySet(other *Tree[T]) bool {
	if t.count != other.count {
		return false
	}
	for obj := range t.All() {
		if !other.Contains(obj) {
			return false
		}
	}
	return true
}
