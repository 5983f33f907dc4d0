package critcell

import "github.com/mhio/critcell/internal/cellnode"

// Cursor identifies the outgoing edge of a specific crit-bit node that
// currently leads to a particular user object (spec.md §3). It is the
// handle ordered iteration (Next/Prev) advances from. The zero Cursor is
// not valid; obtain one from First, Last, Locate, or a prior Next/Prev.
type Cursor[T any] struct {
	obj       T
	cell      *cellnode.Cell[T]
	node      uint8
	side      uint8
	singleton bool
	valid     bool
}

// Object returns the user object this cursor currently references.
func (c Cursor[T]) Object() T { return c.obj }

// Valid reports whether the cursor references a live position.
func (c Cursor[T]) Valid() bool { return c.valid }

// First returns the object with the smallest key, and a cursor at its
// position. ok is false for an empty tree.
func (t *Tree[T]) First() (obj T, cur Cursor[T], ok bool) {
	switch t.kind {
	case rootEmpty:
		return obj, cur, false
	case rootObj:
		return t.obj, Cursor[T]{obj: t.obj, singleton: true, valid: true}, true
	default:
		o, c, n, s := rushToExtreme(t.cell, 0, 0)
		return o, Cursor[T]{obj: o, cell: c, node: n, side: s, valid: true}, true
	}
}

// Last returns the object with the largest key, and a cursor at its
// position. ok is false for an empty tree.
func (t *Tree[T]) Last() (obj T, cur Cursor[T], ok bool) {
	switch t.kind {
	case rootEmpty:
		return obj, cur, false
	case rootObj:
		return t.obj, Cursor[T]{obj: t.obj, singleton: true, valid: true}, true
	default:
		o, c, n, s := rushToExtreme(t.cell, 0, 1)
		return o, Cursor[T]{obj: o, cell: c, node: n, side: s, valid: true}, true
	}
}

// Next returns the in-order successor of cur's object, and a cursor at
// its position. ok is false at the global maximum or for a singleton
// tree (spec.md §8 boundary behaviors).
func (t *Tree[T]) Next(cur Cursor[T]) (T, Cursor[T], bool) { return t.step(cur, 1) }

// Prev returns the in-order predecessor of cur's object, and a cursor at
// its position. ok is false at the global minimum or for a singleton
// tree.
func (t *Tree[T]) Prev(cur Cursor[T]) (T, Cursor[T], bool) { return t.step(cur, 0) }

// step implements spec.md §4.3's ancestor climb for direction d (1 for
// successor, 0 for predecessor): if cur sits on the non-d side of its
// node, the neighbor is the immediate sibling subtree; otherwise climb
// parent links, cell by cell, re-descending each ancestor along cur's own
// key until a node diverges from d.
func (t *Tree[T]) step(cur Cursor[T], d uint8) (obj T, nc Cursor[T], ok bool) {
	if !cur.valid || cur.singleton {
		return obj, nc, false
	}
	if cur.side != d {
		child := cur.cell.Nodes[cur.node].Child[d]
		o, atCell, atNode, isObj := enterChild(cur.cell, child)
		if isObj {
			return o, Cursor[T]{obj: o, cell: cur.cell, node: cur.node, side: d, valid: true}, true
		}
		o2, c2, n2, s2 := rushToExtreme(atCell, atNode, 1-d)
		return o2, Cursor[T]{obj: o2, cell: c2, node: n2, side: s2, valid: true}, true
	}

	cell := cur.cell
	stop := cur.node
	for cell != nil {
		pivot, found := climbFindPivot(cell, stop, cur.obj, d, t.ops)
		if found {
			entry := cell.Nodes[pivot].Child[d]
			o, atCell, atNode, isObj := enterChild(cell, entry)
			if isObj {
				return o, Cursor[T]{obj: o, cell: cell, node: pivot, side: d, valid: true}, true
			}
			o2, c2, n2, s2 := rushToExtreme(atCell, atNode, 1-d)
			return o2, Cursor[T]{obj: o2, cell: c2, node: n2, side: s2, valid: true}, true
		}
		cell = cell.Parent
		stop = 0xFF
	}
	return obj, nc, false
}
