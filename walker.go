package critcell

import "github.com/mhio/critcell/internal/cellnode"

// descend performs the key-guided descent of spec.md §4.3: starting at
// (cell, nodeIdx), follow GetBit(obj, cbit) at every node, crossing cell
// boundaries transparently, until a UOBJ edge is reached. The returned
// object is a by-structure match only — the caller must confirm it with
// FirstDiff before treating it as a by-value hit.
func descend[T any](cell *cellnode.Cell[T], nodeIdx uint8, obj T, ops BitOps[T]) (found T, atCell *cellnode.Cell[T], atNode uint8, atSide uint8) {
	for {
		n := &cell.Nodes[nodeIdx]
		side := uint8(ops.GetBit(obj, int(n.Cbit)))
		child := n.Child[side]
		switch {
		case child.IsNode():
			nodeIdx = child.Index()
		case child.IsCell():
			cell = cell.Ptrs[child.Index()].Cell
			nodeIdx = 0
		default: // IsObj
			return cell.Ptrs[child.Index()].Obj, cell, nodeIdx, side
		}
	}
}

// rushToExtreme descends following child[d] at every node, across cell
// boundaries, until a UOBJ edge is reached (spec.md §4.3). Used both for
// First/Last and as the inner step of ancestor climb.
func rushToExtreme[T any](cell *cellnode.Cell[T], nodeIdx uint8, d uint8) (found T, atCell *cellnode.Cell[T], atNode uint8, atSide uint8) {
	for {
		n := &cell.Nodes[nodeIdx]
		child := n.Child[d]
		switch {
		case child.IsNode():
			nodeIdx = child.Index()
		case child.IsCell():
			cell = cell.Ptrs[child.Index()].Cell
			nodeIdx = 0
		default: // IsObj
			return cell.Ptrs[child.Index()].Obj, cell, nodeIdx, d
		}
	}
}

// climbFindPivot performs one cell's worth of the key-guided descent used
// by ancestor climb (spec.md §4.3): walk cell from node 0 following obj's
// key bits, stopping before stopAtNode (pass a value >= NodesPerCell,
// e.g. 0xFF, for an ancestor cell with no such boundary). It tracks the
// deepest visited node whose key-bit differs from d — the pivot whose
// opposite subtree holds the in-order neighbor in direction d.
func climbFindPivot[T any](cell *cellnode.Cell[T], stopAtNode uint8, obj T, d uint8, ops BitOps[T]) (pivot uint8, found bool) {
	nodeIdx := uint8(0)
	for {
		if nodeIdx == stopAtNode {
			return
		}
		n := &cell.Nodes[nodeIdx]
		bit := uint8(ops.GetBit(obj, int(n.Cbit)))
		if bit != d {
			pivot, found = nodeIdx, true
		}
		child := n.Child[bit]
		if !child.IsNode() {
			return
		}
		nodeIdx = child.Index()
	}
}

// enterChild resolves a child tag into a descent starting point: the
// cell/node pair to hand to rushToExtreme, or (for a direct UOBJ edge)
// the object and cursor position immediately.
func enterChild[T any](cell *cellnode.Cell[T], child cellnode.Tag) (obj T, atCell *cellnode.Cell[T], atNode uint8, isObj bool) {
	switch {
	case child.IsObj():
		return cell.Ptrs[child.Index()].Obj, nil, 0, true
	case child.IsCell():
		return obj, cell.Ptrs[child.Index()].Cell, 0, false
	default: // IsNode
		return obj, cell, child.Index(), false
	}
}
