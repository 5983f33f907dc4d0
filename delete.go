package critcell

import (
	"github.com/mhio/critcell/internal/cellnode"
	"github.com/mhio/critcell/internal/stats"
)

// Remove deletes the object equal by value to obj. It fails with
// ErrNotFound if no such key is indexed (spec.md §4.5).
func (t *Tree[T]) Remove(obj T) error {
	if t.ops == nil {
		return ErrNil
	}
	switch t.kind {
	case rootEmpty:
		return ErrNotFound
	case rootObj:
		if t.ops.FirstDiff(obj, t.obj, kbitsLimit) != -1 {
			return ErrNotFound
		}
		t.kind = rootEmpty
		var zero T
		t.obj = zero
		t.count = 0
		return nil
	}

	found, cell, node, side := descend(t.cell, 0, obj, t.ops)
	if t.ops.FirstDiff(obj, found, kbitsLimit) != -1 {
		return ErrNotFound
	}

	mine := cell.Nodes[node].Child[side]
	sibling := cell.Nodes[node].Child[1-side]
	cell.FreePtr(mine.Index())

	switch {
	case sibling.IsNode():
		// Collapse: the sibling subtree becomes this node's own content
		// (spec.md §4.5 step 2), regardless of whether node is the
		// cell's root (slot 0) or an interior node.
		sidx := sibling.Index()
		cell.Nodes[node] = cell.Nodes[sidx]
		cell.FreeNode(sidx)
		t.rebalance(cell)
	case node == 0:
		// The cell's only node is gone; its sole surviving edge is
		// absorbed into the parent (or, for the tree's root cell,
		// becomes the new root).
		t.collapseCellToSingleEdge(cell, sibling)
	default:
		pp, pside, _ := cell.NodeParent(node)
		cell.Nodes[pp].Child[pside] = sibling
		cell.FreeNode(node)
		t.rebalance(cell)
	}

	t.count--
	return nil
}

// collapseCellToSingleEdge implements spec.md §4.5's push-up for a cell
// whose last node has just vanished, leaving a single surviving edge
// (survivor). For the tree's own root cell this degenerates the tree
// instead of touching a parent that doesn't exist.
func (t *Tree[T]) collapseCellToSingleEdge(cell *cellnode.Cell[T], survivor cellnode.Tag) {
	if cell.Parent == nil {
		if survivor.IsObj() {
			t.kind = rootObj
			t.obj = cell.Ptrs[survivor.Index()].Obj
			t.cell = nil
		} else {
			child := cell.Ptrs[survivor.Index()].Cell
			child.Parent = nil
			t.cell = child
		}
		t.cfg.Stats.RecordPushUp()
		t.cfg.Stats.CellFreed()
		return
	}

	parent := cell.Parent
	ptrIdx, pNode, pSide, ok := parent.Anchor(cell)
	if !ok {
		return
	}
	if survivor.IsObj() {
		parent.Ptrs[ptrIdx] = cellnode.Ptr[T]{Kind: cellnode.PtrObj, Obj: cell.Ptrs[survivor.Index()].Obj}
		parent.Nodes[pNode].Child[pSide] = cellnode.ObjTag(ptrIdx)
	} else {
		grand := cell.Ptrs[survivor.Index()].Cell
		grand.Parent = parent
		parent.Ptrs[ptrIdx] = cellnode.Ptr[T]{Kind: cellnode.PtrCell, Cell: grand}
		parent.Nodes[pNode].Child[pSide] = cellnode.CellTag(ptrIdx)
	}
	t.cfg.Stats.RecordPushUp()
	t.cfg.Stats.CellFreed()
}

// rebalance climbs from cell toward the root, merging any non-root cell
// that has dropped below the configured CellMin into its parent
// (merge-up), or optionally into a child (merge-down), per spec.md §4.5
// steps 4-5. The root cell is exempt (invariant 6: it may degenerate to a
// singleton).
func (t *Tree[T]) rebalance(cell *cellnode.Cell[T]) {
	min := t.cfg.cellMin()
	for cell != nil && cell.Parent != nil && int(cell.Count) < min {
		parent := cell.Parent
		if mergeUp(parent, cell) {
			t.cfg.Stats.RecordMergeUp()
			t.cfg.Stats.CellFreed()
			cell = parent
			continue
		}
		if t.cfg.MergeDown && mergeDownAny(cell, t.cfg.Stats) {
			continue
		}
		t.cfg.Stats.RecordFailedMerge()
		return
	}
}

// mergeUp folds child's entire subtree into parent (spec.md §4.5 step 4).
// It frees parent's anchor pointer slot first, so that slot is available
// again for the absorbed subtree's edges, then points the anchor position
// at the absorbed subtree's new top node. Returns false if the combined
// population doesn't fit or child has no discoverable anchor in parent.
func mergeUp[T any](parent, child *cellnode.Cell[T]) bool {
	if int(child.Count)+int(parent.Count) > cellnode.NodesPerCell {
		return false
	}
	ptrIdx, pNode, pSide, ok := parent.Anchor(child)
	if !ok {
		return false
	}
	parent.FreePtr(ptrIdx)

	occupied := child.OccupiedNodes()
	remap := make(map[uint8]uint8, len(occupied))
	for _, idx := range occupied {
		nn, ok2 := parent.AllocNode()
		if !ok2 {
			return false
		}
		remap[idx] = nn
	}
	for _, idx := range occupied {
		content := child.Nodes[idx]
		for side := uint8(0); side < 2; side++ {
			ch := content.Child[side]
			switch {
			case ch.IsNode():
				content.Child[side] = cellnode.NodeTag(remap[ch.Index()])
			case ch.IsObj():
				npi, _ := parent.AllocPtr(cellnode.PtrObj)
				parent.Ptrs[npi].Obj = child.Ptrs[ch.Index()].Obj
				content.Child[side] = cellnode.ObjTag(npi)
			case ch.IsCell():
				grand := child.Ptrs[ch.Index()].Cell
				npi, _ := parent.AllocPtr(cellnode.PtrCell)
				grand.Parent = parent
				parent.Ptrs[npi].Cell = grand
				content.Child[side] = cellnode.CellTag(npi)
			}
		}
		parent.Nodes[remap[idx]] = content
	}

	parent.Nodes[pNode].Child[pSide] = cellnode.NodeTag(remap[0])
	return true
}

// mergeDownAny implements the optional merge-down pass (spec.md §4.5 step
// 5, gated by Config.MergeDown): fold any one child cell of cell into
// cell itself if the combined population fits.
func mergeDownAny[T any](cell *cellnode.Cell[T], st *stats.Stats) bool {
	for i := uint8(0); i < cellnode.PtrSlots; i++ {
		if !cell.PtrOccupied(i) || cell.Ptrs[i].Kind != cellnode.PtrCell {
			continue
		}
		child := cell.Ptrs[i].Cell
		if mergeUp(cell, child) {
			st.RecordMergeDown()
			st.CellFreed()
			return true
		}
	}
	return false
}
