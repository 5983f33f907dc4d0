package critcell

import (
	"github.com/mhio/critcell/internal/cellnode"
	"github.com/mhio/critcell/internal/stats"
)

// maxAddRetries bounds the push-down/split retry loop in Add. Each retry
// strictly reduces the target cell's occupancy by at least one node, so
// in practice one or two iterations suffice; the bound exists only to
// turn a logic error into a returned error instead of a hang.
const maxAddRetries = 64

// Add inserts obj by value. It fails with ErrDuplicate if an equal key is
// already indexed (spec.md §4.4).
func (t *Tree[T]) Add(obj T) error {
	if t.ops == nil {
		return ErrNil
	}
	switch t.kind {
	case rootEmpty:
		t.kind = rootObj
		t.obj = obj
		t.count = 1
		return nil
	case rootObj:
		return t.addSecondObject(obj)
	}

	for attempt := 0; attempt < maxAddRetries; attempt++ {
		witness, _, _, _ := descend(t.cell, 0, obj, t.ops)
		c := t.ops.FirstDiff(obj, witness, kbitsLimit)
		if c < 0 {
			return ErrDuplicate
		}
		b := uint8(t.ops.GetBit(obj, c))

		upperCell, upperValid, upperNode, upperSide := locateInsertionPoint(t.cell, obj, c, t.ops)
		target := upperCell
		if !upperValid {
			target = t.cell
		}

		if target.FreeNodeSlots() >= 1 && target.FreePtrSlots() >= 1 {
			if upperValid {
				installBeside(target, upperNode, upperSide, obj, c, b)
			} else {
				installAsRoot(target, obj, c, b)
			}
			t.count++
			return nil
		}

		if !tryPushDown(target, t.cfg.Stats) {
			if _, err := trySplit(target, t.cfg.Stats); err != nil {
				return err
			}
		}
	}
	return ErrOutOfMemory
}

// addSecondObject handles the rootObj -> rootCell transition: the tree's
// first crit-bit node is created, holding the two objects as its
// children.
func (t *Tree[T]) addSecondObject(obj T) error {
	c := t.ops.FirstDiff(obj, t.obj, kbitsLimit)
	if c < 0 {
		return ErrDuplicate
	}
	b := uint8(t.ops.GetBit(obj, c))

	cell := cellnode.New[T]()
	cell.ClaimRoot()
	oldIdx, _ := cell.AllocPtr(cellnode.PtrObj)
	cell.Ptrs[oldIdx].Obj = t.obj
	newIdx, _ := cell.AllocPtr(cellnode.PtrObj)
	cell.Ptrs[newIdx].Obj = obj

	cell.Nodes[0].Cbit = int32(c)
	cell.Nodes[0].Child[b] = cellnode.ObjTag(newIdx)
	cell.Nodes[0].Child[1-b] = cellnode.ObjTag(oldIdx)

	t.kind = rootCell
	t.cell = cell
	var zero T
	t.obj = zero
	t.count = 2
	t.cfg.Stats.CellAllocated()
	return nil
}

// locateInsertionPoint implements spec.md §4.4's insertion-point rule:
// walk the root-to-leaf path by obj's key, tracking the last node with
// cbit < c (upper). The new node always ends up installed in upper's own
// cell, replacing upper's child reference with a reference to the new
// node — so only upper's cell/node/side need to be returned; "lower" is
// simply whatever tag currently sits at that position.
func locateInsertionPoint[T any](root *cellnode.Cell[T], obj T, c int, ops BitOps[T]) (upperCell *cellnode.Cell[T], upperValid bool, upperNode, upperSide uint8) {
	cell := root
	nodeIdx := uint8(0)
	for {
		n := &cell.Nodes[nodeIdx]
		if int(n.Cbit) >= c {
			return upperCell, upperValid, upperNode, upperSide
		}
		upperCell, upperValid, upperNode = cell, true, nodeIdx
		side := uint8(ops.GetBit(obj, int(n.Cbit)))
		upperSide = side
		child := n.Child[side]
		switch {
		case child.IsNode():
			nodeIdx = child.Index()
		case child.IsCell():
			cell = cell.Ptrs[child.Index()].Cell
			nodeIdx = 0
		default: // IsObj
			return upperCell, upperValid, upperNode, upperSide
		}
	}
}

// installBeside allocates a fresh node+pointer slot in target, wiring the
// new node between upper and whatever upper used to point to.
func installBeside[T any](target *cellnode.Cell[T], upperNode, upperSide uint8, obj T, c int, b uint8) {
	oldTag := target.Nodes[upperNode].Child[upperSide]
	nn, _ := target.AllocNode()
	pidx, _ := target.AllocPtr(cellnode.PtrObj)
	target.Ptrs[pidx].Obj = obj
	target.Nodes[nn].Cbit = int32(c)
	target.Nodes[nn].Child[b] = cellnode.ObjTag(pidx)
	target.Nodes[nn].Child[1-b] = oldTag
	target.Nodes[upperNode].Child[upperSide] = cellnode.NodeTag(nn)
}

// installAsRoot handles the "upper does not exist" case: the new node
// takes over slot 0, and the old root's content is relocated to a fresh
// slot to become the new node's other child (spec.md §4.4).
func installAsRoot[T any](target *cellnode.Cell[T], obj T, c int, b uint8) {
	old := target.Nodes[0]
	nn, _ := target.AllocNode()
	target.Nodes[nn] = old
	pidx, _ := target.AllocPtr(cellnode.PtrObj)
	target.Ptrs[pidx].Obj = obj

	var fresh cellnode.Node
	fresh.Cbit = int32(c)
	fresh.Child[b] = cellnode.ObjTag(pidx)
	fresh.Child[1-b] = cellnode.NodeTag(nn)
	target.Nodes[0] = fresh
}

// tryPushDown implements spec.md §4.4's push-down: relocate a peripheral
// edge node from a full cell into a child cell with room, making space
// without allocating a new cell. Node slot 0 is never a push-down
// candidate — it is the cell's own subtree root, and removing it would
// leave the cell without one.
func tryPushDown[T any](cell *cellnode.Cell[T], st *stats.Stats) bool {
	for _, i := range cell.OccupiedNodes() {
		if i == 0 {
			continue
		}
		n := cell.Nodes[i]
		for side := uint8(0); side < 2; side++ {
			other := 1 - side
			if !n.Child[side].IsCell() || n.Child[other].IsNode() {
				continue
			}
			sub := cell.Ptrs[n.Child[side].Index()].Cell
			if sub.FreeNodeSlots() < 1 || sub.FreePtrSlots() < 1 {
				continue
			}
			pushDownInto(cell, sub, i, side, other, n)
			st.RecordPushDown()
			return true
		}
	}
	return false
}

func pushDownInto[T any](cell, sub *cellnode.Cell[T], i uint8, side, other uint8, n cellnode.Node) {
	oldRoot := sub.Nodes[0]
	fresh, _ := sub.AllocNode()
	sub.Nodes[fresh] = oldRoot

	var newPtrIdx uint8
	siblingTag := n.Child[other]
	if siblingTag.IsCell() {
		grand := cell.Ptrs[siblingTag.Index()].Cell
		newPtrIdx, _ = sub.AllocPtr(cellnode.PtrCell)
		sub.Ptrs[newPtrIdx].Cell = grand
		grand.Parent = sub
	} else {
		newPtrIdx, _ = sub.AllocPtr(cellnode.PtrObj)
		sub.Ptrs[newPtrIdx].Obj = cell.Ptrs[siblingTag.Index()].Obj
	}
	cell.FreePtr(siblingTag.Index())

	var pushed cellnode.Node
	pushed.Cbit = n.Cbit
	pushed.Child[side] = cellnode.NodeTag(fresh)
	if siblingTag.IsCell() {
		pushed.Child[other] = cellnode.CellTag(newPtrIdx)
	} else {
		pushed.Child[other] = cellnode.ObjTag(newPtrIdx)
	}
	sub.Nodes[0] = pushed

	pp, pside, _ := cell.NodeParent(i)
	cell.Nodes[pp].Child[pside] = cellnode.CellTag(n.Child[side].Index())
	cell.FreeNode(i)
}

// trySplit implements spec.md §4.4's split: partition cell's internal
// subtree at a pivot node into a new sibling cell. Allocation of the new
// cell happens before any mutation of cell, so a failure (never actually
// reachable under Go's allocator, but structurally preserved per §7)
// leaves cell untouched.
func trySplit[T any](cell *cellnode.Cell[T], st *stats.Stats) (*cellnode.Cell[T], error) {
	pivot, ok := choosePivot(cell)
	if !ok {
		return nil, ErrOutOfMemory
	}
	descendants := cell.SubtreeNodes(pivot)

	newCell := cellnode.New[T]()
	newCell.ClaimRoot()

	for _, d := range descendants {
		if d == pivot {
			continue
		}
		newCell.ClaimNodeAt(d)
		moveNodeInto(newCell, cell, d, cell.Nodes[d])
	}
	moveNodeInto(newCell, cell, 0, cell.Nodes[pivot])

	pp, pside, ok := cell.NodeParent(pivot)
	if !ok {
		return nil, ErrOutOfMemory
	}
	ptrIdx, _ := cell.AllocPtr(cellnode.PtrCell)
	cell.Ptrs[ptrIdx].Cell = newCell
	cell.Nodes[pp].Child[pside] = cellnode.CellTag(ptrIdx)
	newCell.Parent = cell

	for _, d := range descendants {
		cell.FreeNode(d)
	}

	st.RecordSplit()
	st.CellAllocated()
	return newCell, nil
}

// moveNodeInto writes content (from oldCell) into newCell at destSlot,
// relocating any leaf-edge pointer targets into newCell's own pointer
// array and re-parenting any moved child cell. Intra-cell node children
// are left as-is: split preserves descendant slot numbers, so a NodeTag
// already refers to the right slot in newCell.
func moveNodeInto[T any](newCell, oldCell *cellnode.Cell[T], destSlot uint8, content cellnode.Node) {
	for side := uint8(0); side < 2; side++ {
		ch := content.Child[side]
		switch {
		case ch.IsObj():
			obj := oldCell.Ptrs[ch.Index()].Obj
			ni, _ := newCell.AllocPtr(cellnode.PtrObj)
			newCell.Ptrs[ni].Obj = obj
			oldCell.FreePtr(ch.Index())
			content.Child[side] = cellnode.ObjTag(ni)
		case ch.IsCell():
			grand := oldCell.Ptrs[ch.Index()].Cell
			ni, _ := newCell.AllocPtr(cellnode.PtrCell)
			newCell.Ptrs[ni].Cell = grand
			grand.Parent = newCell
			oldCell.FreePtr(ch.Index())
			content.Child[side] = cellnode.CellTag(ni)
		}
	}
	newCell.Nodes[destSlot] = content
}

// choosePivot implements spec.md §4.4's pivot search: DFS from every
// interior node (not slot 0, not a "leaf" node with no node children),
// preferring the subtree size closest to NodesPerCell/2.
func choosePivot[T any](cell *cellnode.Cell[T]) (uint8, bool) {
	best := uint8(0)
	bestScore := -1
	found := false
	for _, i := range cell.OccupiedNodes() {
		if i == 0 {
			continue
		}
		n := cell.Nodes[i]
		if !n.Child[0].IsNode() && !n.Child[1].IsNode() {
			continue // leaf node: no node descendants to partition off
		}
		size := len(cell.SubtreeNodes(i))
		score := abs(2*size - cellnode.NodesPerCell)
		if !found || score < bestScore {
			found, bestScore, best = true, score, i
		}
	}
	return best, found
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
