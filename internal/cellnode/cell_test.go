package cellnode

import "testing"

func TestTagRoundtrip(t *testing.T) {
	for i := uint8(0); i < NodesPerCell; i++ {
		tag := NodeTag(i)
		if !tag.IsNode() || tag.IsObj() || tag.IsCell() || tag.IsVacant() {
			t.Fatalf("NodeTag(%d) misclassified: %v", i, tag)
		}
		if tag.Index() != i {
			t.Fatalf("NodeTag(%d).Index() = %d", i, tag.Index())
		}
	}
	for i := uint8(0); i < PtrSlots; i++ {
		obj := ObjTag(i)
		if !obj.IsObj() || obj.IsNode() || obj.IsCell() {
			t.Fatalf("ObjTag(%d) misclassified: %v", i, obj)
		}
		if obj.Index() != i {
			t.Fatalf("ObjTag(%d).Index() = %d", i, obj.Index())
		}
		cell := CellTag(i)
		if !cell.IsCell() || cell.IsNode() || cell.IsObj() {
			t.Fatalf("CellTag(%d) misclassified: %v", i, cell)
		}
		if cell.Index() != i {
			t.Fatalf("CellTag(%d).Index() = %d", i, cell.Index())
		}
	}
	if !TagVacant.IsVacant() || TagVacant.IsNode() || TagVacant.IsObj() || TagVacant.IsCell() {
		t.Fatalf("TagVacant misclassified")
	}
}

func TestCellNodeAlloc(t *testing.T) {
	c := New[int]()
	if c.FreeNodeSlots() != NodesPerCell {
		t.Fatalf("expected %d free slots on a fresh cell, got %d", NodesPerCell, c.FreeNodeSlots())
	}
	c.markNodeUsed(0)
	c.Count = 1
	seen := map[uint8]bool{}
	for i := 0; i < NodesPerCell-1; i++ {
		idx, ok := c.AllocNode()
		if !ok {
			t.Fatalf("alloc %d failed", i)
		}
		if idx == 0 {
			t.Fatalf("AllocNode must never hand out slot 0")
		}
		if seen[idx] {
			t.Fatalf("duplicate slot %d", idx)
		}
		seen[idx] = true
	}
	if _, ok := c.AllocNode(); ok {
		t.Fatalf("expected allocation failure once full")
	}
	if int(c.Count) != NodesPerCell {
		t.Fatalf("count = %d, want %d", c.Count, NodesPerCell)
	}
}

func TestCellPtrAlloc(t *testing.T) {
	c := New[string]()
	for i := 0; i < PtrSlots; i++ {
		idx, ok := c.AllocPtr(PtrObj)
		if !ok {
			t.Fatalf("alloc %d failed", i)
		}
		c.Ptrs[idx].Obj = "x"
	}
	if _, ok := c.AllocPtr(PtrObj); ok {
		t.Fatalf("expected failure once all %d pointer slots used", PtrSlots)
	}
	c.FreePtr(3)
	idx, ok := c.AllocPtr(PtrCell)
	if !ok || idx != 3 {
		t.Fatalf("expected freed slot 3 to be reused, got idx=%d ok=%v", idx, ok)
	}
}

func TestNodeParentAndAnchor(t *testing.T) {
	parent := New[int]()
	parent.markNodeUsed(0)
	parent.markNodeUsed(1)
	parent.Count = 2
	child := New[int]()
	child.Parent = parent
	ptrIdx, _ := parent.AllocPtr(PtrCell)
	parent.Ptrs[ptrIdx].Cell = child
	parent.Nodes[0].Cbit = 5
	parent.Nodes[0].Child[0] = NodeTag(1)
	parent.Nodes[0].Child[1] = ObjTag(0)
	parent.Nodes[1].Cbit = 9
	parent.Nodes[1].Child[0] = CellTag(ptrIdx)
	parent.Nodes[1].Child[1] = ObjTag(1)

	pn, side, ok := parent.NodeParent(1)
	if !ok || pn != 0 || side != 0 {
		t.Fatalf("NodeParent mismatch: pn=%d side=%d ok=%v", pn, side, ok)
	}

	ptrIdxGot, nodeIdx, nodeSide, ok := parent.Anchor(child)
	if !ok || ptrIdxGot != ptrIdx || nodeIdx != 1 || nodeSide != 0 {
		t.Fatalf("Anchor mismatch: ptrIdx=%d node=%d side=%d ok=%v", ptrIdxGot, nodeIdx, nodeSide, ok)
	}
}

func TestSubtreeNodes(t *testing.T) {
	c := New[int]()
	c.markNodeUsed(0)
	c.markNodeUsed(1)
	c.markNodeUsed(2)
	c.Count = 3
	c.Nodes[0].Child[0] = NodeTag(1)
	c.Nodes[0].Child[1] = ObjTag(0)
	c.Nodes[1].Child[0] = ObjTag(1)
	c.Nodes[1].Child[1] = NodeTag(2)
	c.Nodes[2].Child[0] = ObjTag(2)
	c.Nodes[2].Child[1] = ObjTag(3)

	got := c.SubtreeNodes(0)
	if len(got) != 3 {
		t.Fatalf("expected 3 reachable nodes, got %v", got)
	}
	got = c.SubtreeNodes(1)
	if len(got) != 2 {
		t.Fatalf("expected 2 reachable nodes from slot 1, got %v", got)
	}
}
