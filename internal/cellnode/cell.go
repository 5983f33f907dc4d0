// Package cellnode implements the fixed-size clustered cell record that is
// the structural unit of the cell engine: a small crit-bit subtree (up to
// NodesPerCell branch points) packed together with its outgoing edges
// (up to PtrSlots user-object or child-cell references).
//
// The layout follows the teacher's node_types.go/common_node_functions.go
// style: a compact tagged-byte encoding of child variants instead of a Go
// interface or sum type, so that descent never allocates or type-asserts on
// the hot path. Unlike the teacher's ART node classes (Node5/Node51/Node256,
// reinterpreted via unsafe.Pointer casts between differently-shaped
// structs), a cell here has exactly one shape — the spec calls for a single
// fixed-size record, not a family of growable node sizes — so there is
// nothing to cast between; the tag byte alone carries the variant.
package cellnode

import "math/bits"

// NodesPerCell is the number of crit-bit node slots packed into one cell.
const NodesPerCell = 8

// PtrSlots is the number of external-pointer slots packed into one cell:
// one more than NodesPerCell since every internal binary subtree over N
// nodes has exactly N+1 outgoing leaf edges.
const PtrSlots = NodesPerCell + 1

// CellMin is the default operational lower bound on non-root cell
// occupancy maintained by the insertion/deletion engines (spec invariant 6).
const CellMin = 3

// Tag encodes the variant of a node's child reference in a single byte,
// mirroring the teacher's meta-byte packing (node kind in the high nibble,
// payload in the low bits) instead of a Go interface value.
type Tag uint8

const (
	// TagVacant marks an unallocated node slot child (sentinel 0x3F).
	TagVacant Tag = 0x3F
	objBit         = 0x80
	cellBit        = 0x40
	idxMask        = 0x0F
)

// NodeTag builds a plain intra-cell node reference. idx must be < NodesPerCell.
func NodeTag(idx uint8) Tag { return Tag(idx) }

// ObjTag builds a UOBJ-tagged reference to pointer slot idx (0..PtrSlots-1).
func ObjTag(idx uint8) Tag { return Tag(objBit | (idx & idxMask)) }

// CellTag builds a CELL-tagged reference to pointer slot idx (0..PtrSlots-1).
func CellTag(idx uint8) Tag { return Tag(cellBit | (idx & idxMask)) }

// IsVacant reports whether t is the vacant-slot sentinel.
func (t Tag) IsVacant() bool { return t == TagVacant }

// IsObj reports whether t is a UOBJ edge.
func (t Tag) IsObj() bool { return t&objBit != 0 }

// IsCell reports whether t is a CELL edge. Checked after IsObj since the two
// high bits are mutually exclusive by construction (0x80 vs 0x40).
func (t Tag) IsCell() bool { return !t.IsObj() && t&cellBit != 0 }

// IsNode reports whether t is a plain intra-cell node index.
func (t Tag) IsNode() bool { return !t.IsObj() && !t.IsCell() && t != TagVacant }

// Index returns the pointer-slot index (IsObj/IsCell) or node index (IsNode).
func (t Tag) Index() uint8 { return uint8(t) & idxMask }

// Node is one crit-bit branch point: the bit position at which its two
// subtrees diverge, plus two tagged child references.
type Node struct {
	Cbit  int32
	Child [2]Tag
}

// Ptr is one external-pointer slot: either a user-object handle or a
// pointer to a subordinate cell. Which is valid is determined by the tag
// of the single node that references this slot (spec invariant 5/7); Kind
// is kept alongside purely so tests and invariant checks can assert the
// slot is used the way its referencing tag claims.
type Ptr[T any] struct {
	Kind PtrKind
	Obj  T
	Cell *Cell[T]
}

// PtrKind distinguishes an empty pointer slot from an object or cell edge.
type PtrKind uint8

const (
	PtrEmpty PtrKind = iota
	PtrObj
	PtrCell
)

// Cell is the fixed-size clustered record: a parent backlink, an occupied
// node count, up to NodesPerCell crit-bit nodes, and up to PtrSlots
// external pointers. Node slot 0 is always the subtree root (invariant 4).
//
// The reference 64-byte/32-bit layout packs the parent pointer and node
// count into one word (PNC) by stealing the pointer's low alignment bits.
// That trick requires the language to allow pointer tagging; Go's garbage
// collector requires in-heap pointers to look like pointers at all times,
// so this cell keeps Parent and Count as separate fields instead — exactly
// the fallback the spec itself sanctions ("implementations without pointer
// tagging should store count in a spare field... no semantic effect").
type Cell[T any] struct {
	Parent   *Cell[T]
	Count    uint8 // occupied node slots, 1..NodesPerCell
	nodeUsed uint8 // presence bitmap over the NodesPerCell node slots
	ptrUsed  uint16 // presence bitmap over the PtrSlots pointer slots
	Nodes    [NodesPerCell]Node
	Ptrs     [PtrSlots]Ptr[T]
}

// New returns a freshly allocated, empty cell: all node slots vacant, all
// pointer slots empty.
func New[T any]() *Cell[T] {
	c := &Cell[T]{}
	for i := range c.Nodes {
		c.Nodes[i].Child[0] = TagVacant
		c.Nodes[i].Child[1] = TagVacant
	}
	return c
}

// NodeOccupied reports whether node slot i currently holds a live node.
func (c *Cell[T]) NodeOccupied(i uint8) bool { return c.nodeUsed&(1<<i) != 0 }

func (c *Cell[T]) markNodeUsed(i uint8)   { c.nodeUsed |= 1 << i }
func (c *Cell[T]) markNodeFree(i uint8)   { c.nodeUsed &^= 1 << i }
func (c *Cell[T]) markPtrUsed(i uint8)    { c.ptrUsed |= 1 << i }
func (c *Cell[T]) markPtrFree(i uint8)    { c.ptrUsed &^= 1 << i }
func (c *Cell[T]) PtrOccupied(i uint8) bool { return c.ptrUsed&(1<<i) != 0 }

// FreeNodeSlots reports how many of the NodesPerCell node slots are unused.
func (c *Cell[T]) FreeNodeSlots() int {
	return NodesPerCell - bits.OnesCount8(c.nodeUsed)
}

// AllocNode claims the lowest-numbered free node slot, marks it used and
// returns its index. Slot 0 is never handed out here: callers that need
// to (re)establish the subtree root manage slot 0 explicitly, since it is
// structurally special (invariant 4) rather than a fungible allocation.
func (c *Cell[T]) AllocNode() (idx uint8, ok bool) {
	free := ^c.nodeUsed &^ 1 // exclude slot 0 from the free scan
	if free == 0 {
		return 0, false
	}
	idx = uint8(bits.TrailingZeros8(free))
	c.markNodeUsed(idx)
	c.Count++
	return idx, true
}

// ClaimRoot marks node slot 0 used on a freshly allocated cell and sets
// Count to 1. Used when a cell's first node is written directly into
// slot 0 rather than obtained through AllocNode (which never hands out
// slot 0).
func (c *Cell[T]) ClaimRoot() {
	c.markNodeUsed(0)
	c.Count = 1
}

// ClaimNodeAt marks a specific node slot used, bypassing the
// lowest-free-slot scan AllocNode performs. Used by split, which must
// move a node into a new cell while keeping its original slot number
// (spec.md §4.4: "move the pivot and its descendant nodes
// (keeping their slot numbers)"). Reports false if idx was already used.
func (c *Cell[T]) ClaimNodeAt(idx uint8) bool {
	if c.NodeOccupied(idx) {
		return false
	}
	c.markNodeUsed(idx)
	c.Count++
	return true
}

// FreePtrSlots reports how many of the PtrSlots pointer slots are unused.
func (c *Cell[T]) FreePtrSlots() int {
	return PtrSlots - bits.OnesCount16(c.ptrUsed)
}

// OccupiedNodes returns the indices of all currently occupied node slots,
// in ascending order. Bounded by NodesPerCell.
func (c *Cell[T]) OccupiedNodes() []uint8 {
	out := make([]uint8, 0, NodesPerCell)
	for i := uint8(0); i < NodesPerCell; i++ {
		if c.NodeOccupied(i) {
			out = append(out, i)
		}
	}
	return out
}

// FreeNode releases node slot i back to the free pool.
func (c *Cell[T]) FreeNode(i uint8) {
	c.markNodeFree(i)
	c.Nodes[i].Child[0] = TagVacant
	c.Nodes[i].Child[1] = TagVacant
	c.Count--
}

// AllocPtr claims the lowest-numbered free pointer slot for obj kind k.
func (c *Cell[T]) AllocPtr(k PtrKind) (idx uint8, ok bool) {
	free := ^c.ptrUsed & (1<<PtrSlots - 1)
	if free == 0 {
		return 0, false
	}
	idx = uint8(bits.TrailingZeros16(free))
	c.markPtrUsed(idx)
	c.Ptrs[idx].Kind = k
	return idx, true
}

// FreePtr releases pointer slot i back to the free pool.
func (c *Cell[T]) FreePtr(i uint8) {
	c.markPtrFree(i)
	var zero T
	c.Ptrs[i] = Ptr[T]{Obj: zero}
}

// NodeParent scans the cell for the node whose child references node index
// n, returning that node's index and the child side (0 or 1). Bounded by
// NodesPerCell (<=8) per spec 4.2.
func (c *Cell[T]) NodeParent(n uint8) (parent uint8, side uint8, ok bool) {
	want := NodeTag(n)
	for i := uint8(0); i < NodesPerCell; i++ {
		if !c.NodeOccupied(i) || i == n {
			continue
		}
		if c.Nodes[i].Child[0] == want {
			return i, 0, true
		}
		if c.Nodes[i].Child[1] == want {
			return i, 1, true
		}
	}
	return 0, 0, false
}

// Anchor scans this cell (the parent of child) for the pointer slot that
// references child, then scans this cell's nodes for the CELL-tagged
// reference to that slot. Used when a subordinate cell needs to find its
// own position in its parent (spec 4.2 "anchor lookup").
func (c *Cell[T]) Anchor(child *Cell[T]) (ptrIdx uint8, nodeIdx uint8, side uint8, ok bool) {
	for i := uint8(0); i < PtrSlots; i++ {
		if c.PtrOccupied(i) && c.Ptrs[i].Kind == PtrCell && c.Ptrs[i].Cell == child {
			ptrIdx = i
			break
		}
		if i == PtrSlots-1 {
			return 0, 0, 0, false
		}
	}
	want := CellTag(ptrIdx)
	for i := uint8(0); i < NodesPerCell; i++ {
		if !c.NodeOccupied(i) {
			continue
		}
		if c.Nodes[i].Child[0] == want {
			return ptrIdx, i, 0, true
		}
		if c.Nodes[i].Child[1] == want {
			return ptrIdx, i, 1, true
		}
	}
	return 0, 0, 0, false
}

// SubtreeNodes returns the node-slot indices reachable from root via
// intra-cell child links (root included), stopping at CELL/UOBJ edges.
// Bounded by NodesPerCell, so an explicit stack is preferred over
// recursion per the teacher's general avoidance of deep recursion on
// bounded structures.
func (c *Cell[T]) SubtreeNodes(root uint8) []uint8 {
	out := make([]uint8, 0, NodesPerCell)
	stack := make([]uint8, 0, NodesPerCell)
	stack = append(stack, root)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, n)
		for _, ch := range c.Nodes[n].Child {
			if ch.IsNode() {
				stack = append(stack, ch.Index())
			}
		}
	}
	return out
}
