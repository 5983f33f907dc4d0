// Package critcell implements an ordered associative index keyed by bit
// strings: a clustered crit-bit (radix) tree whose internal nodes are
// packed into fixed-size cells (internal/cellnode). The index maps user
// objects to themselves by key — it stores handles, never keys — and
// supports point lookup, ordered iteration, and membership by value.
//
// The structural algorithm (descent, insertion-point location,
// push-down/split, push-up/merge-up/merge-down) lives in this package and
// internal/cellnode; key interpretation is entirely delegated to a
// user-supplied BitOps[T] (bitops.go). A Tree is single-owner: like the
// teacher's core node/multimap packages, nothing here is safe for
// concurrent access without external synchronization.
package critcell

import (
	"github.com/mhio/critcell/internal/cellnode"
	"github.com/mhio/critcell/internal/stats"
)

// KBitsMax is the maximum virtual key length (in bits) this package
// reasons about, per spec.md §3's KBITS_MAX. Built-in BitOps
// implementations clamp to their own narrower widths; this bound only
// serves as the FirstDiff "limit" for a by-value equality check, where it
// plays the role of "effectively unbounded".
const KBitsMax = 4096

// kbitsLimit is the FirstDiff limit used by Add/Remove's equality check:
// spec.md §4.4 step 2 calls for limit = KBITS_MAX+1.
const kbitsLimit = KBitsMax + 1

// Config holds the tunables the insertion/deletion engines read (spec.md
// §4.5, §9's open questions). The zero value is a ready-to-use default.
type Config struct {
	// CellMin is the operational lower bound on non-root cell occupancy
	// maintained by the deletion engine (spec.md invariant 6). Values
	// below cellnode.CellMin (3), including 0, select cellnode.CellMin.
	CellMin int

	// MergeDown enables the optional merge-down pass (spec.md §4.5 step
	// 5, §9 open question: "include merge-down behind a configuration
	// flag and measure before enabling"). Off by default.
	MergeDown bool

	// Stats, if non-nil, receives structural-mutation counters and the
	// teardown population histogram (spec.md §6).
	Stats *stats.Stats
}

func (c Config) cellMin() int {
	if c.CellMin < cellnode.CellMin {
		return cellnode.CellMin
	}
	return c.CellMin
}

type rootKind uint8

const (
	rootEmpty rootKind = iota
	rootObj
	rootCell
)

// Tree is the top-level handle: one root edge (empty, a single object, or
// a root cell), a bitops function, and the total object count. A zero
// Tree has no BitOps, so Add and Remove on it return ErrNil; construct
// trees with New, or with NewWithConfig for non-default Config.
type Tree[T any] struct {
	kind  rootKind
	obj   T
	cell  *cellnode.Cell[T]
	ops   BitOps[T]
	count uint64
	cfg   Config
}

// New creates an empty tree using ops to interpret keys of T.
func New[T any](ops BitOps[T]) *Tree[T] {
	return NewWithConfig(ops, Config{})
}

// NewWithConfig creates an empty tree with explicit tuning.
func NewWithConfig[T any](ops BitOps[T], cfg Config) *Tree[T] {
	return &Tree[T]{ops: ops, cfg: cfg}
}

// Count returns the number of objects currently indexed.
func (t *Tree[T]) Count() uint64 { return t.count }

// IsEmpty reports whether the tree holds no objects.
func (t *Tree[T]) IsEmpty() bool { return t.kind == rootEmpty }

// Destroy tears the tree down: an iterative post-order walk over cells
// (not nodes), freeing each one after its subordinate cells, as spec.md
// §4.6 requires. Each remaining parent-link doubles as the stack; no
// recursion, no extra allocation.
// The population histogram is collected here if Stats is configured.
func (t *Tree[T]) Destroy() {
	if t.kind == rootCell {
		destroyCellTree(t.cell, t.cfg.Stats)
	}
	t.kind = rootEmpty
	var zero T
	t.obj = zero
	t.cell = nil
	t.count = 0
}

func destroyCellTree[T any](root *cellnode.Cell[T], st *stats.Stats) {
	cell := root
	for cell != nil {
		// Descend to an arbitrary leaf cell via any remaining CELL edge.
		child := firstChildCell(cell)
		if child != nil {
			cell = child
			continue
		}
		st.Observe(int(cell.Count))
		st.CellFreed()
		parent := cell.Parent
		if parent == nil {
			return
		}
		ptrIdx, _, _, ok := parent.Anchor(cell)
		if ok {
			parent.FreePtr(ptrIdx)
		}
		cell = parent
	}
}

// firstChildCell returns any one subordinate cell referenced by cell's
// pointer slots, or nil if cell has none left.
func firstChildCell[T any](cell *cellnode.Cell[T]) *cellnode.Cell[T] {
	for i := uint8(0); i < cellnode.PtrSlots; i++ {
		if cell.PtrOccupied(i) && cell.Ptrs[i].Kind == cellnode.PtrCell {
			return cell.Ptrs[i].Cell
		}
	}
	return nil
}
