package critcell

import "errors"

// Error kinds named in spec.md §6-§7. Add and Remove return one of these
// (wrapped in nothing further — callers use errors.Is) rather than
// panicking, matching the teacher's plain bool/error return style; the
// lookups (Find, Locate, Contains) report a miss through their bool
// result instead.
var (
	// ErrNil is returned by Add and Remove on a tree that has no BitOps
	// (for example a zero Tree). Object arguments and nil *Tree
	// receivers are not checked.
	ErrNil = errors.New("critcell: nil tree, bitops, or object")

	// ErrDuplicate is returned by Add when the key is already indexed.
	ErrDuplicate = errors.New("critcell: key already present")

	// ErrNotFound is returned by Remove when the key is absent.
	ErrNotFound = errors.New("critcell: key not found")

	// ErrOutOfMemory is returned by Add when it cannot make room for the
	// new node: the full target cell has neither a push-down candidate
	// nor a split pivot, or the push-down/split retry bound is exhausted.
	// Go's allocator does not report failure, so no allocation failure
	// leads here. The tree's set of objects is unchanged when it is
	// returned.
	ErrOutOfMemory = errors.New("critcell: allocation failure during split")
)
