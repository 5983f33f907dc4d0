package critcell

// Find looks up the object equal by value to probe. ok is false if no
// such key is indexed. probe need only carry the bits BitOps reads — it
// is discarded once the match is confirmed.
//
// This single generic method covers every built-in key kind named in
// spec.md §6 (BITS, CSTR, PCSTR, U32, S32, U64, S64): the kind is already
// fixed by the BitOps[T] the Tree was constructed with, so a family of
// per-kind typed finders (FindU32, FindCStr, ...) would just be Find
// under a different name for the same T. See DESIGN.md.
func (t *Tree[T]) Find(probe T) (obj T, ok bool) {
	switch t.kind {
	case rootEmpty:
		return obj, false
	case rootObj:
		if t.ops.FirstDiff(probe, t.obj, kbitsLimit) == -1 {
			return t.obj, true
		}
		return obj, false
	default:
		found, _, _, _ := descend(t.cell, 0, probe, t.ops)
		if t.ops.FirstDiff(probe, found, kbitsLimit) == -1 {
			return found, true
		}
		return obj, false
	}
}

// Locate is Find plus a Cursor positioned at the match, letting the
// caller resume ordered iteration from it (spec.md §4.6).
func (t *Tree[T]) Locate(probe T) (obj T, cur Cursor[T], ok bool) {
	switch t.kind {
	case rootEmpty:
		return obj, cur, false
	case rootObj:
		if t.ops.FirstDiff(probe, t.obj, kbitsLimit) == -1 {
			return t.obj, Cursor[T]{obj: t.obj, singleton: true, valid: true}, true
		}
		return obj, cur, false
	default:
		found, cell, node, side := descend(t.cell, 0, probe, t.ops)
		if t.ops.FirstDiff(probe, found, kbitsLimit) != -1 {
			return obj, cur, false
		}
		return found, Cursor[T]{obj: found, cell: cell, node: node, side: side, valid: true}, true
	}
}

// Contains reports whether a key equal by value to probe is indexed.
func (t *Tree[T]) Contains(probe T) bool {
	_, ok := t.Find(probe)
	return ok
}
