package critcell

import "testing"

func TestAllAndDescendingAreReverses(t *testing.T) {
	tr := New(u64Ops())
	for _, v := range []uint64{5, 3, 8, 1, 9, 2} {
		_ = tr.Add(u64Obj{v: v})
	}
	var asc, desc []uint64
	for o := range tr.All() {
		asc = append(asc, o.v)
	}
	for o := range tr.Descending() {
		desc = append(desc, o.v)
	}
	if len(asc) != len(desc) {
		t.Fatalf("All visited %d, Descending visited %d", len(asc), len(desc))
	}
	for i := range asc {
		if asc[i] != desc[len(desc)-1-i] {
			t.Fatalf("All/Descending mismatch at %d: %d vs %d", i, asc[i], desc[len(desc)-1-i])
		}
	}
}

func TestAllEarlyBreak(t *testing.T) {
	tr := New(u64Ops())
	for i := uint64(0); i < 100; i++ {
		_ = tr.Add(u64Obj{v: i})
	}
	count := 0
	for range tr.All() {
		count++
		if count == 5 {
			break
		}
	}
	if count != 5 {
		t.Fatalf("expected early break to stop at 5, got %d", count)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	tr := New(u64Ops())
	for i := uint64(0); i < 50; i++ {
		_ = tr.Add(u64Obj{v: i})
	}
	clone := tr.Clone()
	if clone.Count() != tr.Count() {
		t.Fatalf("clone count = %d, want %d", clone.Count(), tr.Count())
	}
	if err := clone.Add(u64Obj{v: 1000}); err != nil {
		t.Fatalf("Add to clone: %v", err)
	}
	if tr.Contains(u64Obj{v: 1000}) {
		t.Fatalf("mutating the clone should not affect the original")
	}
	if !tr.EqualKeySet(tr) {
		t.Fatalf("a tree should equal itself")
	}
}

func TestEqualKeySet(t *testing.T) {
	a := New(u64Ops())
	b := New(u64Ops())
	for _, v := range []uint64{1, 2, 3} {
		_ = a.Add(u64Obj{v: v})
	}
	for _, v := range []uint64{3, 2, 1} {
		_ = b.Add(u64Obj{v: v})
	}
	if !a.EqualKeySet(b) {
		t.Fatalf("insertion order should not affect EqualKeySet")
	}
	_ = b.Add(u64Obj{v: 4})
	if a.EqualKeySet(b) {
		t.Fatalf("trees with different key sets should not be equal")
	}
}
