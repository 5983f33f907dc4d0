package critcell

import "testing"

func TestFindOnEmptyAndSingleton(t *testing.T) {
	tr := New(u64Ops())
	if _, ok := tr.Find(u64Obj{v: 1}); ok {
		t.Fatalf("Find on empty tree should report ok=false")
	}
	_ = tr.Add(u64Obj{v: 1})
	if _, ok := tr.Find(u64Obj{v: 2}); ok {
		t.Fatalf("Find of an absent key on a singleton tree should report ok=false")
	}
	if o, ok := tr.Find(u64Obj{v: 1}); !ok || o.v != 1 {
		t.Fatalf("Find(1): o=%v ok=%v", o, ok)
	}
}

func TestFindAfterManyInserts(t *testing.T) {
	tr := New(u64Ops())
	for i := uint64(0); i < 500; i++ {
		_ = tr.Add(u64Obj{v: i * 2})
	}
	for i := uint64(0); i < 500; i++ {
		if o, ok := tr.Find(u64Obj{v: i * 2}); !ok || o.v != i*2 {
			t.Fatalf("Find(%d): o=%v ok=%v", i*2, o, ok)
		}
		if _, ok := tr.Find(u64Obj{v: i*2 + 1}); ok {
			t.Fatalf("Find(%d) should miss (odd keys were never inserted)", i*2+1)
		}
	}
}

func TestContainsMatchesFind(t *testing.T) {
	tr := New(u64Ops())
	for _, v := range []uint64{3, 1, 4, 1, 5, 9, 2, 6} {
		_ = tr.Add(u64Obj{v: v}) // duplicates (1) rejected, that's fine here
	}
	for _, v := range []uint64{1, 2, 3, 4, 5, 6, 9} {
		if !tr.Contains(u64Obj{v: v}) {
			t.Fatalf("Contains(%d) should be true", v)
		}
	}
	if tr.Contains(u64Obj{v: 42}) {
		t.Fatalf("Contains(42) should be false")
	}
}
