package critcell

import "testing"

type strObj struct{ s string }

func strBytes(o strObj) []byte { return []byte(o.s) }

func cstrOps() BitOps[strObj] { return CStrBitOps(strBytes) }

// TestCStrPrefixOrdering reproduces spec.md's worked example (seed scenario
// 2): CSTR keys whose bit strings are prefixes of one another diverge at
// the terminator's bit, not at the shared prefix's end, so "abc" sorts
// before "abc1"/"abcd" and "ab" sorts before all three.
func TestCStrPrefixOrdering(t *testing.T) {
	tr := New(cstrOps())
	for _, s := range []string{"abc", "abc1", "abcd", "ab"} {
		if err := tr.Add(strObj{s: s}); err != nil {
			t.Fatalf("Add(%q): %v", s, err)
		}
	}
	var got []string
	for o := range tr.All() {
		got = append(got, o.s)
	}
	want := []string{"ab", "abc", "abc1", "abcd"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: got %q, want %q (full: %v)", i, got[i], want[i], got)
		}
	}
	if o, ok := tr.Find(strObj{s: "abc1"}); !ok || o.s != "abc1" {
		t.Fatalf("Find(\"abc1\"): o=%v ok=%v", o, ok)
	}
}

type bitsObj struct{ b [2]byte }

func bitsBytes(o bitsObj) []byte { return o.b[:] }

// TestBitsBitOpsOrderingAndTailZero checks BITS ordering over a fixed bit
// width and that positions at/after nbits never distinguish two keys, even
// when the underlying byte accessor keeps returning non-zero tail bytes.
func TestBitsBitOpsOrderingAndTailZero(t *testing.T) {
	ops := BitsBitOps(12, bitsBytes)
	tr := New(ops)

	for _, b := range [][2]byte{{0x0F, 0xFF}, {0x00, 0x01}, {0x0F, 0x00}} {
		if err := tr.Add(bitsObj{b: b}); err != nil {
			t.Fatalf("Add(%v): %v", b, err)
		}
	}
	var got [][2]byte
	for o := range tr.All() {
		got = append(got, o.b)
	}
	want := [][2]byte{{0x00, 0x01}, {0x0F, 0x00}, {0x0F, 0xFF}}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: got %v, want %v", i, got[i], want[i])
		}
	}

	// The last byte's low 4 bits (positions 12-15) sit past nbits=12, so two
	// keys differing only there must be rejected as duplicates.
	if err := tr.Add(bitsObj{b: [2]byte{0x0F, 0x01}}); err != ErrDuplicate {
		t.Fatalf("Add of a key differing only past nbits: err=%v, want ErrDuplicate", err)
	}
}

type pstrObj struct{ p *string }

func pstrBytes(o pstrObj) []byte { return []byte(*o.p) }

func pcstrOps() BitOps[pstrObj] { return PCStrBitOps(pstrBytes) }

// TestPCStrBitOps checks the PCSTR kind (key_offset == 0: the accessor
// dereferences a pointer field to reach the string bytes) orders and finds
// correctly, the same as CSTR once dereferenced.
func TestPCStrBitOps(t *testing.T) {
	tr := New(pcstrOps())
	words := []string{"pear", "apple", "peach"}
	for i := range words {
		if err := tr.Add(pstrObj{p: &words[i]}); err != nil {
			t.Fatalf("Add(%q): %v", words[i], err)
		}
	}
	var got []string
	for o := range tr.All() {
		got = append(got, *o.p)
	}
	want := []string{"apple", "peach", "pear"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: got %q, want %q", i, got[i], want[i])
		}
	}
	target := "peach"
	if o, ok := tr.Find(pstrObj{p: &target}); !ok || *o.p != "peach" {
		t.Fatalf("Find(\"peach\"): ok=%v", ok)
	}
}
