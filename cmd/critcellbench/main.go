// Command critcellbench seeds a critcell.Tree with random keys, times
// Add/Remove/iteration, and prints a population histogram. It exists to
// exercise the library end to end, the way the rest of the example pack's
// cmd/ drivers double as smoke tests for their own packages.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"time"
	"unsafe"

	set3 "github.com/TomTonic/Set3"

	"github.com/mhio/critcell"
	"github.com/mhio/critcell/internal/stats"
)

type entry struct {
	v uint64
}

func keyBitOps() critcell.BitOps[entry] {
	return critcell.U64BitOps[entry](unsafe.Offsetof(entry{}.v))
}

func main() {
	count := flag.Int("n", 100000, "number of distinct keys to insert")
	cellMin := flag.Int("cellmin", 0, "minimum non-root cell occupancy (0 selects the library default)")
	mergeDown := flag.Bool("mergedown", false, "enable the optional merge-down rebalancing pass")
	flag.Parse()

	keys := distinctKeys(*count)
	log.Printf("generated %d distinct keys", len(keys))

	st := &stats.Stats{}
	cfg := critcell.Config{CellMin: *cellMin, MergeDown: *mergeDown, Stats: st}
	run(keys, cfg, st)
}

func run(keys []uint64, cfg critcell.Config, st *stats.Stats) {
	tree := critcell.NewWithConfig(keyBitOps(), cfg)

	start := time.Now()
	for _, k := range keys {
		if err := tree.Add(entry{v: k}); err != nil {
			log.Fatalf("Add(%d): %v", k, err)
		}
	}
	addElapsed := time.Since(start)

	start = time.Now()
	n := 0
	for range tree.All() {
		n++
	}
	iterElapsed := time.Since(start)
	if n != len(keys) {
		log.Fatalf("iteration visited %d objects, want %d", n, len(keys))
	}

	// Destroy captures the population histogram into st (spec.md §4.6's
	// teardown walk); Remove is then timed against a freshly rebuilt tree
	// so the removal loop isn't itself folded into the histogram sample.
	tree.Destroy()

	tree = critcell.NewWithConfig(keyBitOps(), cfg)
	for _, k := range keys {
		if err := tree.Add(entry{v: k}); err != nil {
			log.Fatalf("Add(%d) (rebuild): %v", k, err)
		}
	}

	start = time.Now()
	for _, k := range keys {
		if err := tree.Remove(entry{v: k}); err != nil {
			log.Fatalf("Remove(%d): %v", k, err)
		}
	}
	removeElapsed := time.Since(start)

	fmt.Printf("keys:     %d\n", len(keys))
	fmt.Printf("add:      %v (%v/op)\n", addElapsed, addElapsed/time.Duration(len(keys)))
	fmt.Printf("iterate:  %v (%v/op)\n", iterElapsed, iterElapsed/time.Duration(len(keys)))
	fmt.Printf("remove:   %v (%v/op)\n", removeElapsed, removeElapsed/time.Duration(len(keys)))
	fmt.Printf("splits:   %d\n", st.Splits)
	fmt.Printf("pushdown: %d\n", st.PushDowns)
	fmt.Printf("pushup:   %d\n", st.PushUps)
	fmt.Printf("mergeup:  %d\n", st.MergeUps)
	fmt.Printf("histogram (by occupied node slots at teardown): %v\n", st.Histogram)
}

// distinctKeys generates n distinct random uint64s via Set3, the same
// ad hoc dedup bookkeeping the teacher reaches for when it needs a
// generic set without hand-rolling a map[uint64]struct{}.
func distinctKeys(n int) []uint64 {
	seen := set3.EmptyWithCapacity[uint64](uint32(n))
	out := make([]uint64, 0, n)
	for len(out) < n {
		v := rand.Uint64()
		if seen.Contains(v) {
			continue
		}
		seen.Add(v)
		out = append(out, v)
	}
	return out
}
