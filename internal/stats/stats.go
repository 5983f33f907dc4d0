// Package stats provides the optional observability counters named in
// spec.md §6: cell population, and counts of the structural mutations
// (push-down, split, push-up, merge-up, merge-down). A Stats value is
// attached to a tree through its Config; it is not process-wide. It
// follows the teacher's bitfield256/PresenceBitmap shape — a small
// fixed-size counter type with exported fields and plain increment
// methods, no metrics framework.
package stats

import "github.com/mhio/critcell/internal/cellnode"

// Stats accumulates counters for a single tree instance. The zero value is
// ready to use (all counters zero).
type Stats struct {
	CellsInUse   int64
	PushDowns    int64
	Splits       int64
	PushUps      int64
	MergeUps     int64
	MergeDowns   int64
	FailedMerges int64

	// Histogram[n] counts cells observed with n occupied node slots,
	// 1..NodesPerCell. Collected during teardown per spec.md §4.6/§6.
	Histogram [cellnode.NodesPerCell + 1]int64
}

// CellAllocated records a new cell coming into existence.
func (s *Stats) CellAllocated() {
	if s == nil {
		return
	}
	s.CellsInUse++
}

// CellFreed records a cell going out of existence.
func (s *Stats) CellFreed() {
	if s == nil {
		return
	}
	s.CellsInUse--
}

// RecordPushDown increments the push-down counter.
func (s *Stats) RecordPushDown() {
	if s == nil {
		return
	}
	s.PushDowns++
}

// RecordSplit increments the split counter.
func (s *Stats) RecordSplit() {
	if s == nil {
		return
	}
	s.Splits++
}

// RecordPushUp increments the push-up counter.
func (s *Stats) RecordPushUp() {
	if s == nil {
		return
	}
	s.PushUps++
}

// RecordMergeUp increments the merge-up counter.
func (s *Stats) RecordMergeUp() {
	if s == nil {
		return
	}
	s.MergeUps++
}

// RecordMergeDown increments the merge-down counter.
func (s *Stats) RecordMergeDown() {
	if s == nil {
		return
	}
	s.MergeDowns++
}

// RecordFailedMerge increments the failed-merge counter (merge attempted
// but combined population did not fit).
func (s *Stats) RecordFailedMerge() {
	if s == nil {
		return
	}
	s.FailedMerges++
}

// Observe records one cell's occupancy into the population histogram.
func (s *Stats) Observe(count int) {
	if s == nil {
		return
	}
	if count < 1 {
		count = 1
	}
	if count > cellnode.NodesPerCell {
		count = cellnode.NodesPerCell
	}
	s.Histogram[count]++
}
