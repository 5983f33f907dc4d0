package stats

import "testing"

func TestNilStatsIsNoop(t *testing.T) {
	var s *Stats
	s.CellAllocated()
	s.RecordSplit()
	s.Observe(4)
	// must not panic
}

func TestHistogramClamps(t *testing.T) {
	s := &Stats{}
	s.Observe(0)
	s.Observe(100)
	s.Observe(4)
	if s.Histogram[1] != 1 {
		t.Fatalf("expected clamp-low bucket 1 to have 1 entry, got %d", s.Histogram[1])
	}
	if s.Histogram[8] != 1 {
		t.Fatalf("expected clamp-high bucket 8 to have 1 entry, got %d", s.Histogram[8])
	}
	if s.Histogram[4] != 1 {
		t.Fatalf("expected bucket 4 to have 1 entry, got %d", s.Histogram[4])
	}
}

func TestCountersIncrement(t *testing.T) {
	s := &Stats{}
	s.CellAllocated()
	s.CellAllocated()
	s.CellFreed()
	s.RecordPushDown()
	s.RecordSplit()
	s.RecordPushUp()
	s.RecordMergeUp()
	s.RecordMergeDown()
	s.RecordFailedMerge()
	if s.CellsInUse != 1 {
		t.Fatalf("CellsInUse = %d, want 1", s.CellsInUse)
	}
	if s.PushDowns != 1 || s.Splits != 1 || s.PushUps != 1 || s.MergeUps != 1 || s.MergeDowns != 1 || s.FailedMerges != 1 {
		t.Fatalf("counters not all 1: %+v", s)
	}
}
