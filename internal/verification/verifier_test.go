package verification

import (
	"context"
	"testing"

	"midgard-history/internal/domain"
	"midgard-history/internal/storage"
	"midgard-history/internal/storage/memory"
)

func TestCheck_Continuous(t *testing.T) {
	recs := []domain.RunePoolInterval{
		{StartTime: 0, EndTime: 3600},
		{StartTime: 3600, EndTime: 7200},
		{StartTime: 7200, EndTime: 10800},
	}
	rep := Check(domain.SeriesRunePool, recs)
	if !rep.Continuous() {
		t.Fatalf("expected continuous, got %s", rep)
	}
	if rep.First != 0 || rep.Last != 10800 || rep.Records != 3 {
		t.Errorf("unexpected bounds: %s", rep)
	}
}

func TestCheck_GapAndOverlap(t *testing.T) {
	recs := []domain.RunePoolInterval{
		{StartTime: 0, EndTime: 3600},
		{StartTime: 7200, EndTime: 10800},
		{StartTime: 10000, EndTime: 14400},
	}
	rep := Check(domain.SeriesRunePool, recs)
	if len(rep.Gaps) != 1 || rep.Gaps[0] != (Gap{From: 3600, To: 7200}) {
		t.Errorf("unexpected gaps: %+v", rep.Gaps)
	}
	if len(rep.Overlaps) != 1 || rep.Overlaps[0].NextStart != 10000 {
		t.Errorf("unexpected overlaps: %+v", rep.Overlaps)
	}
}

func TestCheck_Empty(t *testing.T) {
	rep := Check[domain.SwapInterval](domain.SeriesSwaps, nil)
	if !rep.Continuous() || rep.Records != 0 {
		t.Errorf("empty series should be continuous: %s", rep)
	}
}

func TestCheckAll_MemoryStores(t *testing.T) {
	ctx := context.Background()
	stores := memory.NewStores()
	for _, start := range []int64{0, 3600, 10800} {
		if err := stores.Depth.Insert(ctx, domain.DepthInterval{StartTime: start, EndTime: start + 3600}); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	reports, err := CheckAll(ctx, stores, storage.TimeRange{})
	if err != nil {
		t.Fatalf("CheckAll: %v", err)
	}
	if len(reports) != 4 {
		t.Fatalf("expected 4 reports, got %d", len(reports))
	}
	if reports[0].Series != domain.SeriesDepth || len(reports[0].Gaps) != 1 {
		t.Errorf("depth report: %s", reports[0])
	}
	for _, rep := range reports[1:] {
		if rep.Records != 0 {
			t.Errorf("%s should be empty", rep.Series)
		}
	}
}
