// Package verification checks stored history for holes and overlaps.
package verification

import (
	"context"
	"fmt"

	"midgard-history/internal/domain"
	"midgard-history/internal/storage"
)

// Gap is a stretch of time between two stored records that no record covers.
type Gap struct {
	From int64 // end_time of the record before the gap
	To   int64 // start_time of the record after the gap
}

// Overlap is a pair of records whose time spans intersect.
type Overlap struct {
	PrevStart int64
	PrevEnd   int64
	NextStart int64
}

// Report describes the continuity of one series.
type Report struct {
	Series   domain.Series
	Records  int
	First    int64
	Last     int64
	Gaps     []Gap
	Overlaps []Overlap
}

// Continuous reports whether the stored records tile their span exactly.
func (r *Report) Continuous() bool {
	return len(r.Gaps) == 0 && len(r.Overlaps) == 0
}

func (r *Report) String() string {
	return fmt.Sprintf("%s: %d records [%d, %d], %d gaps, %d overlaps",
		r.Series, r.Records, r.First, r.Last, len(r.Gaps), len(r.Overlaps))
}

// CheckContinuity reads the range and compares every record's start_time
// with the previous record's end_time.
func CheckContinuity[T domain.Interval[T]](ctx context.Context, series domain.Series, store storage.IntervalStore[T], r storage.TimeRange) (*Report, error) {
	records, err := store.Query(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", series, err)
	}
	return Check(series, records), nil
}

// Check inspects records sorted by start_time ascending.
func Check[T domain.Interval[T]](series domain.Series, records []T) *Report {
	rep := &Report{Series: series, Records: len(records)}
	if len(records) == 0 {
		return rep
	}
	rep.First = records[0].Start()
	rep.Last = records[len(records)-1].End()

	for i := 1; i < len(records); i++ {
		prev, next := records[i-1], records[i]
		switch {
		case next.Start() > prev.End():
			rep.Gaps = append(rep.Gaps, Gap{From: prev.End(), To: next.Start()})
		case next.Start() < prev.End():
			rep.Overlaps = append(rep.Overlaps, Overlap{
				PrevStart: prev.Start(),
				PrevEnd:   prev.End(),
				NextStart: next.Start(),
			})
		}
	}
	return rep
}

// CheckAll verifies every series in stores.
func CheckAll(ctx context.Context, stores storage.Stores, r storage.TimeRange) ([]*Report, error) {
	var reports []*Report

	depth, err := CheckContinuity[domain.DepthInterval](ctx, domain.SeriesDepth, stores.Depth, r)
	if err != nil {
		return nil, err
	}
	reports = append(reports, depth)

	runePool, err := CheckContinuity[domain.RunePoolInterval](ctx, domain.SeriesRunePool, stores.RunePool, r)
	if err != nil {
		return nil, err
	}
	reports = append(reports, runePool)

	swaps, err := CheckContinuity[domain.SwapInterval](ctx, domain.SeriesSwaps, stores.Swaps, r)
	if err != nil {
		return nil, err
	}
	reports = append(reports, swaps)

	earnings, err := CheckContinuity[domain.EarningsInterval](ctx, domain.SeriesEarnings, stores.Earnings, r)
	if err != nil {
		return nil, err
	}
	reports = append(reports, earnings)

	return reports, nil
}
