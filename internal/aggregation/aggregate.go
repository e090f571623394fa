// Package aggregation folds ordered interval records into fixed-width time buckets.
package aggregation

import "midgard-history/internal/domain"

// Bucket widths in seconds.
const (
	Day        int64 = 86400
	Week             = 7 * Day
	Month            = 30 * Day
	HalfYear         = 180 * Day
	Year             = 365 * Day
	DefaultWidth     = Day
)

// BucketWidth maps an interval name to its width. Unknown names fall back to a day.
func BucketWidth(name string) int64 {
	switch name {
	case "day":
		return Day
	case "week":
		return Week
	case "month":
		return Month
	case "6months":
		return HalfYear
	case "year":
		return Year
	default:
		return DefaultWidth
	}
}

// Aggregate folds records, which must be sorted by start time ascending,
// into buckets of width seconds anchored at the first member's start time.
//
// Emission stops once maxBuckets buckets have been closed. The bucket opened by
// the record that closed the last one is still flushed, holding only that
// record, so the result may hold maxBuckets+1 entries.
// maxBuckets <= 0 disables the cap.
func Aggregate[T domain.Interval[T]](records []T, width int64, maxBuckets int) []T {
	if len(records) == 0 {
		return nil
	}
	if width <= 0 {
		width = DefaultWidth
	}

	var out []T
	current := records[0]
	anchor := current.Start()

	for _, rec := range records[1:] {
		if rec.Start()-anchor < width {
			current = current.Fold(rec)
			continue
		}
		out = append(out, current)
		current = rec
		anchor = rec.Start()
		if maxBuckets > 0 && len(out) >= maxBuckets {
			break
		}
	}

	return append(out, current)
}
