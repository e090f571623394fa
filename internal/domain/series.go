package domain

import "fmt"

// Series identifies one of the tracked history datasets.
type Series string

const (
	SeriesDepth    Series = "depth"
	SeriesRunePool Series = "runepool"
	SeriesSwaps    Series = "swaps"
	SeriesEarnings Series = "earnings"
)

// AllSeries lists every series in scheduling order.
var AllSeries = []Series{SeriesDepth, SeriesRunePool, SeriesSwaps, SeriesEarnings}

// ParseSeries validates a series name.
func ParseSeries(s string) (Series, error) {
	for _, known := range AllSeries {
		if string(known) == s {
			return known, nil
		}
	}
	return "", fmt.Errorf("unknown series %q", s)
}

// Table returns the storage table holding the series.
func (s Series) Table() string {
	switch s {
	case SeriesDepth:
		return "depth_history"
	case SeriesRunePool:
		return "rune_pool_history"
	case SeriesSwaps:
		return "swap_history"
	case SeriesEarnings:
		return "earnings_history"
	default:
		return ""
	}
}

// ResponseKey returns the JSON envelope key used by the query API.
func (s Series) ResponseKey() string {
	if s == SeriesEarnings {
		return "intervals"
	}
	return "data"
}

// Route returns the query API path serving the series.
func (s Series) Route() string {
	switch s {
	case SeriesDepth:
		return "/depth-history"
	case SeriesRunePool:
		return "/rune-pool-history"
	case SeriesSwaps:
		return "/swap-history"
	case SeriesEarnings:
		return "/earnings-history"
	default:
		return ""
	}
}

// Interval is the contract shared by all interval records.
// Fold merges next into the receiver's bucket and returns the result.
type Interval[T any] interface {
	Start() int64
	End() int64
	Fold(next T) T
}

// pairwiseMean is the running average used for slip-type metrics.
// It under-weights earlier members and is kept for compatibility.
func pairwiseMean(acc, next float64) float64 {
	return (acc + next) / 2
}
