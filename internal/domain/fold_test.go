package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSwapInterval_FoldPairwiseMean(t *testing.T) {
	acc := SwapInterval{StartTime: 0, EndTime: 10, TotalCount: 1, AverageSlip: 4, ToRuneAverageSlip: 2}
	for _, next := range []SwapInterval{
		{StartTime: 10, EndTime: 20, TotalCount: 2, AverageSlip: 8, ToRuneAverageSlip: 2, RunePriceUSD: 1.1},
		{StartTime: 20, EndTime: 30, TotalCount: 3, AverageSlip: 2, ToRuneAverageSlip: 6, RunePriceUSD: 1.2},
	} {
		acc = acc.Fold(next)
	}

	assert.Equal(t, int64(6), acc.TotalCount)
	// ((4+8)/2+2)/2
	assert.Equal(t, 4.0, acc.AverageSlip)
	assert.Equal(t, 4.0, acc.ToRuneAverageSlip)
	assert.Equal(t, 1.2, acc.RunePriceUSD)
	assert.Equal(t, int64(30), acc.EndTime)
}

func TestDepthInterval_Fold(t *testing.T) {
	a := DepthInterval{StartTime: 0, EndTime: 3600, AssetDepth: 100, RuneDepth: 200, Units: 5, AssetPrice: 2, Luvi: 0.5}
	b := DepthInterval{StartTime: 3600, EndTime: 7200, AssetDepth: 50, RuneDepth: 25, Units: 1, AssetPrice: 3, Luvi: 0.7}

	got := a.Fold(b)

	assert.Equal(t, int64(150), got.AssetDepth)
	assert.Equal(t, int64(225), got.RuneDepth)
	assert.Equal(t, int64(6), got.Units)
	assert.Equal(t, 3.0, got.AssetPrice)
	assert.Equal(t, 0.7, got.Luvi)
	assert.Equal(t, int64(7200), got.EndTime)
}

func TestRunePoolInterval_Fold(t *testing.T) {
	got := RunePoolInterval{StartTime: 0, EndTime: 5, Count: 2, Units: 10}.
		Fold(RunePoolInterval{StartTime: 5, EndTime: 4, Count: 3, Units: 1})

	assert.Equal(t, int64(5), got.Count)
	assert.Equal(t, int64(11), got.Units)
	assert.Equal(t, int64(5), got.EndTime)
}

func TestParseSeries(t *testing.T) {
	s, err := ParseSeries("swaps")
	assert.NoError(t, err)
	assert.Equal(t, SeriesSwaps, s)
	assert.Equal(t, "swap_history", s.Table())
	assert.Equal(t, "/swap-history", s.Route())
	assert.Equal(t, "data", s.ResponseKey())
	assert.Equal(t, "intervals", SeriesEarnings.ResponseKey())

	_, err = ParseSeries("candles")
	assert.Error(t, err)
}
