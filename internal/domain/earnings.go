package domain

// PoolEarnings is the per-pool breakdown of an earnings interval.
// Rows are keyed by (earnings start_time, Pool).
type PoolEarnings struct {
	Pool                   string `json:"pool"`
	AssetLiquidityFees     int64  `json:"assetLiquidityFees"`
	RuneLiquidityFees      int64  `json:"runeLiquidityFees"`
	TotalLiquidityFeesRune int64  `json:"totalLiquidityFeesRune"`
	SaverEarning           int64  `json:"saverEarning"`
	Rewards                int64  `json:"rewards"`
	Earnings               int64  `json:"earnings"`
}

func (p PoolEarnings) add(next PoolEarnings) PoolEarnings {
	p.AssetLiquidityFees += next.AssetLiquidityFees
	p.RuneLiquidityFees += next.RuneLiquidityFees
	p.TotalLiquidityFeesRune += next.TotalLiquidityFeesRune
	p.SaverEarning += next.SaverEarning
	p.Rewards += next.Rewards
	p.Earnings += next.Earnings
	return p
}

// EarningsInterval is one hourly network earnings snapshot.
type EarningsInterval struct {
	StartTime         int64          `json:"startTime"`
	EndTime           int64          `json:"endTime"`
	AvgNodeCount      float64        `json:"avgNodeCount"`
	BlockRewards      int64          `json:"blockRewards"`
	BondingEarnings   int64          `json:"bondingEarnings"`
	Earnings          int64          `json:"earnings"`
	LiquidityEarnings int64          `json:"liquidityEarnings"`
	LiquidityFees     int64          `json:"liquidityFees"`
	RunePriceUSD      float64        `json:"runePriceUSD"`
	Pools             []PoolEarnings `json:"pools"`
}

func (e EarningsInterval) Start() int64 { return e.StartTime }
func (e EarningsInterval) End() int64   { return e.EndTime }

// Fold sums earnings figures and merges pools by name. New pools are
// appended in arrival order. The receiver's pools slice is never mutated.
func (e EarningsInterval) Fold(next EarningsInterval) EarningsInterval {
	e.BlockRewards += next.BlockRewards
	e.BondingEarnings += next.BondingEarnings
	e.Earnings += next.Earnings
	e.LiquidityEarnings += next.LiquidityEarnings
	e.LiquidityFees += next.LiquidityFees
	e.AvgNodeCount = pairwiseMean(e.AvgNodeCount, next.AvgNodeCount)
	e.RunePriceUSD = next.RunePriceUSD
	e.EndTime = max(e.EndTime, next.EndTime)
	e.Pools = MergePools(e.Pools, next.Pools)
	return e
}

// MergePools adds incoming pool figures into acc by pool name and
// returns a new slice.
func MergePools(acc, incoming []PoolEarnings) []PoolEarnings {
	merged := make([]PoolEarnings, len(acc), len(acc)+len(incoming))
	copy(merged, acc)

	index := make(map[string]int, len(merged))
	for i, p := range merged {
		index[p.Pool] = i
	}
	for _, p := range incoming {
		if i, ok := index[p.Pool]; ok {
			merged[i] = merged[i].add(p)
			continue
		}
		index[p.Pool] = len(merged)
		merged = append(merged, p)
	}
	return merged
}
