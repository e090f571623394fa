package storage

import (
	"strings"

	"midgard-history/internal/domain"
)

// Schema maps one series record type onto table columns. Both SQL backends
// share it; column order is identical in Values and Fields.
type Schema[T any] struct {
	Table   string
	Columns []string
	// Values returns the column values of rec.
	Values func(rec T) []any
	// Fields returns scan destinations pointing into rec.
	Fields func(rec *T) []any
}

// ColumnList returns the comma separated column names.
func (s Schema[T]) ColumnList() string {
	return strings.Join(s.Columns, ", ")
}

// PoolsTable holds the earnings pool breakdown rows.
const PoolsTable = "earnings_pools"

// PoolColumns lists the earnings_pools columns after the parent key.
var PoolColumns = []string{
	"earnings_start_time", "pool_name", "asset_liquidity_fees", "rune_liquidity_fees",
	"total_liquidity_fees_rune", "saver_earning", "rewards", "earnings",
}

// PoolValues returns the earnings_pools column values of p.
func PoolValues(startTime int64, p domain.PoolEarnings) []any {
	return []any{
		startTime, p.Pool, p.AssetLiquidityFees, p.RuneLiquidityFees,
		p.TotalLiquidityFeesRune, p.SaverEarning, p.Rewards, p.Earnings,
	}
}

// PoolFields returns scan destinations for an earnings_pools row.
func PoolFields(startTime *int64, p *domain.PoolEarnings) []any {
	return []any{
		startTime, &p.Pool, &p.AssetLiquidityFees, &p.RuneLiquidityFees,
		&p.TotalLiquidityFeesRune, &p.SaverEarning, &p.Rewards, &p.Earnings,
	}
}

// DepthSchema describes depth_history.
var DepthSchema = Schema[domain.DepthInterval]{
	Table: domain.SeriesDepth.Table(),
	Columns: []string{
		"start_time", "end_time", "asset_depth", "asset_price", "asset_price_usd",
		"liquidity_units", "luvi", "members_count", "rune_depth", "synth_supply",
		"synth_units", "units",
	},
	Values: func(d domain.DepthInterval) []any {
		return []any{
			d.StartTime, d.EndTime, d.AssetDepth, d.AssetPrice, d.AssetPriceUSD,
			d.LiquidityUnits, d.Luvi, d.MembersCount, d.RuneDepth, d.SynthSupply,
			d.SynthUnits, d.Units,
		}
	},
	Fields: func(d *domain.DepthInterval) []any {
		return []any{
			&d.StartTime, &d.EndTime, &d.AssetDepth, &d.AssetPrice, &d.AssetPriceUSD,
			&d.LiquidityUnits, &d.Luvi, &d.MembersCount, &d.RuneDepth, &d.SynthSupply,
			&d.SynthUnits, &d.Units,
		}
	},
}

// RunePoolSchema describes rune_pool_history.
var RunePoolSchema = Schema[domain.RunePoolInterval]{
	Table:   domain.SeriesRunePool.Table(),
	Columns: []string{"start_time", "end_time", "count", "units"},
	Values: func(r domain.RunePoolInterval) []any {
		return []any{r.StartTime, r.EndTime, r.Count, r.Units}
	},
	Fields: func(r *domain.RunePoolInterval) []any {
		return []any{&r.StartTime, &r.EndTime, &r.Count, &r.Units}
	},
}

// SwapSchema describes swap_history.
var SwapSchema = Schema[domain.SwapInterval]{
	Table: domain.SeriesSwaps.Table(),
	Columns: []string{
		"start_time", "end_time",
		"to_asset_count", "to_asset_volume", "to_asset_volume_usd", "to_asset_fees", "to_asset_average_slip",
		"to_rune_count", "to_rune_volume", "to_rune_volume_usd", "to_rune_fees", "to_rune_average_slip",
		"to_trade_count", "to_trade_volume", "to_trade_volume_usd", "to_trade_fees", "to_trade_average_slip",
		"from_trade_count", "from_trade_volume", "from_trade_volume_usd", "from_trade_fees", "from_trade_average_slip",
		"synth_mint_count", "synth_mint_volume", "synth_mint_volume_usd", "synth_mint_fees", "synth_mint_average_slip",
		"synth_redeem_count", "synth_redeem_volume", "synth_redeem_volume_usd", "synth_redeem_fees", "synth_redeem_average_slip",
		"total_count", "total_volume", "total_volume_usd", "total_fees", "average_slip", "rune_price_usd",
	},
	Values: func(s domain.SwapInterval) []any {
		return []any{
			s.StartTime, s.EndTime,
			s.ToAssetCount, s.ToAssetVolume, s.ToAssetVolumeUSD, s.ToAssetFees, s.ToAssetAverageSlip,
			s.ToRuneCount, s.ToRuneVolume, s.ToRuneVolumeUSD, s.ToRuneFees, s.ToRuneAverageSlip,
			s.ToTradeCount, s.ToTradeVolume, s.ToTradeVolumeUSD, s.ToTradeFees, s.ToTradeAverageSlip,
			s.FromTradeCount, s.FromTradeVolume, s.FromTradeVolumeUSD, s.FromTradeFees, s.FromTradeAverageSlip,
			s.SynthMintCount, s.SynthMintVolume, s.SynthMintVolumeUSD, s.SynthMintFees, s.SynthMintAverageSlip,
			s.SynthRedeemCount, s.SynthRedeemVolume, s.SynthRedeemVolumeUSD, s.SynthRedeemFees, s.SynthRedeemAverageSlip,
			s.TotalCount, s.TotalVolume, s.TotalVolumeUSD, s.TotalFees, s.AverageSlip, s.RunePriceUSD,
		}
	},
	Fields: func(s *domain.SwapInterval) []any {
		return []any{
			&s.StartTime, &s.EndTime,
			&s.ToAssetCount, &s.ToAssetVolume, &s.ToAssetVolumeUSD, &s.ToAssetFees, &s.ToAssetAverageSlip,
			&s.ToRuneCount, &s.ToRuneVolume, &s.ToRuneVolumeUSD, &s.ToRuneFees, &s.ToRuneAverageSlip,
			&s.ToTradeCount, &s.ToTradeVolume, &s.ToTradeVolumeUSD, &s.ToTradeFees, &s.ToTradeAverageSlip,
			&s.FromTradeCount, &s.FromTradeVolume, &s.FromTradeVolumeUSD, &s.FromTradeFees, &s.FromTradeAverageSlip,
			&s.SynthMintCount, &s.SynthMintVolume, &s.SynthMintVolumeUSD, &s.SynthMintFees, &s.SynthMintAverageSlip,
			&s.SynthRedeemCount, &s.SynthRedeemVolume, &s.SynthRedeemVolumeUSD, &s.SynthRedeemFees, &s.SynthRedeemAverageSlip,
			&s.TotalCount, &s.TotalVolume, &s.TotalVolumeUSD, &s.TotalFees, &s.AverageSlip, &s.RunePriceUSD,
		}
	},
}

// EarningsSchema describes earnings_history. Pools live in PoolsTable.
var EarningsSchema = Schema[domain.EarningsInterval]{
	Table: domain.SeriesEarnings.Table(),
	Columns: []string{
		"start_time", "end_time", "avg_node_count", "block_rewards", "bonding_earnings",
		"earnings", "liquidity_earnings", "liquidity_fees", "rune_price_usd",
	},
	Values: func(e domain.EarningsInterval) []any {
		return []any{
			e.StartTime, e.EndTime, e.AvgNodeCount, e.BlockRewards, e.BondingEarnings,
			e.Earnings, e.LiquidityEarnings, e.LiquidityFees, e.RunePriceUSD,
		}
	},
	Fields: func(e *domain.EarningsInterval) []any {
		return []any{
			&e.StartTime, &e.EndTime, &e.AvgNodeCount, &e.BlockRewards, &e.BondingEarnings,
			&e.Earnings, &e.LiquidityEarnings, &e.LiquidityFees, &e.RunePriceUSD,
		}
	},
}
