package midgard

import "midgard-history/internal/domain"

// Midgard sends every number as a decimal string.

type depthResponse struct {
	Intervals []depthWire `json:"intervals"`
}

type depthWire struct {
	StartTime      string `json:"startTime"`
	EndTime        string `json:"endTime"`
	AssetDepth     string `json:"assetDepth"`
	AssetPrice     string `json:"assetPrice"`
	AssetPriceUSD  string `json:"assetPriceUSD"`
	LiquidityUnits string `json:"liquidityUnits"`
	Luvi           string `json:"luvi"`
	MembersCount   string `json:"membersCount"`
	RuneDepth      string `json:"runeDepth"`
	SynthSupply    string `json:"synthSupply"`
	SynthUnits     string `json:"synthUnits"`
	Units          string `json:"units"`
}

func (w depthWire) toDomain(p fieldParser) domain.DepthInterval {
	return domain.DepthInterval{
		StartTime:      p.int("startTime", w.StartTime),
		EndTime:        p.int("endTime", w.EndTime),
		AssetDepth:     p.int("assetDepth", w.AssetDepth),
		AssetPrice:     p.float("assetPrice", w.AssetPrice),
		AssetPriceUSD:  p.float("assetPriceUSD", w.AssetPriceUSD),
		LiquidityUnits: p.int("liquidityUnits", w.LiquidityUnits),
		Luvi:           p.float("luvi", w.Luvi),
		MembersCount:   p.int("membersCount", w.MembersCount),
		RuneDepth:      p.int("runeDepth", w.RuneDepth),
		SynthSupply:    p.int("synthSupply", w.SynthSupply),
		SynthUnits:     p.int("synthUnits", w.SynthUnits),
		Units:          p.int("units", w.Units),
	}
}

type runePoolResponse struct {
	Intervals []runePoolWire `json:"intervals"`
}

type runePoolWire struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Count     string `json:"count"`
	Units     string `json:"units"`
}

func (w runePoolWire) toDomain(p fieldParser) domain.RunePoolInterval {
	return domain.RunePoolInterval{
		StartTime: p.int("startTime", w.StartTime),
		EndTime:   p.int("endTime", w.EndTime),
		Count:     p.int("count", w.Count),
		Units:     p.int("units", w.Units),
	}
}

type swapResponse struct {
	Intervals []swapWire `json:"intervals"`
}

type swapWire struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`

	ToAssetCount       string `json:"toAssetCount"`
	ToAssetVolume      string `json:"toAssetVolume"`
	ToAssetVolumeUSD   string `json:"toAssetVolumeUSD"`
	ToAssetFees        string `json:"toAssetFees"`
	ToAssetAverageSlip string `json:"toAssetAverageSlip"`

	ToRuneCount       string `json:"toRuneCount"`
	ToRuneVolume      string `json:"toRuneVolume"`
	ToRuneVolumeUSD   string `json:"toRuneVolumeUSD"`
	ToRuneFees        string `json:"toRuneFees"`
	ToRuneAverageSlip string `json:"toRuneAverageSlip"`

	ToTradeCount       string `json:"toTradeCount"`
	ToTradeVolume      string `json:"toTradeVolume"`
	ToTradeVolumeUSD   string `json:"toTradeVolumeUSD"`
	ToTradeFees        string `json:"toTradeFees"`
	ToTradeAverageSlip string `json:"toTradeAverageSlip"`

	FromTradeCount       string `json:"fromTradeCount"`
	FromTradeVolume      string `json:"fromTradeVolume"`
	FromTradeVolumeUSD   string `json:"fromTradeVolumeUSD"`
	FromTradeFees        string `json:"fromTradeFees"`
	FromTradeAverageSlip string `json:"fromTradeAverageSlip"`

	SynthMintCount       string `json:"synthMintCount"`
	SynthMintVolume      string `json:"synthMintVolume"`
	SynthMintVolumeUSD   string `json:"synthMintVolumeUSD"`
	SynthMintFees        string `json:"synthMintFees"`
	SynthMintAverageSlip string `json:"synthMintAverageSlip"`

	SynthRedeemCount       string `json:"synthRedeemCount"`
	SynthRedeemVolume      string `json:"synthRedeemVolume"`
	SynthRedeemVolumeUSD   string `json:"synthRedeemVolumeUSD"`
	SynthRedeemFees        string `json:"synthRedeemFees"`
	SynthRedeemAverageSlip string `json:"synthRedeemAverageSlip"`

	TotalCount     string `json:"totalCount"`
	TotalVolume    string `json:"totalVolume"`
	TotalVolumeUSD string `json:"totalVolumeUSD"`
	TotalFees      string `json:"totalFees"`
	AverageSlip    string `json:"averageSlip"`
	RunePriceUSD   string `json:"runePriceUSD"`
}

func (w swapWire) toDomain(p fieldParser) domain.SwapInterval {
	return domain.SwapInterval{
		StartTime: p.int("startTime", w.StartTime),
		EndTime:   p.int("endTime", w.EndTime),

		ToAssetCount:       p.int("toAssetCount", w.ToAssetCount),
		ToAssetVolume:      p.int("toAssetVolume", w.ToAssetVolume),
		ToAssetVolumeUSD:   p.int("toAssetVolumeUSD", w.ToAssetVolumeUSD),
		ToAssetFees:        p.int("toAssetFees", w.ToAssetFees),
		ToAssetAverageSlip: p.float("toAssetAverageSlip", w.ToAssetAverageSlip),

		ToRuneCount:       p.int("toRuneCount", w.ToRuneCount),
		ToRuneVolume:      p.int("toRuneVolume", w.ToRuneVolume),
		ToRuneVolumeUSD:   p.int("toRuneVolumeUSD", w.ToRuneVolumeUSD),
		ToRuneFees:        p.int("toRuneFees", w.ToRuneFees),
		ToRuneAverageSlip: p.float("toRuneAverageSlip", w.ToRuneAverageSlip),

		ToTradeCount:       p.int("toTradeCount", w.ToTradeCount),
		ToTradeVolume:      p.int("toTradeVolume", w.ToTradeVolume),
		ToTradeVolumeUSD:   p.int("toTradeVolumeUSD", w.ToTradeVolumeUSD),
		ToTradeFees:        p.int("toTradeFees", w.ToTradeFees),
		ToTradeAverageSlip: p.float("toTradeAverageSlip", w.ToTradeAverageSlip),

		FromTradeCount:       p.int("fromTradeCount", w.FromTradeCount),
		FromTradeVolume:      p.int("fromTradeVolume", w.FromTradeVolume),
		FromTradeVolumeUSD:   p.int("fromTradeVolumeUSD", w.FromTradeVolumeUSD),
		FromTradeFees:        p.int("fromTradeFees", w.FromTradeFees),
		FromTradeAverageSlip: p.float("fromTradeAverageSlip", w.FromTradeAverageSlip),

		SynthMintCount:       p.int("synthMintCount", w.SynthMintCount),
		SynthMintVolume:      p.int("synthMintVolume", w.SynthMintVolume),
		SynthMintVolumeUSD:   p.int("synthMintVolumeUSD", w.SynthMintVolumeUSD),
		SynthMintFees:        p.int("synthMintFees", w.SynthMintFees),
		SynthMintAverageSlip: p.float("synthMintAverageSlip", w.SynthMintAverageSlip),

		SynthRedeemCount:       p.int("synthRedeemCount", w.SynthRedeemCount),
		SynthRedeemVolume:      p.int("synthRedeemVolume", w.SynthRedeemVolume),
		SynthRedeemVolumeUSD:   p.int("synthRedeemVolumeUSD", w.SynthRedeemVolumeUSD),
		SynthRedeemFees:        p.int("synthRedeemFees", w.SynthRedeemFees),
		SynthRedeemAverageSlip: p.float("synthRedeemAverageSlip", w.SynthRedeemAverageSlip),

		TotalCount:     p.int("totalCount", w.TotalCount),
		TotalVolume:    p.int("totalVolume", w.TotalVolume),
		TotalVolumeUSD: p.int("totalVolumeUSD", w.TotalVolumeUSD),
		TotalFees:      p.int("totalFees", w.TotalFees),
		AverageSlip:    p.float("averageSlip", w.AverageSlip),
		RunePriceUSD:   p.float("runePriceUSD", w.RunePriceUSD),
	}
}

type earningsResponse struct {
	Intervals []earningsWire `json:"intervals"`
}

type earningsWire struct {
	StartTime         string     `json:"startTime"`
	EndTime           string     `json:"endTime"`
	AvgNodeCount      string     `json:"avgNodeCount"`
	BlockRewards      string     `json:"blockRewards"`
	BondingEarnings   string     `json:"bondingEarnings"`
	Earnings          string     `json:"earnings"`
	LiquidityEarnings string     `json:"liquidityEarnings"`
	LiquidityFees     string     `json:"liquidityFees"`
	RunePriceUSD      string     `json:"runePriceUSD"`
	Pools             []poolWire `json:"pools"`
}

type poolWire struct {
	Pool                   string `json:"pool"`
	AssetLiquidityFees     string `json:"assetLiquidityFees"`
	RuneLiquidityFees      string `json:"runeLiquidityFees"`
	TotalLiquidityFeesRune string `json:"totalLiquidityFeesRune"`
	SaverEarning           string `json:"saverEarning"`
	Rewards                string `json:"rewards"`
	Earnings               string `json:"earnings"`
}

func (w earningsWire) toDomain(p fieldParser) domain.EarningsInterval {
	e := domain.EarningsInterval{
		StartTime:         p.int("startTime", w.StartTime),
		EndTime:           p.int("endTime", w.EndTime),
		AvgNodeCount:      p.float("avgNodeCount", w.AvgNodeCount),
		BlockRewards:      p.int("blockRewards", w.BlockRewards),
		BondingEarnings:   p.int("bondingEarnings", w.BondingEarnings),
		Earnings:          p.int("earnings", w.Earnings),
		LiquidityEarnings: p.int("liquidityEarnings", w.LiquidityEarnings),
		LiquidityFees:     p.int("liquidityFees", w.LiquidityFees),
		RunePriceUSD:      p.float("runePriceUSD", w.RunePriceUSD),
		Pools:             make([]domain.PoolEarnings, 0, len(w.Pools)),
	}
	for _, pw := range w.Pools {
		e.Pools = append(e.Pools, domain.PoolEarnings{
			Pool:                   pw.Pool,
			AssetLiquidityFees:     p.int("pools.assetLiquidityFees", pw.AssetLiquidityFees),
			RuneLiquidityFees:      p.int("pools.runeLiquidityFees", pw.RuneLiquidityFees),
			TotalLiquidityFeesRune: p.int("pools.totalLiquidityFeesRune", pw.TotalLiquidityFeesRune),
			SaverEarning:           p.int("pools.saverEarning", pw.SaverEarning),
			Rewards:                p.int("pools.rewards", pw.Rewards),
			Earnings:               p.int("pools.earnings", pw.Earnings),
		})
	}
	return e
}
