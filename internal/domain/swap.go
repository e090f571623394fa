package domain

// SwapInterval is one hourly swap statistics snapshot.
type SwapInterval struct {
	StartTime int64 `json:"startTime"`
	EndTime   int64 `json:"endTime"`

	ToAssetCount       int64   `json:"toAssetCount"`
	ToAssetVolume      int64   `json:"toAssetVolume"`
	ToAssetVolumeUSD   int64   `json:"toAssetVolumeUSD"`
	ToAssetFees        int64   `json:"toAssetFees"`
	ToAssetAverageSlip float64 `json:"toAssetAverageSlip"`

	ToRuneCount       int64   `json:"toRuneCount"`
	ToRuneVolume      int64   `json:"toRuneVolume"`
	ToRuneVolumeUSD   int64   `json:"toRuneVolumeUSD"`
	ToRuneFees        int64   `json:"toRuneFees"`
	ToRuneAverageSlip float64 `json:"toRuneAverageSlip"`

	ToTradeCount       int64   `json:"toTradeCount"`
	ToTradeVolume      int64   `json:"toTradeVolume"`
	ToTradeVolumeUSD   int64   `json:"toTradeVolumeUSD"`
	ToTradeFees        int64   `json:"toTradeFees"`
	ToTradeAverageSlip float64 `json:"toTradeAverageSlip"`

	FromTradeCount       int64   `json:"fromTradeCount"`
	FromTradeVolume      int64   `json:"fromTradeVolume"`
	FromTradeVolumeUSD   int64   `json:"fromTradeVolumeUSD"`
	FromTradeFees        int64   `json:"fromTradeFees"`
	FromTradeAverageSlip float64 `json:"fromTradeAverageSlip"`

	SynthMintCount       int64   `json:"synthMintCount"`
	SynthMintVolume      int64   `json:"synthMintVolume"`
	SynthMintVolumeUSD   int64   `json:"synthMintVolumeUSD"`
	SynthMintFees        int64   `json:"synthMintFees"`
	SynthMintAverageSlip float64 `json:"synthMintAverageSlip"`

	SynthRedeemCount       int64   `json:"synthRedeemCount"`
	SynthRedeemVolume      int64   `json:"synthRedeemVolume"`
	SynthRedeemVolumeUSD   int64   `json:"synthRedeemVolumeUSD"`
	SynthRedeemFees        int64   `json:"synthRedeemFees"`
	SynthRedeemAverageSlip float64 `json:"synthRedeemAverageSlip"`

	TotalCount     int64   `json:"totalCount"`
	TotalVolume    int64   `json:"totalVolume"`
	TotalVolumeUSD int64   `json:"totalVolumeUSD"`
	TotalFees      int64   `json:"totalFees"`
	AverageSlip    float64 `json:"averageSlip"`
	RunePriceUSD   float64 `json:"runePriceUSD"`
}

func (s SwapInterval) Start() int64 { return s.StartTime }
func (s SwapInterval) End() int64   { return s.EndTime }

// Fold sums counts, volumes and fees. Slips use the pairwise mean and
// the rune price takes the incoming value.
func (s SwapInterval) Fold(next SwapInterval) SwapInterval {
	s.ToAssetCount += next.ToAssetCount
	s.ToAssetVolume += next.ToAssetVolume
	s.ToAssetVolumeUSD += next.ToAssetVolumeUSD
	s.ToAssetFees += next.ToAssetFees
	s.ToAssetAverageSlip = pairwiseMean(s.ToAssetAverageSlip, next.ToAssetAverageSlip)

	s.ToRuneCount += next.ToRuneCount
	s.ToRuneVolume += next.ToRuneVolume
	s.ToRuneVolumeUSD += next.ToRuneVolumeUSD
	s.ToRuneFees += next.ToRuneFees
	s.ToRuneAverageSlip = pairwiseMean(s.ToRuneAverageSlip, next.ToRuneAverageSlip)

	s.ToTradeCount += next.ToTradeCount
	s.ToTradeVolume += next.ToTradeVolume
	s.ToTradeVolumeUSD += next.ToTradeVolumeUSD
	s.ToTradeFees += next.ToTradeFees
	s.ToTradeAverageSlip = pairwiseMean(s.ToTradeAverageSlip, next.ToTradeAverageSlip)

	s.FromTradeCount += next.FromTradeCount
	s.FromTradeVolume += next.FromTradeVolume
	s.FromTradeVolumeUSD += next.FromTradeVolumeUSD
	s.FromTradeFees += next.FromTradeFees
	s.FromTradeAverageSlip = pairwiseMean(s.FromTradeAverageSlip, next.FromTradeAverageSlip)

	s.SynthMintCount += next.SynthMintCount
	s.SynthMintVolume += next.SynthMintVolume
	s.SynthMintVolumeUSD += next.SynthMintVolumeUSD
	s.SynthMintFees += next.SynthMintFees
	s.SynthMintAverageSlip = pairwiseMean(s.SynthMintAverageSlip, next.SynthMintAverageSlip)

	s.SynthRedeemCount += next.SynthRedeemCount
	s.SynthRedeemVolume += next.SynthRedeemVolume
	s.SynthRedeemVolumeUSD += next.SynthRedeemVolumeUSD
	s.SynthRedeemFees += next.SynthRedeemFees
	s.SynthRedeemAverageSlip = pairwiseMean(s.SynthRedeemAverageSlip, next.SynthRedeemAverageSlip)

	s.TotalCount += next.TotalCount
	s.TotalVolume += next.TotalVolume
	s.TotalVolumeUSD += next.TotalVolumeUSD
	s.TotalFees += next.TotalFees
	s.AverageSlip = pairwiseMean(s.AverageSlip, next.AverageSlip)

	s.RunePriceUSD = next.RunePriceUSD
	s.EndTime = max(s.EndTime, next.EndTime)
	return s
}
