package domain

// DepthInterval is one hourly pool depth snapshot.
type DepthInterval struct {
	StartTime      int64   `json:"startTime"`
	EndTime        int64   `json:"endTime"`
	AssetDepth     int64   `json:"assetDepth"`
	AssetPrice     float64 `json:"assetPrice"`
	AssetPriceUSD  float64 `json:"assetPriceUSD"`
	LiquidityUnits int64   `json:"liquidityUnits"`
	Luvi           float64 `json:"luvi"`
	MembersCount   int64   `json:"membersCount"`
	RuneDepth      int64   `json:"runeDepth"`
	SynthSupply    int64   `json:"synthSupply"`
	SynthUnits     int64   `json:"synthUnits"`
	Units          int64   `json:"units"`
}

func (d DepthInterval) Start() int64 { return d.StartTime }
func (d DepthInterval) End() int64   { return d.EndTime }

// Fold sums depths and units; prices and luvi take the incoming value.
func (d DepthInterval) Fold(next DepthInterval) DepthInterval {
	d.AssetDepth += next.AssetDepth
	d.RuneDepth += next.RuneDepth
	d.LiquidityUnits += next.LiquidityUnits
	d.MembersCount += next.MembersCount
	d.SynthSupply += next.SynthSupply
	d.SynthUnits += next.SynthUnits
	d.Units += next.Units
	d.AssetPrice = next.AssetPrice
	d.AssetPriceUSD = next.AssetPriceUSD
	d.Luvi = next.Luvi
	d.EndTime = max(d.EndTime, next.EndTime)
	return d
}
