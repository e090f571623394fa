package domain

// RunePoolInterval is one hourly RUNEPool membership snapshot.
type RunePoolInterval struct {
	StartTime int64 `json:"startTime"`
	EndTime   int64 `json:"endTime"`
	Count     int64 `json:"count"`
	Units     int64 `json:"units"`
}

func (r RunePoolInterval) Start() int64 { return r.StartTime }
func (r RunePoolInterval) End() int64   { return r.EndTime }

// Fold sums count and units.
func (r RunePoolInterval) Fold(next RunePoolInterval) RunePoolInterval {
	r.Count += next.Count
	r.Units += next.Units
	r.EndTime = max(r.EndTime, next.EndTime)
	return r
}
