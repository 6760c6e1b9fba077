package models

// UsageFrame is one hourly energy bucket in kWh: drawn from the grid
// (fae_usage), returned to the grid (rae) and their balance.
type UsageFrame struct {
	Start         string  `json:"start"`
	End           string  `json:"end"`
	FaeUsage      float64 `json:"fae_usage"`
	Rae           float64 `json:"rae"`
	EnergyBalance float64 `json:"energy_balance"`
}

// UsageDay is one local day of usage frames plus the provider's totals.
// Totals are taken verbatim from the API, never recomputed from frames:
// the provider's figures are the downstream contract and may legitimately
// diverge from a client-side sum.
type UsageDay struct {
	Frames        []UsageFrame `json:"frames"`
	FaeTotalUsage float64      `json:"fae_total_usage"`
	RaeTotal      float64      `json:"rae_total"`
	EnergyBalance float64      `json:"energy_balance"`
}

// DecodeUsageDay maps a raw power-usage payload.
func DecodeUsageDay(raw any) UsageDay {
	m := asMap(raw)
	day := UsageDay{
		Frames:        []UsageFrame{},
		FaeTotalUsage: floatField(m, "fae_total_usage"),
		RaeTotal:      floatField(m, "rae_total"),
		EnergyBalance: floatField(m, "energy_balance"),
	}
	for _, item := range listField(m, "frames") {
		frame := asMap(item)
		if frame == nil {
			continue
		}
		day.Frames = append(day.Frames, UsageFrame{
			Start:         stringField(frame, "start"),
			End:           stringField(frame, "end"),
			FaeUsage:      floatField(frame, "fae_usage"),
			Rae:           floatField(frame, "rae"),
			EnergyBalance: floatField(frame, "energy_balance"),
		})
	}
	return day
}
