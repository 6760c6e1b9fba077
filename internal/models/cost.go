package models

// CostFrame is one hourly cost bucket in currency units, split into the
// provider's named components.
type CostFrame struct {
	Start              string  `json:"start"`
	End                string  `json:"end"`
	FaeCost            float64 `json:"fae_cost"`
	VarDistCostNet     float64 `json:"var_dist_cost_net"`
	FixDistCostNet     float64 `json:"fix_dist_cost_net"`
	EnergyCostNet      float64 `json:"energy_cost_net"`
	ServiceCostNet     float64 `json:"service_cost_net"`
	Excise             float64 `json:"excise"`
	VAT                float64 `json:"vat"`
	EnergySoldValue    float64 `json:"energy_sold_value"`
	EnergyBalanceValue float64 `json:"energy_balance_value"`
}

// CostDay is one local day of cost frames plus the provider's daily totals.
// Totals stay exactly as returned; a total the provider omitted is nil rather
// than zero so a missing figure is not mistaken for a free day.
type CostDay struct {
	Frames                     []CostFrame `json:"frames"`
	FaeTotalCost               *float64    `json:"fae_total_cost"`
	TotalEnergySoldValue       *float64    `json:"total_energy_sold_value"`
	TotalEnergyBalanceValue    *float64    `json:"total_energy_balance_value"`
	TotalSalesCostNet          *float64    `json:"total_sales_cost_net"`
	TotalServiceCostNet        *float64    `json:"total_service_cost_net"`
	TotalDistCostNet           *float64    `json:"total_dist_cost_net"`
	TotalExcise                *float64    `json:"total_excise"`
	TotalVAT                   *float64    `json:"total_vat"`
	TotalEnergyCostWithService *float64    `json:"total_energy_cost_with_service"`
	TotalVarDistCostNet        *float64    `json:"total_var_dist_cost_net"`
	TotalFixDistCostNet        *float64    `json:"total_fix_dist_cost_net"`
	TotalEnergyCostNet         *float64    `json:"total_energy_cost_net"`
}

// DecodeCostDay maps a raw power-cost payload.
func DecodeCostDay(raw any) CostDay {
	m := asMap(raw)
	day := CostDay{
		Frames:                     []CostFrame{},
		FaeTotalCost:               floatPtrField(m, "fae_total_cost"),
		TotalEnergySoldValue:       floatPtrField(m, "total_energy_sold_value"),
		TotalEnergyBalanceValue:    floatPtrField(m, "total_energy_balance_value"),
		TotalSalesCostNet:          floatPtrField(m, "total_sales_cost_net"),
		TotalServiceCostNet:        floatPtrField(m, "total_service_cost_net"),
		TotalDistCostNet:           floatPtrField(m, "total_dist_cost_net"),
		TotalExcise:                floatPtrField(m, "total_excise"),
		TotalVAT:                   floatPtrField(m, "total_vat"),
		TotalEnergyCostWithService: floatPtrField(m, "total_energy_cost_with_service"),
		TotalVarDistCostNet:        floatPtrField(m, "total_var_dist_cost_net"),
		TotalFixDistCostNet:        floatPtrField(m, "total_fix_dist_cost_net"),
		TotalEnergyCostNet:         floatPtrField(m, "total_energy_cost_net"),
	}
	for _, item := range listField(m, "frames") {
		frame := asMap(item)
		if frame == nil {
			continue
		}
		day.Frames = append(day.Frames, CostFrame{
			Start:              stringField(frame, "start"),
			End:                stringField(frame, "end"),
			FaeCost:            floatField(frame, "fae_cost"),
			VarDistCostNet:     floatField(frame, "var_dist_cost_net"),
			FixDistCostNet:     floatField(frame, "fix_dist_cost_net"),
			EnergyCostNet:      floatField(frame, "energy_cost_net"),
			ServiceCostNet:     floatField(frame, "service_cost_net"),
			Excise:             floatField(frame, "excise"),
			VAT:                floatField(frame, "vat"),
			EnergySoldValue:    floatField(frame, "energy_sold_value"),
			EnergyBalanceValue: floatField(frame, "energy_balance_value"),
		})
	}
	return day
}
