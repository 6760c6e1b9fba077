package models

// PriceFrame is one half-open [Start, End) price interval. Buy and sell
// pricing share the same frame shape. Start and End are passed through as the
// provider's ISO strings.
type PriceFrame struct {
	PriceNet        *float64 `json:"price_net"`
	PriceGross      *float64 `json:"price_gross"`
	DistPrice       *float64 `json:"dist_price"`
	ServicePrice    *float64 `json:"service_price"`
	BasePrice       *float64 `json:"base_price"`
	VATComponent    *float64 `json:"vat_component"`
	ExciseComponent *float64 `json:"excise_component"`
	FullPrice       *float64 `json:"full_price"`
	Start           string   `json:"start"`
	End             string   `json:"end"`
	IsCheap         bool     `json:"is_cheap"`
	IsExpensive     bool     `json:"is_expensive"`
	IsLive          *bool    `json:"is_live"`
}

// Pricing is one day of price frames plus the provider's daily averages.
type Pricing struct {
	PriceNetAvg   *float64     `json:"price_net_avg"`
	PriceGrossAvg *float64     `json:"price_gross_avg"`
	Frames        []PriceFrame `json:"frames"`
}

// DecodePricing maps a raw pricing payload (buy or sell variant).
func DecodePricing(raw any) Pricing {
	m := asMap(raw)
	pricing := Pricing{
		PriceNetAvg:   floatPtrField(m, "price_net_avg"),
		PriceGrossAvg: floatPtrField(m, "price_gross_avg"),
		Frames:        []PriceFrame{},
	}
	for _, item := range listField(m, "frames") {
		frame := asMap(item)
		if frame == nil {
			continue
		}
		pricing.Frames = append(pricing.Frames, decodePriceFrame(frame))
	}
	return pricing
}

func decodePriceFrame(m map[string]any) PriceFrame {
	f := PriceFrame{
		PriceNet:        floatPtrField(m, "price_net"),
		PriceGross:      floatPtrField(m, "price_gross"),
		DistPrice:       floatPtrField(m, "dist_price"),
		ServicePrice:    floatPtrField(m, "service_price"),
		BasePrice:       floatPtrField(m, "base_price"),
		VATComponent:    floatPtrField(m, "vat_component"),
		ExciseComponent: floatPtrField(m, "excise_component"),
		FullPrice:       floatPtrField(m, "full_price"),
		Start:           stringField(m, "start"),
		End:             stringField(m, "end"),
		IsCheap:         boolField(m, "is_cheap"),
		IsExpensive:     boolField(m, "is_expensive"),
	}
	if live, ok := m["is_live"].(bool); ok {
		f.IsLive = &live
	}
	return f
}
