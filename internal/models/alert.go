package models

// HourRange is a named local-time range such as ("07:00", "11:00").
type HourRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// PriceAlert is a day-scoped alert rule. Thresholds are optional: a nil value
// means the user never configured one, which is different from a zero price.
type PriceAlert struct {
	Day                string      `json:"day"`
	LowPriceThreshold  *float64    `json:"low_price_threshold"`
	HighPriceThreshold *float64    `json:"high_price_threshold"`
	ExpensiveHours     []HourRange `json:"expensive_hours"`
	CheapHours         []HourRange `json:"cheap_hours"`
	CreatedAt          string      `json:"created_at"`
}

// AlertList is one meter's alert rules. A named type lets the aggregator keep
// "fetch failed" (nil pointer) distinguishable from "no alerts configured".
type AlertList []PriceAlert

// DecodeAlerts maps a raw full-price-alerts payload.
func DecodeAlerts(raw any) AlertList {
	items, _ := raw.([]any)
	alerts := make(AlertList, 0, len(items))
	for _, item := range items {
		m := asMap(item)
		if m == nil {
			continue
		}
		alerts = append(alerts, PriceAlert{
			Day:                stringField(m, "day"),
			LowPriceThreshold:  floatPtrField(m, "low_price_threshold"),
			HighPriceThreshold: floatPtrField(m, "high_price_threshold"),
			ExpensiveHours:     decodeHourRanges(listField(m, "expensive_hours")),
			CheapHours:         decodeHourRanges(listField(m, "cheap_hours")),
			CreatedAt:          stringField(m, "created_at"),
		})
	}
	return alerts
}

// decodeHourRanges maps the provider's two-element ["HH:MM", "HH:MM"] lists.
func decodeHourRanges(items []any) []HourRange {
	ranges := make([]HourRange, 0, len(items))
	for _, item := range items {
		pair, _ := item.([]any)
		if len(pair) != 2 {
			continue
		}
		from, _ := pair[0].(string)
		to, _ := pair[1].(string)
		ranges = append(ranges, HourRange{From: from, To: to})
	}
	return ranges
}
