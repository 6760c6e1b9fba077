package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePricing(t *testing.T) {
	raw := unmarshalAny(t, `{
		"price_net_avg": 0.41,
		"price_gross_avg": 0.52,
		"frames": [
			{"start": "2025-10-13T00:00:00Z", "end": "2025-10-13T01:00:00Z",
			 "price_gross": 0.61, "is_cheap": false, "is_expensive": true, "is_live": true},
			{"start": "2025-10-13T01:00:00Z", "end": "2025-10-13T02:00:00Z",
			 "price_gross": "not-a-number", "is_cheap": true}
		]
	}`)

	pricing := DecodePricing(raw)
	require.NotNil(t, pricing.PriceNetAvg)
	assert.Equal(t, 0.41, *pricing.PriceNetAvg)
	require.Len(t, pricing.Frames, 2)

	first := pricing.Frames[0]
	require.NotNil(t, first.PriceGross)
	assert.Equal(t, 0.61, *first.PriceGross)
	assert.True(t, first.IsExpensive)
	require.NotNil(t, first.IsLive)
	assert.True(t, *first.IsLive)

	// Uncoercible price degrades to absent instead of failing the record.
	second := pricing.Frames[1]
	assert.Nil(t, second.PriceGross)
	assert.True(t, second.IsCheap)
	assert.Nil(t, second.IsLive)
}

func TestDecodeUsageDayKeepsProviderTotals(t *testing.T) {
	raw := unmarshalAny(t, `{
		"frames": [
			{"start": "2025-10-13T00:00:00Z", "end": "2025-10-13T01:00:00Z", "fae_usage": 1.2, "rae": 0.3, "energy_balance": 0.9},
			{"start": "2025-10-13T01:00:00Z", "end": "2025-10-13T02:00:00Z", "fae_usage": 0.8}
		],
		"fae_total_usage": 2.5,
		"rae_total": 0.3,
		"energy_balance": 2.2
	}`)

	day := DecodeUsageDay(raw)
	require.Len(t, day.Frames, 2)
	assert.Equal(t, 1.2, day.Frames[0].FaeUsage)
	assert.Equal(t, 0.0, day.Frames[1].Rae, "missing frame quantity defaults to 0")

	// Provider totals are authoritative even when they do not equal the sum
	// of frames (server-side rounding): 2.5 here vs a frame sum of 2.0.
	assert.Equal(t, 2.5, day.FaeTotalUsage)
	assert.Equal(t, 2.2, day.EnergyBalance)
}

func TestDecodeCostDay(t *testing.T) {
	raw := unmarshalAny(t, `{
		"frames": [
			{"start": "2025-10-13T00:00:00Z", "end": "2025-10-13T01:00:00Z",
			 "fae_cost": "0.87", "vat": 0.16, "excise": null}
		],
		"fae_total_cost": 14.2,
		"total_vat": "2.61",
		"total_excise": 0.4
	}`)

	day := DecodeCostDay(raw)
	require.Len(t, day.Frames, 1)
	assert.Equal(t, 0.87, day.Frames[0].FaeCost, "string numerics are coerced")
	assert.Equal(t, 0.16, day.Frames[0].VAT)
	assert.Equal(t, 0.0, day.Frames[0].Excise)

	require.NotNil(t, day.FaeTotalCost)
	assert.Equal(t, 14.2, *day.FaeTotalCost)
	require.NotNil(t, day.TotalVAT)
	assert.Equal(t, 2.61, *day.TotalVAT)
	assert.Nil(t, day.TotalEnergyCostNet, "totals the provider omitted stay absent")
}

func TestDecodeAlerts(t *testing.T) {
	raw := unmarshalAny(t, `[
		{
			"day": "2025-10-13",
			"low_price_threshold": 0.25,
			"expensive_hours": [["07:00", "11:00"], ["18:00", "21:00"]],
			"cheap_hours": [["12:00", "15:00"], ["bad entry"]],
			"created_at": "2025-10-12T10:00:07.083793Z"
		}
	]`)

	alerts := DecodeAlerts(raw)
	require.Len(t, alerts, 1)

	alert := alerts[0]
	assert.Equal(t, "2025-10-13", alert.Day)
	require.NotNil(t, alert.LowPriceThreshold)
	assert.Equal(t, 0.25, *alert.LowPriceThreshold)
	assert.Nil(t, alert.HighPriceThreshold, "unconfigured threshold is absent, not zero")
	assert.Equal(t, []HourRange{{From: "07:00", To: "11:00"}, {From: "18:00", To: "21:00"}}, alert.ExpensiveHours)
	assert.Equal(t, []HourRange{{From: "12:00", To: "15:00"}}, alert.CheapHours, "malformed pair is skipped")
}
