package pstryk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aLAN-LDZ/pstryk-go/internal/timeutil"
)

func testWindow() timeutil.Window {
	return timeutil.Window{
		Start: time.Date(2025, 10, 12, 22, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 10, 13, 22, 0, 0, 0, time.UTC),
	}
}

func TestNewEndpointsRequiresBase(t *testing.T) {
	_, err := NewEndpoints("   ")
	require.Error(t, err)
}

func TestEndpointsTrailingSlashPolicy(t *testing.T) {
	ep, err := NewEndpoints("https://api.pstryk.pl/")
	require.NoError(t, err)

	// Auth and list endpoints require the trailing slash; the alerts
	// endpoint rejects it. Both quirks are provider behavior observed on the
	// wire and must be preserved verbatim.
	assert.Equal(t, "https://api.pstryk.pl/auth/token/", ep.Token())
	assert.Equal(t, "https://api.pstryk.pl/auth/token/refresh/", ep.TokenRefresh())
	assert.Equal(t, "https://api.pstryk.pl/api/meter/", ep.MeterList())
	assert.Equal(t, "https://api.pstryk.pl/api/full-price-alerts/17", ep.FullPriceAlerts(17))
}

func TestEndpointsWindowedQueries(t *testing.T) {
	ep, err := NewEndpoints("https://api.pstryk.pl")
	require.NoError(t, err)
	win := testWindow()

	assert.Equal(t,
		"https://api.pstryk.pl/api/pricing/?meter_id=7&resolution=hour&window_end=2025-10-13T22%3A00%3A00Z&window_start=2025-10-12T22%3A00%3A00Z",
		ep.PricingBuy(7, win, "hour"))
	assert.Equal(t,
		"https://api.pstryk.pl/api/prosumer-pricing/?resolution=hour&window_end=2025-10-13T22%3A00%3A00Z&window_start=2025-10-12T22%3A00%3A00Z",
		ep.PricingSell(win, "hour"))
	assert.Equal(t,
		"https://api.pstryk.pl/api/meter-data/7/power-usage/?resolution=hour&window_end=2025-10-13T22%3A00%3A00Z&window_start=2025-10-12T22%3A00%3A00Z",
		ep.PowerUsage(7, win, "hour"))
	assert.Equal(t,
		"https://api.pstryk.pl/api/meter-data/7/power-cost/?resolution=hour&window_end=2025-10-13T22%3A00%3A00Z&window_start=2025-10-12T22%3A00%3A00Z",
		ep.PowerCost(7, win, "hour"))
}
