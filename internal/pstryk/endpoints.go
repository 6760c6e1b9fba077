package pstryk

import (
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/aLAN-LDZ/pstryk-go/internal/timeutil"
)

const (
	apiPrefix  = "api"
	authPrefix = "auth"
)

// Endpoints builds fully qualified provider URLs. Some provider endpoints
// require a trailing slash while others reject it, so the slash policy is
// fixed per endpoint instead of being normalized globally.
type Endpoints struct {
	base string
}

// NewEndpoints validates the base origin and returns a builder.
func NewEndpoints(base string) (*Endpoints, error) {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		return nil, errors.New("pstryk: endpoints base is required")
	}
	return &Endpoints{base: base}, nil
}

func (e *Endpoints) join(trailingSlash bool, parts ...string) string {
	segments := make([]string, 0, len(parts)+1)
	segments = append(segments, e.base)
	for _, p := range parts {
		segments = append(segments, strings.Trim(p, "/"))
	}
	u := strings.Join(segments, "/")
	if trailingSlash {
		u += "/"
	}
	return u
}

func windowValues(win timeutil.Window, resolution string) url.Values {
	return url.Values{
		"window_start": {timeutil.FormatISO(win.Start)},
		"window_end":   {timeutil.FormatISO(win.End)},
		"resolution":   {resolution},
	}
}

// Token is the email+password login endpoint.
func (e *Endpoints) Token() string {
	return e.join(true, authPrefix, "token")
}

// TokenRefresh exchanges a refresh token for a new access token.
func (e *Endpoints) TokenRefresh() string {
	return e.join(true, authPrefix, "token", "refresh")
}

// MeterList lists the account's meters.
func (e *Endpoints) MeterList() string {
	return e.join(true, apiPrefix, "meter")
}

// FullPriceAlerts lists alert rules for one meter. This endpoint rejects a
// trailing slash.
func (e *Endpoints) FullPriceAlerts(meterID int64) string {
	return e.join(false, apiPrefix, "full-price-alerts", strconv.FormatInt(meterID, 10))
}

// PricingBuy queries buy pricing for one meter over a UTC window.
func (e *Endpoints) PricingBuy(meterID int64, win timeutil.Window, resolution string) string {
	params := windowValues(win, resolution)
	params.Set("meter_id", strconv.FormatInt(meterID, 10))
	return e.join(true, apiPrefix, "pricing") + "?" + params.Encode()
}

// PricingSell queries prosumer sell pricing over a UTC window. The provider
// scopes this to the account, not a meter.
func (e *Endpoints) PricingSell(win timeutil.Window, resolution string) string {
	return e.join(true, apiPrefix, "prosumer-pricing") + "?" + windowValues(win, resolution).Encode()
}

// PowerUsage queries energy usage frames and day totals for one meter.
func (e *Endpoints) PowerUsage(meterID int64, win timeutil.Window, resolution string) string {
	return e.join(true, apiPrefix, "meter-data", strconv.FormatInt(meterID, 10), "power-usage") +
		"?" + windowValues(win, resolution).Encode()
}

// PowerCost queries cost frames and day totals for one meter.
func (e *Endpoints) PowerCost(meterID int64, win timeutil.Window, resolution string) string {
	return e.join(true, apiPrefix, "meter-data", strconv.FormatInt(meterID, 10), "power-cost") +
		"?" + windowValues(win, resolution).Encode()
}
