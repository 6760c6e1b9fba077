package app

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aLAN-LDZ/pstryk-go/internal/config"
	"github.com/aLAN-LDZ/pstryk-go/internal/pstryk"
)

func appToken(t *testing.T) string {
	t.Helper()
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	now := time.Now().UTC()
	payload, err := json.Marshal(map[string]any{"iat": now.Unix(), "exp": now.Add(time.Hour).Unix()})
	require.NoError(t, err)
	return header + "." + base64.RawURLEncoding.EncodeToString(payload) + ".sig"
}

func tokenApp(t *testing.T, baseURL string) *App {
	t.Helper()
	cfg := &config.Config{}
	cfg.API.BaseURL = baseURL
	cfg.Auth.AccessToken = appToken(t)
	cfg.Auth.RefreshToken = appToken(t)
	cfg.Auth.UserID = 42

	a, err := New(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

// fakeAPI answers every provider endpoint a refresh cycle touches and counts
// the requests it sees.
func fakeAPI(t *testing.T, requests *atomic.Int64) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests != nil {
			requests.Add(1)
		}
		enc := json.NewEncoder(w)
		switch {
		case r.URL.Path == "/auth/token/refresh/":
			enc.Encode(map[string]any{"access": appToken(t)})
		case r.URL.Path == "/api/meter/":
			enc.Encode([]map[string]any{{"id": 1, "name": "Home"}})
		case r.URL.Path == "/api/pricing/" || r.URL.Path == "/api/prosumer-pricing/":
			enc.Encode(map[string]any{"frames": []any{}})
		default:
			enc.Encode(map[string]any{})
		}
	})
}

func TestAuthenticateStartupRefreshFailureIsAuthError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"refresh token expired"}`, http.StatusUnauthorized)
	}))
	defer ts.Close()

	a := tokenApp(t, ts.URL)
	err := a.authenticate(context.Background())

	// A dead refresh token at startup must tell the host to re-collect
	// credentials, not look like a transient fetch failure.
	var authErr *pstryk.AuthError
	require.True(t, errors.As(err, &authErr))
}

func TestAuthenticateRefreshesResumedTokens(t *testing.T) {
	var refreshCalls atomic.Int64
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/token/refresh/", r.URL.Path)
		refreshCalls.Add(1)
		json.NewEncoder(w).Encode(map[string]any{"access": appToken(t)})
	}))
	defer ts.Close()

	a := tokenApp(t, ts.URL)
	require.NoError(t, a.authenticate(context.Background()))
	assert.Equal(t, int64(1), refreshCalls.Load(), "resumed sessions refresh once up front")
}

func TestTriggerRefreshStoresLatest(t *testing.T) {
	ts := httptest.NewServer(fakeAPI(t, nil))
	defer ts.Close()

	a := tokenApp(t, ts.URL)
	require.Nil(t, a.Latest(), "no snapshot before the first cycle")

	snap, err := a.TriggerRefresh(context.Background())
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Len(t, snap.Meters, 1)
	assert.Same(t, snap, a.Latest())
}

func TestTryRefreshSkipsWhenCycleInFlight(t *testing.T) {
	var requests atomic.Int64
	ts := httptest.NewServer(fakeAPI(t, &requests))
	defer ts.Close()

	a := tokenApp(t, ts.URL)

	// Simulate a cycle already holding the gate: the tick must be dropped,
	// not queued, so no requests reach the provider.
	a.cycleMu.Lock()
	a.tryRefresh(context.Background())
	a.cycleMu.Unlock()
	assert.Equal(t, int64(0), requests.Load())

	a.tryRefresh(context.Background())
	assert.Positive(t, requests.Load(), "an uncontended tick runs a full cycle")
	assert.NotNil(t, a.Latest())
}

func TestNextRefreshAt(t *testing.T) {
	at := func(hour, min, sec int) time.Time {
		return time.Date(2025, time.October, 13, hour, min, sec, 0, time.UTC)
	}

	cases := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"mid hour", at(10, 12, 0), at(10, 59, 30)},
		{"just before the mark", at(10, 59, 29), at(10, 59, 30)},
		{"exactly on the mark is strictly after", at(10, 59, 30), at(11, 59, 30)},
		{"past the mark", at(10, 59, 45), at(11, 59, 30)},
		{"last hour of the day", at(23, 59, 45), time.Date(2025, time.October, 14, 0, 59, 30, 0, time.UTC)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, nextRefreshAt(tc.now))
		})
	}
}

func TestNextRefreshAtNormalizesZone(t *testing.T) {
	warsaw := time.FixedZone("CEST", 2*3600)
	now := time.Date(2025, time.October, 13, 12, 30, 0, 0, warsaw) // 10:30 UTC

	got := nextRefreshAt(now)
	assert.Equal(t, time.UTC, got.Location())
	assert.Equal(t, time.Date(2025, time.October, 13, 10, 59, 30, 0, time.UTC), got)
}
