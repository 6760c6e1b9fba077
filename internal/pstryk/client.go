package pstryk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/aLAN-LDZ/pstryk-go/internal/models"
	"github.com/aLAN-LDZ/pstryk-go/internal/timeutil"
)

const (
	// DefaultBaseURL is the provider's production origin.
	DefaultBaseURL = "https://api.pstryk.pl"
	// DefaultTimeout is the overall budget for one request.
	DefaultTimeout = 15 * time.Second
	// DefaultResolution is the frame granularity for windowed queries.
	DefaultResolution = "hour"
)

// ErrClientClosed is returned by any network operation attempted after Close.
var ErrClientClosed = errors.New("pstryk: client is closed")

// ClientConfig carries the connection parameters for a Client.
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks to the provider API with a renewable bearer session. It owns
// one lazily created HTTP connection pool and mutates nothing but its own
// token bookkeeping. One cycle at a time per client: overlapping refresh
// cycles must be serialized by the caller.
type Client struct {
	ep     *Endpoints
	logger *zap.Logger

	email    string
	password string
	timeout  time.Duration

	mu           sync.Mutex
	httpClient   *http.Client
	closed       bool
	accessToken  string
	refreshToken string
	userID       *int64
	accessTimes  TokenTimes
	refreshTimes TokenTimes

	refreshGroup singleflight.Group
}

// NewClient returns an unauthenticated client that will exchange email and
// password for tokens on Login.
func NewClient(cfg ClientConfig, email, password string, logger *zap.Logger) (*Client, error) {
	return newClient(cfg, email, password, logger)
}

// NewClientFromTokens resumes a previously obtained session. Both tokens are
// decoded immediately; a corrupt persisted token fails construction instead of
// being silently accepted. A token that is already past its expiry still
// constructs: staleness is discovered via a live 401, not proactively.
func NewClientFromTokens(cfg ClientConfig, access, refresh string, userID *int64, logger *zap.Logger) (*Client, error) {
	c, err := newClient(cfg, "", "", logger)
	if err != nil {
		return nil, err
	}

	accessTimes, err := DecodeTokenTimes(access)
	if err != nil {
		return nil, err
	}
	refreshTimes, err := DecodeTokenTimes(refresh)
	if err != nil {
		return nil, err
	}

	c.accessToken = access
	c.refreshToken = refresh
	c.userID = userID
	c.accessTimes = accessTimes
	c.refreshTimes = refreshTimes
	return c, nil
}

func newClient(cfg ClientConfig, email, password string, logger *zap.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ep, err := NewEndpoints(cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	return &Client{
		ep:       ep,
		logger:   logger.With(zap.String("component", "pstryk_client")),
		email:    email,
		password: password,
		timeout:  cfg.Timeout,
	}, nil
}

// ensureHTTP lazily builds the connection pool. Acquisition is idempotent. A
// closed client stays closed: once released the pool is never reopened.
func (c *Client) ensureHTTP() (*http.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClientClosed
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	return c.httpClient, nil
}

// Close releases the connection pool exactly once. Calling it when no pool
// was ever opened, or calling it twice, is a no-op.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.httpClient != nil {
		c.httpClient.CloseIdleConnections()
		c.httpClient = nil
	}
}

// Tokens returns the current access and refresh tokens so the host can
// persist them after any operation that changes them.
func (c *Client) Tokens() (access, refresh string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken, c.refreshToken
}

// UserID returns the resolved user identifier, if the provider supplied one.
func (c *Client) UserID() (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.userID == nil {
		return 0, false
	}
	return *c.userID, true
}

// AccessTokenTimes returns the issued-at/expiry bookkeeping for the access token.
func (c *Client) AccessTokenTimes() TokenTimes {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessTimes
}

// RefreshTokenTimes returns the issued-at/expiry bookkeeping for the refresh token.
func (c *Client) RefreshTokenTimes() TokenTimes {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshTimes
}

func (c *Client) postJSON(ctx context.Context, op, url string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("pstryk: marshal %s payload: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("pstryk: build %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	httpClient, err := c.ensureHTTP()
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}
	return resp, nil
}

// Login exchanges email and password for a fresh token pair and a user id.
func (c *Client) Login(ctx context.Context) error {
	if c.email == "" || c.password == "" {
		return &PreconditionError{Op: "login", Missing: "email and password"}
	}

	resp, err := c.postJSON(ctx, "login", c.ep.Token(), map[string]string{
		"email":    c.email,
		"password": c.password,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return &AuthError{Op: "login", StatusCode: resp.StatusCode, Body: excerpt(body)}
	}

	var data struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
		UserID  *int64 `json:"user_id"`
	}
	if err := json.Unmarshal(body, &data); err != nil {
		return &ProtocolError{Op: "login", Detail: fmt.Sprintf("invalid response body: %v", err)}
	}
	if data.Access == "" || data.Refresh == "" || data.UserID == nil {
		return &ProtocolError{Op: "login", Detail: "response missing access, refresh or user_id"}
	}

	accessTimes, err := DecodeTokenTimes(data.Access)
	if err != nil {
		return err
	}
	refreshTimes, err := DecodeTokenTimes(data.Refresh)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.accessToken = data.Access
	c.refreshToken = data.Refresh
	c.userID = data.UserID
	c.accessTimes = accessTimes
	c.refreshTimes = refreshTimes
	c.mu.Unlock()

	c.logger.Info("logged in",
		zap.Int64("user_id", *data.UserID),
		zap.Time("access_expires", accessTimes.Expires),
	)
	return nil
}

// RefreshAccess exchanges the refresh token for a new access token. The
// refresh token itself is left untouched: the provider does not rotate it on
// this call. Concurrent callers share a single in-flight exchange; a caller
// that finds a refresh already running waits for its result instead of
// issuing a duplicate.
func (c *Client) RefreshAccess(ctx context.Context) error {
	_, err, _ := c.refreshGroup.Do("refresh", func() (any, error) {
		return nil, c.refreshAccess(ctx)
	})
	return err
}

func (c *Client) refreshAccess(ctx context.Context) error {
	c.mu.Lock()
	refresh := c.refreshToken
	c.mu.Unlock()
	if refresh == "" {
		return &PreconditionError{Op: "refresh", Missing: "refresh token"}
	}

	resp, err := c.postJSON(ctx, "refresh", c.ep.TokenRefresh(), map[string]string{
		"refresh": refresh,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return &ProtocolError{Op: "refresh", Detail: fmt.Sprintf("HTTP %d - %s", resp.StatusCode, excerpt(body))}
	}

	var data struct {
		Access string `json:"access"`
		UserID *int64 `json:"user_id"`
	}
	if err := json.Unmarshal(body, &data); err != nil {
		return &ProtocolError{Op: "refresh", Detail: fmt.Sprintf("invalid response body: %v", err)}
	}
	if data.Access == "" {
		return &ProtocolError{Op: "refresh", Detail: "response missing access"}
	}

	accessTimes, err := DecodeTokenTimes(data.Access)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.accessToken = data.Access
	c.accessTimes = accessTimes
	if data.UserID != nil {
		c.userID = data.UserID
	}
	c.mu.Unlock()

	c.logger.Debug("access token refreshed", zap.Time("access_expires", accessTimes.Expires))
	return nil
}

func (c *Client) doGet(ctx context.Context, url string) (*http.Response, error) {
	c.mu.Lock()
	access := c.accessToken
	c.mu.Unlock()
	if access == "" {
		return nil, &PreconditionError{Op: "get", Missing: "access token"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("pstryk: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+access)

	httpClient, err := c.ensureHTTP()
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: "get", Err: err}
	}
	return resp, nil
}

// getJSON is the self-healing fetch primitive. A 401 triggers exactly one
// refresh followed by exactly one retried GET; a failure on the retry is
// fatal. Repeated 401s mean the refresh token is truly invalid, not a
// transient condition, so this must never grow into a retry loop. Any other
// non-200 status fails immediately without a retry.
func (c *Client) getJSON(ctx context.Context, url string) (any, error) {
	resp, err := c.doGet(ctx, url)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusOK {
		return decodeBody(resp, url)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &RequestError{URL: url, StatusCode: resp.StatusCode, Body: excerpt(body)}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	c.logger.Debug("got 401, refreshing access token", zap.String("url", url))
	if err := c.RefreshAccess(ctx); err != nil {
		return nil, &AuthError{Op: "get retry", Err: err}
	}

	resp, err = c.doGet(ctx, url)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if resp.StatusCode == http.StatusUnauthorized {
			return nil, &AuthError{Op: "get retry", StatusCode: resp.StatusCode, Body: excerpt(body)}
		}
		return nil, &RequestError{URL: url, StatusCode: resp.StatusCode, Body: excerpt(body)}
	}
	return decodeBody(resp, url)
}

func decodeBody(resp *http.Response, url string) (any, error) {
	defer resp.Body.Close()
	var data any
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, &ProtocolError{Op: "get " + url, Detail: fmt.Sprintf("invalid JSON body: %v", err)}
	}
	return data, nil
}

// GetMeters fetches the account's meter list.
func (c *Client) GetMeters(ctx context.Context) ([]models.Meter, error) {
	data, err := c.getJSON(ctx, c.ep.MeterList())
	if err != nil {
		return nil, err
	}
	return models.DecodeMeters(data), nil
}

// GetPriceAlerts fetches the alert rules configured for one meter.
func (c *Client) GetPriceAlerts(ctx context.Context, meterID int64) (models.AlertList, error) {
	data, err := c.getJSON(ctx, c.ep.FullPriceAlerts(meterID))
	if err != nil {
		return nil, err
	}
	return models.DecodeAlerts(data), nil
}

// GetPricingBuy fetches buy pricing frames and daily averages for one meter.
func (c *Client) GetPricingBuy(ctx context.Context, meterID int64, win timeutil.Window, resolution string) (models.Pricing, error) {
	data, err := c.getJSON(ctx, c.ep.PricingBuy(meterID, win, resolution))
	if err != nil {
		return models.Pricing{}, err
	}
	return models.DecodePricing(data), nil
}

// GetPricingSell fetches prosumer sell pricing frames and daily averages.
func (c *Client) GetPricingSell(ctx context.Context, win timeutil.Window, resolution string) (models.Pricing, error) {
	data, err := c.getJSON(ctx, c.ep.PricingSell(win, resolution))
	if err != nil {
		return models.Pricing{}, err
	}
	return models.DecodePricing(data), nil
}

// GetUsageDay fetches usage frames plus the provider's day totals.
func (c *Client) GetUsageDay(ctx context.Context, meterID int64, win timeutil.Window, resolution string) (models.UsageDay, error) {
	data, err := c.getJSON(ctx, c.ep.PowerUsage(meterID, win, resolution))
	if err != nil {
		return models.UsageDay{}, err
	}
	return models.DecodeUsageDay(data), nil
}

// GetCostDay fetches cost frames plus the provider's day totals.
func (c *Client) GetCostDay(ctx context.Context, meterID int64, win timeutil.Window, resolution string) (models.CostDay, error) {
	data, err := c.getJSON(ctx, c.ep.PowerCost(meterID, win, resolution))
	if err != nil {
		return models.CostDay{}, err
	}
	return models.DecodeCostDay(data), nil
}
