package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/aLAN-LDZ/pstryk-go/internal/config"
	"github.com/aLAN-LDZ/pstryk-go/internal/pstryk"
	"github.com/aLAN-LDZ/pstryk-go/internal/service"
	"github.com/aLAN-LDZ/pstryk-go/internal/timeutil"
)

// App wires pstrykd dependencies: the authenticated client, the snapshot
// service and the refresh schedule.
type App struct {
	cfg     *config.Config
	client  *pstryk.Client
	service *service.SnapshotService
	logger  *zap.Logger

	// cycleMu serializes refresh cycles: the client's token state is shared,
	// so at most one cycle may be in flight at a time.
	cycleMu sync.Mutex

	latestMu sync.RWMutex
	latest   *service.Snapshot
}

// New constructs the application graph.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	clientCfg := pstryk.ClientConfig{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.Timeout(),
	}

	var client *pstryk.Client
	var err error
	if cfg.HasTokens() {
		var userID *int64
		if cfg.Auth.UserID != 0 {
			id := cfg.Auth.UserID
			userID = &id
		}
		client, err = pstryk.NewClientFromTokens(clientCfg, cfg.Auth.AccessToken, cfg.Auth.RefreshToken, userID, logger)
	} else {
		client, err = pstryk.NewClient(clientCfg, cfg.Auth.Email, cfg.Auth.Password, logger)
	}
	if err != nil {
		return nil, err
	}

	snapshots := service.NewSnapshotService(
		client,
		timeutil.ProviderLocation(),
		cfg.MeterConcurrency(),
		cfg.Refresh.Resolution,
		logger,
	)

	return &App{
		cfg:     cfg,
		client:  client,
		service: snapshots,
		logger:  logger,
	}, nil
}

// Run authenticates, performs an initial refresh and then keeps refreshing on
// the pre-midnight-of-each-hour schedule until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if err := a.authenticate(ctx); err != nil {
		return err
	}

	if _, err := a.TriggerRefresh(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		a.logger.Warn("initial refresh failed", zap.Error(err))
	}

	for {
		next := nextRefreshAt(time.Now().UTC())
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			a.tryRefresh(ctx)
		}
	}
}

// authenticate establishes a usable session. When resuming from persisted
// tokens the access token is refreshed once up front, so the first cycle does
// not start with a stale token; a refresh failure here means the refresh
// token is dead and the host must re-collect credentials.
func (a *App) authenticate(ctx context.Context) error {
	if a.cfg.HasTokens() {
		if err := a.client.RefreshAccess(ctx); err != nil {
			return &pstryk.AuthError{Op: "startup refresh", Err: err}
		}
		a.logTokenChange(a.cfg.Auth.AccessToken)
		return nil
	}
	return a.client.Login(ctx)
}

// TriggerRefresh runs one refresh cycle, queueing behind any cycle already in
// flight. This is the on-demand entry point for hosts embedding the core.
func (a *App) TriggerRefresh(ctx context.Context) (*service.Snapshot, error) {
	a.cycleMu.Lock()
	defer a.cycleMu.Unlock()
	return a.runCycle(ctx)
}

// runCycle performs one cycle; cycleMu must be held.
func (a *App) runCycle(ctx context.Context) (*service.Snapshot, error) {
	accessBefore, _ := a.client.Tokens()
	snap, err := a.service.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	a.logTokenChange(accessBefore)

	a.latestMu.Lock()
	a.latest = snap
	a.latestMu.Unlock()
	return snap, nil
}

// tryRefresh is the timer path: an overlapping tick is coalesced by skipping
// it rather than queueing a duplicate cycle.
func (a *App) tryRefresh(ctx context.Context) {
	if !a.cycleMu.TryLock() {
		a.logger.Debug("refresh already in flight, skipping tick")
		return
	}
	defer a.cycleMu.Unlock()

	if _, err := a.runCycle(ctx); err != nil && !errors.Is(err, context.Canceled) {
		a.logger.Warn("scheduled refresh failed", zap.Error(err))
	}
}

// Latest returns the most recent snapshot, or nil before the first cycle.
func (a *App) Latest() *service.Snapshot {
	a.latestMu.RLock()
	defer a.latestMu.RUnlock()
	return a.latest
}

// logTokenChange tells the host that persisted credentials are out of date.
// Persistence itself is the host's job, not this core's.
func (a *App) logTokenChange(accessBefore string) {
	access, _ := a.client.Tokens()
	if access == accessBefore {
		return
	}
	fields := []zap.Field{zap.Time("access_expires", a.client.AccessTokenTimes().Expires)}
	if id, ok := a.client.UserID(); ok {
		fields = append(fields, zap.Int64("user_id", id))
	}
	a.logger.Info("access token rotated, persist updated credentials", fields...)
}

// Close releases resources.
func (a *App) Close() {
	a.client.Close()
}

// nextRefreshAt returns the next xx:59:30 UTC instant strictly after now.
// Running just before the hour rolls over lets each cycle capture the closing
// hour's final frames.
func nextRefreshAt(now time.Time) time.Time {
	now = now.UTC()
	next := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), 59, 30, 0, time.UTC)
	if !next.After(now) {
		next = next.Add(time.Hour)
	}
	return next
}
