package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aLAN-LDZ/pstryk-go/internal/models"
	"github.com/aLAN-LDZ/pstryk-go/internal/pstryk"
	"github.com/aLAN-LDZ/pstryk-go/internal/timeutil"
)

// WindowISO is one query window rendered as ISO-8601 UTC strings.
type WindowISO struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// WindowSet holds the four windows used to bound one cycle's queries. Buy and
// sell share one window, as do usage and cost.
type WindowSet struct {
	Buy   WindowISO `json:"buy"`
	Sell  WindowISO `json:"sell"`
	Usage WindowISO `json:"usage"`
	Cost  WindowISO `json:"cost"`
}

// MeterData is one meter's slice of the snapshot. A nil field means that
// sub-fetch failed this cycle; the cause is in the log, and the other fields
// are still usable.
type MeterData struct {
	Alerts      *models.AlertList `json:"alerts"`
	PricingBuy  *models.Pricing   `json:"pricing_buy"`
	PricingSell *models.Pricing   `json:"pricing_sell"`
	Usage       *models.UsageDay  `json:"power_usage"`
	Cost        *models.CostDay   `json:"power_cost"`
}

// Snapshot is one refresh cycle's output: a consistent point-in-time capture
// of meters, pricing, usage and cost. Never mutated after assembly; ownership
// passes entirely to the caller.
type Snapshot struct {
	CycleID  string               `json:"cycle_id"`
	TakenAt  time.Time            `json:"ts_utc"`
	UserID   *int64               `json:"user_id"`
	Meters   []models.Meter       `json:"meters"`
	PerMeter map[int64]*MeterData `json:"per_meter"`
	Windows  WindowSet            `json:"windows"`
}

// SnapshotService orchestrates refresh cycles against one shared client, so
// token state persists across cycles. The service itself is stateless between
// invocations.
type SnapshotService struct {
	client           *pstryk.Client
	logger           *zap.Logger
	loc              *time.Location
	meterConcurrency int
	resolution       string
}

// NewSnapshotService builds the aggregator around an authenticated client.
func NewSnapshotService(client *pstryk.Client, loc *time.Location, meterConcurrency int, resolution string, logger *zap.Logger) *SnapshotService {
	if loc == nil {
		loc = timeutil.ProviderLocation()
	}
	if meterConcurrency <= 0 {
		meterConcurrency = 1
	}
	if resolution == "" {
		resolution = pstryk.DefaultResolution
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotService{
		client:           client,
		logger:           logger.With(zap.String("component", "snapshot")),
		loc:              loc,
		meterConcurrency: meterConcurrency,
		resolution:       resolution,
	}
}

// Refresh runs one full cycle and assembles the snapshot. Failures inside the
// cycle degrade to absent fields plus a log entry instead of propagating: a
// partial snapshot still has standalone value. The only errors returned are
// cancellation of ctx before assembly completes.
func (s *SnapshotService) Refresh(ctx context.Context) (*Snapshot, error) {
	nowUTC := time.Now().UTC()
	today := nowUTC.In(s.loc)

	pricingWin := timeutil.DayWindow(today, s.loc)
	meterDataWin := timeutil.DayWindowMs(today, s.loc)

	snap := &Snapshot{
		CycleID:  uuid.NewString(),
		TakenAt:  nowUTC,
		PerMeter: make(map[int64]*MeterData),
		Windows: WindowSet{
			Buy:   isoWindow(pricingWin),
			Sell:  isoWindow(pricingWin),
			Usage: isoWindow(meterDataWin),
			Cost:  isoWindow(meterDataWin),
		},
	}

	logger := s.logger.With(zap.String("cycle_id", snap.CycleID))

	// A user with zero visible meters is a degraded but valid snapshot, so a
	// failed meter list never aborts the cycle.
	meters, err := s.client.GetMeters(ctx)
	if err != nil {
		logger.Warn("meter list fetch failed, continuing with empty list", zap.Error(err))
		meters = []models.Meter{}
	}
	snap.Meters = meters

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.meterConcurrency)

	for _, meter := range meters {
		data := &MeterData{}
		snap.PerMeter[meter.ID] = data

		meterID := meter.ID
		group.Go(func() error {
			s.fetchMeterData(groupCtx, logger, meterID, pricingWin, meterDataWin, data)
			return groupCtx.Err()
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	if id, ok := s.client.UserID(); ok {
		snap.UserID = &id
	}

	logger.Info("snapshot assembled",
		zap.Int("meters", len(snap.Meters)),
		zap.Time("ts_utc", snap.TakenAt),
	)
	return snap, nil
}

// fetchMeterData issues the five independent sub-fetches for one meter. Each
// is isolated: a failure in one leaves only that field absent and never
// aborts the other four.
func (s *SnapshotService) fetchMeterData(ctx context.Context, logger *zap.Logger, meterID int64, pricingWin, meterDataWin timeutil.Window, data *MeterData) {
	logger = logger.With(zap.Int64("meter_id", meterID))

	var wg sync.WaitGroup
	run := func(field string, fetch func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fetch(); err != nil {
				logger.Warn("sub-fetch failed", zap.String("field", field), zap.Error(err))
			}
		}()
	}

	run("alerts", func() error {
		alerts, err := s.client.GetPriceAlerts(ctx, meterID)
		if err != nil {
			return err
		}
		data.Alerts = &alerts
		return nil
	})
	run("pricing_buy", func() error {
		pricing, err := s.client.GetPricingBuy(ctx, meterID, pricingWin, s.resolution)
		if err != nil {
			return err
		}
		data.PricingBuy = &pricing
		return nil
	})
	run("pricing_sell", func() error {
		pricing, err := s.client.GetPricingSell(ctx, pricingWin, s.resolution)
		if err != nil {
			return err
		}
		data.PricingSell = &pricing
		return nil
	})
	run("power_usage", func() error {
		usage, err := s.client.GetUsageDay(ctx, meterID, meterDataWin, s.resolution)
		if err != nil {
			return err
		}
		data.Usage = &usage
		return nil
	})
	run("power_cost", func() error {
		cost, err := s.client.GetCostDay(ctx, meterID, meterDataWin, s.resolution)
		if err != nil {
			return err
		}
		data.Cost = &cost
		return nil
	})

	wg.Wait()
}

func isoWindow(w timeutil.Window) WindowISO {
	return WindowISO{Start: timeutil.FormatISO(w.Start), End: timeutil.FormatISO(w.End)}
}
