package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"GoldPredict/internal/domain/models"
	drepo "GoldPredict/internal/domain/repository"
	"GoldPredict/pkg/logger"
	"GoldPredict/pkg/util"
)

const sweepLockKey = "lock:settlement-sweep"

// Invalidator drops read models that depend on user statistics.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

type EngineOption func(*SettlementEngine)

func WithWorkers(n int) EngineOption {
	return func(e *SettlementEngine) {
		if n > 0 {
			e.workers = n
		}
	}
}

func WithEventPublisher(p drepo.EventPublisher) EngineOption {
	return func(e *SettlementEngine) { e.publisher = p }
}

// WithLocker guards sweeps across processes. ttl bounds how long a crashed
// holder can block others.
func WithLocker(l drepo.Locker, ttl time.Duration) EngineOption {
	return func(e *SettlementEngine) {
		e.locker = l
		if ttl > 0 {
			e.lockTTL = ttl
		}
	}
}

func WithInvalidator(inv Invalidator) EngineOption {
	return func(e *SettlementEngine) { e.invalidator = inv }
}

// WithRequireNextDayRecord makes a date wait until the following day has a
// price record with a current price.
func WithRequireNextDayRecord(v bool) EngineOption {
	return func(e *SettlementEngine) { e.requireNext = v }
}

func WithEngineClock(now func() time.Time) EngineOption {
	return func(e *SettlementEngine) { e.now = now }
}

// SettlementEngine grades pending predictions once their trading day has
// closed and folds the outcomes into user statistics.
type SettlementEngine struct {
	prices      drepo.PriceStore
	predictions drepo.PredictionStore
	tx          drepo.Transactor
	clock       *MarketClock
	metrics     drepo.Metrics
	log         *logger.Logger

	publisher   drepo.EventPublisher
	locker      drepo.Locker
	invalidator Invalidator
	workers     int
	requireNext bool
	lockTTL     time.Duration
	now         func() time.Time
}

func NewSettlementEngine(
	prices drepo.PriceStore,
	predictions drepo.PredictionStore,
	tx drepo.Transactor,
	clock *MarketClock,
	metrics drepo.Metrics,
	log *logger.Logger,
	opts ...EngineOption,
) *SettlementEngine {
	e := &SettlementEngine{
		prices:      prices,
		predictions: predictions,
		tx:          tx,
		clock:       clock,
		metrics:     metrics,
		log:         log.With(logger.String("component", "settlement")),
		workers:     4,
		requireNext: true,
		lockTTL:     5 * time.Minute,
		now:         func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run is the scheduler entry point.
func (e *SettlementEngine) Run(ctx context.Context) error {
	_, err := e.Sweep(ctx, e.now())
	return err
}

// Sweep settles every pending date up to now, oldest first. Dates run one at
// a time so a backlog updates each user's streak in date order. The returned
// error joins every date or unit failure; those predictions stay pending and
// are retried by the next sweep.
func (e *SettlementEngine) Sweep(ctx context.Context, now time.Time) (models.SweepReport, error) {
	report := models.SweepReport{StartedAt: now}
	start := time.Now()

	if e.locker != nil {
		ok, err := e.locker.TryLock(ctx, sweepLockKey, e.lockTTL)
		if err != nil {
			e.metrics.RecordError("settlement_lock")
			return report, fmt.Errorf("acquire sweep lock: %w", err)
		}
		if !ok {
			e.log.Info("settlement sweep held elsewhere, skipping")
			e.metrics.RecordJobSkip("settlement")
			report.Skipped = true
			return report, nil
		}
		defer func() {
			if err := e.locker.Unlock(context.WithoutCancel(ctx), sweepLockKey); err != nil {
				e.log.Warn("release sweep lock", logger.Error(err))
			}
		}()
	}

	dates, err := e.predictions.PendingDates(ctx, e.clock.Today(now))
	if err != nil {
		e.metrics.RecordError("settlement")
		return report, fmt.Errorf("list pending dates: %w", err)
	}

	var errs []error
	for _, date := range dates {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		dr := e.settleDate(ctx, now, date)
		report.Dates = append(report.Dates, dr)
		e.metrics.RecordDateStatus(string(dr.Status))
		if dr.Err != nil {
			errs = append(errs, fmt.Errorf("settle %s: %w", util.FormatDate(date), dr.Err))
		}
		for _, res := range dr.Results {
			if res.Status == models.SettleFailed {
				errs = append(errs, fmt.Errorf("settle prediction %s: %w", res.PredictionID, res.Err))
			}
		}
	}

	report.Duration = time.Since(start)
	e.metrics.RecordSweep(report.Duration.Seconds(), len(dates))

	if settled := report.SettledResults(); len(settled) > 0 {
		e.afterCommit(ctx, settled)
	}

	e.log.Info("settlement sweep finished",
		logger.Int("dates", len(dates)),
		logger.Int("settled", report.Settled()),
		logger.Int("already_settled", report.AlreadySettled()),
		logger.Int("failed", report.Failed()),
		logger.Duration("took", report.Duration),
	)
	return report, errors.Join(errs...)
}

// FinalizeClose makes sure the record for date has a close, mirroring its
// current price when none was set. A concurrent writer that set close first wins.
func (e *SettlementEngine) FinalizeClose(ctx context.Context, date time.Time) (*models.PriceRecord, error) {
	rec, err := e.prices.GetByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	if rec.IsFinal() {
		return rec, nil
	}
	wrote, err := e.prices.SetCloseIfAbsent(ctx, date, rec.Current)
	if err != nil {
		return nil, fmt.Errorf("set close: %w", err)
	}
	if wrote {
		e.log.Info("close finalized", logger.Date("date", date), logger.Decimal("close", rec.Current))
	}
	return e.prices.GetByDate(ctx, date)
}

func (e *SettlementEngine) settleDate(ctx context.Context, now, date time.Time) models.DateReport {
	dr := models.DateReport{Date: date}
	log := e.log.With(logger.Date("date", date))

	if !e.clock.IsClosed(now, date) {
		dr.Status = models.DateMarketOpen
		return dr
	}

	if _, err := e.prices.GetByDate(ctx, date); err != nil {
		if errors.Is(err, models.ErrNoPriceRecord) {
			log.Warn("no price record for date, will retry")
			dr.Status = models.DateNoPriceRecord
			return dr
		}
		dr.Status, dr.Err = models.DateError, err
		return dr
	}

	if e.requireNext {
		ready, err := e.nextDayReady(ctx, date)
		if err != nil {
			dr.Status, dr.Err = models.DateError, err
			return dr
		}
		if !ready {
			log.Debug("waiting for next day price record")
			dr.Status = models.DatePriceNotFinal
			return dr
		}
	}

	rec, err := e.FinalizeClose(ctx, date)
	if err != nil {
		dr.Status, dr.Err = models.DateError, err
		return dr
	}

	pending, err := e.predictions.GetPendingForDate(ctx, date)
	if err != nil {
		dr.Status, dr.Err = models.DateError, fmt.Errorf("load pending: %w", err)
		return dr
	}
	if len(pending) == 0 {
		dr.Status = models.DateNoPending
		return dr
	}

	actualClose, actualVol := rec.FinalPrice(), rec.RealizedVolatility()
	log.Info("settling date",
		logger.Int("pending", len(pending)),
		logger.Decimal("close", actualClose),
		logger.Decimal("volatility", actualVol),
	)

	results := make([]models.SettleResult, len(pending))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i := range pending {
		i, p := i, pending[i]
		g.Go(func() error {
			results[i] = e.settleOne(gctx, p, actualClose, actualVol)
			return nil
		})
	}
	_ = g.Wait()

	dr.Status = models.DateSettled
	dr.Results = results
	return dr
}

func (e *SettlementEngine) nextDayReady(ctx context.Context, date time.Time) (bool, error) {
	next, err := e.prices.GetByDate(ctx, util.AddDays(date, 1))
	if errors.Is(err, models.ErrNoPriceRecord) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return next.IsFinal() || !next.Current.IsZero(), nil
}

// settleOne writes the grade and the statistics increment in one transaction.
// The grade write only matches a pending row, so a unit that lost a race
// leaves statistics untouched.
func (e *SettlementEngine) settleOne(ctx context.Context, p models.Prediction, actualClose, actualVol decimal.Decimal) models.SettleResult {
	res := models.SettleResult{PredictionID: p.ID, UserID: p.UserID, Date: p.Date}
	start := time.Now()

	result, err := p.Settle(actualClose, actualVol, e.now())
	if err != nil {
		res.Status = models.SettleAlreadySettled
		e.metrics.RecordSettlement(string(res.Status), 0)
		return res
	}
	outcome, _ := p.Outcome()

	err = e.tx.WithinTx(ctx, func(ctx context.Context, tx drepo.TxStores) error {
		if err := tx.Predictions.Settle(ctx, p.ID, result); err != nil {
			return err
		}
		return tx.Stats.ApplyOutcome(ctx, p.UserID, outcome)
	})

	log := e.log.With(logger.String("prediction_id", p.ID), logger.String("user_id", p.UserID))
	switch {
	case errors.Is(err, models.ErrAlreadySettled):
		log.Info("prediction already settled")
		res.Status = models.SettleAlreadySettled
	case err != nil:
		log.Error("settle prediction", logger.Error(err))
		e.metrics.RecordError("settlement")
		res.Status, res.Err = models.SettleFailed, err
	default:
		log.Info("prediction settled",
			logger.Int("points", result.PointsEarned),
			logger.Bool("direction_correct", result.DirectionCorrect),
			logger.Bool("volatility_correct", result.VolatilityCorrect),
			logger.Bool("overall_correct", outcome.OverallCorrect),
		)
		res.Status, res.Result = models.SettleSettled, &result
	}

	points := 0
	if res.Result != nil {
		points = res.Result.PointsEarned
	}
	e.metrics.RecordSettlement(string(res.Status), points)
	e.metrics.RecordLatency("settle_prediction", time.Since(start).Seconds())
	return res
}

// afterCommit runs once the sweep's writes are durable. Failures here are
// logged only; the settlements themselves stand.
func (e *SettlementEngine) afterCommit(ctx context.Context, settled []models.SettleResult) {
	if e.invalidator != nil {
		if err := e.invalidator.Invalidate(ctx); err != nil {
			e.log.Warn("invalidate leaderboard cache", logger.Error(err))
		}
	}
	if e.publisher == nil {
		return
	}
	events := make([]models.SettlementEvent, len(settled))
	for i, res := range settled {
		events[i] = models.NewSettlementEvent(res)
	}
	if err := e.publisher.PublishSettled(ctx, events); err != nil {
		e.metrics.RecordError("publish")
		e.log.Error("publish settlement events", logger.Int("count", len(events)), logger.Error(err))
	}
}
