package usecase

import (
	"context"
	"fmt"
	"time"

	"GoldPredict/internal/domain/models"
	drepo "GoldPredict/internal/domain/repository"
	"GoldPredict/pkg/logger"
	"GoldPredict/pkg/util"
)

// PriceIngestor polls the price source and keeps today's record current.
type PriceIngestor struct {
	source  drepo.PriceSource
	prices  drepo.PriceStore
	archive drepo.PriceArchive
	metrics drepo.Metrics
	log     *logger.Logger
	now     func() time.Time
}

func NewPriceIngestor(
	source drepo.PriceSource,
	prices drepo.PriceStore,
	archive drepo.PriceArchive,
	metrics drepo.Metrics,
	log *logger.Logger,
) *PriceIngestor {
	return &PriceIngestor{
		source:  source,
		prices:  prices,
		archive: archive,
		metrics: metrics,
		log:     log.With(logger.String("component", "ingest")),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Run is the scheduler entry point.
func (i *PriceIngestor) Run(ctx context.Context) error {
	_, err := i.Ingest(ctx)
	return err
}

// Ingest fetches one quote and folds it into today's record. A failed fetch
// leaves the stored record untouched.
func (i *PriceIngestor) Ingest(ctx context.Context) (*models.PriceRecord, error) {
	start := time.Now()

	q, err := i.source.FetchCurrent(ctx)
	if err != nil {
		i.metrics.RecordError("price_fetch")
		i.log.Warn("fetch gold price", logger.String("source", i.source.Name()), logger.Error(err))
		return nil, fmt.Errorf("fetch gold price: %w", err)
	}
	if !q.Current.IsPositive() {
		i.metrics.RecordError("price_fetch")
		return nil, fmt.Errorf("fetch gold price: non-positive price %s from %s", q.Current, q.Source)
	}

	date := models.DayOf(i.now())
	rec, err := i.prices.UpsertToday(ctx, date, q)
	if err != nil {
		i.metrics.RecordError("price_store")
		return nil, fmt.Errorf("upsert price %s: %w", util.FormatDate(date), err)
	}

	i.metrics.RecordLastPrice(q.Source, q.Current.InexactFloat64())
	if i.archive != nil {
		if err := i.archive.Append(ctx, q, rec); err != nil {
			i.metrics.RecordError("archive")
			i.log.Warn("archive price snapshot", logger.Error(err))
		}
	}
	i.metrics.RecordLatency("ingest", time.Since(start).Seconds())

	i.log.Info("gold price updated",
		logger.String("source", q.Source),
		logger.Date("date", date),
		logger.Decimal("current", rec.Current),
		logger.Decimal("high", rec.High),
		logger.Decimal("low", rec.Low),
		logger.Decimal("volatility", rec.Volatility),
	)
	return rec, nil
}
