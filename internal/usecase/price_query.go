package usecase

import (
	"context"
	"time"

	"GoldPredict/internal/domain/models"
	drepo "GoldPredict/internal/domain/repository"
	"GoldPredict/pkg/util"
)

const maxHistoryDays = 30

type PriceQuery struct {
	prices drepo.PriceStore
	now    func() time.Time
}

func NewPriceQuery(prices drepo.PriceStore) *PriceQuery {
	return &PriceQuery{prices: prices, now: func() time.Time { return time.Now().UTC() }}
}

// Current returns the most recent record of any date.
func (q *PriceQuery) Current(ctx context.Context) (*models.PriceRecord, error) {
	return q.prices.GetLatest(ctx)
}

func (q *PriceQuery) Today(ctx context.Context) (*models.PriceRecord, error) {
	return q.prices.GetByDate(ctx, models.DayOf(q.now()))
}

// History returns up to days records ending today, newest first.
func (q *PriceQuery) History(ctx context.Context, days int) ([]*models.PriceRecord, error) {
	days = util.ClampInt(days, 1, maxHistoryDays)
	recs, err := q.prices.History(ctx, models.DayOf(q.now()), days)
	if err != nil {
		return nil, err
	}
	if recs == nil {
		recs = []*models.PriceRecord{}
	}
	return recs, nil
}
