package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"GoldPredict/internal/domain/models"
)

type PriceStore struct {
	st *state
}

func (s *PriceStore) UpsertToday(_ context.Context, date time.Time, q models.Quote) (*models.PriceRecord, error) {
	defer s.st.guard(false)()

	day := models.DayOf(date)
	if rec, ok := s.st.prices[day]; ok {
		rec.MergeQuote(q)
		rec.UpdatedAt = s.st.now()
		return clonePrice(rec), nil
	}

	var prevClose *decimal.Decimal
	if prev := s.latestBefore(day); prev != nil && prev.Close != nil {
		prevClose = prev.Close
	}
	rec := models.NewPriceRecord(day, q, prevClose)
	rec.UpdatedAt = s.st.now()
	s.st.prices[day] = rec
	return clonePrice(rec), nil
}

func (s *PriceStore) latestBefore(day time.Time) *models.PriceRecord {
	var best *models.PriceRecord
	for d, rec := range s.st.prices {
		if d.Before(day) && (best == nil || d.After(best.Date)) {
			best = rec
		}
	}
	return best
}

func (s *PriceStore) GetByDate(_ context.Context, date time.Time) (*models.PriceRecord, error) {
	defer s.st.guard(false)()
	rec, ok := s.st.prices[models.DayOf(date)]
	if !ok {
		return nil, models.ErrNoPriceRecord
	}
	return clonePrice(rec), nil
}

func (s *PriceStore) GetLatest(_ context.Context) (*models.PriceRecord, error) {
	defer s.st.guard(false)()
	var best *models.PriceRecord
	for _, rec := range s.st.prices {
		if best == nil || rec.Date.After(best.Date) {
			best = rec
		}
	}
	if best == nil {
		return nil, models.ErrNoPriceRecord
	}
	return clonePrice(best), nil
}

func (s *PriceStore) History(_ context.Context, through time.Time, days int) ([]*models.PriceRecord, error) {
	defer s.st.guard(false)()
	limit := models.DayOf(through)
	out := make([]*models.PriceRecord, 0, days)
	for d, rec := range s.st.prices {
		if !d.After(limit) {
			out = append(out, clonePrice(rec))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if len(out) > days {
		out = out[:days]
	}
	return out, nil
}

func (s *PriceStore) SetCloseIfAbsent(_ context.Context, date time.Time, value decimal.Decimal) (bool, error) {
	defer s.st.guard(false)()
	rec, ok := s.st.prices[models.DayOf(date)]
	if !ok {
		return false, models.ErrNoPriceRecord
	}
	if rec.Close != nil {
		return false, nil
	}
	rec.Close = &value
	rec.UpdatedAt = s.st.now()
	return true, nil
}
