package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"GoldPredict/internal/domain/models"
	"GoldPredict/internal/repository/memory"
)

var (
	day1 = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	day2 = day1.AddDate(0, 0, 1)
	day3 = day1.AddDate(0, 0, 2)
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type nopMetrics struct {
	mu    sync.Mutex
	skips int
}

func (*nopMetrics) RecordSettlement(string, int)    {}
func (*nopMetrics) RecordSweep(float64, int)        {}
func (*nopMetrics) RecordDateStatus(string)         {}
func (*nopMetrics) RecordLastPrice(string, float64) {}
func (*nopMetrics) RecordError(string)              {}
func (*nopMetrics) RecordLatency(string, float64)   {}
func (m *nopMetrics) RecordJobSkip(string) {
	m.mu.Lock()
	m.skips++
	m.mu.Unlock()
}

func seedPrice(t *testing.T, s *memory.Store, date time.Time, current, open, high, low string) {
	t.Helper()
	q := models.Quote{Current: dec(current), Open: dec(open), High: dec(high), Low: dec(low), Source: "test"}
	if _, err := s.Prices.UpsertToday(context.Background(), date, q); err != nil {
		t.Fatalf("seed price %s: %v", date.Format(time.DateOnly), err)
	}
}

func seedPrediction(t *testing.T, s *memory.Store, id, user string, date time.Time, dir models.Direction, vol models.VolatilityBand, base string) {
	t.Helper()
	ctx := context.Background()
	if _, err := s.Stats.Ensure(ctx, user, "0x"+user); err != nil {
		t.Fatalf("ensure %s: %v", user, err)
	}
	p := &models.Prediction{
		ID:              id,
		UserID:          user,
		WalletAddress:   "0x" + user,
		Date:            date,
		Direction:       dir,
		VolatilityGuess: vol,
		BasePrice:       dec(base),
		Status:          models.StatusPending,
		CreatedAt:       date,
	}
	if err := s.Predictions.Create(ctx, p); err != nil {
		t.Fatalf("create %s: %v", id, err)
	}
}

func mustStats(t *testing.T, s *memory.Store, user string) *models.UserStats {
	t.Helper()
	st, err := s.Stats.Get(context.Background(), user)
	if err != nil {
		t.Fatalf("stats %s: %v", user, err)
	}
	return st
}
