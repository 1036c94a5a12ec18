package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"GoldPredict/internal/domain/models"
	"GoldPredict/internal/repository/memory"
	"GoldPredict/pkg/logger"
)

func newPredictionService(s *memory.Store, now time.Time) *PredictionService {
	svc := NewPredictionService(s.Predictions, s.Stats, s.Prices, logger.Nop())
	svc.now = func() time.Time { return now }
	n := 0
	svc.newID = func() string {
		n++
		return fmt.Sprintf("pred-%d", n)
	}
	return svc
}

func TestSubmitCreatesPendingPrediction(t *testing.T) {
	s := memory.New()
	seedPrice(t, s, day1, "2038.20", "2035", "2040", "2030")
	svc := newPredictionService(s, day1.Add(9*time.Hour))

	p, err := svc.Submit(context.Background(), SubmitInput{
		UserID:          "u1",
		WalletAddress:   "0xABCdef",
		Direction:       models.DirectionUp,
		VolatilityGuess: models.VolatilitySmall,
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !p.IsPending() || !p.Date.Equal(day1) || p.WalletAddress != "0xabcdef" {
		t.Fatalf("prediction = %+v", p)
	}
	if st := mustStats(t, s, "u1"); st.TotalPredictions != 0 {
		t.Fatalf("submission touched counters: %+v", st)
	}

	_, err = svc.Submit(context.Background(), SubmitInput{
		UserID: "u1", Direction: models.DirectionDown, VolatilityGuess: models.VolatilityLarge,
	})
	if !errors.Is(err, models.ErrDuplicatePrediction) {
		t.Fatalf("second submit err = %v", err)
	}
}

func TestSubmitRejectsBadEnums(t *testing.T) {
	svc := newPredictionService(memory.New(), day1)
	tests := []struct {
		name string
		in   SubmitInput
		want error
	}{
		{"direction", SubmitInput{UserID: "u", Direction: "sideways", VolatilityGuess: models.VolatilitySmall}, models.ErrInvalidDirection},
		{"volatility", SubmitInput{UserID: "u", Direction: models.DirectionUp, VolatilityGuess: "huge"}, models.ErrInvalidVolatility},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Submit(context.Background(), tt.in); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSubmitTakesBasePriceFromLatestRecord(t *testing.T) {
	s := memory.New()
	svc := newPredictionService(s, day1.Add(time.Hour))
	in := SubmitInput{UserID: "u1", Direction: models.DirectionUp, VolatilityGuess: models.VolatilityMedium}

	if _, err := svc.Submit(context.Background(), in); !errors.Is(err, models.ErrPriceUnavailable) {
		t.Fatalf("err without price = %v", err)
	}

	seedPrice(t, s, day1, "2041.75", "2040", "2042", "2039")
	p, err := svc.Submit(context.Background(), in)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !p.BasePrice.Equal(dec("2041.75")) {
		t.Fatalf("base price = %s", p.BasePrice)
	}
}

func TestFlatDaySubmittedAtMarketPriceEarnsNoDirectionPoints(t *testing.T) {
	s := memory.New()
	seedPrice(t, s, day1, "2040", "2040", "2040", "2040")
	svc := newPredictionService(s, day1.Add(time.Hour))

	p, err := svc.Submit(context.Background(), SubmitInput{UserID: "u1", Direction: models.DirectionUp, VolatilityGuess: models.VolatilityMedium})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !p.BasePrice.Equal(dec("2040")) {
		t.Fatalf("base price = %s, want market 2040", p.BasePrice)
	}

	seedPrice(t, s, day2, "2040", "2040", "2040", "2040")
	if _, err := newEngine(s, s).Sweep(context.Background(), afterClose(day2)); err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	got, _ := s.Predictions.GetByID(context.Background(), p.ID)
	if got.Result == nil || got.Result.DirectionCorrect || got.Result.PointsEarned != 0 {
		t.Fatalf("flat close result = %+v", got.Result)
	}
}

func TestGetHidesOtherUsersPredictions(t *testing.T) {
	s := memory.New()
	seedPrediction(t, s, "p1", "u1", day1, models.DirectionUp, models.VolatilityMedium, "2000")
	svc := newPredictionService(s, day1)

	if _, err := svc.Get(context.Background(), "u1", "p1"); err != nil {
		t.Fatalf("owner Get: %v", err)
	}
	if _, err := svc.Get(context.Background(), "u2", "p1"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("other user err = %v", err)
	}
}

func TestListPagesNewestFirst(t *testing.T) {
	s := memory.New()
	seedPrediction(t, s, "p1", "u1", day1, models.DirectionUp, models.VolatilityMedium, "2000")
	seedPrediction(t, s, "p2", "u1", day2, models.DirectionUp, models.VolatilityMedium, "2000")
	seedPrediction(t, s, "p3", "u1", day3, models.DirectionUp, models.VolatilityMedium, "2000")
	svc := newPredictionService(s, day3)

	page, err := svc.List(context.Background(), "u1", 1, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Total != 3 || len(page.Items) != 2 || page.Items[0].ID != "p3" {
		t.Fatalf("page 1 = %+v", page)
	}
	page, _ = svc.List(context.Background(), "u1", 2, 2)
	if len(page.Items) != 1 || page.Items[0].ID != "p1" {
		t.Fatalf("page 2 = %+v", page)
	}

	today, err := svc.Today(context.Background(), "u1")
	if err != nil || today.ID != "p3" {
		t.Fatalf("Today = %v, %v", today, err)
	}
}
