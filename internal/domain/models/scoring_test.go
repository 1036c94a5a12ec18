package models

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestClassifyVolatilityBoundaries(t *testing.T) {
	cases := []struct {
		in   string
		want VolatilityBand
	}{
		{"0", VolatilitySmall},
		{"0.4999", VolatilitySmall},
		{"0.5", VolatilityMedium},
		{"1.2", VolatilityMedium},
		{"2", VolatilityMedium},
		{"2.0001", VolatilityLarge},
		{"7.5", VolatilityLarge},
	}
	for _, c := range cases {
		if got := ClassifyVolatility(dec(c.in)); got != c.want {
			t.Fatalf("ClassifyVolatility(%s) = %s, want %s", c.in, got, c.want)
		}
	}
}

func TestDirectionFlatIsWrongBothWays(t *testing.T) {
	base := dec("2040.00")
	if IsDirectionCorrect(DirectionUp, base, base) {
		t.Fatalf("flat close must not credit up")
	}
	if IsDirectionCorrect(DirectionDown, base, base) {
		t.Fatalf("flat close must not credit down")
	}
	if !IsDirectionCorrect(DirectionDown, base, dec("2039.99")) {
		t.Fatalf("lower close should credit down")
	}
	if IsDirectionCorrect(Direction("sideways"), base, dec("2050")) {
		t.Fatalf("unknown direction must never be correct")
	}
}

func TestPointsAreAdditive(t *testing.T) {
	cases := []struct {
		dir, vol bool
		want     int
	}{
		{false, false, 0},
		{false, true, 5},
		{true, false, 10},
		{true, true, 15},
	}
	for _, c := range cases {
		if got := Points(c.dir, c.vol); got != c.want {
			t.Fatalf("Points(%v,%v) = %d, want %d", c.dir, c.vol, got, c.want)
		}
	}
}

func TestSettleUpMediumEarnsFull(t *testing.T) {
	p := &Prediction{
		ID:              "p1",
		Direction:       DirectionUp,
		VolatilityGuess: VolatilityMedium,
		BasePrice:       dec("2038.20"),
		Status:          StatusPending,
	}
	at := time.Date(2024, 1, 16, 21, 0, 0, 0, time.UTC)
	res, err := p.Settle(dec("2045.50"), dec("0.83"), at)
	if err != nil {
		t.Fatalf("Settle: %v", err)
	}
	if !res.DirectionCorrect || !res.VolatilityCorrect || res.PointsEarned != 15 {
		t.Fatalf("unexpected result %+v", res)
	}
	if !res.OverallCorrect() {
		t.Fatalf("expected overall correct")
	}
	if p.Status != StatusSettled || p.Result == nil {
		t.Fatalf("prediction not moved to settled: %+v", p)
	}
}

func TestSettleWrongDirectionWrongBandEarnsNothing(t *testing.T) {
	p := &Prediction{
		ID:              "p2",
		Direction:       DirectionUp,
		VolatilityGuess: VolatilityLarge,
		BasePrice:       dec("2050.00"),
		Status:          StatusPending,
	}
	res, err := p.Settle(dec("2042.10"), dec("1.20"), time.Now())
	if err != nil {
		t.Fatalf("Settle: %v", err)
	}
	if res.DirectionCorrect || res.VolatilityCorrect || res.PointsEarned != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestSettleTwiceFails(t *testing.T) {
	p := &Prediction{ID: "p3", Direction: DirectionDown, VolatilityGuess: VolatilitySmall, BasePrice: dec("10"), Status: StatusPending}
	first, err := p.Settle(dec("9"), dec("0.1"), time.Now())
	if err != nil {
		t.Fatalf("first settle: %v", err)
	}
	if _, err := p.Settle(dec("20"), dec("5"), time.Now()); !errors.Is(err, ErrAlreadySettled) {
		t.Fatalf("second settle err = %v, want ErrAlreadySettled", err)
	}
	if p.Result.PointsEarned != first.PointsEarned {
		t.Fatalf("second settle overwrote result")
	}
}

func TestApplyStreakResetsThenGrows(t *testing.T) {
	s := &UserStats{UserID: "u1"}
	d1 := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	s.Apply(Outcome{OverallCorrect: false, PointsEarned: 10, Date: d1})
	if s.ConsecutiveWins != 0 {
		t.Fatalf("streak after miss = %d, want 0", s.ConsecutiveWins)
	}
	s.Apply(Outcome{OverallCorrect: true, PointsEarned: 15, Date: d1.AddDate(0, 0, 1)})
	if s.ConsecutiveWins != 1 {
		t.Fatalf("streak after hit = %d, want 1", s.ConsecutiveWins)
	}
	if s.TotalPredictions != 2 || s.CorrectPredictions != 1 || s.Points != 25 {
		t.Fatalf("unexpected counters %+v", s)
	}
	if s.Accuracy() != 50 {
		t.Fatalf("accuracy = %v, want 50", s.Accuracy())
	}
	if !s.LastPredictionDate.Equal(d1.AddDate(0, 0, 1)) {
		t.Fatalf("last prediction date = %v", s.LastPredictionDate)
	}
}

func TestAccuracyRoundsAndHandlesZero(t *testing.T) {
	if AccuracyOf(0, 0) != 0 {
		t.Fatalf("zero total must be 0")
	}
	if got := AccuracyOf(1, 3); got != 33.33 {
		t.Fatalf("AccuracyOf(1,3) = %v, want 33.33", got)
	}
	if got := AccuracyOf(2, 3); got != 66.67 {
		t.Fatalf("AccuracyOf(2,3) = %v, want 66.67", got)
	}
}
