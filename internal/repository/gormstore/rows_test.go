package gormstore

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"GoldPredict/internal/domain/models"
)

func TestPriceRowKeepsNullClose(t *testing.T) {
	rec := models.NewPriceRecord(time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC), models.Quote{
		Current: decimal.RequireFromString("2040.10"),
	}, nil)

	row := priceRowFrom(rec)
	if row.Close.Valid || row.PreviousClose.Valid {
		t.Fatalf("nullable columns should stay null: %+v", row)
	}
	back := row.toModel()
	if back.Close != nil || back.PreviousClose != nil {
		t.Fatalf("round trip invented values: %+v", back)
	}
	if !back.Current.Equal(rec.Current) || !back.Date.Equal(rec.Date) {
		t.Fatalf("round trip lost data: %+v", back)
	}
}

func TestPredictionRowSettledResult(t *testing.T) {
	dir, vol, pts := true, false, 10
	settled := time.Date(2024, 1, 16, 21, 0, 0, 0, time.UTC)
	row := predictionRow{
		ID:                "p1",
		UserID:            "u1",
		Date:              time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Direction:         "up",
		VolatilityGuess:   "large",
		BasePrice:         decimal.RequireFromString("2038.2"),
		Status:            "settled",
		ResultPrice:       decimal.NewNullDecimal(decimal.RequireFromString("2045.5")),
		ResultVolatility:  decimal.NewNullDecimal(decimal.RequireFromString("0.83")),
		DirectionCorrect:  &dir,
		VolatilityCorrect: &vol,
		PointsEarned:      &pts,
		SettledAt:         &settled,
	}

	p := row.toModel()
	if p.Result == nil || p.Result.PointsEarned != 10 || !p.Result.DirectionCorrect || p.Result.VolatilityCorrect {
		t.Fatalf("unexpected result %+v", p.Result)
	}

	row.Status = "pending"
	if row.toModel().Result != nil {
		t.Fatalf("pending prediction must not expose a result")
	}
}
