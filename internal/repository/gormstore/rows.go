package gormstore

import (
	"time"

	"github.com/shopspring/decimal"

	"GoldPredict/internal/domain/models"
)

type priceRow struct {
	Date          time.Time           `gorm:"primaryKey;type:date"`
	Open          decimal.Decimal     `gorm:"type:numeric(14,4);not null"`
	High          decimal.Decimal     `gorm:"type:numeric(14,4);not null"`
	Low           decimal.Decimal     `gorm:"type:numeric(14,4);not null"`
	Close         decimal.NullDecimal `gorm:"type:numeric(14,4)"`
	Current       decimal.Decimal     `gorm:"type:numeric(14,4);not null"`
	PreviousClose decimal.NullDecimal `gorm:"type:numeric(14,4)"`
	Change        decimal.Decimal     `gorm:"type:numeric(14,4);not null;default:0"`
	ChangePercent decimal.Decimal     `gorm:"type:numeric(10,4);not null;default:0"`
	Volatility    decimal.Decimal     `gorm:"type:numeric;not null;default:0"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (priceRow) TableName() string { return "gold_prices" }

func (r *priceRow) toModel() *models.PriceRecord {
	rec := &models.PriceRecord{
		Date:          models.DayOf(r.Date),
		Open:          r.Open,
		High:          r.High,
		Low:           r.Low,
		Current:       r.Current,
		Change:        r.Change,
		ChangePercent: r.ChangePercent,
		Volatility:    r.Volatility,
		UpdatedAt:     r.UpdatedAt,
	}
	if r.Close.Valid {
		c := r.Close.Decimal
		rec.Close = &c
	}
	if r.PreviousClose.Valid {
		pc := r.PreviousClose.Decimal
		rec.PreviousClose = &pc
	}
	return rec
}

func priceRowFrom(rec *models.PriceRecord) *priceRow {
	row := &priceRow{
		Date:          models.DayOf(rec.Date),
		Open:          rec.Open,
		High:          rec.High,
		Low:           rec.Low,
		Current:       rec.Current,
		Change:        rec.Change,
		ChangePercent: rec.ChangePercent,
		Volatility:    rec.Volatility,
	}
	if rec.Close != nil {
		row.Close = decimal.NewNullDecimal(*rec.Close)
	}
	if rec.PreviousClose != nil {
		row.PreviousClose = decimal.NewNullDecimal(*rec.PreviousClose)
	}
	return row
}

type predictionRow struct {
	ID                string              `gorm:"primaryKey;type:uuid"`
	UserID            string              `gorm:"type:varchar(64);not null;uniqueIndex:idx_predictions_user_date,priority:1"`
	WalletAddress     string              `gorm:"type:varchar(128);not null;index"`
	Date              time.Time           `gorm:"type:date;not null;uniqueIndex:idx_predictions_user_date,priority:2;index:idx_predictions_status_date,priority:2"`
	Direction         string              `gorm:"column:price_direction;type:varchar(8);not null"`
	VolatilityGuess   string              `gorm:"type:varchar(8);not null"`
	BasePrice         decimal.Decimal     `gorm:"type:numeric(14,4);not null"`
	Status            string              `gorm:"type:varchar(16);not null;default:pending;index:idx_predictions_status_date,priority:1"`
	ResultPrice       decimal.NullDecimal `gorm:"type:numeric(14,4)"`
	ResultVolatility  decimal.NullDecimal `gorm:"type:numeric"`
	DirectionCorrect  *bool
	VolatilityCorrect *bool
	PointsEarned      *int
	SettledAt         *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (predictionRow) TableName() string { return "predictions" }

func (r *predictionRow) toModel() models.Prediction {
	p := models.Prediction{
		ID:              r.ID,
		UserID:          r.UserID,
		WalletAddress:   r.WalletAddress,
		Date:            models.DayOf(r.Date),
		Direction:       models.Direction(r.Direction),
		VolatilityGuess: models.VolatilityBand(r.VolatilityGuess),
		BasePrice:       r.BasePrice,
		Status:          models.PredictionStatus(r.Status),
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
	if p.Status == models.StatusSettled {
		res := &models.SettlementResult{
			ResultPrice:      r.ResultPrice.Decimal,
			ResultVolatility: r.ResultVolatility.Decimal,
		}
		if r.DirectionCorrect != nil {
			res.DirectionCorrect = *r.DirectionCorrect
		}
		if r.VolatilityCorrect != nil {
			res.VolatilityCorrect = *r.VolatilityCorrect
		}
		if r.PointsEarned != nil {
			res.PointsEarned = *r.PointsEarned
		}
		if r.SettledAt != nil {
			res.SettledAt = *r.SettledAt
		}
		p.Result = res
	}
	return p
}

func predictionRowFrom(p *models.Prediction) *predictionRow {
	return &predictionRow{
		ID:              p.ID,
		UserID:          p.UserID,
		WalletAddress:   p.WalletAddress,
		Date:            models.DayOf(p.Date),
		Direction:       string(p.Direction),
		VolatilityGuess: string(p.VolatilityGuess),
		BasePrice:       p.BasePrice,
		Status:          string(p.Status),
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

// statsRow stores accuracy only so the accuracy leaderboard can be ordered in SQL.
// It is rewritten in the same statement that moves the counters.
type statsRow struct {
	UserID             string     `gorm:"primaryKey;type:varchar(64)"`
	WalletAddress      string     `gorm:"type:varchar(128);not null;index"`
	Username           *string    `gorm:"type:varchar(64)"`
	TotalPredictions   int64      `gorm:"not null;default:0"`
	CorrectPredictions int64      `gorm:"not null;default:0"`
	Accuracy           float64    `gorm:"not null;default:0;index"`
	Points             int64      `gorm:"not null;default:0;index"`
	ConsecutiveWins    int64      `gorm:"not null;default:0;index"`
	LastPredictionDate *time.Time `gorm:"type:date"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (statsRow) TableName() string { return "user_stats" }

func (r *statsRow) toModel() models.UserStats {
	s := models.UserStats{
		UserID:             r.UserID,
		WalletAddress:      r.WalletAddress,
		Username:           r.Username,
		TotalPredictions:   r.TotalPredictions,
		CorrectPredictions: r.CorrectPredictions,
		Points:             r.Points,
		ConsecutiveWins:    r.ConsecutiveWins,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
	if r.LastPredictionDate != nil {
		d := models.DayOf(*r.LastPredictionDate)
		s.LastPredictionDate = &d
	}
	return s
}

// Tables lists the row types for AutoMigrate.
func Tables() []interface{} {
	return []interface{}{&priceRow{}, &predictionRow{}, &statsRow{}}
}
