package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

func (d Direction) Valid() bool {
	return d == DirectionUp || d == DirectionDown
}

type VolatilityBand string

const (
	VolatilitySmall  VolatilityBand = "small"
	VolatilityMedium VolatilityBand = "medium"
	VolatilityLarge  VolatilityBand = "large"
)

func (v VolatilityBand) Valid() bool {
	switch v {
	case VolatilitySmall, VolatilityMedium, VolatilityLarge:
		return true
	}
	return false
}

type PredictionStatus string

const (
	StatusPending PredictionStatus = "pending"
	StatusSettled PredictionStatus = "settled"
)

// Prediction is one user's call for one calendar date.
// Result is nil exactly while Status is pending.
type Prediction struct {
	ID              string            `json:"id"`
	UserID          string            `json:"userId"`
	WalletAddress   string            `json:"walletAddress"`
	Date            time.Time         `json:"date"`
	Direction       Direction         `json:"priceDirection"`
	VolatilityGuess VolatilityBand    `json:"volatilityGuess"`
	BasePrice       decimal.Decimal   `json:"basePrice"`
	Status          PredictionStatus  `json:"status"`
	Result          *SettlementResult `json:"result,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

type SettlementResult struct {
	ResultPrice       decimal.Decimal `json:"resultPrice"`
	ResultVolatility  decimal.Decimal `json:"resultVolatility"`
	DirectionCorrect  bool            `json:"directionCorrect"`
	VolatilityCorrect bool            `json:"volatilityCorrect"`
	PointsEarned      int             `json:"pointsEarned"`
	SettledAt         time.Time       `json:"settledAt"`
}

// OverallCorrect is the strict criterion used for accuracy and streaks.
func (r SettlementResult) OverallCorrect() bool {
	return r.DirectionCorrect && r.VolatilityCorrect
}

func (p *Prediction) IsPending() bool {
	return p.Status == StatusPending
}

// Settle grades the prediction and moves it to settled. Calling it on a
// prediction that is not pending returns ErrAlreadySettled and changes nothing.
func (p *Prediction) Settle(actualClose, actualVolatility decimal.Decimal, at time.Time) (SettlementResult, error) {
	if !p.IsPending() {
		return SettlementResult{}, fmt.Errorf("settle %s: %w", p.ID, ErrAlreadySettled)
	}
	dir, vol, points := Grade(p.Direction, p.VolatilityGuess, p.BasePrice, actualClose, actualVolatility)
	res := SettlementResult{
		ResultPrice:       actualClose,
		ResultVolatility:  actualVolatility,
		DirectionCorrect:  dir,
		VolatilityCorrect: vol,
		PointsEarned:      points,
		SettledAt:         at,
	}
	p.Status = StatusSettled
	p.Result = &res
	p.UpdatedAt = at
	return res, nil
}

// Outcome is what a settled prediction contributes to its owner's statistics.
func (p *Prediction) Outcome() (Outcome, bool) {
	if p.Result == nil {
		return Outcome{}, false
	}
	return Outcome{
		OverallCorrect: p.Result.OverallCorrect(),
		PointsEarned:   p.Result.PointsEarned,
		Date:           p.Date,
	}, true
}
