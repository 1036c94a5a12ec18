package models

import (
	"time"

	"github.com/shopspring/decimal"

	"GoldPredict/pkg/util"
)

// SettlementEvent is published once per prediction after its settlement commits.
type SettlementEvent struct {
	PredictionID      string          `json:"predictionId"`
	UserID            string          `json:"userId"`
	Date              string          `json:"date"`
	ResultPrice       decimal.Decimal `json:"resultPrice"`
	ResultVolatility  decimal.Decimal `json:"resultVolatility"`
	DirectionCorrect  bool            `json:"directionCorrect"`
	VolatilityCorrect bool            `json:"volatilityCorrect"`
	PointsEarned      int             `json:"pointsEarned"`
	SettledAt         time.Time       `json:"settledAt"`
}

func NewSettlementEvent(res SettleResult) SettlementEvent {
	ev := SettlementEvent{
		PredictionID: res.PredictionID,
		UserID:       res.UserID,
		Date:         util.FormatDate(DayOf(res.Date)),
	}
	if r := res.Result; r != nil {
		ev.ResultPrice = r.ResultPrice
		ev.ResultVolatility = r.ResultVolatility
		ev.DirectionCorrect = r.DirectionCorrect
		ev.VolatilityCorrect = r.VolatilityCorrect
		ev.PointsEarned = r.PointsEarned
		ev.SettledAt = r.SettledAt
	}
	return ev
}
