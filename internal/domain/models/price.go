package models

import (
	"time"

	"github.com/shopspring/decimal"

	"GoldPredict/pkg/util"
)

var hundred = decimal.NewFromInt(100)

// Quote is a single market observation from a price source.
type Quote struct {
	Current       decimal.Decimal
	Open          decimal.Decimal
	High          decimal.Decimal
	Low           decimal.Decimal
	PreviousClose decimal.Decimal
	Change        decimal.Decimal
	ChangePercent decimal.Decimal
	Timestamp     time.Time
	Source        string
}

// PriceRecord is the daily XAU/USD record. Close stays nil until the day is finalized.
type PriceRecord struct {
	Date          time.Time        `json:"date"`
	Open          decimal.Decimal  `json:"open"`
	High          decimal.Decimal  `json:"high"`
	Low           decimal.Decimal  `json:"low"`
	Close         *decimal.Decimal `json:"close"`
	Current       decimal.Decimal  `json:"current"`
	PreviousClose *decimal.Decimal `json:"previousClose"`
	Change        decimal.Decimal  `json:"change"`
	ChangePercent decimal.Decimal  `json:"changePercent"`
	Volatility    decimal.Decimal  `json:"volatility"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

// NewPriceRecord starts a day from the first quote. prevClose wins over the
// quote's own previous close when the store already knows yesterday's close.
func NewPriceRecord(date time.Time, q Quote, prevClose *decimal.Decimal) *PriceRecord {
	r := &PriceRecord{
		Date:    DayOf(date),
		Open:    orCurrent(q.Open, q.Current),
		High:    decimal.Max(q.High, q.Current),
		Low:     decimal.Min(orCurrent(q.Low, q.Current), q.Current),
		Current: q.Current,
	}
	switch {
	case prevClose != nil:
		pc := *prevClose
		r.PreviousClose = &pc
	case !q.PreviousClose.IsZero():
		pc := q.PreviousClose
		r.PreviousClose = &pc
	}
	r.Recompute()
	return r
}

// MergeQuote folds a later intraday quote into the record. Close is untouched.
func (r *PriceRecord) MergeQuote(q Quote) {
	r.Current = q.Current
	r.High = decimal.Max(r.High, q.Current, q.High)
	r.Low = decimal.Min(r.Low, q.Current, orCurrent(q.Low, q.Current))
	r.Recompute()
}

// Recompute refreshes the derived fields from open/high/low/current/previousClose.
func (r *PriceRecord) Recompute() {
	r.Volatility = r.RealizedVolatility()
	if r.PreviousClose != nil && !r.PreviousClose.IsZero() {
		r.Change = r.Current.Sub(*r.PreviousClose)
		r.ChangePercent = r.Change.Div(*r.PreviousClose).Mul(hundred).Round(4)
	}
}

// RealizedVolatility is |high-low|/open*100 taken from the stored range,
// unrounded so band boundaries classify exactly. Zero when open is unknown.
func (r *PriceRecord) RealizedVolatility() decimal.Decimal {
	if r.Open.IsZero() {
		return decimal.Zero
	}
	return r.High.Sub(r.Low).Abs().Div(r.Open).Mul(hundred)
}

// FinalPrice is the close when set, otherwise the latest observed price.
func (r *PriceRecord) FinalPrice() decimal.Decimal {
	if r.Close != nil {
		return *r.Close
	}
	return r.Current
}

func (r *PriceRecord) IsFinal() bool {
	return r.Close != nil
}

// DayOf normalizes t to midnight UTC of its UTC calendar date.
func DayOf(t time.Time) time.Time {
	return util.TruncateDay(t)
}

func orCurrent(v, current decimal.Decimal) decimal.Decimal {
	if v.IsZero() {
		return current
	}
	return v
}
