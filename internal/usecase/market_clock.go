package usecase

import (
	"time"

	"GoldPredict/internal/domain/models"
)

// MarketClock answers whether a trading date has closed. Dates are UTC
// calendar days; the cutoff is that calendar day at hour:minute in loc.
type MarketClock struct {
	hour   int
	minute int
	loc    *time.Location
}

func NewMarketClock(hour, minute int, loc *time.Location) *MarketClock {
	if loc == nil {
		loc = time.UTC
	}
	return &MarketClock{hour: hour, minute: minute, loc: loc}
}

// CutoffFor returns the instant after which date counts as closed.
func (c *MarketClock) CutoffFor(date time.Time) time.Time {
	y, m, d := models.DayOf(date).Date()
	return time.Date(y, m, d, c.hour, c.minute, 0, 0, c.loc)
}

func (c *MarketClock) IsClosed(now, date time.Time) bool {
	return !now.Before(c.CutoffFor(date))
}

// Today is the trading date that now falls on.
func (c *MarketClock) Today(now time.Time) time.Time {
	return models.DayOf(now)
}

func (c *MarketClock) IsTradingDayClosed(now time.Time) bool {
	return c.IsClosed(now, c.Today(now))
}
