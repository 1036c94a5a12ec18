package models

import "time"

// SettleStatus tags the outcome of one settlement unit.
type SettleStatus string

const (
	SettleSettled        SettleStatus = "settled"
	SettleAlreadySettled SettleStatus = "skipped_already_settled"
	SettleFailed         SettleStatus = "failed"
)

// SettleResult is the typed result of settling a single prediction.
// Result is set only for SettleSettled, Err only for SettleFailed.
type SettleResult struct {
	Status       SettleStatus
	PredictionID string
	UserID       string
	Date         time.Time
	Result       *SettlementResult
	Err          error
}

// DateStatus tags what a sweep did with one calendar date.
type DateStatus string

const (
	DateSettled       DateStatus = "settled"
	DateMarketOpen    DateStatus = "market_open"
	DateNoPriceRecord DateStatus = "no_price_record"
	DatePriceNotFinal DateStatus = "price_not_final"
	DateNoPending     DateStatus = "no_pending"
	DateError         DateStatus = "error"
)

type DateReport struct {
	Date    time.Time
	Status  DateStatus
	Results []SettleResult
	Err     error
}

// Count returns how many units ended with the given status.
func (r DateReport) Count(status SettleStatus) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == status {
			n++
		}
	}
	return n
}

// SweepReport summarizes one settlement sweep. Skipped is set when another
// runner held the sweep lock.
type SweepReport struct {
	StartedAt time.Time
	Duration  time.Duration
	Skipped   bool
	Dates     []DateReport
}

func (r SweepReport) Settled() int {
	return r.count(SettleSettled)
}

func (r SweepReport) Failed() int {
	return r.count(SettleFailed)
}

func (r SweepReport) AlreadySettled() int {
	return r.count(SettleAlreadySettled)
}

func (r SweepReport) count(status SettleStatus) int {
	n := 0
	for _, d := range r.Dates {
		n += d.Count(status)
	}
	return n
}

// SettledResults returns every unit that settled in this sweep, in date order.
func (r SweepReport) SettledResults() []SettleResult {
	var out []SettleResult
	for _, d := range r.Dates {
		for _, res := range d.Results {
			if res.Status == SettleSettled {
				out = append(out, res)
			}
		}
	}
	return out
}
