package models

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrAlreadySettled      = errors.New("prediction already settled")
	ErrDuplicatePrediction = errors.New("prediction already submitted for this date")
	ErrNoPriceRecord       = errors.New("no price record for date")
	ErrPriceNotFinal       = errors.New("price record not final")
	ErrInvalidDirection    = errors.New("invalid price direction")
	ErrInvalidVolatility   = errors.New("invalid volatility guess")
	ErrUserNotFound        = errors.New("user statistics not found")
	ErrInvalidUsername     = errors.New("invalid username")
	ErrPriceUnavailable    = errors.New("price unavailable")
)
