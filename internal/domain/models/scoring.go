package models

import "github.com/shopspring/decimal"

const (
	DirectionPoints  = 10
	VolatilityPoints = 5
)

var (
	smallBandUpper  = decimal.NewFromFloat(0.5)
	mediumBandUpper = decimal.NewFromInt(2)
)

// ClassifyVolatility maps a day's range (percent of open) to a band.
// 0.5 and 2.0 are both medium.
func ClassifyVolatility(v decimal.Decimal) VolatilityBand {
	switch {
	case v.LessThan(smallBandUpper):
		return VolatilitySmall
	case v.GreaterThan(mediumBandUpper):
		return VolatilityLarge
	default:
		return VolatilityMedium
	}
}

// IsDirectionCorrect reports whether close moved strictly in the predicted
// direction from base. No move is wrong for both.
func IsDirectionCorrect(d Direction, base, actual decimal.Decimal) bool {
	change := actual.Sub(base)
	switch d {
	case DirectionUp:
		return change.IsPositive()
	case DirectionDown:
		return change.IsNegative()
	}
	return false
}

func Points(directionCorrect, volatilityCorrect bool) int {
	points := 0
	if directionCorrect {
		points += DirectionPoints
	}
	if volatilityCorrect {
		points += VolatilityPoints
	}
	return points
}

// Grade scores a prediction without mutating it.
func Grade(d Direction, guess VolatilityBand, base, actualClose, actualVolatility decimal.Decimal) (directionCorrect, volatilityCorrect bool, points int) {
	directionCorrect = IsDirectionCorrect(d, base, actualClose)
	volatilityCorrect = ClassifyVolatility(actualVolatility) == guess
	return directionCorrect, volatilityCorrect, Points(directionCorrect, volatilityCorrect)
}
