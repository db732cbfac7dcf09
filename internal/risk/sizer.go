package risk

import (
	"errors"
	"math"
)

// ErrInvalidStop is returned when the stop price coincides with the entry
// price or sits on the wrong side of it for a long entry. Callers treat it
// as "no trade this bar".
var ErrInvalidStop = errors.New("stop price must be below entry price")

// PositionSizer converts a risk budget into a whole-share quantity, capped
// by a maximum position value. It is stateless and safe for concurrent use.
type PositionSizer struct {
	riskFraction        float64
	maxPositionFraction float64
}

// NewPositionSizer creates a sizer that risks riskFraction of equity per
// trade and caps any single position at maxPositionFraction of equity.
func NewPositionSizer(riskFraction, maxPositionFraction float64) *PositionSizer {
	return &PositionSizer{
		riskFraction:        riskFraction,
		maxPositionFraction: maxPositionFraction,
	}
}

// Shares returns the number of whole shares to buy so that the capital at
// risk (shares times stop distance) stays within the risk budget and the
// position value stays within the value cap. Both caps floor, never round
// up. Zero is a valid result and means "do not open".
func (s *PositionSizer) Shares(equity, entryPrice, stopPrice float64) (int, error) {
	if equity <= 0 || entryPrice <= 0 {
		return 0, nil
	}
	if stopPrice >= entryPrice {
		return 0, ErrInvalidStop
	}

	stopDistance := entryPrice - stopPrice
	riskBudget := equity * s.riskFraction

	rawShares := int(math.Floor(riskBudget / stopDistance))
	maxValueShares := int(math.Floor(equity * s.maxPositionFraction / entryPrice))

	shares := rawShares
	if maxValueShares < shares {
		shares = maxValueShares
	}
	if shares < 0 {
		shares = 0
	}
	return shares, nil
}
