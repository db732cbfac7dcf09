package strategy

import (
	"time"

	"github.com/quantlab/equity-backtest/pkg/types"
)

// Direction is a per-bar directional recommendation. The engine treats
// anything else as an input validation failure.
type Direction int

const (
	DirectionExit Direction = -1
	DirectionFlat Direction = 0
	DirectionLong Direction = 1
)

func (d Direction) String() string {
	switch d {
	case DirectionExit:
		return "EXIT"
	case DirectionFlat:
		return "FLAT"
	case DirectionLong:
		return "LONG"
	default:
		return "UNKNOWN"
	}
}

// Valid reports whether the direction is one of the three allowed values.
func (d Direction) Valid() bool {
	return d >= DirectionExit && d <= DirectionLong
}

// Signal is a strategy's recommendation for a single bar. StopLoss and
// TakeProfit are optional price levels; zero means not set. Confidence is
// in [0, 1].
type Signal struct {
	Timestamp  time.Time
	Symbol     string
	Direction  Direction
	StopLoss   float64
	TakeProfit float64
	Confidence float64
}

// Strategy produces one Signal per Bar for a single symbol. Implementations
// must only use data up to and including bar i when producing signal i.
type Strategy interface {
	// GenerateSignals returns exactly one signal per input bar, in order.
	GenerateSignals(symbol string, bars []types.Bar) ([]Signal, error)

	// Name returns the name of the strategy.
	Name() string
}
