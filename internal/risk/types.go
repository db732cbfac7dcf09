package risk

import "time"

// RejectReason explains why a trade request was turned down. Rejections are
// expected control-flow outcomes, not errors.
type RejectReason int

const (
	RejectNone RejectReason = iota
	RejectRiskHalted
	RejectMaxPositionsExceeded
	RejectPositionValueExceeded
	RejectDuplicateSymbol
)

func (r RejectReason) String() string {
	switch r {
	case RejectNone:
		return "None"
	case RejectRiskHalted:
		return "RiskHalted"
	case RejectMaxPositionsExceeded:
		return "MaxPositionsExceeded"
	case RejectPositionValueExceeded:
		return "PositionValueExceeded"
	case RejectDuplicateSymbol:
		return "DuplicateSymbol"
	default:
		return "Unknown"
	}
}

// HaltState is the kill-switch state of the risk manager.
type HaltState int

const (
	StateActive HaltState = iota
	StateDailyHalted
	StateMonthlyKilled
)

func (s HaltState) String() string {
	switch s {
	case StateActive:
		return "Active"
	case StateDailyHalted:
		return "DailyHalted"
	case StateMonthlyKilled:
		return "MonthlyKilled"
	default:
		return "Unknown"
	}
}

// ExitReason records why a position was closed.
type ExitReason int

const (
	ExitSignal ExitReason = iota
	ExitStopLoss
	ExitTakeProfit
	ExitEndOfPeriod
)

func (r ExitReason) String() string {
	switch r {
	case ExitSignal:
		return "SignalExit"
	case ExitStopLoss:
		return "StopLoss"
	case ExitTakeProfit:
		return "TakeProfit"
	case ExitEndOfPeriod:
		return "EndOfPeriod"
	default:
		return "Unknown"
	}
}

// TradeRequest is a proposed entry built from a signal and sizer output.
type TradeRequest struct {
	Symbol     string
	Shares     int
	EntryPrice float64
	StopLoss   float64
	TakeProfit float64
	Timestamp  time.Time
}

// TradeApproval is the risk manager's decision on a trade request.
// AdjustedShares, when non-zero, replaces the requested quantity.
type TradeApproval struct {
	Approved       bool
	Reason         RejectReason
	AdjustedShares int
}

// Position is an open holding. Exactly one position per symbol may exist at
// a time; the risk manager owns it from entry fill to exit fill.
type Position struct {
	Symbol     string
	Shares     int
	EntryPrice float64
	EntryTime  time.Time
	StopLoss   float64
	TakeProfit float64
	EntryCosts float64
}

// MarketValue returns the position value at the given price.
func (p Position) MarketValue(price float64) float64 {
	return float64(p.Shares) * price
}

// UnrealizedPnL returns the open profit at the given price, gross of costs.
func (p Position) UnrealizedPnL(price float64) float64 {
	return (price - p.EntryPrice) * float64(p.Shares)
}

// Trade is the immutable record of a closed position.
type Trade struct {
	Symbol     string
	EntryTime  time.Time
	ExitTime   time.Time
	EntryPrice float64
	ExitPrice  float64
	Shares     int
	GrossPnL   float64
	Costs      float64
	NetPnL     float64
	Reason     ExitReason
}
