package types

import "time"

// Bar is a single period's OHLCV price record for a symbol.
// Bars are immutable once loaded and safe to share across parallel runs.
type Bar struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    int64
}

// Range returns the high-low spread of the bar.
func (b Bar) Range() float64 {
	return b.High - b.Low
}
