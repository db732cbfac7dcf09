package data

import "github.com/quantlab/equity-backtest/pkg/types"

// Provider loads historical daily bars for a symbol. Implementations must
// return a validated series: dense, ascending dates, sane OHLC values.
type Provider interface {
	// GetName returns the name of the data provider.
	GetName() string

	// LoadBars loads the full bar history for the symbol.
	LoadBars(symbol string) ([]types.Bar, error)
}
