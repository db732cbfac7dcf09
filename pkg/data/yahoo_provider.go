package data

import (
	"fmt"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"

	"github.com/quantlab/equity-backtest/pkg/types"
)

// YahooProvider loads daily bars from Yahoo Finance for a fixed date range.
type YahooProvider struct {
	start time.Time
	end   time.Time
}

// NewYahooProvider creates a provider for the given date range.
func NewYahooProvider(start, end time.Time) *YahooProvider {
	return &YahooProvider{start: start, end: end}
}

// GetName returns the name of the data provider.
func (p *YahooProvider) GetName() string {
	return "Yahoo Finance"
}

// LoadBars fetches and validates the daily bar history for the symbol.
func (p *YahooProvider) LoadBars(symbol string) ([]types.Bar, error) {
	params := &chart.Params{
		Symbol:   symbol,
		Start:    datetime.New(&p.start),
		End:      datetime.New(&p.end),
		Interval: datetime.OneDay,
	}

	iter := chart.Get(params)
	bars := make([]types.Bar, 0, 1024)
	for iter.Next() {
		b := iter.Bar()
		open, _ := b.Open.Float64()
		high, _ := b.High.Float64()
		low, _ := b.Low.Float64()
		closePrice, _ := b.Close.Float64()

		bars = append(bars, types.Bar{
			Timestamp: time.Unix(int64(b.Timestamp), 0).UTC().Truncate(24 * time.Hour),
			Open:      open,
			High:      high,
			Low:       low,
			Close:     closePrice,
			Volume:    int64(b.Volume),
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to fetch history for %s: %w", symbol, err)
	}

	if err := ValidateBars(symbol, bars); err != nil {
		return nil, err
	}
	return bars, nil
}
