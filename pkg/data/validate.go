package data

import (
	"fmt"

	"github.com/quantlab/equity-backtest/pkg/types"
)

// ValidateBars checks a loaded bar series before it is handed to the
// simulation: strictly ascending timestamps, positive prices, high/low
// consistency and non-negative volume. The first offending index is
// reported.
func ValidateBars(symbol string, bars []types.Bar) error {
	if len(bars) == 0 {
		return fmt.Errorf("%s: no bars loaded", symbol)
	}

	for i, bar := range bars {
		if bar.Open <= 0 || bar.High <= 0 || bar.Low <= 0 || bar.Close <= 0 {
			return fmt.Errorf("%s: bar %d (%s): non-positive price",
				symbol, i, bar.Timestamp.Format("2006-01-02"))
		}
		if bar.High < bar.Open || bar.High < bar.Close || bar.High < bar.Low {
			return fmt.Errorf("%s: bar %d (%s): high %.4f below open/close/low",
				symbol, i, bar.Timestamp.Format("2006-01-02"), bar.High)
		}
		if bar.Low > bar.Open || bar.Low > bar.Close {
			return fmt.Errorf("%s: bar %d (%s): low %.4f above open/close",
				symbol, i, bar.Timestamp.Format("2006-01-02"), bar.Low)
		}
		if bar.Volume < 0 {
			return fmt.Errorf("%s: bar %d (%s): negative volume %d",
				symbol, i, bar.Timestamp.Format("2006-01-02"), bar.Volume)
		}
		if i > 0 && !bar.Timestamp.After(bars[i-1].Timestamp) {
			return fmt.Errorf("%s: bar %d (%s): timestamp not after previous bar",
				symbol, i, bar.Timestamp.Format("2006-01-02"))
		}
	}
	return nil
}
