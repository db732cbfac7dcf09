package backtest

import (
	"fmt"
	"sort"

	"github.com/quantlab/equity-backtest/internal/strategy"
	"github.com/quantlab/equity-backtest/pkg/types"
)

// validateInputs checks the bar and signal streams before simulation starts.
// Any malformed input is fatal to the run and reported with the offending
// symbol and index; skipping bad rows would corrupt the dense equity curve
// and the no-look-ahead guarantee.
func validateInputs(bars map[string][]types.Bar, signals map[string][]strategy.Signal) ([]string, error) {
	if len(bars) == 0 {
		return nil, fmt.Errorf("no bar data supplied")
	}

	symbols := make([]string, 0, len(bars))
	for symbol := range bars {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	reference := bars[symbols[0]]
	for _, symbol := range symbols {
		series := bars[symbol]
		sigs, ok := signals[symbol]
		if !ok {
			return nil, fmt.Errorf("%s: no signal series supplied", symbol)
		}
		if len(series) == 0 {
			return nil, fmt.Errorf("%s: empty bar series", symbol)
		}
		if len(sigs) != len(series) {
			return nil, fmt.Errorf("%s: %d signals for %d bars", symbol, len(sigs), len(series))
		}
		if len(series) != len(reference) {
			return nil, fmt.Errorf("%s: %d bars, expected %d to align with %s",
				symbol, len(series), len(reference), symbols[0])
		}

		for i, bar := range series {
			if err := validateBar(bar); err != nil {
				return nil, fmt.Errorf("%s: bar %d: %w", symbol, i, err)
			}
			if i > 0 && !bar.Timestamp.After(series[i-1].Timestamp) {
				return nil, fmt.Errorf("%s: bar %d: timestamp %s not after previous bar",
					symbol, i, bar.Timestamp.Format("2006-01-02"))
			}
			if !bar.Timestamp.Equal(reference[i].Timestamp) {
				return nil, fmt.Errorf("%s: bar %d: timestamp %s misaligned with %s",
					symbol, i, bar.Timestamp.Format("2006-01-02"), symbols[0])
			}

			sig := sigs[i]
			if !sig.Direction.Valid() {
				return nil, fmt.Errorf("%s: signal %d: direction %d outside {-1, 0, 1}",
					symbol, i, sig.Direction)
			}
			if !sig.Timestamp.Equal(bar.Timestamp) {
				return nil, fmt.Errorf("%s: signal %d: timestamp %s does not match bar",
					symbol, i, sig.Timestamp.Format("2006-01-02"))
			}
		}
	}
	return symbols, nil
}

func validateBar(bar types.Bar) error {
	if bar.Open <= 0 || bar.High <= 0 || bar.Low <= 0 || bar.Close <= 0 {
		return fmt.Errorf("non-positive price")
	}
	if bar.High < bar.Open || bar.High < bar.Close || bar.High < bar.Low {
		return fmt.Errorf("high %.4f below open/close/low", bar.High)
	}
	if bar.Low > bar.Open || bar.Low > bar.Close {
		return fmt.Errorf("low %.4f above open/close", bar.Low)
	}
	if bar.Volume < 0 {
		return fmt.Errorf("negative volume %d", bar.Volume)
	}
	return nil
}
