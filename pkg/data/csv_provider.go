package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/quantlab/equity-backtest/pkg/types"
)

// CSVProvider loads daily bars from <dir>/<symbol>.csv with the columns
// date,open,high,low,close,volume. A header row is skipped when present.
type CSVProvider struct {
	dir        string
	dateFormat string
}

// NewCSVProvider creates a provider reading from the given directory.
func NewCSVProvider(dir string) *CSVProvider {
	return &CSVProvider{
		dir:        dir,
		dateFormat: "2006-01-02",
	}
}

// GetName returns the name of the data provider.
func (p *CSVProvider) GetName() string {
	return "CSV Provider"
}

// LoadBars reads and validates the full bar history for the symbol.
func (p *CSVProvider) LoadBars(symbol string) ([]types.Bar, error) {
	path := filepath.Join(p.dir, symbol+".csv")
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open data file for %s: %w", symbol, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	bars := make([]types.Bar, 0, 1024)
	line := 0

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: line %d: %w", path, line+1, err)
		}
		line++

		if len(record) < 6 {
			return nil, fmt.Errorf("%s: line %d: expected 6 columns, got %d", path, line, len(record))
		}

		ts, err := time.Parse(p.dateFormat, record[0])
		if err != nil {
			if line == 1 {
				continue // header row
			}
			return nil, fmt.Errorf("%s: line %d: bad date %q: %w", path, line, record[0], err)
		}

		bar := types.Bar{Timestamp: ts}
		fields := []struct {
			name string
			dst  *float64
			raw  string
		}{
			{"open", &bar.Open, record[1]},
			{"high", &bar.High, record[2]},
			{"low", &bar.Low, record[3]},
			{"close", &bar.Close, record[4]},
		}
		for _, f := range fields {
			v, err := strconv.ParseFloat(f.raw, 64)
			if err != nil {
				return nil, fmt.Errorf("%s: line %d: bad %s %q: %w", path, line, f.name, f.raw, err)
			}
			*f.dst = v
		}

		volume, err := strconv.ParseFloat(record[5], 64)
		if err != nil {
			return nil, fmt.Errorf("%s: line %d: bad volume %q: %w", path, line, record[5], err)
		}
		bar.Volume = int64(volume)

		bars = append(bars, bar)
	}

	if err := ValidateBars(symbol, bars); err != nil {
		return nil, err
	}
	return bars, nil
}
