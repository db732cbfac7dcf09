package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/quantlab/equity-backtest/pkg/data"
	"github.com/quantlab/equity-backtest/pkg/types"
)

// fetchdata downloads daily bar history from Yahoo Finance and writes one
// CSV per symbol in the format the backtest CSV provider reads.
func main() {
	var (
		symbols   = flag.String("symbols", "SPY", "Comma-separated list of symbols")
		startDate = flag.String("start", "", "Start date (YYYY-MM-DD), default one year back")
		endDate   = flag.String("end", "", "End date (YYYY-MM-DD), default today")
		outDir    = flag.String("outdir", "data", "Directory to write CSV files")
	)
	flag.Parse()

	end := time.Now().UTC().Truncate(24 * time.Hour)
	start := end.AddDate(-1, 0, 0)
	var err error
	if *startDate != "" {
		start, err = time.Parse("2006-01-02", *startDate)
		if err != nil {
			log.Fatalf("Invalid start date %q: %v", *startDate, err)
		}
	}
	if *endDate != "" {
		end, err = time.Parse("2006-01-02", *endDate)
		if err != nil {
			log.Fatalf("Invalid end date %q: %v", *endDate, err)
		}
	}
	if !end.After(start) {
		log.Fatalf("End date %s must be after start date %s",
			end.Format("2006-01-02"), start.Format("2006-01-02"))
	}

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	provider := data.NewYahooProvider(start, end)
	for _, raw := range strings.Split(*symbols, ",") {
		symbol := strings.ToUpper(strings.TrimSpace(raw))
		if symbol == "" {
			continue
		}

		bars, err := provider.LoadBars(symbol)
		if err != nil {
			log.Fatalf("%s: %v", symbol, err)
		}

		path := filepath.Join(*outDir, symbol+".csv")
		if err := writeBars(path, bars); err != nil {
			log.Fatalf("%s: %v", symbol, err)
		}
		fmt.Printf("%s: %d bars (%s → %s) -> %s\n",
			symbol, len(bars),
			bars[0].Timestamp.Format("2006-01-02"),
			bars[len(bars)-1].Timestamp.Format("2006-01-02"),
			path)
	}
}

func writeBars(path string, bars []types.Bar) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	if err := w.Write([]string{"date", "open", "high", "low", "close", "volume"}); err != nil {
		return err
	}
	for _, bar := range bars {
		row := []string{
			bar.Timestamp.Format("2006-01-02"),
			strconv.FormatFloat(bar.Open, 'f', 4, 64),
			strconv.FormatFloat(bar.High, 'f', 4, 64),
			strconv.FormatFloat(bar.Low, 'f', 4, 64),
			strconv.FormatFloat(bar.Close, 'f', 4, 64),
			strconv.FormatInt(bar.Volume, 10),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}
