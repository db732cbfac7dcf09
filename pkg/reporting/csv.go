package reporting

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/quantlab/equity-backtest/internal/backtest"
)

// WriteTradesCSV writes the trade history of a run to path, one row per
// closed trade in exit order.
func WriteTradesCSV(result *backtest.BacktestResult, path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	header := []string{"symbol", "entry_date", "exit_date", "entry_price", "exit_price",
		"shares", "gross_pnl", "costs", "net_pnl", "exit_reason"}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, trade := range result.Trades {
		row := []string{
			trade.Symbol,
			trade.EntryTime.Format("2006-01-02"),
			trade.ExitTime.Format("2006-01-02"),
			strconv.FormatFloat(trade.EntryPrice, 'f', 4, 64),
			strconv.FormatFloat(trade.ExitPrice, 'f', 4, 64),
			strconv.Itoa(trade.Shares),
			strconv.FormatFloat(trade.GrossPnL, 'f', 2, 64),
			strconv.FormatFloat(trade.Costs, 'f', 2, 64),
			strconv.FormatFloat(trade.NetPnL, 'f', 2, 64),
			trade.Reason.String(),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

// WriteEquityCSV writes the equity curve of a run to path.
func WriteEquityCSV(result *backtest.BacktestResult, path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	if err := w.Write([]string{"date", "equity"}); err != nil {
		return err
	}
	for _, point := range result.EquityCurve {
		row := []string{
			point.Timestamp.Format("2006-01-02"),
			strconv.FormatFloat(point.Equity, 'f', 2, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}
