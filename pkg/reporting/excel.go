package reporting

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/quantlab/equity-backtest/internal/backtest"
)

// ExcelReporter writes a full backtest workbook: summary, trades and the
// equity curve, one sheet each.
type ExcelReporter struct{}

// NewExcelReporter creates an Excel reporter.
func NewExcelReporter() *ExcelReporter {
	return &ExcelReporter{}
}

// WriteResultsXLSX writes the workbook for one finished run to path.
func (r *ExcelReporter) WriteResultsXLSX(name string, result *backtest.BacktestResult, path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	fx := excelize.NewFile()
	defer fx.Close()

	const summarySheet = "Summary"
	const tradesSheet = "Trades"
	const equitySheet = "Equity Curve"

	fx.SetSheetName(fx.GetSheetName(0), summarySheet)
	if _, err := fx.NewSheet(tradesSheet); err != nil {
		return err
	}
	if _, err := fx.NewSheet(equitySheet); err != nil {
		return err
	}

	headerStyle, err := fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return err
	}

	if err := r.writeSummary(fx, summarySheet, name, result, headerStyle); err != nil {
		return err
	}
	if err := r.writeTrades(fx, tradesSheet, result, headerStyle); err != nil {
		return err
	}
	if err := r.writeEquity(fx, equitySheet, result, headerStyle); err != nil {
		return err
	}

	return fx.SaveAs(path)
}

func (r *ExcelReporter) writeSummary(fx *excelize.File, sheet, name string, result *backtest.BacktestResult, headerStyle int) error {
	rows := [][]interface{}{
		{"Strategy", name},
		{"Start Date", result.StartDate.Format("2006-01-02")},
		{"End Date", result.EndDate.Format("2006-01-02")},
		{"Initial Balance", result.StartBalance},
		{"Final Balance", result.EndBalance},
		{"Total Return", cell(result.TotalReturn)},
		{"CAGR", cell(result.CAGR)},
		{"Sharpe Ratio", cell(result.SharpeRatio)},
		{"Sortino Ratio", cell(result.SortinoRatio)},
		{"Max Drawdown", cell(result.MaxDrawdown)},
		{"Profit Factor", cell(result.ProfitFactor)},
		{"Win Rate", cell(result.WinRate)},
		{"Total Trades", result.TotalTrades},
		{"Winning Trades", result.WinningTrades},
		{"Losing Trades", result.LosingTrades},
		{"Max Consecutive Wins", result.MaxConsecutiveWins},
		{"Max Consecutive Losses", result.MaxConsecutiveLosses},
	}

	for i, row := range rows {
		addr, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := fx.SetSheetRow(sheet, addr, &row); err != nil {
			return err
		}
	}

	if err := fx.SetCellStyle(sheet, "A1", fmt.Sprintf("A%d", len(rows)), headerStyle); err != nil {
		return err
	}
	return fx.SetColWidth(sheet, "A", "B", 24)
}

func (r *ExcelReporter) writeTrades(fx *excelize.File, sheet string, result *backtest.BacktestResult, headerStyle int) error {
	header := []interface{}{"Symbol", "Entry Date", "Exit Date", "Entry Price", "Exit Price",
		"Shares", "Gross PnL", "Costs", "Net PnL", "Exit Reason"}
	if err := fx.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	if err := fx.SetCellStyle(sheet, "A1", "J1", headerStyle); err != nil {
		return err
	}

	for i, trade := range result.Trades {
		row := []interface{}{
			trade.Symbol,
			trade.EntryTime.Format("2006-01-02"),
			trade.ExitTime.Format("2006-01-02"),
			trade.EntryPrice,
			trade.ExitPrice,
			trade.Shares,
			trade.GrossPnL,
			trade.Costs,
			trade.NetPnL,
			trade.Reason.String(),
		}
		addr, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := fx.SetSheetRow(sheet, addr, &row); err != nil {
			return err
		}
	}
	return fx.SetColWidth(sheet, "A", "J", 14)
}

func (r *ExcelReporter) writeEquity(fx *excelize.File, sheet string, result *backtest.BacktestResult, headerStyle int) error {
	header := []interface{}{"Date", "Equity"}
	if err := fx.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	if err := fx.SetCellStyle(sheet, "A1", "B1", headerStyle); err != nil {
		return err
	}

	for i, point := range result.EquityCurve {
		row := []interface{}{point.Timestamp.Format("2006-01-02"), point.Equity}
		addr, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := fx.SetSheetRow(sheet, addr, &row); err != nil {
			return err
		}
	}
	return fx.SetColWidth(sheet, "A", "B", 16)
}

// cell maps undefined metric values to a printable placeholder, since
// Excel cells cannot hold NaN or Inf.
func cell(v float64) interface{} {
	if math.IsNaN(v) {
		return "n/a"
	}
	if math.IsInf(v, 1) {
		return "inf"
	}
	return v
}
