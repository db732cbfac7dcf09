package reporting

import (
	"fmt"
	"math"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/quantlab/equity-backtest/internal/backtest"
)

// ConsoleReporter renders a backtest summary as a terminal table.
type ConsoleReporter struct{}

// NewConsoleReporter creates a console reporter.
func NewConsoleReporter() *ConsoleReporter {
	return &ConsoleReporter{}
}

// OutputResults prints the summary table for one finished run.
func (r *ConsoleReporter) OutputResults(name string, result *backtest.BacktestResult) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.SetTitle("📊 %s", name)

	t.AppendRows([]table.Row{
		{"Period", fmt.Sprintf("%s → %s",
			result.StartDate.Format("2006-01-02"), result.EndDate.Format("2006-01-02"))},
		{"Initial Balance", fmt.Sprintf("$%.2f", result.StartBalance)},
		{"Final Balance", fmt.Sprintf("$%.2f", result.EndBalance)},
		{"Total Return", formatPct(result.TotalReturn)},
		{"CAGR", formatPct(result.CAGR)},
		{"Sharpe Ratio", formatRatio(result.SharpeRatio)},
		{"Sortino Ratio", formatRatio(result.SortinoRatio)},
		{"Max Drawdown", formatPct(result.MaxDrawdown)},
		{"Profit Factor", formatRatio(result.ProfitFactor)},
		{"Win Rate", formatPct(result.WinRate)},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"Total Trades", result.TotalTrades},
		{"Winning / Losing", fmt.Sprintf("%d / %d", result.WinningTrades, result.LosingTrades)},
		{"Avg Win / Avg Loss", fmt.Sprintf("%s / %s",
			formatMoney(result.AvgWin), formatMoney(result.AvgLoss))},
		{"Max Consecutive Wins", result.MaxConsecutiveWins},
		{"Max Consecutive Losses", result.MaxConsecutiveLosses},
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 22, Align: text.AlignLeft},
		{Number: 2, WidthMin: 24, Align: text.AlignRight},
	})

	t.Render()
}

// formatRatio renders undefined ratios as "n/a" and diverging ones as "inf".
func formatRatio(v float64) string {
	switch {
	case math.IsNaN(v):
		return "n/a"
	case math.IsInf(v, 1):
		return "inf"
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

func formatPct(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", v*100)
}

func formatMoney(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("$%.2f", v)
}
