package monitoring

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	runsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "backtest_runs_total",
			Help: "Total number of backtest runs started",
		},
	)

	tradesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backtest_trades_total",
			Help: "Total number of simulated trades closed",
		},
		[]string{"symbol", "reason"},
	)

	rejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backtest_trade_rejections_total",
			Help: "Total number of entries rejected by the risk manager",
		},
		[]string{"reason"},
	)

	haltsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backtest_risk_halts_total",
			Help: "Total number of kill-switch activations",
		},
		[]string{"state"},
	)

	finalEquity = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "backtest_final_equity",
			Help: "Final portfolio equity per run",
		},
		[]string{"run"},
	)
)

func init() {
	prometheus.MustRegister(runsTotal)
	prometheus.MustRegister(tradesTotal)
	prometheus.MustRegister(rejectionsTotal)
	prometheus.MustRegister(haltsTotal)
	prometheus.MustRegister(finalEquity)
}

// RecordRun increments the run counter.
func RecordRun() {
	runsTotal.Inc()
}

// RecordTrade records a closed trade by symbol and exit reason.
func RecordTrade(symbol, reason string) {
	tradesTotal.WithLabelValues(symbol, reason).Inc()
}

// RecordRejection records a risk-manager rejection by reason.
func RecordRejection(reason string) {
	rejectionsTotal.WithLabelValues(reason).Inc()
}

// RecordHalt records a kill-switch activation by the state entered.
func RecordHalt(state string) {
	haltsTotal.WithLabelValues(state).Inc()
}

// RecordFinalEquity records the ending equity of a run.
func RecordFinalEquity(runID string, equity float64) {
	finalEquity.WithLabelValues(runID).Set(equity)
}

// StartMetricsServer exposes /metrics on the given port. It blocks, so run
// it in a goroutine.
func StartMetricsServer(port int) error {
	http.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(fmt.Sprintf(":%d", port), nil)
}
