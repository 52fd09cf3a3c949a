// Package reporting renders backtest results as Markdown and CSV.
package reporting

import "time"

// Report summarizes a set of scored backtest runs.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	RunCount    int

	// Summary across all runs
	Summary RunSummary

	// Per-run rows, sorted by created_at then run_id
	Runs []RunRow

	// Per-metric mean losses across all runs, sorted by metric name
	MetricSummary []MetricSummaryRow
}

// RunSummary aggregates losses across runs.
type RunSummary struct {
	BestRunID  string
	BestLoss   float64
	WorstRunID string
	WorstLoss  float64
	MeanLoss   float64
}

// RunRow represents one backtest run in the report table.
type RunRow struct {
	RunID        string
	CreatedAt    int64 // Unix ms
	Steps        int
	DataSource   string
	Loss         float64
	MetricLosses map[string]float64
}

// MetricSummaryRow is one metric's mean loss across runs.
type MetricSummaryRow struct {
	Metric   string
	MeanLoss float64
	RunCount int
}
