package reporting

import (
	"context"
	"errors"
	"sort"
	"time"

	"rai-digital-twin/internal/storage"
)

// ErrNoRuns is returned when there are no stored runs to report on.
var ErrNoRuns = errors.New("reporting: no backtest runs")

// Generator produces reports from stored backtest runs.
type Generator struct {
	runStore storage.BacktestRunStore
	now      func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(runStore storage.BacktestRunStore) *Generator {
	return &Generator{
		runStore: runStore,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate produces a report over all stored runs.
func (g *Generator) Generate(ctx context.Context) (*Report, error) {
	runs, err := g.runStore.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, ErrNoRuns
	}

	report := &Report{
		GeneratedAt: g.now(),
		RunCount:    len(runs),
	}

	// Per-run rows; GetAll returns runs ordered by created_at ASC already.
	var lossSum float64
	metricSums := make(map[string]float64)
	metricCounts := make(map[string]int)

	for i, run := range runs {
		row := RunRow{
			RunID:        run.RunID,
			CreatedAt:    run.CreatedAt,
			Steps:        run.Steps,
			DataSource:   run.DataSource,
			Loss:         run.Loss,
			MetricLosses: make(map[string]float64, len(run.MetricLosses)),
		}
		for _, ml := range run.MetricLosses {
			row.MetricLosses[ml.Metric] = ml.Loss
			metricSums[ml.Metric] += ml.Loss
			metricCounts[ml.Metric]++
		}
		report.Runs = append(report.Runs, row)

		lossSum += run.Loss
		if i == 0 || run.Loss < report.Summary.BestLoss {
			report.Summary.BestRunID = run.RunID
			report.Summary.BestLoss = run.Loss
		}
		if i == 0 || run.Loss > report.Summary.WorstLoss {
			report.Summary.WorstRunID = run.RunID
			report.Summary.WorstLoss = run.Loss
		}
	}
	report.Summary.MeanLoss = lossSum / float64(len(runs))

	for metric, sum := range metricSums {
		report.MetricSummary = append(report.MetricSummary, MetricSummaryRow{
			Metric:   metric,
			MeanLoss: sum / float64(metricCounts[metric]),
			RunCount: metricCounts[metric],
		})
	}
	sort.Slice(report.MetricSummary, func(i, j int) bool {
		return report.MetricSummary[i].Metric < report.MetricSummary[j].Metric
	})

	return report, nil
}
