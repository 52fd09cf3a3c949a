// Package backtest scores simulated trajectories against historical ground
// truth: a registry of named column losses and their aggregation into a
// single scalar simulation loss.
package backtest

import (
	"sort"

	"rai-digital-twin/internal/domain"
)

// MetricLossFunc is a loss over two row-aligned trajectories. It returns one
// squared error per row, not yet reduced to a scalar; the caller decides how
// to reduce.
type MetricLossFunc func(sim, test *domain.Trajectory) ([]float64, error)

// MetricDefinition pairs a validation metric's declared value kind with its
// loss function.
type MetricDefinition struct {
	ValueKind string
	Loss      MetricLossFunc
}

// ValidationMetrics is the process-wide metric registry, keyed by column
// name. It is read-only after definition; new tracked metrics are added here
// without touching the aggregation logic.
var ValidationMetrics = map[string]MetricDefinition{
	domain.ColRedemptionPrice: {
		ValueKind: "float64",
		Loss:      MetricLossFor(domain.ColRedemptionPrice),
	},
	domain.ColRedemptionRate: {
		ValueKind: "float64",
		Loss:      MetricLossFor(domain.ColRedemptionRate),
	},
}

// MetricNames returns the registry's metric names in sorted order.
func MetricNames() []string {
	names := make([]string, 0, len(ValidationMetrics))
	for name := range ValidationMetrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GenericColumnLoss is the default loss: the squared error per row for one
// named column. The result is row-aligned with the inputs; misaligned row
// indices are rejected.
func GenericColumnLoss(sim, test *domain.Trajectory, column string) ([]float64, error) {
	if err := sim.AlignedWith(test); err != nil {
		return nil, err
	}

	y, err := test.Column(column)
	if err != nil {
		return nil, err
	}
	yHat, err := sim.Column(column)
	if err != nil {
		return nil, err
	}

	loss := make([]float64, len(y))
	for i := range y {
		e := y[i] - yHat[i]
		loss[i] = e * e
	}
	return loss, nil
}

// MetricLossFor produces a loss function closed over one column, so the
// registry can be populated without per-metric boilerplate.
func MetricLossFor(column string) MetricLossFunc {
	return func(sim, test *domain.Trajectory) ([]float64, error) {
		return GenericColumnLoss(sim, test, column)
	}
}
