package backtest

import (
	"errors"
	"fmt"

	"rai-digital-twin/internal/domain"
)

// Loss computation errors. A degenerate loss must never be mistaken for a
// perfect fit, so empty inputs fail loudly instead of producing zero or NaN.
var (
	ErrNoMetrics       = errors.New("validation metric registry is empty")
	ErrEmptyTrajectory = errors.New("trajectory has no rows")
)

// SimulationMetricsLoss computes every registered metric's scalar loss for a
// simulated trajectory against a test dataset. The registered losses return
// per-row squared errors; the reduction to a scalar happens here, uniformly,
// as the mean over rows.
func SimulationMetricsLoss(sim, test *domain.Trajectory) (map[string]float64, error) {
	return metricsLoss(ValidationMetrics, sim, test)
}

// metricsLoss is SimulationMetricsLoss over an explicit registry.
func metricsLoss(registry map[string]MetricDefinition, sim, test *domain.Trajectory) (map[string]float64, error) {
	if len(registry) == 0 {
		return nil, ErrNoMetrics
	}
	if sim == nil || test == nil || sim.Len() == 0 || test.Len() == 0 {
		return nil, ErrEmptyTrajectory
	}

	losses := make(map[string]float64, len(registry))
	for metric, definition := range registry {
		rowLosses, err := definition.Loss(sim, test)
		if err != nil {
			return nil, fmt.Errorf("metric %q: %w", metric, err)
		}
		losses[metric] = mean(rowLosses)
	}
	return losses, nil
}

// ValidationLoss reduces per-metric scalar losses to a single fitness value:
// the arithmetic mean over all metrics. An empty mapping is rejected, since
// the average would be undefined.
func ValidationLoss(metricLosses map[string]float64) (float64, error) {
	if len(metricLosses) == 0 {
		return 0, ErrNoMetrics
	}
	sum := 0.0
	for _, loss := range metricLosses {
		sum += loss
	}
	return sum / float64(len(metricLosses)), nil
}

// SimulationLoss is the top-level scalar fitness of a simulated trajectory
// against a test dataset; a calibration loop treats it as its objective.
func SimulationLoss(sim, test *domain.Trajectory) (float64, error) {
	metricLosses, err := SimulationMetricsLoss(sim, test)
	if err != nil {
		return 0, err
	}
	return ValidationLoss(metricLosses)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
