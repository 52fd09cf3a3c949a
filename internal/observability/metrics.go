// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Retrieval metrics
	SubgraphRequests        *prometheus.CounterVec
	SubgraphRequestErrors   *prometheus.CounterVec
	SubgraphRequestDuration *prometheus.HistogramVec
	SubgraphRowsDropped     prometheus.Counter
	HourlyPointsFetched     prometheus.Counter
	SnapshotsFetched        prometheus.Counter
	SafeAggregatesFetched   prometheus.Counter

	// Simulation metrics
	SimulationRunsTotal  prometheus.Counter
	SimulationStepsTotal prometheus.Counter
	SimulationDuration   prometheus.Histogram

	// Backtest metrics
	BacktestRunsTotal prometheus.Counter
	BacktestLoss      prometheus.Gauge
	MetricLoss        *prometheus.GaugeVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "rai_digital_twin"
	}

	return &Metrics{
		// Retrieval metrics
		SubgraphRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "subgraph",
			Name:      "requests_total",
			Help:      "Total number of subgraph queries by entity",
		}, []string{"entity"}),
		SubgraphRequestErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "subgraph",
			Name:      "request_errors_total",
			Help:      "Total number of failed subgraph queries by entity",
		}, []string{"entity"}),
		SubgraphRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "subgraph",
			Name:      "request_duration_seconds",
			Help:      "Subgraph query latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"entity"}),
		SubgraphRowsDropped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "subgraph",
			Name:      "rows_dropped_total",
			Help:      "Total number of rows dropped for missing nested data",
		}),
		HourlyPointsFetched: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "subgraph",
			Name:      "hourly_points_fetched_total",
			Help:      "Total number of hourly market points fetched",
		}),
		SnapshotsFetched: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "subgraph",
			Name:      "system_snapshots_fetched_total",
			Help:      "Total number of system state snapshots fetched",
		}),
		SafeAggregatesFetched: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "subgraph",
			Name:      "safe_aggregates_fetched_total",
			Help:      "Total number of safe aggregates fetched",
		}),

		// Simulation metrics
		SimulationRunsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "runs_total",
			Help:      "Total number of simulation runs executed",
		}),
		SimulationStepsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "steps_total",
			Help:      "Total number of simulation steps executed",
		}),
		SimulationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "duration_seconds",
			Help:      "Simulation run duration in seconds",
			Buckets:   []float64{0.01, 0.1, 0.5, 1, 5, 10, 30, 60},
		}),

		// Backtest metrics
		BacktestRunsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backtest",
			Name:      "runs_total",
			Help:      "Total number of scored backtest runs",
		}),
		BacktestLoss: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "backtest",
			Name:      "simulation_loss",
			Help:      "Aggregate simulation loss of the last backtest run",
		}),
		MetricLoss: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "backtest",
			Name:      "metric_loss",
			Help:      "Per-metric loss of the last backtest run",
		}, []string{"metric"}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
