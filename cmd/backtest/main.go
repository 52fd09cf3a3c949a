package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"rai-digital-twin/internal/backtest"
	"rai-digital-twin/internal/domain"
	"rai-digital-twin/internal/logging"
	"rai-digital-twin/internal/observability"
	"rai-digital-twin/internal/simulation"
	chstore "rai-digital-twin/internal/storage/clickhouse"
	"rai-digital-twin/internal/storage/migrations"
	pgstore "rai-digital-twin/internal/storage/postgres"
	"rai-digital-twin/internal/subgraph"
	"rai-digital-twin/internal/twin"
)

func main() {
	// Data source
	endpoint := flag.String("endpoint", subgraph.DefaultEndpoint, "Subgraph GraphQL endpoint (used without --clickhouse-dsn)")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "Load historical data from ClickHouse instead of the subgraph")
	limit := flag.Int("limit", 0, "Cap on historical rows (0 = all)")

	// Model parameters
	blockTime := flag.Float64("block-time", 13, "Seconds per Ethereum block")
	kp := flag.Float64("kp", twin.DefaultKp, "Controller proportional gain")
	ki := flag.Float64("ki", twin.DefaultKi, "Controller integral gain")

	// Result handling
	runID := flag.String("run-id", "", "Run identifier (default: backtest-<unix ms>)")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string for persisting results")
	persistResult := flag.Bool("persist", false, "Persist the scored run to storage")
	outputJSON := flag.Bool("json", false, "Output as JSON")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	flag.Parse()

	logger := logging.New(*logLevel)
	defer logger.Sync()

	if *persistResult && *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required with --persist")
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down", zap.Stringer("signal", sig))
		cancel()
	}()

	// Load historical data
	var (
		truth      *subgraph.GroundTruth
		dataSource string
		err        error
	)
	if *clickhouseDSN != "" {
		dataSource = "clickhouse"
		truth, err = loadFromClickhouse(ctx, *clickhouseDSN, *limit)
	} else {
		dataSource = "subgraph"
		client := subgraph.NewHTTPClient(*endpoint, subgraph.WithLogger(logger))
		truth, err = subgraph.BuildGroundTruth(ctx, client, *limit)
	}
	if err != nil {
		logger.Fatal("load historical data", zap.Error(err))
	}

	steps := truth.Steps()
	if steps == 0 {
		logger.Fatal("historical dataset has fewer than two records")
	}
	logger.Info("loaded ground truth",
		zap.String("source", dataSource),
		zap.Int("records", len(truth.Records)),
		zap.Int("steps", steps))

	// Configure the run from measured data
	params := twin.Params{
		Mode:       twin.BacktestingMode{Data: truth.BacktestingData()},
		Heights:    truth.Heights(),
		BlockTime:  domain.Seconds(*blockTime),
		Controller: twin.ControllerParams{Kp: *kp, Ki: *ki},
	}

	initial, err := truth.InitialState(twin.DefaultInitialState())
	if err != nil {
		logger.Fatal("build initial state", zap.Error(err))
	}

	runner, err := simulation.NewRunner(params)
	if err != nil {
		logger.Fatal("configure simulation", zap.Error(err))
	}

	m := observability.NewMetrics("")
	start := time.Now()
	sim, err := runner.Run(ctx, initial, steps, 1)
	if err != nil {
		logger.Fatal("run simulation", zap.Error(err))
	}
	m.SimulationRunsTotal.Inc()
	m.SimulationStepsTotal.Add(float64(steps))
	m.SimulationDuration.Observe(time.Since(start).Seconds())

	// Score against the observed trajectory
	test, err := truth.Trajectory()
	if err != nil {
		logger.Fatal("build test trajectory", zap.Error(err))
	}

	metricLosses, err := backtest.SimulationMetricsLoss(sim, test)
	if err != nil {
		logger.Fatal("compute metric losses", zap.Error(err))
	}
	loss, err := backtest.ValidationLoss(metricLosses)
	if err != nil {
		logger.Fatal("compute simulation loss", zap.Error(err))
	}

	m.BacktestRunsTotal.Inc()
	m.BacktestLoss.Set(loss)
	for metric, l := range metricLosses {
		m.MetricLoss.WithLabelValues(metric).Set(l)
	}

	run := buildRun(*runID, steps, dataSource, loss, metricLosses)

	if *persistResult {
		if err := persistRun(ctx, *postgresDSN, run); err != nil {
			logger.Fatal("persist run", zap.Error(err))
		}
		logger.Info("persisted run", zap.String("run_id", run.RunID))
	}

	if *outputJSON {
		output, _ := json.MarshalIndent(run, "", "  ")
		fmt.Println(string(output))
	} else {
		printRun(run)
	}
}

// buildRun assembles the scored run record.
func buildRun(runID string, steps int, dataSource string, loss float64, metricLosses map[string]float64) *domain.BacktestRun {
	now := time.Now().UnixMilli()
	if runID == "" {
		runID = fmt.Sprintf("backtest-%d", now)
	}

	run := &domain.BacktestRun{
		RunID:      runID,
		CreatedAt:  now,
		Steps:      steps,
		DataSource: dataSource,
		Loss:       loss,
	}
	for _, metric := range backtest.MetricNames() {
		run.MetricLosses = append(run.MetricLosses, domain.MetricLoss{
			Metric: metric,
			Loss:   metricLosses[metric],
		})
	}
	return run
}

// loadFromClickhouse rebuilds the ground truth dataset from stored series.
func loadFromClickhouse(ctx context.Context, dsn string, limit int) (*subgraph.GroundTruth, error) {
	conn, err := chstore.NewConn(ctx, dsn)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	hourlyPtrs, err := chstore.NewMarketHourlyStore(conn).GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load market hourly: %w", err)
	}
	if limit > 0 && len(hourlyPtrs) > limit {
		hourlyPtrs = hourlyPtrs[:limit]
	}
	if len(hourlyPtrs) == 0 {
		return nil, subgraph.ErrEmptyDataset
	}

	minBlock, maxBlock := hourlyPtrs[0].BlockNumber, hourlyPtrs[0].BlockNumber
	hourly := make([]domain.MarketHourlyPoint, len(hourlyPtrs))
	for i, p := range hourlyPtrs {
		hourly[i] = *p
		if p.BlockNumber < minBlock {
			minBlock = p.BlockNumber
		}
		if p.BlockNumber > maxBlock {
			maxBlock = p.BlockNumber
		}
	}

	snapPtrs, err := chstore.NewSystemSnapshotStore(conn).GetByBlockRange(ctx, minBlock, maxBlock)
	if err != nil {
		return nil, fmt.Errorf("load system snapshots: %w", err)
	}
	snapshots := make([]domain.SystemSnapshot, len(snapPtrs))
	for i, s := range snapPtrs {
		snapshots[i] = *s
	}

	aggPtrs, err := chstore.NewSafeAggregateStore(conn).GetByBlockRange(ctx, minBlock, maxBlock)
	if err != nil {
		return nil, fmt.Errorf("load safe aggregates: %w", err)
	}
	aggregates := make([]domain.SafeAggregate, len(aggPtrs))
	for i, a := range aggPtrs {
		aggregates[i] = *a
	}

	return subgraph.Join(hourly, snapshots, aggregates)
}

// persistRun stores the run through the PostgreSQL store, migrating the
// schema first. Storage failures are fatal for a persisted run.
func persistRun(ctx context.Context, dsn string, run *domain.BacktestRun) error {
	pool, err := pgstore.NewPool(ctx, dsn)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		return fmt.Errorf("migrate postgres: %w", err)
	}

	return pgstore.NewBacktestRunStore(pool).Insert(ctx, run)
}

// printRun outputs a human-readable result.
func printRun(run *domain.BacktestRun) {
	fmt.Println()
	fmt.Println("=== Backtest Result ===")
	fmt.Printf("Run ID:          %s\n", run.RunID)
	fmt.Printf("Steps:           %d\n", run.Steps)
	fmt.Printf("Data Source:     %s\n", run.DataSource)
	fmt.Println()
	fmt.Println("Metric losses:")
	for _, ml := range run.MetricLosses {
		fmt.Printf("  %-20s %.8g\n", ml.Metric, ml.Loss)
	}
	fmt.Println()
	fmt.Printf("Simulation loss: %.8g\n", run.Loss)
}
