package postgres

import (
	"context"
	"fmt"

	"rai-digital-twin/internal/domain"
	"rai-digital-twin/internal/storage"
)

// BacktestRunStore implements storage.BacktestRunStore using PostgreSQL.
type BacktestRunStore struct {
	pool *Pool
}

// NewBacktestRunStore creates a new BacktestRunStore.
func NewBacktestRunStore(pool *Pool) *BacktestRunStore {
	return &BacktestRunStore{pool: pool}
}

// Compile-time interface check.
var _ storage.BacktestRunStore = (*BacktestRunStore)(nil)

// Insert adds a new run with its metric losses in one transaction.
// Returns ErrDuplicateKey if run_id exists.
func (s *BacktestRunStore) Insert(ctx context.Context, run *domain.BacktestRun) error {
	if run == nil || run.RunID == "" {
		return storage.ErrInvalidInput
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	runQuery := `
		INSERT INTO backtest_runs (run_id, created_at, steps, data_source, loss)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = tx.Exec(ctx, runQuery,
		run.RunID, run.CreatedAt, run.Steps, run.DataSource, run.Loss,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert backtest run: %w", err)
	}

	lossQuery := `
		INSERT INTO metric_losses (run_id, metric, loss)
		VALUES ($1, $2, $3)
	`
	for _, ml := range run.MetricLosses {
		if _, err := tx.Exec(ctx, lossQuery, run.RunID, ml.Metric, ml.Loss); err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert metric loss: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetByID retrieves a run by its ID. Returns ErrNotFound if not exists.
func (s *BacktestRunStore) GetByID(ctx context.Context, runID string) (*domain.BacktestRun, error) {
	query := `
		SELECT run_id, created_at, steps, data_source, loss
		FROM backtest_runs
		WHERE run_id = $1
	`

	var run domain.BacktestRun
	err := s.pool.QueryRow(ctx, query, runID).Scan(
		&run.RunID, &run.CreatedAt, &run.Steps, &run.DataSource, &run.Loss,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get backtest run by id: %w", err)
	}

	losses, err := s.metricLosses(ctx, runID)
	if err != nil {
		return nil, err
	}
	run.MetricLosses = losses

	return &run, nil
}

// GetAll retrieves all runs, ordered by created_at ASC.
func (s *BacktestRunStore) GetAll(ctx context.Context) ([]*domain.BacktestRun, error) {
	query := `
		SELECT run_id, created_at, steps, data_source, loss
		FROM backtest_runs
		ORDER BY created_at ASC, run_id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all backtest runs: %w", err)
	}
	defer rows.Close()

	var runs []*domain.BacktestRun
	for rows.Next() {
		var run domain.BacktestRun
		if err := rows.Scan(&run.RunID, &run.CreatedAt, &run.Steps, &run.DataSource, &run.Loss); err != nil {
			return nil, fmt.Errorf("scan backtest run row: %w", err)
		}
		runs = append(runs, &run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate backtest run rows: %w", err)
	}

	for _, run := range runs {
		losses, err := s.metricLosses(ctx, run.RunID)
		if err != nil {
			return nil, err
		}
		run.MetricLosses = losses
	}

	return runs, nil
}

// metricLosses loads the per-metric losses of one run, ordered by metric name.
func (s *BacktestRunStore) metricLosses(ctx context.Context, runID string) ([]domain.MetricLoss, error) {
	query := `
		SELECT metric, loss
		FROM metric_losses
		WHERE run_id = $1
		ORDER BY metric ASC
	`

	rows, err := s.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("get metric losses: %w", err)
	}
	defer rows.Close()

	var losses []domain.MetricLoss
	for rows.Next() {
		var ml domain.MetricLoss
		if err := rows.Scan(&ml.Metric, &ml.Loss); err != nil {
			return nil, fmt.Errorf("scan metric loss row: %w", err)
		}
		losses = append(losses, ml)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate metric loss rows: %w", err)
	}

	return losses, nil
}
