package storage

import (
	"context"

	"rai-digital-twin/internal/domain"
)

// MarketHourlyStore provides access to market_hourly storage.
type MarketHourlyStore interface {
	// InsertBulk adds multiple points. Fails entire batch on duplicate block_number.
	InsertBulk(ctx context.Context, points []*domain.MarketHourlyPoint) error

	// GetAll retrieves all points, ordered by timestamp ASC.
	GetAll(ctx context.Context) ([]*domain.MarketHourlyPoint, error)

	// GetByTimeRange retrieves points within [start, end] (inclusive).
	GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.MarketHourlyPoint, error)
}

// SystemSnapshotStore provides access to system_snapshots storage.
type SystemSnapshotStore interface {
	// InsertBulk adds multiple snapshots. Fails entire batch on duplicate block_number.
	InsertBulk(ctx context.Context, snapshots []*domain.SystemSnapshot) error

	// GetByBlock retrieves a snapshot by block number. Returns ErrNotFound if not exists.
	GetByBlock(ctx context.Context, blockNumber int64) (*domain.SystemSnapshot, error)

	// GetByBlockRange retrieves snapshots within [start, end] (inclusive), ordered by block ASC.
	GetByBlockRange(ctx context.Context, start, end int64) ([]*domain.SystemSnapshot, error)
}

// SafeAggregateStore provides access to safe_aggregates storage.
type SafeAggregateStore interface {
	// InsertBulk adds multiple aggregates. Fails entire batch on duplicate block_number.
	InsertBulk(ctx context.Context, aggregates []*domain.SafeAggregate) error

	// GetByBlock retrieves an aggregate by block number. Returns ErrNotFound if not exists.
	GetByBlock(ctx context.Context, blockNumber int64) (*domain.SafeAggregate, error)

	// GetByBlockRange retrieves aggregates within [start, end] (inclusive), ordered by block ASC.
	GetByBlockRange(ctx context.Context, start, end int64) ([]*domain.SafeAggregate, error)
}

// BacktestRunStore provides access to backtest_runs storage.
type BacktestRunStore interface {
	// Insert adds a new run with its metric losses. Returns ErrDuplicateKey if run_id exists.
	Insert(ctx context.Context, run *domain.BacktestRun) error

	// GetByID retrieves a run by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, runID string) (*domain.BacktestRun, error)

	// GetAll retrieves all runs, ordered by created_at ASC.
	GetAll(ctx context.Context) ([]*domain.BacktestRun, error)
}
