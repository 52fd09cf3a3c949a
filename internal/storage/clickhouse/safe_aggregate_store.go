package clickhouse

import (
	"context"
	"fmt"

	"rai-digital-twin/internal/domain"
	"rai-digital-twin/internal/storage"
)

// SafeAggregateStore implements storage.SafeAggregateStore using ClickHouse.
type SafeAggregateStore struct {
	conn *Conn
}

// NewSafeAggregateStore creates a new SafeAggregateStore.
func NewSafeAggregateStore(conn *Conn) *SafeAggregateStore {
	return &SafeAggregateStore{conn: conn}
}

// Compile-time interface check.
var _ storage.SafeAggregateStore = (*SafeAggregateStore)(nil)

// InsertBulk adds multiple aggregates. Fails entire batch on duplicate block_number.
func (s *SafeAggregateStore) InsertBulk(ctx context.Context, aggregates []*domain.SafeAggregate) error {
	if len(aggregates) == 0 {
		return nil
	}

	seen := make(map[int64]struct{}, len(aggregates))
	for _, a := range aggregates {
		if a == nil || a.BlockNumber <= 0 {
			return storage.ErrInvalidInput
		}
		if _, exists := seen[a.BlockNumber]; exists {
			return storage.ErrDuplicateKey
		}
		seen[a.BlockNumber] = struct{}{}
	}

	for _, a := range aggregates {
		exists, err := s.exists(ctx, a.BlockNumber)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO safe_aggregates (block_number, collateral, debt)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, a := range aggregates {
		if err := batch.Append(a.BlockNumber, float64(a.Collateral), float64(a.Debt)); err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByBlock retrieves an aggregate by block number. Returns ErrNotFound if not exists.
func (s *SafeAggregateStore) GetByBlock(ctx context.Context, blockNumber int64) (*domain.SafeAggregate, error) {
	query := `
		SELECT block_number, collateral, debt
		FROM safe_aggregates
		WHERE block_number = ?
	`

	rows, err := s.conn.Query(ctx, query, blockNumber)
	if err != nil {
		return nil, fmt.Errorf("query safe aggregate by block: %w", err)
	}
	defer rows.Close()

	aggregates, err := scanSafeAggregates(rows)
	if err != nil {
		return nil, err
	}
	if len(aggregates) == 0 {
		return nil, storage.ErrNotFound
	}
	return aggregates[0], nil
}

// GetByBlockRange retrieves aggregates within [start, end] (inclusive), ordered by block ASC.
func (s *SafeAggregateStore) GetByBlockRange(ctx context.Context, start, end int64) ([]*domain.SafeAggregate, error) {
	query := `
		SELECT block_number, collateral, debt
		FROM safe_aggregates
		WHERE block_number >= ? AND block_number <= ?
		ORDER BY block_number ASC
	`

	rows, err := s.conn.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("query safe aggregates by block range: %w", err)
	}
	defer rows.Close()

	return scanSafeAggregates(rows)
}

// exists checks if an aggregate with the given block number exists.
func (s *SafeAggregateStore) exists(ctx context.Context, blockNumber int64) (bool, error) {
	query := `
		SELECT count(*) FROM safe_aggregates
		WHERE block_number = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, blockNumber).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// scanSafeAggregates scans multiple rows.
func scanSafeAggregates(rows chRows) ([]*domain.SafeAggregate, error) {
	var aggregates []*domain.SafeAggregate

	for rows.Next() {
		var a domain.SafeAggregate
		var collateral, debt float64

		if err := rows.Scan(&a.BlockNumber, &collateral, &debt); err != nil {
			return nil, fmt.Errorf("scan safe aggregate row: %w", err)
		}

		a.Collateral = domain.ETH(collateral)
		a.Debt = domain.RAI(debt)
		aggregates = append(aggregates, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate safe aggregate rows: %w", err)
	}

	return aggregates, nil
}
