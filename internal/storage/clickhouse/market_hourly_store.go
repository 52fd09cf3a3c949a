package clickhouse

import (
	"context"
	"fmt"

	"rai-digital-twin/internal/domain"
	"rai-digital-twin/internal/storage"
)

// MarketHourlyStore implements storage.MarketHourlyStore using ClickHouse.
type MarketHourlyStore struct {
	conn *Conn
}

// NewMarketHourlyStore creates a new MarketHourlyStore.
func NewMarketHourlyStore(conn *Conn) *MarketHourlyStore {
	return &MarketHourlyStore{conn: conn}
}

// Compile-time interface check.
var _ storage.MarketHourlyStore = (*MarketHourlyStore)(nil)

// InsertBulk adds multiple points. Fails entire batch on duplicate block_number.
func (s *MarketHourlyStore) InsertBulk(ctx context.Context, points []*domain.MarketHourlyPoint) error {
	if len(points) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	seen := make(map[int64]struct{}, len(points))
	for _, p := range points {
		if p == nil || p.BlockNumber <= 0 {
			return storage.ErrInvalidInput
		}
		if _, exists := seen[p.BlockNumber]; exists {
			return storage.ErrDuplicateKey
		}
		seen[p.BlockNumber] = struct{}{}
	}

	// Check for duplicates against existing DB rows
	for _, p := range points {
		exists, err := s.exists(ctx, p.BlockNumber)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO market_hourly (
			timestamp, block_number, market_price_usd, market_price_eth, eth_price
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range points {
		err = batch.Append(
			p.Timestamp, p.BlockNumber,
			float64(p.MarketPriceUSD), p.MarketPriceETH, float64(p.EthPrice),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetAll retrieves all points, ordered by timestamp ASC.
func (s *MarketHourlyStore) GetAll(ctx context.Context) ([]*domain.MarketHourlyPoint, error) {
	query := `
		SELECT timestamp, block_number, market_price_usd, market_price_eth, eth_price
		FROM market_hourly
		ORDER BY timestamp ASC
	`

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query all market hourly: %w", err)
	}
	defer rows.Close()

	return scanMarketHourly(rows)
}

// GetByTimeRange retrieves points within [start, end] (inclusive).
func (s *MarketHourlyStore) GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.MarketHourlyPoint, error) {
	query := `
		SELECT timestamp, block_number, market_price_usd, market_price_eth, eth_price
		FROM market_hourly
		WHERE timestamp >= ? AND timestamp <= ?
		ORDER BY timestamp ASC
	`

	rows, err := s.conn.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("query market hourly by time range: %w", err)
	}
	defer rows.Close()

	return scanMarketHourly(rows)
}

// exists checks if a point with the given block number exists.
func (s *MarketHourlyStore) exists(ctx context.Context, blockNumber int64) (bool, error) {
	query := `
		SELECT count(*) FROM market_hourly
		WHERE block_number = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, blockNumber).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// scanMarketHourly scans multiple rows.
func scanMarketHourly(rows chRows) ([]*domain.MarketHourlyPoint, error) {
	var points []*domain.MarketHourlyPoint

	for rows.Next() {
		var p domain.MarketHourlyPoint
		var marketPriceUSD, ethPrice float64

		err := rows.Scan(
			&p.Timestamp, &p.BlockNumber,
			&marketPriceUSD, &p.MarketPriceETH, &ethPrice,
		)
		if err != nil {
			return nil, fmt.Errorf("scan market hourly row: %w", err)
		}

		p.MarketPriceUSD = domain.USDPerRAI(marketPriceUSD)
		p.EthPrice = domain.USDPerETH(ethPrice)
		points = append(points, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate market hourly rows: %w", err)
	}

	return points, nil
}
