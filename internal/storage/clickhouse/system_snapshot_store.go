package clickhouse

import (
	"context"
	"fmt"

	"rai-digital-twin/internal/domain"
	"rai-digital-twin/internal/storage"
)

// SystemSnapshotStore implements storage.SystemSnapshotStore using ClickHouse.
type SystemSnapshotStore struct {
	conn *Conn
}

// NewSystemSnapshotStore creates a new SystemSnapshotStore.
func NewSystemSnapshotStore(conn *Conn) *SystemSnapshotStore {
	return &SystemSnapshotStore{conn: conn}
}

// Compile-time interface check.
var _ storage.SystemSnapshotStore = (*SystemSnapshotStore)(nil)

const systemSnapshotColumns = `
	block_number, global_debt, global_debt_ceiling, system_surplus,
	debt_available_to_settle, active_safe_count, redemption_price,
	redemption_rate_annualized, redemption_rate_hourly, redemption_rate_eight_hourly,
	eth_in_uniswap, rai_in_uniswap, rai_drawn
`

// InsertBulk adds multiple snapshots. Fails entire batch on duplicate block_number.
func (s *SystemSnapshotStore) InsertBulk(ctx context.Context, snapshots []*domain.SystemSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	seen := make(map[int64]struct{}, len(snapshots))
	for _, snap := range snapshots {
		if snap == nil || snap.BlockNumber <= 0 {
			return storage.ErrInvalidInput
		}
		if _, exists := seen[snap.BlockNumber]; exists {
			return storage.ErrDuplicateKey
		}
		seen[snap.BlockNumber] = struct{}{}
	}

	for _, snap := range snapshots {
		exists, err := s.exists(ctx, snap.BlockNumber)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO system_snapshots (`+systemSnapshotColumns+`)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, snap := range snapshots {
		err = batch.Append(
			snap.BlockNumber,
			float64(snap.GlobalDebt), float64(snap.GlobalDebtCeiling), float64(snap.SystemSurplus),
			float64(snap.DebtAvailableToSettle), int32(snap.ActiveSafeCount), float64(snap.RedemptionPrice),
			float64(snap.RedemptionRateAnnualized), float64(snap.RedemptionRateHourly), float64(snap.RedemptionRateEightHourly),
			float64(snap.EthInUniswap), float64(snap.RaiInUniswap), float64(snap.RaiDrawn),
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

// GetByBlock retrieves a snapshot by block number. Returns ErrNotFound if not exists.
func (s *SystemSnapshotStore) GetByBlock(ctx context.Context, blockNumber int64) (*domain.SystemSnapshot, error) {
	query := `
		SELECT ` + systemSnapshotColumns + `
		FROM system_snapshots
		WHERE block_number = ?
	`

	rows, err := s.conn.Query(ctx, query, blockNumber)
	if err != nil {
		return nil, fmt.Errorf("query system snapshot by block: %w", err)
	}
	defer rows.Close()

	snapshots, err := scanSystemSnapshots(rows)
	if err != nil {
		return nil, err
	}
	if len(snapshots) == 0 {
		return nil, storage.ErrNotFound
	}
	return snapshots[0], nil
}

// GetByBlockRange retrieves snapshots within [start, end] (inclusive), ordered by block ASC.
func (s *SystemSnapshotStore) GetByBlockRange(ctx context.Context, start, end int64) ([]*domain.SystemSnapshot, error) {
	query := `
		SELECT ` + systemSnapshotColumns + `
		FROM system_snapshots
		WHERE block_number >= ? AND block_number <= ?
		ORDER BY block_number ASC
	`

	rows, err := s.conn.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("query system snapshots by block range: %w", err)
	}
	defer rows.Close()

	return scanSystemSnapshots(rows)
}

// exists checks if a snapshot with the given block number exists.
func (s *SystemSnapshotStore) exists(ctx context.Context, blockNumber int64) (bool, error) {
	query := `
		SELECT count(*) FROM system_snapshots
		WHERE block_number = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, blockNumber).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// scanSystemSnapshots scans multiple rows.
func scanSystemSnapshots(rows chRows) ([]*domain.SystemSnapshot, error) {
	var snapshots []*domain.SystemSnapshot

	for rows.Next() {
		var snap domain.SystemSnapshot
		var activeSafeCount int32
		var globalDebt, globalDebtCeiling, systemSurplus, debtAvailable float64
		var redemptionPrice, rateAnnualized, rateHourly, rateEightHourly float64
		var ethInUniswap, raiInUniswap, raiDrawn float64

		err := rows.Scan(
			&snap.BlockNumber,
			&globalDebt, &globalDebtCeiling, &systemSurplus,
			&debtAvailable, &activeSafeCount, &redemptionPrice,
			&rateAnnualized, &rateHourly, &rateEightHourly,
			&ethInUniswap, &raiInUniswap, &raiDrawn,
		)
		if err != nil {
			return nil, fmt.Errorf("scan system snapshot row: %w", err)
		}

		snap.GlobalDebt = domain.RAI(globalDebt)
		snap.GlobalDebtCeiling = domain.RAI(globalDebtCeiling)
		snap.SystemSurplus = domain.RAI(systemSurplus)
		snap.DebtAvailableToSettle = domain.RAI(debtAvailable)
		snap.ActiveSafeCount = int(activeSafeCount)
		snap.RedemptionPrice = domain.USDPerRAI(redemptionPrice)
		snap.RedemptionRateAnnualized = domain.Percentage(rateAnnualized)
		snap.RedemptionRateHourly = domain.Percentage(rateHourly)
		snap.RedemptionRateEightHourly = domain.Percentage(rateEightHourly)
		snap.EthInUniswap = domain.ETH(ethInUniswap)
		snap.RaiInUniswap = domain.RAI(raiInUniswap)
		snap.RaiDrawn = domain.RAI(raiDrawn)
		snapshots = append(snapshots, &snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate system snapshot rows: %w", err)
	}

	return snapshots, nil
}
