package clickhouse

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB starts a throwaway ClickHouse container with the timeseries
// tables created and returns a connection plus a cleanup function the
// caller must defer.
func setupTestDB(t *testing.T) (*Conn, func()) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "clickhouse/clickhouse-server:24.1-alpine",
			ExposedPorts: []string{"9000/tcp", "8123/tcp"},
			WaitingFor: wait.ForAll(
				wait.ForLog("Application: Ready for connections").
					WithStartupTimeout(60*time.Second),
				wait.ForListeningPort("9000/tcp"),
			),
			Env: map[string]string{
				"CLICKHOUSE_DB":       "test",
				"CLICKHOUSE_USER":     "default",
				"CLICKHOUSE_PASSWORD": "",
			},
		},
		Started: true,
	})
	require.NoError(t, err, "start clickhouse container")

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "9000")
	require.NoError(t, err)

	conn, err := NewConn(ctx, fmt.Sprintf("clickhouse://%s:%s/test", host, port.Port()))
	require.NoError(t, err, "connect to test clickhouse")

	createTables(t, ctx, conn)

	return conn, func() {
		conn.Close()
		_ = container.Terminate(ctx)
	}
}

// createTables applies the timeseries DDL one statement at a time, since
// the driver rejects multi-statement Exec. The definitions mirror
// internal/storage/migrations/clickhouse/001_historical_data.sql.
func createTables(t *testing.T, ctx context.Context, conn *Conn) {
	t.Helper()

	ddl := []string{
		`CREATE TABLE IF NOT EXISTS market_hourly (
			timestamp        Int64,
			block_number     Int64,
			market_price_usd Float64,
			market_price_eth Float64,
			eth_price        Float64
		) ENGINE = MergeTree()
		ORDER BY (block_number)`,

		`CREATE TABLE IF NOT EXISTS system_snapshots (
			block_number                 Int64,
			global_debt                  Float64,
			global_debt_ceiling          Float64,
			system_surplus               Float64,
			debt_available_to_settle     Float64,
			active_safe_count            Int32,
			redemption_price             Float64,
			redemption_rate_annualized   Float64,
			redemption_rate_hourly       Float64,
			redemption_rate_eight_hourly Float64,
			eth_in_uniswap               Float64,
			rai_in_uniswap               Float64,
			rai_drawn                    Float64
		) ENGINE = MergeTree()
		ORDER BY (block_number)`,

		`CREATE TABLE IF NOT EXISTS safe_aggregates (
			block_number Int64,
			collateral   Float64,
			debt         Float64
		) ENGINE = MergeTree()
		ORDER BY (block_number)`,
	}

	for _, stmt := range ddl {
		require.NoError(t, conn.Exec(ctx, stmt), "create table")
	}
}
