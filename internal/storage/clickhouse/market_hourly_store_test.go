package clickhouse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rai-digital-twin/internal/domain"
	"rai-digital-twin/internal/storage"
)

func TestMarketHourlyStore_InsertBulk(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewMarketHourlyStore(conn)
	ctx := context.Background()

	// Test empty insert
	err := store.InsertBulk(ctx, nil)
	assert.NoError(t, err)

	points := []*domain.MarketHourlyPoint{
		{
			Timestamp:      1614000000,
			BlockNumber:    11920000,
			MarketPriceUSD: 3.05,
			MarketPriceETH: 0.002,
			EthPrice:       1525.0,
		},
	}

	err = store.InsertBulk(ctx, points)
	require.NoError(t, err)

	got, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(1614000000), got[0].Timestamp)
	assert.Equal(t, int64(11920000), got[0].BlockNumber)
	assert.Equal(t, domain.USDPerRAI(3.05), got[0].MarketPriceUSD)
	assert.Equal(t, 0.002, got[0].MarketPriceETH)
	assert.Equal(t, domain.USDPerETH(1525.0), got[0].EthPrice)
}

func TestMarketHourlyStore_InsertBulk_DuplicateKey(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewMarketHourlyStore(conn)
	ctx := context.Background()

	points := []*domain.MarketHourlyPoint{
		{Timestamp: 1614000000, BlockNumber: 11920000, MarketPriceUSD: 3.05, MarketPriceETH: 0.002, EthPrice: 1525.0},
	}

	err := store.InsertBulk(ctx, points)
	require.NoError(t, err)

	// Try to insert duplicate
	err = store.InsertBulk(ctx, points)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestMarketHourlyStore_InsertBulk_IntraBatchDuplicate(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewMarketHourlyStore(conn)
	ctx := context.Background()

	// Same block twice in one batch
	points := []*domain.MarketHourlyPoint{
		{Timestamp: 1614000000, BlockNumber: 11920000, MarketPriceUSD: 3.05, MarketPriceETH: 0.002, EthPrice: 1525.0},
		{Timestamp: 1614003600, BlockNumber: 11920000, MarketPriceUSD: 3.06, MarketPriceETH: 0.002, EthPrice: 1530.0},
	}

	err := store.InsertBulk(ctx, points)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestMarketHourlyStore_GetByTimeRange(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewMarketHourlyStore(conn)
	ctx := context.Background()

	points := []*domain.MarketHourlyPoint{
		{Timestamp: 1000, BlockNumber: 100, MarketPriceUSD: 3.0, MarketPriceETH: 0.002, EthPrice: 1500.0},
		{Timestamp: 2000, BlockNumber: 200, MarketPriceUSD: 3.1, MarketPriceETH: 0.002, EthPrice: 1550.0},
		{Timestamp: 3000, BlockNumber: 300, MarketPriceUSD: 3.2, MarketPriceETH: 0.002, EthPrice: 1600.0},
	}
	require.NoError(t, store.InsertBulk(ctx, points))

	got, err := store.GetByTimeRange(ctx, 1000, 2000)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(100), got[0].BlockNumber)
	assert.Equal(t, int64(200), got[1].BlockNumber)
}
