package memory

import (
	"context"
	"errors"
	"testing"

	"rai-digital-twin/internal/domain"
	"rai-digital-twin/internal/storage"
)

func TestSystemSnapshotStore_InsertAndGetByBlock(t *testing.T) {
	store := NewSystemSnapshotStore()
	ctx := context.Background()

	snaps := []*domain.SystemSnapshot{
		{BlockNumber: 100, RedemptionPrice: 3.02, RaiInUniswap: 12000000, EthInUniswap: 24000},
	}
	if err := store.InsertBulk(ctx, snaps); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	got, err := store.GetByBlock(ctx, 100)
	if err != nil {
		t.Fatalf("GetByBlock failed: %v", err)
	}
	if got.RedemptionPrice != 3.02 {
		t.Errorf("Expected redemption price 3.02, got %v", got.RedemptionPrice)
	}

	// Mutating the returned copy must not affect stored data
	got.RedemptionPrice = 99
	again, err := store.GetByBlock(ctx, 100)
	if err != nil {
		t.Fatalf("GetByBlock failed: %v", err)
	}
	if again.RedemptionPrice != 3.02 {
		t.Errorf("Stored snapshot was mutated through returned copy")
	}
}

func TestSystemSnapshotStore_NotFound(t *testing.T) {
	store := NewSystemSnapshotStore()
	ctx := context.Background()

	_, err := store.GetByBlock(ctx, 42)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestSystemSnapshotStore_GetByBlockRange(t *testing.T) {
	store := NewSystemSnapshotStore()
	ctx := context.Background()

	snaps := []*domain.SystemSnapshot{
		{BlockNumber: 300},
		{BlockNumber: 100},
		{BlockNumber: 200},
	}
	if err := store.InsertBulk(ctx, snaps); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	result, err := store.GetByBlockRange(ctx, 100, 200)
	if err != nil {
		t.Fatalf("GetByBlockRange failed: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("Expected 2 snapshots, got %d", len(result))
	}
	if result[0].BlockNumber != 100 || result[1].BlockNumber != 200 {
		t.Errorf("Expected blocks [100 200], got [%d %d]", result[0].BlockNumber, result[1].BlockNumber)
	}
}

func TestSystemSnapshotStore_DuplicateKey(t *testing.T) {
	store := NewSystemSnapshotStore()
	ctx := context.Background()

	snaps := []*domain.SystemSnapshot{{BlockNumber: 100}}
	if err := store.InsertBulk(ctx, snaps); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	err := store.InsertBulk(ctx, snaps)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}
