package memory

import (
	"context"
	"sort"
	"sync"

	"rai-digital-twin/internal/domain"
	"rai-digital-twin/internal/storage"
)

// SystemSnapshotStore is an in-memory implementation of storage.SystemSnapshotStore.
type SystemSnapshotStore struct {
	mu   sync.RWMutex
	data map[int64]*domain.SystemSnapshot // keyed by block_number
}

// NewSystemSnapshotStore creates a new in-memory system snapshot store.
func NewSystemSnapshotStore() *SystemSnapshotStore {
	return &SystemSnapshotStore{
		data: make(map[int64]*domain.SystemSnapshot),
	}
}

// InsertBulk adds multiple snapshots. Fails entire batch on duplicate block_number.
func (s *SystemSnapshotStore) InsertBulk(_ context.Context, snapshots []*domain.SystemSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[int64]struct{}, len(snapshots))

	for _, snap := range snapshots {
		if snap == nil || snap.BlockNumber <= 0 {
			return storage.ErrInvalidInput
		}
		if _, exists := s.data[snap.BlockNumber]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[snap.BlockNumber]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[snap.BlockNumber] = struct{}{}
	}

	for _, snap := range snapshots {
		snapCopy := *snap
		s.data[snap.BlockNumber] = &snapCopy
	}

	return nil
}

// GetByBlock retrieves a snapshot by block number. Returns ErrNotFound if not exists.
func (s *SystemSnapshotStore) GetByBlock(_ context.Context, blockNumber int64) (*domain.SystemSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, exists := s.data[blockNumber]
	if !exists {
		return nil, storage.ErrNotFound
	}

	snapCopy := *snap
	return &snapCopy, nil
}

// GetByBlockRange retrieves snapshots within [start, end] (inclusive), ordered by block ASC.
func (s *SystemSnapshotStore) GetByBlockRange(_ context.Context, start, end int64) ([]*domain.SystemSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.SystemSnapshot
	for _, snap := range s.data {
		if snap.BlockNumber >= start && snap.BlockNumber <= end {
			snapCopy := *snap
			result = append(result, &snapCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].BlockNumber < result[j].BlockNumber
	})

	return result, nil
}

var _ storage.SystemSnapshotStore = (*SystemSnapshotStore)(nil)
