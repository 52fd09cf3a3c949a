package memory

import (
	"context"
	"sort"
	"sync"

	"rai-digital-twin/internal/domain"
	"rai-digital-twin/internal/storage"
)

// SafeAggregateStore is an in-memory implementation of storage.SafeAggregateStore.
type SafeAggregateStore struct {
	mu   sync.RWMutex
	data map[int64]*domain.SafeAggregate // keyed by block_number
}

// NewSafeAggregateStore creates a new in-memory safe aggregate store.
func NewSafeAggregateStore() *SafeAggregateStore {
	return &SafeAggregateStore{
		data: make(map[int64]*domain.SafeAggregate),
	}
}

// InsertBulk adds multiple aggregates. Fails entire batch on duplicate block_number.
func (s *SafeAggregateStore) InsertBulk(_ context.Context, aggregates []*domain.SafeAggregate) error {
	if len(aggregates) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[int64]struct{}, len(aggregates))

	for _, a := range aggregates {
		if a == nil || a.BlockNumber <= 0 {
			return storage.ErrInvalidInput
		}
		if _, exists := s.data[a.BlockNumber]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[a.BlockNumber]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[a.BlockNumber] = struct{}{}
	}

	for _, a := range aggregates {
		aggCopy := *a
		s.data[a.BlockNumber] = &aggCopy
	}

	return nil
}

// GetByBlock retrieves an aggregate by block number. Returns ErrNotFound if not exists.
func (s *SafeAggregateStore) GetByBlock(_ context.Context, blockNumber int64) (*domain.SafeAggregate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, exists := s.data[blockNumber]
	if !exists {
		return nil, storage.ErrNotFound
	}

	aggCopy := *a
	return &aggCopy, nil
}

// GetByBlockRange retrieves aggregates within [start, end] (inclusive), ordered by block ASC.
func (s *SafeAggregateStore) GetByBlockRange(_ context.Context, start, end int64) ([]*domain.SafeAggregate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.SafeAggregate
	for _, a := range s.data {
		if a.BlockNumber >= start && a.BlockNumber <= end {
			aggCopy := *a
			result = append(result, &aggCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].BlockNumber < result[j].BlockNumber
	})

	return result, nil
}

var _ storage.SafeAggregateStore = (*SafeAggregateStore)(nil)
