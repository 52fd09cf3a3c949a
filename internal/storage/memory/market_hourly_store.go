// Package memory provides in-memory store implementations, used in
// tests and for runs that do not need persistence.
package memory

import (
	"context"
	"sort"
	"sync"

	"rai-digital-twin/internal/domain"
	"rai-digital-twin/internal/storage"
)

// MarketHourlyStore is an in-memory implementation of storage.MarketHourlyStore.
type MarketHourlyStore struct {
	mu   sync.RWMutex
	data map[int64]*domain.MarketHourlyPoint // keyed by block_number
}

// NewMarketHourlyStore creates a new in-memory market hourly store.
func NewMarketHourlyStore() *MarketHourlyStore {
	return &MarketHourlyStore{
		data: make(map[int64]*domain.MarketHourlyPoint),
	}
}

// InsertBulk adds multiple points. Fails entire batch on duplicate block_number.
func (s *MarketHourlyStore) InsertBulk(_ context.Context, points []*domain.MarketHourlyPoint) error {
	if len(points) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Track keys in this batch to detect intra-batch duplicates
	batchKeys := make(map[int64]struct{}, len(points))

	for _, p := range points {
		if p == nil || p.BlockNumber <= 0 {
			return storage.ErrInvalidInput
		}
		if _, exists := s.data[p.BlockNumber]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[p.BlockNumber]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[p.BlockNumber] = struct{}{}
	}

	for _, p := range points {
		pointCopy := *p
		s.data[p.BlockNumber] = &pointCopy
	}

	return nil
}

// GetAll retrieves all points, ordered by timestamp ASC.
func (s *MarketHourlyStore) GetAll(_ context.Context) ([]*domain.MarketHourlyPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.MarketHourlyPoint, 0, len(s.data))
	for _, p := range s.data {
		pointCopy := *p
		result = append(result, &pointCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Timestamp < result[j].Timestamp
	})

	return result, nil
}

// GetByTimeRange retrieves points within [start, end] (inclusive).
func (s *MarketHourlyStore) GetByTimeRange(_ context.Context, start, end int64) ([]*domain.MarketHourlyPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.MarketHourlyPoint
	for _, p := range s.data {
		if p.Timestamp >= start && p.Timestamp <= end {
			pointCopy := *p
			result = append(result, &pointCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Timestamp < result[j].Timestamp
	})

	return result, nil
}

var _ storage.MarketHourlyStore = (*MarketHourlyStore)(nil)
