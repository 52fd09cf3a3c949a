// Package validation implements the data-quality checks applied at the
// configuration boundary, before a simulation run starts.
package validation

import (
	"errors"
	"fmt"
	"sort"

	"rai-digital-twin/internal/domain"
)

// Validation errors.
var (
	ErrHeightsOutOfOrder = errors.New("heights map is out of order")
	ErrEmptyGroundTruth  = errors.New("ground truth dataset is empty")
)

// CheckHeights rejects block-height maps whose heights decrease as the
// timestep grows. The time-advance logic passes negative deltas through, so
// an unordered map is a modeling error that must be caught here.
func CheckHeights(heights map[int]domain.Height) error {
	if len(heights) == 0 {
		return nil
	}

	timesteps := make([]int, 0, len(heights))
	for t := range heights {
		timesteps = append(timesteps, t)
	}
	sort.Ints(timesteps)

	prev := heights[timesteps[0]]
	for _, t := range timesteps[1:] {
		h := heights[t]
		if h < prev {
			return fmt.Errorf("%w: height %v at timestep %d is below height %v at an earlier timestep",
				ErrHeightsOutOfOrder, h, t, prev)
		}
		prev = h
	}
	return nil
}
