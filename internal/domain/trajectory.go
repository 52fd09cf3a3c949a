package domain

import (
	"errors"
	"fmt"
	"sort"
)

// Trajectory errors.
var (
	ErrUnknownColumn = errors.New("unknown trajectory column")
	ErrRowMismatch   = errors.New("trajectory row indices are not aligned")
	ErrRaggedColumns = errors.New("trajectory columns have unequal lengths")
)

// StepIndex identifies one trajectory row: a (run, timestep) pair.
type StepIndex struct {
	Run      int
	Timestep int
}

// Row is one simulation output row: the full state snapshot at a step.
type Row struct {
	Run   int
	State SimulationState
}

// Trajectory is a table with one row per (run, timestep) and one column per
// state variable, or a subset of columns for test data. Loss functions
// compare trajectories pointwise per matching row index.
type Trajectory struct {
	index   []StepIndex
	columns map[string][]float64
}

// NewTrajectory builds a trajectory from an explicit row index and column
// map. All columns must have exactly one value per index entry.
func NewTrajectory(index []StepIndex, columns map[string][]float64) (*Trajectory, error) {
	for name, values := range columns {
		if len(values) != len(index) {
			return nil, fmt.Errorf("%w: column %q has %d values for %d rows",
				ErrRaggedColumns, name, len(values), len(index))
		}
	}
	t := &Trajectory{
		index:   make([]StepIndex, len(index)),
		columns: make(map[string][]float64, len(columns)),
	}
	copy(t.index, index)
	for name, values := range columns {
		col := make([]float64, len(values))
		copy(col, values)
		t.columns[name] = col
	}
	return t, nil
}

// FromRows builds a full trajectory from simulation output rows, one column
// per numeric state variable.
func FromRows(rows []Row) *Trajectory {
	t := &Trajectory{
		index:   make([]StepIndex, len(rows)),
		columns: make(map[string][]float64, len(stateColumns)),
	}
	for _, col := range stateColumns {
		t.columns[col] = make([]float64, len(rows))
	}
	for i, row := range rows {
		t.index[i] = StepIndex{Run: row.Run, Timestep: row.State.Timestep}
		for _, col := range stateColumns {
			v, _ := row.State.Value(col)
			t.columns[col][i] = v
		}
	}
	return t
}

// Len returns the number of rows.
func (t *Trajectory) Len() int {
	return len(t.index)
}

// Index returns a copy of the row index.
func (t *Trajectory) Index() []StepIndex {
	out := make([]StepIndex, len(t.index))
	copy(out, t.index)
	return out
}

// Columns returns the column names in sorted order.
func (t *Trajectory) Columns() []string {
	out := make([]string, 0, len(t.columns))
	for name := range t.columns {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// HasColumn reports whether a column is present.
func (t *Trajectory) HasColumn(name string) bool {
	_, ok := t.columns[name]
	return ok
}

// Column returns a copy of one column's values, row-aligned with Index.
func (t *Trajectory) Column(name string) ([]float64, error) {
	values, ok := t.columns[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	out := make([]float64, len(values))
	copy(out, values)
	return out, nil
}

// SelectRun returns the sub-trajectory for a single run.
func (t *Trajectory) SelectRun(run int) *Trajectory {
	var keep []int
	for i, idx := range t.index {
		if idx.Run == run {
			keep = append(keep, i)
		}
	}
	sub := &Trajectory{
		index:   make([]StepIndex, len(keep)),
		columns: make(map[string][]float64, len(t.columns)),
	}
	for name := range t.columns {
		sub.columns[name] = make([]float64, len(keep))
	}
	for j, i := range keep {
		sub.index[j] = t.index[i]
		for name, values := range t.columns {
			sub.columns[name][j] = values[i]
		}
	}
	return sub
}

// AlignedWith verifies that both trajectories cover exactly the same row
// index in the same order. Loss computation requires aligned indices.
func (t *Trajectory) AlignedWith(other *Trajectory) error {
	if other == nil || len(t.index) != len(other.index) {
		return ErrRowMismatch
	}
	for i := range t.index {
		if t.index[i] != other.index[i] {
			return fmt.Errorf("%w: row %d is %v vs %v",
				ErrRowMismatch, i, t.index[i], other.index[i])
		}
	}
	return nil
}
