// Package simulation drives the per-step update pipeline over a fixed number
// of timesteps and Monte-Carlo runs, producing one trajectory row per
// (run, step).
package simulation

import (
	"context"
	"fmt"

	"rai-digital-twin/internal/domain"
	"rai-digital-twin/internal/twin"
)

// Runner executes simulations for a validated parameter bundle.
type Runner struct {
	params twin.Params
}

// NewRunner creates a runner. The parameter bundle is validated once here;
// a misconfigured mode is a configuration-time error, never a silent no-op.
func NewRunner(params twin.Params) (*Runner, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Runner{params: params}, nil
}

// Run executes the step pipeline for the given number of steps and runs.
// Each run starts from the same initial state and owns its state thread;
// the update logic is pure, so runs are independent. The returned trajectory
// holds one row per (run, step), in run-major order.
func (r *Runner) Run(ctx context.Context, initial domain.SimulationState, steps, runs int) (*domain.Trajectory, error) {
	if steps <= 0 {
		return nil, fmt.Errorf("step count must be positive, got %d", steps)
	}
	if runs <= 0 {
		return nil, fmt.Errorf("run count must be positive, got %d", runs)
	}

	rows := make([]domain.Row, 0, steps*runs)
	for run := 0; run < runs; run++ {
		state := initial
		history := make([]domain.SimulationState, 0, steps)

		for step := 0; step < steps; step++ {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}

			next, err := twin.Step(r.params, history, state)
			if err != nil {
				return nil, fmt.Errorf("run %d step %d: %w", run, step, err)
			}

			history = append(history, state)
			state = next
			rows = append(rows, domain.Row{Run: run, State: state})
		}
	}

	return domain.FromRows(rows), nil
}
