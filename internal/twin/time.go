package twin

import "rai-digital-twin/internal/domain"

// TimeSignal carries the wall-clock time elapsed during one step.
type TimeSignal struct {
	Timedelta domain.Seconds
}

// Hours returns the elapsed time at hourly granularity.
func (s TimeSignal) Hours() float64 {
	return float64(s.Timedelta) / 3600
}

// ResolveTimePassed computes the elapsed time for the current step.
//
// Without a heights map every step advances by the fixed extrapolation
// timedelta. With a heights map the block-height delta between the previous
// and current timestep is converted to seconds using the block-time
// constant; a missing previous height defaults to 0 and a missing current
// height defaults to the running seconds_passed counter.
//
// The height delta is not assumed non-negative here: an out-of-order map
// yields a negative timedelta, which the data-validation boundary rejects.
func ResolveTimePassed(p Params, state domain.SimulationState) TimeSignal {
	if p.Heights == nil {
		return TimeSignal{Timedelta: p.ExtrapolationTimedelta}
	}

	current, ok := p.Heights[state.Timestep]
	if !ok {
		current = domain.Height(state.SecondsPassed)
	}
	previous, ok := p.Heights[state.Timestep-1]
	if !ok {
		previous = 0
	}

	deltaHeight := float64(current - previous)
	return TimeSignal{Timedelta: domain.Seconds(deltaHeight * float64(p.BlockTime))}
}

// ApplyTimePassed folds an elapsed-time signal into the time counters and
// returns the new state snapshot.
func ApplyTimePassed(state domain.SimulationState, sig TimeSignal) domain.SimulationState {
	next := state
	next.Timedelta = sig.Timedelta
	next.TimedeltaInHours = sig.Hours()
	next.SecondsPassed += sig.Timedelta
	next.CumulativeTime += sig.Timedelta
	return next
}
