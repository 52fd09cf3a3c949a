package twin

import (
	"errors"

	"rai-digital-twin/internal/domain"
)

// ErrInsufficientHistory is returned by predictors that cannot fit on the
// available history. The policy for "insufficient" is owned by each
// predictor, not by the step logic.
var ErrInsufficientHistory = errors.New("insufficient history to fit predictor")

// UserActionParams is the parameter bundle handed to the predictor.
type UserActionParams struct {
	// MinHistory is the minimum number of history rows a predictor needs.
	MinHistory int

	// Window is the trailing window length for windowed predictors.
	Window int
}

// ActionPredictor fits on an ordered history of action states and predicts
// the next token state.
type ActionPredictor interface {
	FitPredict(history []domain.ActionState, params UserActionParams) (domain.TokenState, error)
}

// CarryForwardPredictor predicts no user action: the next token state equals
// the last observed one. Useful as a baseline and in tests.
type CarryForwardPredictor struct{}

// FitPredict returns the most recent token state in the history.
func (CarryForwardPredictor) FitPredict(history []domain.ActionState, params UserActionParams) (domain.TokenState, error) {
	if len(history) == 0 || len(history) < params.MinHistory {
		return domain.TokenState{}, ErrInsufficientHistory
	}
	return history[len(history)-1].TokenState, nil
}

// WindowPredictor predicts the next token state as the mean of the trailing
// window of observed token states.
type WindowPredictor struct{}

// FitPredict averages each reserve field over the trailing window.
func (WindowPredictor) FitPredict(history []domain.ActionState, params UserActionParams) (domain.TokenState, error) {
	if len(history) == 0 || len(history) < params.MinHistory {
		return domain.TokenState{}, ErrInsufficientHistory
	}

	window := params.Window
	if window <= 0 || window > len(history) {
		window = len(history)
	}

	var sum domain.TokenState
	for _, h := range history[len(history)-window:] {
		sum.RaiReserve += h.TokenState.RaiReserve
		sum.EthReserve += h.TokenState.EthReserve
		sum.RaiDebt += h.TokenState.RaiDebt
		sum.EthLocked += h.TokenState.EthLocked
	}

	n := domain.RAI(window)
	return domain.TokenState{
		RaiReserve: sum.RaiReserve / n,
		EthReserve: sum.EthReserve / domain.ETH(window),
		RaiDebt:    sum.RaiDebt / n,
		EthLocked:  sum.EthLocked / domain.ETH(window),
	}, nil
}

// Compile-time interface checks.
var (
	_ ActionPredictor = CarryForwardPredictor{}
	_ ActionPredictor = WindowPredictor{}
)
