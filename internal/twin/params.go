// Package twin implements the per-step state-transition logic of the
// stablecoin digital twin: time advance, controller feedback and the
// action/token-state update, in both extrapolation and backtesting modes.
package twin

import (
	"errors"
	"fmt"

	"rai-digital-twin/internal/domain"
	"rai-digital-twin/internal/validation"
)

// Configuration errors.
var (
	ErrNoMode            = errors.New("no simulation mode configured")
	ErrNoPredictor       = errors.New("extrapolation mode requires a predictor")
	ErrBadTimedelta      = errors.New("extrapolation timedelta must be positive")
	ErrBadBlockTime      = errors.New("block time must be positive when heights are configured")
	ErrNegativeTimedelta = errors.New("resolved timedelta is negative")
)

// Mode selects the per-step action branch. Exactly one concrete mode is
// configured per run; the tagged variant makes a both-or-neither
// configuration unrepresentable.
type Mode interface {
	mode()
}

// ExtrapolationMode steps the model on predicted driving signals: each step
// the predictor is fitted on the bounded history view and returns the next
// token state.
type ExtrapolationMode struct {
	Predictor        ActionPredictor
	UserActionParams UserActionParams
}

func (ExtrapolationMode) mode() {}

// BacktestingMode steps the model on pre-loaded historical data, keyed by
// timestep. Missing timesteps carry the current token state forward
// unchanged; they are not an error.
type BacktestingMode struct {
	Data map[int]domain.TokenState
}

func (BacktestingMode) mode() {}

// Params is the configuration surface of a simulation run.
type Params struct {
	Mode Mode

	// ExtrapolationTimedelta is the fixed wall-clock interval per step,
	// used whenever no heights map is configured.
	ExtrapolationTimedelta domain.Seconds

	// Heights optionally maps timestep to block height so that real
	// historical block cadence drives simulated time.
	Heights map[int]domain.Height

	// BlockTime is the seconds-per-block constant used with Heights.
	BlockTime domain.Seconds

	Controller ControllerParams
}

// Validate rejects misconfigured parameter bundles at configuration time.
func (p Params) Validate() error {
	if p.Mode == nil {
		return ErrNoMode
	}
	switch m := p.Mode.(type) {
	case ExtrapolationMode:
		if m.Predictor == nil {
			return ErrNoPredictor
		}
	case BacktestingMode:
		// empty Data is allowed: the fallback policy carries state forward
	default:
		return fmt.Errorf("unsupported mode %T", p.Mode)
	}
	if p.Heights == nil {
		if p.ExtrapolationTimedelta <= 0 {
			return ErrBadTimedelta
		}
		return nil
	}
	if p.BlockTime <= 0 {
		return ErrBadBlockTime
	}
	if err := validation.CheckHeights(p.Heights); err != nil {
		return err
	}
	return nil
}
