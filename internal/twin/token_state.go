package twin

import "rai-digital-twin/internal/domain"

// TokenSignal is the per-step token-state update proposed by an action
// branch. Field pointers carry partial updates; TokenState, when set, is a
// whole-record replacement that wins over any field-level values present.
type TokenSignal struct {
	RaiReserve *domain.RAI
	EthReserve *domain.ETH
	RaiDebt    *domain.RAI
	EthLocked  *domain.ETH

	// TokenState is the whole-record override. Precedence: when set, it
	// replaces the field-by-field merge result entirely.
	TokenState *domain.TokenState
}

// Empty reports whether the signal proposes no change at all.
func (s TokenSignal) Empty() bool {
	return s.RaiReserve == nil && s.EthReserve == nil &&
		s.RaiDebt == nil && s.EthLocked == nil && s.TokenState == nil
}

// UserAction is the extrapolation branch: it builds the bounded history view
// (all full prior timesteps plus the last-known partial state of the current
// step) and asks the predictor for the next token state. In backtesting mode
// it is a no-op.
func UserAction(p Params, history []domain.SimulationState, state domain.SimulationState) (TokenSignal, error) {
	mode, ok := p.Mode.(ExtrapolationMode)
	if !ok {
		return TokenSignal{}, nil
	}

	view := actionStateHistory(history, state)
	predicted, err := mode.Predictor.FitPredict(view, mode.UserActionParams)
	if err != nil {
		return TokenSignal{}, err
	}
	return TokenSignal{TokenState: &predicted}, nil
}

// Backtesting is the historical-data branch: it injects the token state
// recorded for the current timestep. Timesteps absent from the data carry
// the current token state forward unchanged; a missing row is not an error.
// In extrapolation mode it is a no-op.
func Backtesting(p Params, state domain.SimulationState) TokenSignal {
	mode, ok := p.Mode.(BacktestingMode)
	if !ok {
		return TokenSignal{}
	}

	current, ok := mode.Data[state.Timestep]
	if !ok {
		current = state.TokenState
	}
	return TokenSignal{TokenState: &current}
}

// ApplyTokenState merges a signal into the current token state and returns a
// new record. Each field uses the signal's value if present, else keeps the
// prior value; a whole-record override replaces the merge result entirely.
func ApplyTokenState(current domain.TokenState, sig TokenSignal) domain.TokenState {
	next := current
	if sig.RaiReserve != nil {
		next.RaiReserve = *sig.RaiReserve
	}
	if sig.EthReserve != nil {
		next.EthReserve = *sig.EthReserve
	}
	if sig.RaiDebt != nil {
		next.RaiDebt = *sig.RaiDebt
	}
	if sig.EthLocked != nil {
		next.EthLocked = *sig.EthLocked
	}
	if sig.TokenState != nil {
		next = *sig.TokenState
	}
	return next
}

// actionStateHistory maps prior full states plus the current partial state
// into the predictor's history view, ordered by timestep.
func actionStateHistory(history []domain.SimulationState, state domain.SimulationState) []domain.ActionState {
	view := make([]domain.ActionState, 0, len(history)+1)
	for _, h := range history {
		view = append(view, asActionState(h))
	}
	view = append(view, asActionState(state))
	return view
}

func asActionState(s domain.SimulationState) domain.ActionState {
	return domain.ActionState{
		Timestep:        s.Timestep,
		TokenState:      s.TokenState,
		EthPrice:        s.EthPrice,
		RedemptionPrice: s.RedemptionPrice,
		MarketPriceTWAP: s.MarketPriceTWAP,
	}
}
