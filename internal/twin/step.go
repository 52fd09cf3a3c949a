package twin

import "rai-digital-twin/internal/domain"

// Step advances the state by one timestep: resolve elapsed time, run the
// configured action branch, then fold every signal into a new snapshot.
// The timestep counter is advanced first, so every lookup keyed by timestep
// (heights, backtesting data) sees the step being computed. The input state
// is never mutated.
func Step(p Params, history []domain.SimulationState, state domain.SimulationState) (domain.SimulationState, error) {
	current := state
	current.Timestep++

	timeSig := ResolveTimePassed(p, current)

	// Exactly one action branch is active per configuration; the other
	// returns an empty signal.
	actionSig, err := UserAction(p, history, current)
	if err != nil {
		return domain.SimulationState{}, err
	}
	tokenSig := actionSig
	if tokenSig.Empty() {
		tokenSig = Backtesting(p, current)
	}

	next := ApplyTimePassed(current, timeSig)
	next = ApplyController(next, ResolveController(p.Controller, state, timeSig))

	next.TokenState = ApplyTokenState(state.TokenState, tokenSig)
	next = reconcileReserves(next)

	if height, ok := p.Heights[current.Timestep]; ok {
		next.Blockheight = height
	}

	return next, nil
}

// reconcileReserves mirrors the token-state snapshot into the named state
// variables and recomputes the conservation aggregates: collateral is
// locked - freed - bitten, never adjusted in place.
func reconcileReserves(state domain.SimulationState) domain.SimulationState {
	next := state
	next.RAIBalance = next.TokenState.RaiReserve
	next.ETHBalance = next.TokenState.EthReserve
	next.EthLocked = next.TokenState.EthLocked
	next.PrincipalDebt = next.TokenState.RaiDebt
	next.EthCollateral = next.EthLocked - next.EthFreed - next.EthBitten

	// The pool spot price proxies the market TWAP for the controller.
	if next.TokenState.RaiReserve > 0 {
		spot := float64(next.EthPrice) *
			float64(next.TokenState.EthReserve) / float64(next.TokenState.RaiReserve)
		next.MarketPriceTWAP = domain.USDPerRAI(spot)
	}
	return next
}
