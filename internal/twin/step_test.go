package twin

import (
	"testing"

	"rai-digital-twin/internal/domain"
)

func TestStep_BacktestingInjectsAndAdvances(t *testing.T) {
	recorded := domain.TokenState{
		RaiReserve: 50, EthReserve: 25, RaiDebt: 80, EthLocked: 60,
	}
	p := Params{
		Mode:                   BacktestingMode{Data: map[int]domain.TokenState{1: recorded}},
		ExtrapolationTimedelta: 3600,
	}

	initial := DefaultInitialState()
	next, err := Step(p, nil, initial)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if next.Timestep != 1 {
		t.Errorf("expected timestep 1, got %d", next.Timestep)
	}
	if next.Timedelta != 3600 {
		t.Errorf("expected timedelta 3600, got %v", next.Timedelta)
	}
	if next.SecondsPassed != 3600 {
		t.Errorf("expected seconds_passed 3600, got %v", next.SecondsPassed)
	}
	if next.TokenState != recorded {
		t.Errorf("expected injected token state %+v, got %+v", recorded, next.TokenState)
	}

	// The named state variables mirror the token-state snapshot.
	if next.RAIBalance != recorded.RaiReserve {
		t.Errorf("RAI balance %v not mirrored from %v", next.RAIBalance, recorded.RaiReserve)
	}
	if next.ETHBalance != recorded.EthReserve {
		t.Errorf("ETH balance %v not mirrored from %v", next.ETHBalance, recorded.EthReserve)
	}
	if next.PrincipalDebt != recorded.RaiDebt {
		t.Errorf("principal_debt %v not mirrored from %v", next.PrincipalDebt, recorded.RaiDebt)
	}
	if next.EthCollateral != next.EthLocked-next.EthFreed-next.EthBitten {
		t.Errorf("eth_collateral %v breaks the conservation identity", next.EthCollateral)
	}

	// Input state stays untouched.
	if initial.Timestep != 0 {
		t.Error("input state was mutated")
	}
}

func TestStep_EmptyBacktestingDataCarriesForward(t *testing.T) {
	p := Params{
		Mode:                   BacktestingMode{Data: map[int]domain.TokenState{}},
		ExtrapolationTimedelta: 3600,
	}

	initial := DefaultInitialState()
	next, err := Step(p, nil, initial)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.TokenState != initial.TokenState {
		t.Errorf("expected carried-forward token state %+v, got %+v",
			initial.TokenState, next.TokenState)
	}
}

func TestStep_HeightsDriveTimeAndBlockheight(t *testing.T) {
	p := Params{
		Mode:      BacktestingMode{},
		Heights:   map[int]domain.Height{0: 990, 1: 1000},
		BlockTime: 13,
	}

	next, err := Step(p, nil, DefaultInitialState())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.Timedelta != 130 {
		t.Errorf("expected timedelta 130, got %v", next.Timedelta)
	}
	if next.Blockheight != 1000 {
		t.Errorf("expected blockheight 1000, got %v", next.Blockheight)
	}
}

func TestStep_SpotPriceProxiesTWAP(t *testing.T) {
	recorded := domain.TokenState{RaiReserve: 200, EthReserve: 100}
	p := Params{
		Mode:                   BacktestingMode{Data: map[int]domain.TokenState{1: recorded}},
		ExtrapolationTimedelta: 3600,
	}

	initial := DefaultInitialState()
	next, err := Step(p, nil, initial)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := domain.USDPerRAI(float64(initial.EthPrice) * 100 / 200)
	if next.MarketPriceTWAP != want {
		t.Errorf("expected TWAP %v, got %v", want, next.MarketPriceTWAP)
	}
}

func TestStep_ExtrapolationUsesPredictor(t *testing.T) {
	p := Params{
		Mode: ExtrapolationMode{
			Predictor:        CarryForwardPredictor{},
			UserActionParams: UserActionParams{MinHistory: 1},
		},
		ExtrapolationTimedelta: 3600,
	}

	initial := DefaultInitialState()
	next, err := Step(p, nil, initial)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.TokenState != initial.TokenState {
		t.Errorf("carry-forward prediction should keep the token state, got %+v",
			next.TokenState)
	}
}
