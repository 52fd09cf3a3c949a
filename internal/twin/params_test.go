package twin

import (
	"errors"
	"testing"

	"rai-digital-twin/internal/domain"
	"rai-digital-twin/internal/validation"
)

func TestParamsValidate_NoMode(t *testing.T) {
	err := Params{ExtrapolationTimedelta: 3600}.Validate()
	if !errors.Is(err, ErrNoMode) {
		t.Errorf("expected ErrNoMode, got %v", err)
	}
}

func TestParamsValidate_NoPredictor(t *testing.T) {
	p := Params{
		Mode:                   ExtrapolationMode{},
		ExtrapolationTimedelta: 3600,
	}
	if err := p.Validate(); !errors.Is(err, ErrNoPredictor) {
		t.Errorf("expected ErrNoPredictor, got %v", err)
	}
}

func TestParamsValidate_BadTimedelta(t *testing.T) {
	p := Params{
		Mode: ExtrapolationMode{Predictor: CarryForwardPredictor{}},
	}
	if err := p.Validate(); !errors.Is(err, ErrBadTimedelta) {
		t.Errorf("expected ErrBadTimedelta, got %v", err)
	}
}

func TestParamsValidate_BadBlockTime(t *testing.T) {
	p := Params{
		Mode:    BacktestingMode{},
		Heights: map[int]domain.Height{0: 100, 1: 110},
	}
	if err := p.Validate(); !errors.Is(err, ErrBadBlockTime) {
		t.Errorf("expected ErrBadBlockTime, got %v", err)
	}
}

func TestParamsValidate_OutOfOrderHeights(t *testing.T) {
	p := Params{
		Mode:      BacktestingMode{},
		Heights:   map[int]domain.Height{0: 110, 1: 100},
		BlockTime: 13,
	}
	if err := p.Validate(); !errors.Is(err, validation.ErrHeightsOutOfOrder) {
		t.Errorf("expected ErrHeightsOutOfOrder, got %v", err)
	}
}

func TestParamsValidate_EmptyBacktestingDataAllowed(t *testing.T) {
	p := Params{
		Mode:                   BacktestingMode{},
		ExtrapolationTimedelta: 3600,
	}
	if err := p.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestParamsValidate_ValidBundles(t *testing.T) {
	extrapolation := Params{
		Mode: ExtrapolationMode{
			Predictor:        WindowPredictor{},
			UserActionParams: UserActionParams{MinHistory: 1, Window: 6},
		},
		ExtrapolationTimedelta: 3600,
	}
	if err := extrapolation.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	backtesting := Params{
		Mode:      BacktestingMode{Data: map[int]domain.TokenState{1: {}}},
		Heights:   map[int]domain.Height{0: 100, 1: 110},
		BlockTime: 13,
	}
	if err := backtesting.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
