package twin

import (
	"math"

	"rai-digital-twin/internal/domain"
)

// Default controller gains. Proportional-only, expressed as per-second
// rate per dollar of error.
const (
	DefaultKp = 2e-7
	DefaultKi = 0.0
)

// ControllerParams are the redemption-rate feedback gains, both expressed
// per second of elapsed time.
type ControllerParams struct {
	Kp float64 // proportional gain
	Ki float64 // integral gain
}

// ControllerSignal carries the controller state proposed for the next step.
type ControllerSignal struct {
	ErrorStar         domain.USDPerRAI
	ErrorStarIntegral domain.USDSecondsPerRAI
	RedemptionRate    domain.Percentage
	RedemptionPrice   domain.USDPerRAI
}

// ResolveController computes the redemption-rate feedback update for one
// step: the price error is the gap between redemption price and the market
// TWAP, the error integral accumulates by the trapezoid rule over the
// elapsed seconds, and the per-second redemption rate is Kp*e + Ki*int(e).
// The redemption price compounds by the rate over the elapsed time.
func ResolveController(p ControllerParams, state domain.SimulationState, sig TimeSignal) ControllerSignal {
	errNow := state.RedemptionPrice - state.MarketPriceTWAP

	dt := float64(sig.Timedelta)
	integral := state.ErrorStarIntegral +
		domain.USDSecondsPerRAI(float64(errNow+state.ErrorStar)/2*dt)

	rate := domain.Percentage(p.Kp*float64(errNow) + p.Ki*float64(integral))

	price := state.RedemptionPrice
	if dt > 0 {
		price = domain.USDPerRAI(float64(price) * math.Pow(1+float64(rate), dt))
	}

	return ControllerSignal{
		ErrorStar:         errNow,
		ErrorStarIntegral: integral,
		RedemptionRate:    rate,
		RedemptionPrice:   price,
	}
}

// ApplyController folds a controller signal into the state.
func ApplyController(state domain.SimulationState, sig ControllerSignal) domain.SimulationState {
	next := state
	next.ErrorStar = sig.ErrorStar
	next.ErrorStarIntegral = sig.ErrorStarIntegral
	next.RedemptionRate = sig.RedemptionRate
	next.RedemptionPrice = sig.RedemptionPrice
	return next
}
