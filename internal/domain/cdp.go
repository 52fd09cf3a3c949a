package domain

// CDPAggregate represents the protocol-wide aggregate of all collateralized
// debt positions. All accumulator fields are non-negative and only ever grow;
// net quantities are recomputed from them, never decremented ad hoc.
type CDPAggregate struct {
	Open    int     // count of open positions
	Time    float64 // age counter
	Locked  ETH     // total ETH ever locked
	Drawn   RAI     // total RAI debt ever minted
	Wiped   RAI     // total RAI debt repaid
	Freed   ETH     // total ETH withdrawn
	WWiped  RAI     // accrued interest repaid
	Dripped RAI     // accrued interest collected
	VBitten ETH     // collateral liquidated
	UBitten RAI     // principal debt liquidated
	WBitten RAI     // accrued interest liquidated
}

// NetCollateral returns the ETH collateral currently in the position set:
// locked - freed - bitten.
func (c CDPAggregate) NetCollateral() ETH {
	return c.Locked - c.Freed - c.VBitten
}

// NetDebt returns the principal debt currently outstanding:
// drawn - wiped - bitten.
func (c CDPAggregate) NetDebt() RAI {
	return c.Drawn - c.Wiped - c.UBitten
}

// TotalLocked sums the locked column over the whole CDP population.
func TotalLocked(cdps []CDPAggregate) ETH {
	var total ETH
	for _, c := range cdps {
		total += c.Locked
	}
	return total
}

// TotalDrawn sums the drawn column over the whole CDP population.
func TotalDrawn(cdps []CDPAggregate) RAI {
	var total RAI
	for _, c := range cdps {
		total += c.Drawn
	}
	return total
}
