package domain

// SimulationState is the full system state threaded through the step
// function. It is a value type: reducers copy it and return a new snapshot,
// so the prior step's state stays immutable history. Every field present at
// initialization stays present for the whole run.
type SimulationState struct {
	// Time counters
	Timestep         int
	Timedelta        Seconds
	TimedeltaInHours float64
	SecondsPassed    Seconds
	CumulativeTime   Seconds
	Blockheight      Height

	// Exogenous price
	EthPrice USDPerETH

	// CDP and debt aggregates
	CDPs          []CDPAggregate
	EthCollateral ETH
	EthLocked     ETH
	EthFreed      ETH
	EthBitten     ETH
	PrincipalDebt RAI
	RaiDrawn      RAI
	RaiWiped      RAI
	RaiBitten     RAI

	// Accrued interest aggregates
	AccruedInterest RAI
	InterestBitten  RAI
	W1              RAI
	W2              RAI
	W3              RAI
	SystemRevenue   RAI

	// Controller and system state
	StabilityFee      Percentage
	MarketPriceTWAP   USDPerRAI
	RedemptionPrice   USDPerRAI
	RedemptionRate    Percentage
	ErrorStar         USDPerRAI
	ErrorStarIntegral USDSecondsPerRAI

	// Market state
	MarketSlippage Percentage
	RAIBalance     RAI
	ETHBalance     ETH

	// Reserve snapshot owned by the current step
	TokenState TokenState
}

// Column names for the numeric state variables, as they appear in
// trajectory tables.
const (
	ColTimestep          = "timestep"
	ColTimedelta         = "timedelta"
	ColTimedeltaInHours  = "timedelta_in_hours"
	ColSecondsPassed     = "seconds_passed"
	ColCumulativeTime    = "cumulative_time"
	ColBlockheight       = "blockheight"
	ColEthPrice          = "eth_price"
	ColEthCollateral     = "eth_collateral"
	ColEthLocked         = "eth_locked"
	ColEthFreed          = "eth_freed"
	ColEthBitten         = "eth_bitten"
	ColPrincipalDebt     = "principal_debt"
	ColRaiDrawn          = "rai_drawn"
	ColRaiWiped          = "rai_wiped"
	ColRaiBitten         = "rai_bitten"
	ColAccruedInterest   = "accrued_interest"
	ColInterestBitten    = "interest_bitten"
	ColW1                = "w_1"
	ColW2                = "w_2"
	ColW3                = "w_3"
	ColSystemRevenue     = "system_revenue"
	ColStabilityFee      = "stability_fee"
	ColMarketPriceTWAP   = "market_price_twap"
	ColRedemptionPrice   = "redemption_price"
	ColRedemptionRate    = "redemption_rate"
	ColErrorStar         = "error_star"
	ColErrorStarIntegral = "error_star_integral"
	ColMarketSlippage    = "market_slippage"
	ColRAIBalance        = "RAI_balance"
	ColETHBalance        = "ETH_balance"
	ColRaiReserve        = "rai_reserve"
	ColEthReserve        = "eth_reserve"
	ColRaiDebt           = "rai_debt"
	ColTokenEthLocked    = "token_eth_locked"
)

// stateColumns lists every numeric column in deterministic order.
var stateColumns = []string{
	ColTimestep, ColTimedelta, ColTimedeltaInHours, ColSecondsPassed,
	ColCumulativeTime, ColBlockheight, ColEthPrice, ColEthCollateral,
	ColEthLocked, ColEthFreed, ColEthBitten, ColPrincipalDebt, ColRaiDrawn,
	ColRaiWiped, ColRaiBitten, ColAccruedInterest, ColInterestBitten,
	ColW1, ColW2, ColW3, ColSystemRevenue, ColStabilityFee,
	ColMarketPriceTWAP, ColRedemptionPrice, ColRedemptionRate,
	ColErrorStar, ColErrorStarIntegral, ColMarketSlippage,
	ColRAIBalance, ColETHBalance, ColRaiReserve, ColEthReserve,
	ColRaiDebt, ColTokenEthLocked,
}

// StateColumns returns the numeric column names in deterministic order.
func StateColumns() []string {
	out := make([]string, len(stateColumns))
	copy(out, stateColumns)
	return out
}

// Value returns the numeric state variable for a column name. The second
// return is false for unknown columns. This is the adapter used at the
// scheduler and loss-computation boundary, where a generic name-indexed
// view of the typed record is required.
func (s SimulationState) Value(column string) (float64, bool) {
	switch column {
	case ColTimestep:
		return float64(s.Timestep), true
	case ColTimedelta:
		return float64(s.Timedelta), true
	case ColTimedeltaInHours:
		return s.TimedeltaInHours, true
	case ColSecondsPassed:
		return float64(s.SecondsPassed), true
	case ColCumulativeTime:
		return float64(s.CumulativeTime), true
	case ColBlockheight:
		return float64(s.Blockheight), true
	case ColEthPrice:
		return float64(s.EthPrice), true
	case ColEthCollateral:
		return float64(s.EthCollateral), true
	case ColEthLocked:
		return float64(s.EthLocked), true
	case ColEthFreed:
		return float64(s.EthFreed), true
	case ColEthBitten:
		return float64(s.EthBitten), true
	case ColPrincipalDebt:
		return float64(s.PrincipalDebt), true
	case ColRaiDrawn:
		return float64(s.RaiDrawn), true
	case ColRaiWiped:
		return float64(s.RaiWiped), true
	case ColRaiBitten:
		return float64(s.RaiBitten), true
	case ColAccruedInterest:
		return float64(s.AccruedInterest), true
	case ColInterestBitten:
		return float64(s.InterestBitten), true
	case ColW1:
		return float64(s.W1), true
	case ColW2:
		return float64(s.W2), true
	case ColW3:
		return float64(s.W3), true
	case ColSystemRevenue:
		return float64(s.SystemRevenue), true
	case ColStabilityFee:
		return float64(s.StabilityFee), true
	case ColMarketPriceTWAP:
		return float64(s.MarketPriceTWAP), true
	case ColRedemptionPrice:
		return float64(s.RedemptionPrice), true
	case ColRedemptionRate:
		return float64(s.RedemptionRate), true
	case ColErrorStar:
		return float64(s.ErrorStar), true
	case ColErrorStarIntegral:
		return float64(s.ErrorStarIntegral), true
	case ColMarketSlippage:
		return float64(s.MarketSlippage), true
	case ColRAIBalance:
		return float64(s.RAIBalance), true
	case ColETHBalance:
		return float64(s.ETHBalance), true
	case ColRaiReserve:
		return float64(s.TokenState.RaiReserve), true
	case ColEthReserve:
		return float64(s.TokenState.EthReserve), true
	case ColRaiDebt:
		return float64(s.TokenState.RaiDebt), true
	case ColTokenEthLocked:
		return float64(s.TokenState.EthLocked), true
	default:
		return 0, false
	}
}

// AsMap flattens the numeric state variables into a generic mapping.
func (s SimulationState) AsMap() map[string]float64 {
	out := make(map[string]float64, len(stateColumns))
	for _, col := range stateColumns {
		v, _ := s.Value(col)
		out[col] = v
	}
	return out
}
