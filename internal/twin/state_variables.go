package twin

import (
	"fmt"

	"rai-digital-twin/internal/domain"
)

// Default initial conditions. Callers may override them through the
// initial-value table before building the state.
const (
	InitialEthPrice        domain.USDPerETH = 5.0
	InitialRedemptionPrice domain.USDPerRAI = 4.9
	InitialRedemptionRate  domain.Percentage = 0.2

	InitialUniswapEthReserve domain.ETH = 100
	InitialUniswapRaiReserve domain.RAI = 100
	InitialLocked            domain.ETH = 100
	InitialDrawn             domain.RAI = 200

	InitialPError       domain.USDPerRAI        = 0.0
	InitialIError       domain.USDSecondsPerRAI = 0.0
	InitialStabilityFee domain.Percentage       = 0.03
	InitialMarketPrice  domain.USDPerRAI        = 5.1
)

// InitialValue is one named initial state variable with its unit tag. The
// unit is carried for documentation and table validation; the table is
// flattened to plain values when the state is built.
type InitialValue struct {
	Value float64
	Unit  string
}

// DefaultCDPs returns the seed CDP population: a single protocol-wide
// aggregate position.
func DefaultCDPs() []domain.CDPAggregate {
	return []domain.CDPAggregate{{
		Open:   1,
		Time:   0,
		Locked: InitialLocked,
		Drawn:  InitialDrawn,
	}}
}

// DefaultStateVariables returns the initial-value table for every state
// variable except the CDP population and the aggregates derived from it.
func DefaultStateVariables() map[string]InitialValue {
	return map[string]InitialValue{
		// Time states
		domain.ColTimedelta:      {0, domain.UnitSeconds},
		domain.ColSecondsPassed:  {0, domain.UnitSeconds},
		domain.ColCumulativeTime: {0, domain.UnitSeconds},
		domain.ColBlockheight:    {0, domain.UnitHeight},

		// Exogenous states
		domain.ColEthPrice: {float64(InitialEthPrice), domain.UnitUSDPerETH},

		// ETH collateral states
		domain.ColEthFreed:  {0, domain.UnitETH},
		domain.ColEthBitten: {0, domain.UnitETH},

		// Principal debt states
		domain.ColRaiWiped:  {0, domain.UnitRAI},
		domain.ColRaiBitten: {0, domain.UnitRAI},

		// Accrued interest states
		domain.ColAccruedInterest: {0, domain.UnitRAI},
		domain.ColInterestBitten:  {0, domain.UnitRAI},
		domain.ColW1:              {0, domain.UnitRAI},
		domain.ColW2:              {0, domain.UnitRAI},
		domain.ColW3:              {0, domain.UnitRAI},
		domain.ColSystemRevenue:   {0, domain.UnitRAI},

		// System states
		domain.ColStabilityFee:    {float64(InitialStabilityFee), domain.UnitPercentage},
		domain.ColMarketPriceTWAP: {float64(InitialMarketPrice), domain.UnitUSDPerRAI},
		domain.ColRedemptionPrice: {float64(InitialRedemptionPrice), domain.UnitUSDPerRAI},
		domain.ColRedemptionRate:  {float64(InitialRedemptionRate), domain.UnitPercentage},

		// Controller states
		domain.ColErrorStar:         {float64(InitialPError), domain.UnitUSDPerRAI},
		domain.ColErrorStarIntegral: {float64(InitialIError), domain.UnitUSDSecondsPerRAI},

		// Uniswap states
		domain.ColMarketSlippage: {0, domain.UnitPercentage},
		domain.ColRAIBalance:     {float64(InitialUniswapRaiReserve), domain.UnitRAI},
		domain.ColETHBalance:     {float64(InitialUniswapEthReserve), domain.UnitETH},
	}
}

// BuildInitialState flattens an initial-value table and a CDP population
// into the typed simulation state. The eth_collateral and principal_debt
// aggregates are derived by summing the locked and drawn columns over the
// whole CDP population; the summation stays general even when only one
// aggregate row is seeded. Unknown variable names are rejected.
func BuildInitialState(table map[string]InitialValue, cdps []domain.CDPAggregate) (domain.SimulationState, error) {
	var s domain.SimulationState

	for name, iv := range table {
		if err := setStateVariable(&s, name, iv.Value); err != nil {
			return domain.SimulationState{}, err
		}
	}

	s.CDPs = make([]domain.CDPAggregate, len(cdps))
	copy(s.CDPs, cdps)

	ethCollateral := domain.TotalLocked(s.CDPs)
	principalDebt := domain.TotalDrawn(s.CDPs)

	s.EthCollateral = ethCollateral
	s.EthLocked = ethCollateral
	s.PrincipalDebt = principalDebt
	s.RaiDrawn = principalDebt

	s.TokenState = domain.TokenState{
		RaiReserve: s.RAIBalance,
		EthReserve: s.ETHBalance,
		RaiDebt:    principalDebt,
		EthLocked:  ethCollateral,
	}

	return s, nil
}

// DefaultInitialState builds the initial state from the default tables.
func DefaultInitialState() domain.SimulationState {
	s, err := BuildInitialState(DefaultStateVariables(), DefaultCDPs())
	if err != nil {
		// the default table only contains known names
		panic(err)
	}
	return s
}

// setStateVariable assigns one named initial value to its typed field.
func setStateVariable(s *domain.SimulationState, name string, v float64) error {
	switch name {
	case domain.ColTimestep:
		s.Timestep = int(v)
	case domain.ColTimedelta:
		s.Timedelta = domain.Seconds(v)
	case domain.ColTimedeltaInHours:
		s.TimedeltaInHours = v
	case domain.ColSecondsPassed:
		s.SecondsPassed = domain.Seconds(v)
	case domain.ColCumulativeTime:
		s.CumulativeTime = domain.Seconds(v)
	case domain.ColBlockheight:
		s.Blockheight = domain.Height(v)
	case domain.ColEthPrice:
		s.EthPrice = domain.USDPerETH(v)
	case domain.ColEthFreed:
		s.EthFreed = domain.ETH(v)
	case domain.ColEthBitten:
		s.EthBitten = domain.ETH(v)
	case domain.ColRaiWiped:
		s.RaiWiped = domain.RAI(v)
	case domain.ColRaiBitten:
		s.RaiBitten = domain.RAI(v)
	case domain.ColAccruedInterest:
		s.AccruedInterest = domain.RAI(v)
	case domain.ColInterestBitten:
		s.InterestBitten = domain.RAI(v)
	case domain.ColW1:
		s.W1 = domain.RAI(v)
	case domain.ColW2:
		s.W2 = domain.RAI(v)
	case domain.ColW3:
		s.W3 = domain.RAI(v)
	case domain.ColSystemRevenue:
		s.SystemRevenue = domain.RAI(v)
	case domain.ColStabilityFee:
		s.StabilityFee = domain.Percentage(v)
	case domain.ColMarketPriceTWAP:
		s.MarketPriceTWAP = domain.USDPerRAI(v)
	case domain.ColRedemptionPrice:
		s.RedemptionPrice = domain.USDPerRAI(v)
	case domain.ColRedemptionRate:
		s.RedemptionRate = domain.Percentage(v)
	case domain.ColErrorStar:
		s.ErrorStar = domain.USDPerRAI(v)
	case domain.ColErrorStarIntegral:
		s.ErrorStarIntegral = domain.USDSecondsPerRAI(v)
	case domain.ColMarketSlippage:
		s.MarketSlippage = domain.Percentage(v)
	case domain.ColRAIBalance:
		s.RAIBalance = domain.RAI(v)
	case domain.ColETHBalance:
		s.ETHBalance = domain.ETH(v)
	default:
		return fmt.Errorf("unknown state variable %q", name)
	}
	return nil
}
