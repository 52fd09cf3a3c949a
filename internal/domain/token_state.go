package domain

// TokenState is a snapshot of the DEX liquidity pool and system reserves.
// A new value is produced by the reducer each step; the prior step's value
// is immutable history.
type TokenState struct {
	RaiReserve RAI // coin side of the liquidity pool
	EthReserve ETH // ether side of the liquidity pool
	RaiDebt    RAI // outstanding principal debt
	EthLocked  ETH // collateral locked in CDPs
}

// ActionState is one row of the history view handed to the user-action
// predictor: the token state of a past step plus the prices that drove it.
type ActionState struct {
	Timestep        int
	TokenState      TokenState
	EthPrice        USDPerETH
	RedemptionPrice USDPerRAI
	MarketPriceTWAP USDPerRAI
}
