package domain

// MarketHourlyPoint is one hourly market observation from the indexer.
// Corresponds to the market_hourly table in ClickHouse.
type MarketHourlyPoint struct {
	Timestamp      int64     // Unix timestamp in seconds
	BlockNumber    int64     // Ethereum block height
	MarketPriceUSD USDPerRAI // coin price in USD (pool price * ETH median price)
	MarketPriceETH float64   // coin price in ETH (pool price)
	EthPrice       USDPerETH // derived: MarketPriceUSD / MarketPriceETH
}

// SystemSnapshot is the protocol state at one block.
// Corresponds to the system_snapshots table in ClickHouse.
type SystemSnapshot struct {
	BlockNumber               int64
	GlobalDebt                RAI
	GlobalDebtCeiling         RAI
	SystemSurplus             RAI
	DebtAvailableToSettle     RAI
	ActiveSafeCount           int
	RedemptionPrice           USDPerRAI
	RedemptionRateAnnualized  Percentage
	RedemptionRateHourly      Percentage
	RedemptionRateEightHourly Percentage
	EthInUniswap              ETH
	RaiInUniswap              RAI
	RaiDrawn                  RAI // erc20 coin total supply
}

// SafeAggregate is the summed collateral and debt across all active
// positions at one block.
// Corresponds to the safe_aggregates table in ClickHouse.
type SafeAggregate struct {
	BlockNumber int64
	Collateral  ETH
	Debt        RAI
}

// MetricLoss is one metric's scalar loss for a backtest run.
type MetricLoss struct {
	Metric string
	Loss   float64
}

// BacktestRun records one scored backtest: run metadata, per-metric losses
// and the aggregate simulation loss.
// Corresponds to the backtest_runs and metric_losses tables in PostgreSQL.
type BacktestRun struct {
	RunID        string // deterministic or caller-supplied identifier
	CreatedAt    int64  // Unix timestamp in milliseconds
	Steps        int    // timesteps simulated
	DataSource   string // where the ground truth came from
	Loss         float64
	MetricLosses []MetricLoss
}
