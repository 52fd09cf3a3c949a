package domain

// Quantity types for physical and economic units. Arithmetic is ordinary
// real-number arithmetic; the distinct types exist so a value in one unit
// cannot be assigned to a field in another without an explicit conversion.
type (
	// ETH is an amount of ether collateral.
	ETH float64

	// RAI is an amount of the system coin.
	RAI float64

	// USDPerETH is an ether price in US dollars.
	USDPerETH float64

	// USDPerRAI is a coin price in US dollars.
	USDPerRAI float64

	// Percentage is a dimensionless rate (0.03 == 3%).
	Percentage float64

	// Seconds is elapsed wall-clock time.
	Seconds float64

	// USDSecondsPerRAI is a price error integrated over time.
	USDSecondsPerRAI float64

	// Height is an Ethereum block height.
	Height float64
)

// Unit tags used by the initial-value table.
const (
	UnitETH              = "ETH"
	UnitRAI              = "RAI"
	UnitUSDPerETH        = "USD/ETH"
	UnitUSDPerRAI        = "USD/RAI"
	UnitPercentage       = "percentage"
	UnitSeconds          = "seconds"
	UnitUSDSecondsPerRAI = "USD*seconds/RAI"
	UnitHeight           = "height"
	UnitCount            = "count"
)
