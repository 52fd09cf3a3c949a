package subgraph

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"rai-digital-twin/internal/domain"
)

// systemStateRow is the raw systemState entity at one block.
type systemStateRow struct {
	CoinUniswapPair *struct {
		Reserve0 number `json:"reserve0"`
		Reserve1 number `json:"reserve1"`
	} `json:"coinUniswapPair"`
	CurrentRedemptionRate *struct {
		AnnualizedRate  number `json:"annualizedRate"`
		HourlyRate      number `json:"hourlyRate"`
		EightHourlyRate number `json:"eightHourlyRate"`
	} `json:"currentRedemptionRate"`
	CurrentRedemptionPrice *struct {
		Value number `json:"value"`
	} `json:"currentRedemptionPrice"`
	ERC20CoinTotalSupply  number `json:"erc20CoinTotalSupply"`
	GlobalDebt            number `json:"globalDebt"`
	GlobalDebtCeiling     number `json:"globalDebtCeiling"`
	TotalActiveSafeCount  number `json:"totalActiveSafeCount"`
	SystemSurplus         number `json:"systemSurplus"`
	DebtAvailableToSettle number `json:"debtAvailableToSettle"`
}

type systemStateData struct {
	SystemState *systemStateRow `json:"systemState"`
}

// FetchSystemStates retrieves the protocol state at each requested
// block. Rows missing the uniswap pair are dropped; the drop rate is
// logged when any row is lost.
func (c *HTTPClient) FetchSystemStates(ctx context.Context, blockNumbers []int64) ([]domain.SystemSnapshot, error) {
	snapshots := make([]domain.SystemSnapshot, 0, len(blockNumbers))
	dropped := 0

	for _, block := range blockNumbers {
		q := fmt.Sprintf(`{
  systemState(block: {number:%d}, id: "current") {
    coinUniswapPair {
      reserve0
      reserve1
    }
    currentRedemptionRate {
      eightHourlyRate
      annualizedRate
      hourlyRate
    }
    currentRedemptionPrice {
      value
    }
    erc20CoinTotalSupply
    globalDebt
    globalDebtCeiling
    totalActiveSafeCount
    systemSurplus
    debtAvailableToSettle
  }
}`, block)

		var data systemStateData
		if err := c.query(ctx, q, &data); err != nil {
			return nil, fmt.Errorf("fetch system state at block %d: %w", block, err)
		}

		row := data.SystemState
		if row == nil || row.CoinUniswapPair == nil {
			dropped++
			continue
		}

		snap := domain.SystemSnapshot{
			BlockNumber:           block,
			GlobalDebt:            domain.RAI(row.GlobalDebt),
			GlobalDebtCeiling:     domain.RAI(row.GlobalDebtCeiling),
			SystemSurplus:         domain.RAI(row.SystemSurplus),
			DebtAvailableToSettle: domain.RAI(row.DebtAvailableToSettle),
			ActiveSafeCount:       int(row.TotalActiveSafeCount),
			EthInUniswap:          domain.ETH(row.CoinUniswapPair.Reserve1),
			RaiInUniswap:          domain.RAI(row.CoinUniswapPair.Reserve0),
			RaiDrawn:              domain.RAI(row.ERC20CoinTotalSupply),
		}
		if row.CurrentRedemptionPrice != nil {
			snap.RedemptionPrice = domain.USDPerRAI(row.CurrentRedemptionPrice.Value)
		}
		if row.CurrentRedemptionRate != nil {
			snap.RedemptionRateAnnualized = domain.Percentage(row.CurrentRedemptionRate.AnnualizedRate)
			snap.RedemptionRateHourly = domain.Percentage(row.CurrentRedemptionRate.HourlyRate)
			snap.RedemptionRateEightHourly = domain.Percentage(row.CurrentRedemptionRate.EightHourlyRate)
		}
		snapshots = append(snapshots, snap)
	}

	if dropped > 0 {
		total := len(snapshots) + dropped
		c.logger.Warn("dropped system state rows with missing uniswap pair",
			zap.Int("dropped", dropped),
			zap.Float64("proportion", float64(dropped)/float64(total)))
	}

	return snapshots, nil
}
