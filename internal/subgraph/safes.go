package subgraph

import (
	"context"
	"fmt"

	"rai-digital-twin/internal/domain"
)

// safeRow is one open position in the safes query.
type safeRow struct {
	Collateral number `json:"collateral"`
	Debt       number `json:"debt"`
}

type safesData struct {
	Safes []safeRow `json:"safes"`
}

// FetchSafeAggregates sums collateral and debt across all positions at
// each requested block.
func (c *HTTPClient) FetchSafeAggregates(ctx context.Context, blockNumbers []int64) ([]domain.SafeAggregate, error) {
	aggregates := make([]domain.SafeAggregate, 0, len(blockNumbers))

	for _, block := range blockNumbers {
		q := fmt.Sprintf(`{
  safes(block: {number:%d}) {
    collateral
    debt
  }
}`, block)

		var data safesData
		if err := c.query(ctx, q, &data); err != nil {
			return nil, fmt.Errorf("fetch safes at block %d: %w", block, err)
		}

		agg := domain.SafeAggregate{BlockNumber: block}
		for _, s := range data.Safes {
			agg.Collateral += domain.ETH(s.Collateral)
			agg.Debt += domain.RAI(s.Debt)
		}
		aggregates = append(aggregates, agg)
	}

	return aggregates, nil
}
