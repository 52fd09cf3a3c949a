package subgraph

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"rai-digital-twin/internal/domain"
)

// hourlyStat is the raw hourlyStats row.
type hourlyStat struct {
	Timestamp      number `json:"timestamp"`
	BlockNumber    number `json:"blockNumber"`
	MarketPriceUSD number `json:"marketPriceUsd"`
	MarketPriceETH number `json:"marketPriceEth"`
}

type hourlyStatsData struct {
	HourlyStats []hourlyStat `json:"hourlyStats"`
}

// FetchHourlyStats pages through all hourlyStats entities and derives
// the ETH median price from the two market prices. Pagination stops at
// the first empty page.
func (c *HTTPClient) FetchHourlyStats(ctx context.Context) ([]domain.MarketHourlyPoint, error) {
	var points []domain.MarketHourlyPoint

	for skip := 0; ; skip += c.pageSize {
		q := fmt.Sprintf(`query {
  hourlyStats(first: %d, skip: %d) {
    timestamp
    blockNumber
    marketPriceUsd
    marketPriceEth
  }
}`, c.pageSize, skip)

		var data hourlyStatsData
		if err := c.query(ctx, q, &data); err != nil {
			return nil, fmt.Errorf("fetch hourly stats at offset %d: %w", skip, err)
		}

		if len(data.HourlyStats) == 0 {
			break
		}

		for _, s := range data.HourlyStats {
			p := domain.MarketHourlyPoint{
				Timestamp:      int64(s.Timestamp),
				BlockNumber:    int64(s.BlockNumber),
				MarketPriceUSD: domain.USDPerRAI(s.MarketPriceUSD),
				MarketPriceETH: float64(s.MarketPriceETH),
			}
			if p.MarketPriceETH != 0 {
				p.EthPrice = domain.USDPerETH(float64(s.MarketPriceUSD) / p.MarketPriceETH)
			}
			points = append(points, p)
		}
	}

	c.logger.Info("fetched hourly stats", zap.Int("points", len(points)))
	return points, nil
}
