package subgraph

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"rai-digital-twin/internal/domain"
)

// secondsPerYear converts annualized redemption rates to per-second form.
const secondsPerYear = 31536000.0

// ErrEmptyDataset is returned when the joined historical data has no rows.
var ErrEmptyDataset = errors.New("subgraph: empty historical dataset")

// GroundTruthRecord is one joined historical observation: hourly market
// data, the system state and the safe aggregates at the same block.
type GroundTruthRecord struct {
	Timestamp       int64
	BlockNumber     int64
	MarketPriceUSD  domain.USDPerRAI
	MarketPriceETH  float64
	EthPrice        domain.USDPerETH
	RedemptionPrice domain.USDPerRAI
	RedemptionRate  domain.Percentage // per-second rate
	EthInUniswap    domain.ETH
	RaiInUniswap    domain.RAI
	RaiDrawn        domain.RAI
	SafeCollateral  domain.ETH
	SafeDebt        domain.RAI
}

// GroundTruth is the historical dataset for a backtest, ordered by
// timestamp. Record 0 seeds the initial state; later records drive and
// score the simulation.
type GroundTruth struct {
	Records []GroundTruthRecord
}

// BuildGroundTruth downloads hourly stats, system states and safe
// aggregates and inner-joins them on block number. limit > 0 caps the
// hourly rows before the per-block queries.
func BuildGroundTruth(ctx context.Context, client Client, limit int) (*GroundTruth, error) {
	hourly, err := client.FetchHourlyStats(ctx)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(hourly) > limit {
		hourly = hourly[:limit]
	}

	blocks := make([]int64, len(hourly))
	for i, h := range hourly {
		blocks[i] = h.BlockNumber
	}

	snapshots, err := client.FetchSystemStates(ctx, blocks)
	if err != nil {
		return nil, err
	}
	aggregates, err := client.FetchSafeAggregates(ctx, blocks)
	if err != nil {
		return nil, err
	}

	return Join(hourly, snapshots, aggregates)
}

// Join inner-joins the three historical series on block number and
// orders the result by timestamp.
func Join(hourly []domain.MarketHourlyPoint, snapshots []domain.SystemSnapshot, aggregates []domain.SafeAggregate) (*GroundTruth, error) {
	snapByBlock := make(map[int64]domain.SystemSnapshot, len(snapshots))
	for _, s := range snapshots {
		snapByBlock[s.BlockNumber] = s
	}
	aggByBlock := make(map[int64]domain.SafeAggregate, len(aggregates))
	for _, a := range aggregates {
		aggByBlock[a.BlockNumber] = a
	}

	records := make([]GroundTruthRecord, 0, len(hourly))
	for _, h := range hourly {
		snap, ok := snapByBlock[h.BlockNumber]
		if !ok {
			continue
		}
		agg, ok := aggByBlock[h.BlockNumber]
		if !ok {
			continue
		}
		records = append(records, GroundTruthRecord{
			Timestamp:       h.Timestamp,
			BlockNumber:     h.BlockNumber,
			MarketPriceUSD:  h.MarketPriceUSD,
			MarketPriceETH:  h.MarketPriceETH,
			EthPrice:        h.EthPrice,
			RedemptionPrice: snap.RedemptionPrice,
			RedemptionRate:  perSecondRate(snap.RedemptionRateAnnualized),
			EthInUniswap:    snap.EthInUniswap,
			RaiInUniswap:    snap.RaiInUniswap,
			RaiDrawn:        snap.RaiDrawn,
			SafeCollateral:  agg.Collateral,
			SafeDebt:        agg.Debt,
		})
	}
	if len(records) == 0 {
		return nil, ErrEmptyDataset
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Timestamp < records[j].Timestamp
	})
	return &GroundTruth{Records: records}, nil
}

// perSecondRate converts an annualized compounding rate to the
// equivalent per-second rate.
func perSecondRate(annualized domain.Percentage) domain.Percentage {
	if annualized <= 0 {
		return 0
	}
	return domain.Percentage(math.Pow(float64(annualized), 1.0/secondsPerYear) - 1)
}

// Heights returns the block height of each timestep, record 0 included,
// so the first simulated step sees the height delta between the first
// two observations.
func (g *GroundTruth) Heights() map[int]domain.Height {
	heights := make(map[int]domain.Height, len(g.Records))
	for t, r := range g.Records {
		heights[t] = domain.Height(r.BlockNumber)
	}
	return heights
}

// BacktestingData returns the observed token state per simulated
// timestep (1..N-1).
func (g *GroundTruth) BacktestingData() map[int]domain.TokenState {
	data := make(map[int]domain.TokenState, len(g.Records))
	for t := 1; t < len(g.Records); t++ {
		r := g.Records[t]
		data[t] = domain.TokenState{
			RaiReserve: r.RaiInUniswap,
			EthReserve: r.EthInUniswap,
			RaiDebt:    r.SafeDebt,
			EthLocked:  r.SafeCollateral,
		}
	}
	return data
}

// Trajectory projects the scored columns of records 1..N-1 into a
// trajectory aligned with a single-run simulation output.
func (g *GroundTruth) Trajectory() (*domain.Trajectory, error) {
	if len(g.Records) < 2 {
		return nil, ErrEmptyDataset
	}
	n := len(g.Records) - 1
	index := make([]domain.StepIndex, n)
	redemptionPrice := make([]float64, n)
	redemptionRate := make([]float64, n)
	for t := 1; t < len(g.Records); t++ {
		index[t-1] = domain.StepIndex{Run: 0, Timestep: t}
		redemptionPrice[t-1] = float64(g.Records[t].RedemptionPrice)
		redemptionRate[t-1] = float64(g.Records[t].RedemptionRate)
	}
	columns := map[string][]float64{
		domain.ColRedemptionPrice: redemptionPrice,
		domain.ColRedemptionRate:  redemptionRate,
	}
	traj, err := domain.NewTrajectory(index, columns)
	if err != nil {
		return nil, fmt.Errorf("build ground truth trajectory: %w", err)
	}
	return traj, nil
}

// InitialState overrides base with the first observation so the run
// starts from measured conditions.
func (g *GroundTruth) InitialState(base domain.SimulationState) (domain.SimulationState, error) {
	if len(g.Records) == 0 {
		return domain.SimulationState{}, ErrEmptyDataset
	}
	r := g.Records[0]

	state := base
	state.SecondsPassed = domain.Seconds(r.Timestamp)
	state.Blockheight = domain.Height(r.BlockNumber)
	state.EthPrice = r.EthPrice
	state.MarketPriceTWAP = r.MarketPriceUSD
	state.RedemptionPrice = r.RedemptionPrice
	state.RedemptionRate = r.RedemptionRate
	state.TokenState = domain.TokenState{
		RaiReserve: r.RaiInUniswap,
		EthReserve: r.EthInUniswap,
		RaiDebt:    r.SafeDebt,
		EthLocked:  r.SafeCollateral,
	}
	state.RAIBalance = r.RaiInUniswap
	state.ETHBalance = r.EthInUniswap
	state.EthLocked = r.SafeCollateral
	state.EthCollateral = state.EthLocked - state.EthFreed - state.EthBitten
	state.PrincipalDebt = r.SafeDebt
	return state, nil
}

// Steps is the number of simulated timesteps the dataset supports.
func (g *GroundTruth) Steps() int {
	if len(g.Records) < 2 {
		return 0
	}
	return len(g.Records) - 1
}
