package subgraph

import (
	"context"
	"errors"
	"math"
	"testing"

	"rai-digital-twin/internal/domain"
	"rai-digital-twin/internal/twin"
)

// fakeClient serves canned series and records the blocks requested.
type fakeClient struct {
	hourly     []domain.MarketHourlyPoint
	snapshots  []domain.SystemSnapshot
	aggregates []domain.SafeAggregate

	requestedBlocks []int64
}

func (f *fakeClient) FetchHourlyStats(ctx context.Context) ([]domain.MarketHourlyPoint, error) {
	return f.hourly, nil
}

func (f *fakeClient) FetchSystemStates(ctx context.Context, blocks []int64) ([]domain.SystemSnapshot, error) {
	f.requestedBlocks = blocks
	return f.snapshots, nil
}

func (f *fakeClient) FetchSafeAggregates(ctx context.Context, blocks []int64) ([]domain.SafeAggregate, error) {
	return f.aggregates, nil
}

var _ Client = (*fakeClient)(nil)

func sampleSeries() ([]domain.MarketHourlyPoint, []domain.SystemSnapshot, []domain.SafeAggregate) {
	hourly := []domain.MarketHourlyPoint{
		{Timestamp: 1000, BlockNumber: 100, MarketPriceUSD: 3.0, MarketPriceETH: 0.0015, EthPrice: 2000},
		{Timestamp: 4600, BlockNumber: 110, MarketPriceUSD: 3.1, MarketPriceETH: 0.00155, EthPrice: 2000},
		{Timestamp: 8200, BlockNumber: 120, MarketPriceUSD: 3.2, MarketPriceETH: 0.0016, EthPrice: 2000},
	}
	snapshots := []domain.SystemSnapshot{
		{BlockNumber: 100, RedemptionPrice: 3.01, RedemptionRateAnnualized: 1.05, EthInUniswap: 2.5, RaiInUniswap: 5000, RaiDrawn: 9000},
		{BlockNumber: 110, RedemptionPrice: 3.02, RedemptionRateAnnualized: 1.04, EthInUniswap: 2.6, RaiInUniswap: 5100, RaiDrawn: 9100},
		{BlockNumber: 120, RedemptionPrice: 3.03, RedemptionRateAnnualized: 1.03, EthInUniswap: 2.7, RaiInUniswap: 5200, RaiDrawn: 9200},
	}
	aggregates := []domain.SafeAggregate{
		{BlockNumber: 100, Collateral: 100, Debt: 8000},
		{BlockNumber: 110, Collateral: 101, Debt: 8100},
		{BlockNumber: 120, Collateral: 102, Debt: 8200},
	}
	return hourly, snapshots, aggregates
}

func TestJoin_InnerJoin(t *testing.T) {
	hourly, snapshots, aggregates := sampleSeries()

	// Block 110 loses its snapshot and block 120 its aggregate; the
	// inner join keeps only block 100.
	truth, err := Join(hourly, snapshots[:1], aggregates[:2])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(truth.Records) != 1 {
		t.Fatalf("expected 1 joined record, got %d", len(truth.Records))
	}
	r := truth.Records[0]
	if r.BlockNumber != 100 {
		t.Errorf("expected block 100, got %d", r.BlockNumber)
	}
	if r.MarketPriceUSD != 3.0 || r.RedemptionPrice != 3.01 {
		t.Errorf("unexpected joined record: %+v", r)
	}
	if r.SafeCollateral != 100 || r.SafeDebt != 8000 {
		t.Errorf("aggregates not joined: %+v", r)
	}
}

func TestJoin_SortsByTimestamp(t *testing.T) {
	hourly, snapshots, aggregates := sampleSeries()
	// Reverse the hourly order; the join result must come out sorted.
	reversed := []domain.MarketHourlyPoint{hourly[2], hourly[0], hourly[1]}

	truth, err := Join(reversed, snapshots, aggregates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 1; i < len(truth.Records); i++ {
		if truth.Records[i].Timestamp < truth.Records[i-1].Timestamp {
			t.Fatalf("records out of order at %d: %v", i, truth.Records)
		}
	}
}

func TestJoin_Empty(t *testing.T) {
	hourly, _, _ := sampleSeries()

	_, err := Join(hourly, nil, nil)
	if !errors.Is(err, ErrEmptyDataset) {
		t.Errorf("expected ErrEmptyDataset, got %v", err)
	}
}

func TestJoin_ConvertsRateToPerSecond(t *testing.T) {
	hourly, snapshots, aggregates := sampleSeries()

	truth, err := Join(hourly[:1], snapshots[:1], aggregates[:1])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := math.Pow(1.05, 1.0/secondsPerYear) - 1
	got := float64(truth.Records[0].RedemptionRate)
	if math.Abs(got-want) > 1e-18 {
		t.Errorf("expected per-second rate %v, got %v", want, got)
	}
}

func TestPerSecondRate(t *testing.T) {
	if got := perSecondRate(0); got != 0 {
		t.Errorf("expected 0 for non-positive rate, got %v", got)
	}
	if got := perSecondRate(-1); got != 0 {
		t.Errorf("expected 0 for negative rate, got %v", got)
	}
	if got := perSecondRate(1); got != 0 {
		t.Errorf("a unit annualized rate is zero per second, got %v", got)
	}
	if got := perSecondRate(1.05); got <= 0 {
		t.Errorf("expected positive per-second rate, got %v", got)
	}
	if got := perSecondRate(0.95); got >= 0 {
		t.Errorf("expected negative per-second rate, got %v", got)
	}
}

func TestBuildGroundTruth_Limit(t *testing.T) {
	hourly, snapshots, aggregates := sampleSeries()
	client := &fakeClient{hourly: hourly, snapshots: snapshots, aggregates: aggregates}

	truth, err := BuildGroundTruth(context.Background(), client, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(client.requestedBlocks) != 2 {
		t.Errorf("limit must cap per-block queries, requested %v", client.requestedBlocks)
	}
	if len(truth.Records) != 2 {
		t.Errorf("expected 2 records, got %d", len(truth.Records))
	}
}

func TestGroundTruth_Heights(t *testing.T) {
	hourly, snapshots, aggregates := sampleSeries()
	truth, err := Join(hourly, snapshots, aggregates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	heights := truth.Heights()
	want := map[int]domain.Height{0: 100, 1: 110, 2: 120}
	if len(heights) != len(want) {
		t.Fatalf("expected %d heights, got %v", len(want), heights)
	}
	for k, v := range want {
		if heights[k] != v {
			t.Errorf("timestep %d: expected height %v, got %v", k, v, heights[k])
		}
	}
}

func TestGroundTruth_BacktestingData(t *testing.T) {
	hourly, snapshots, aggregates := sampleSeries()
	truth, err := Join(hourly, snapshots, aggregates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data := truth.BacktestingData()
	if len(data) != 2 {
		t.Fatalf("expected data for timesteps 1..2, got %v", data)
	}
	if _, ok := data[0]; ok {
		t.Error("record 0 seeds the initial state and must not appear in the data")
	}

	want := domain.TokenState{RaiReserve: 5100, EthReserve: 2.6, RaiDebt: 8100, EthLocked: 101}
	if data[1] != want {
		t.Errorf("timestep 1: expected %+v, got %+v", want, data[1])
	}
}

func TestGroundTruth_Trajectory(t *testing.T) {
	hourly, snapshots, aggregates := sampleSeries()
	truth, err := Join(hourly, snapshots, aggregates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	traj, err := truth.Trajectory()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if traj.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", traj.Len())
	}
	index := traj.Index()
	if index[0] != (domain.StepIndex{Run: 0, Timestep: 1}) ||
		index[1] != (domain.StepIndex{Run: 0, Timestep: 2}) {
		t.Errorf("unexpected index: %v", index)
	}

	prices, err := traj.Column(domain.ColRedemptionPrice)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prices[0] != 3.02 || prices[1] != 3.03 {
		t.Errorf("unexpected redemption_price column: %v", prices)
	}
	if !traj.HasColumn(domain.ColRedemptionRate) {
		t.Error("missing redemption_rate column")
	}
}

func TestGroundTruth_TrajectoryTooShort(t *testing.T) {
	truth := &GroundTruth{Records: []GroundTruthRecord{{Timestamp: 1}}}
	if _, err := truth.Trajectory(); !errors.Is(err, ErrEmptyDataset) {
		t.Errorf("expected ErrEmptyDataset, got %v", err)
	}
}

func TestGroundTruth_InitialState(t *testing.T) {
	hourly, snapshots, aggregates := sampleSeries()
	truth, err := Join(hourly, snapshots, aggregates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	state, err := truth.InitialState(twin.DefaultInitialState())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if state.Blockheight != 100 {
		t.Errorf("expected blockheight 100, got %v", state.Blockheight)
	}
	if state.SecondsPassed != 1000 {
		t.Errorf("expected seconds_passed 1000, got %v", state.SecondsPassed)
	}
	if state.MarketPriceTWAP != 3.0 {
		t.Errorf("expected TWAP 3.0, got %v", state.MarketPriceTWAP)
	}
	if state.RedemptionPrice != 3.01 {
		t.Errorf("expected redemption price 3.01, got %v", state.RedemptionPrice)
	}
	if state.RAIBalance != 5000 || state.ETHBalance != 2.5 {
		t.Errorf("pool reserves not seeded: %v / %v", state.RAIBalance, state.ETHBalance)
	}
	if state.EthCollateral != state.EthLocked-state.EthFreed-state.EthBitten {
		t.Errorf("eth_collateral %v breaks the conservation identity", state.EthCollateral)
	}
	// Untouched defaults survive the override.
	if state.StabilityFee != twin.InitialStabilityFee {
		t.Errorf("stability fee must keep its default, got %v", state.StabilityFee)
	}
}

func TestGroundTruth_InitialStateEmpty(t *testing.T) {
	truth := &GroundTruth{}
	if _, err := truth.InitialState(twin.DefaultInitialState()); !errors.Is(err, ErrEmptyDataset) {
		t.Errorf("expected ErrEmptyDataset, got %v", err)
	}
}

func TestGroundTruth_Steps(t *testing.T) {
	hourly, snapshots, aggregates := sampleSeries()
	truth, err := Join(hourly, snapshots, aggregates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := truth.Steps(); got != 2 {
		t.Errorf("expected 2 steps, got %d", got)
	}
	if got := (&GroundTruth{}).Steps(); got != 0 {
		t.Errorf("expected 0 steps for an empty dataset, got %d", got)
	}
}
