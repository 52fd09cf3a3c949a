package domain

import "testing"

func TestSimulationStateValue(t *testing.T) {
	s := SimulationState{
		Timestep:        3,
		SecondsPassed:   7200,
		RedemptionPrice: 3.14,
		TokenState:      TokenState{RaiReserve: 42, EthLocked: 8},
	}

	cases := []struct {
		column string
		want   float64
	}{
		{ColTimestep, 3},
		{ColSecondsPassed, 7200},
		{ColRedemptionPrice, 3.14},
		{ColRaiReserve, 42},
		{ColTokenEthLocked, 8},
	}
	for _, c := range cases {
		got, ok := s.Value(c.column)
		if !ok {
			t.Errorf("column %q not found", c.column)
			continue
		}
		if got != c.want {
			t.Errorf("column %q: expected %v, got %v", c.column, c.want, got)
		}
	}

	if _, ok := s.Value("no_such_column"); ok {
		t.Error("expected unknown column to report not-found")
	}
}

func TestSimulationStateAsMap(t *testing.T) {
	s := SimulationState{Timestep: 5, EthPrice: 2000}

	m := s.AsMap()
	if len(m) != len(StateColumns()) {
		t.Errorf("expected %d entries, got %d", len(StateColumns()), len(m))
	}
	if m[ColTimestep] != 5 {
		t.Errorf("expected timestep 5, got %v", m[ColTimestep])
	}
	if m[ColEthPrice] != 2000 {
		t.Errorf("expected eth_price 2000, got %v", m[ColEthPrice])
	}
}
