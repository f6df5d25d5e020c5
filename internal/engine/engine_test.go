package engine

import (
	"errors"
	"testing"

	"github.com/talgya/simplemacro/internal/economy"
	"github.com/talgya/simplemacro/internal/ratebin"
)

func TestEngineRunsHorizonAndReports(t *testing.T) {
	eng := NewEngine(10, 3)
	var periods, reports []uint64
	eng.OnPeriod = func(p uint64) { periods = append(periods, p) }
	eng.OnReport = func(p uint64) { reports = append(reports, p) }
	eng.Run()

	if len(periods) != 10 || periods[0] != 0 || periods[9] != 9 {
		t.Fatalf("expected periods 0..9, got %v", periods)
	}
	want := []uint64{2, 5, 8}
	if len(reports) != len(want) {
		t.Fatalf("expected reports %v, got %v", want, reports)
	}
	for i := range want {
		if reports[i] != want[i] {
			t.Fatalf("expected reports %v, got %v", want, reports)
		}
	}
	if eng.Period != 10 {
		t.Fatalf("expected period counter 10, got %d", eng.Period)
	}
}

func TestEngineStop(t *testing.T) {
	eng := NewEngine(100, 0)
	eng.OnPeriod = func(p uint64) {
		if p == 4 {
			eng.Stop()
		}
	}
	eng.Run()
	if eng.Period != 5 {
		t.Fatalf("expected to stop after period 4, counter at %d", eng.Period)
	}
}

func newSim(t *testing.T, cfg Config) *Simulation {
	t.Helper()
	sim, err := NewSimulation(cfg)
	if err != nil {
		t.Fatalf("NewSimulation: %v", err)
	}
	return sim
}

func TestFullInertiaFreezesSeries(t *testing.T) {
	cfg := SmallTestConfig()
	cfg.Periods = 1000
	cfg.Bank.Params.Inertia = 1
	cfg.Household.Params.Inertia = 1
	cfg.Firm.Params.Inertia = 1
	sim := newSim(t, cfg)
	node := sim.Grid.Node(cfg.Bank.Rate)
	propensity, _ := sim.Household.Propensity(node)

	if err := sim.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	for _, m := range []economy.Metric{economy.MetricRate, economy.MetricPrice} {
		series := sim.History.Series(m)
		if len(series) != 1000 {
			t.Fatalf("expected 1000 %s observations, got %d", m, len(series))
		}
		for i, v := range series {
			if v != series[0] {
				t.Fatalf("%s changed at period %d: %f -> %f", m, i, series[0], v)
			}
		}
	}
	if got, _ := sim.Household.Propensity(node); got != propensity {
		t.Fatalf("propensity moved from %f to %f", propensity, got)
	}
	if sim.Stats.RateChanges != 0 || sim.Stats.PriceChanges != 0 {
		t.Fatalf("expected no changes, got %+v", sim.Stats)
	}
}

func TestDefaultRunStaysBounded(t *testing.T) {
	cfg := SmallTestConfig()
	sim := newSim(t, cfg)
	if err := sim.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	hi := cfg.Bank.Rate + float64(cfg.Periods)*cfg.Bank.Step
	for i, r := range sim.History.Series(economy.MetricRate) {
		if r < cfg.Bank.MinRate || r > hi {
			t.Fatalf("rate %f at period %d outside [%f, %f]", r, i, cfg.Bank.MinRate, hi)
		}
	}
	for i, a := range sim.History.Series(economy.MetricAsset) {
		if !(a > 0) {
			t.Fatalf("terminal asset %f at period %d not positive", a, i)
		}
	}
	if !(sim.Household.Asset > 0) {
		t.Fatalf("household asset %f not positive", sim.Household.Asset)
	}
	for i, p := range sim.History.Series(economy.MetricPrice) {
		if p < cfg.Firm.MinPrice {
			t.Fatalf("price %f at period %d below floor", p, i)
		}
	}
	if sim.Stats.Periods != cfg.Periods {
		t.Fatalf("expected %d periods, got %d", cfg.Periods, sim.Stats.Periods)
	}
}

func TestSameSeedReplays(t *testing.T) {
	cfg := SmallTestConfig()
	cfg.Seed = 99
	a := newSim(t, cfg)
	b := newSim(t, cfg)
	if err := a.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if err := b.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	oa, ob := a.History.All(), b.History.All()
	if len(oa) != len(ob) {
		t.Fatalf("history lengths differ: %d vs %d", len(oa), len(ob))
	}
	for i := range oa {
		if oa[i] != ob[i] {
			t.Fatalf("period %d differs: %+v vs %+v", i, oa[i], ob[i])
		}
	}
}

func TestScheduleOverridesRate(t *testing.T) {
	cfg := RegimeShiftConfig()
	cfg.Seed = 3
	cfg.Periods = 200
	cfg.ReportEvery = 0
	cfg.Schedule = []RateOverride{
		{From: 0, To: 100, Rate: 0.05},
		{From: 100, To: 200, Rate: 0.08},
	}
	sim := newSim(t, cfg)
	if err := sim.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	for i, r := range sim.History.Series(economy.MetricRate) {
		want := 0.05
		if i >= 100 {
			want = 0.08
		}
		if r != want {
			t.Fatalf("expected rate %f at period %d, got %f", want, i, r)
		}
	}
	if sim.Stats.Overrides != 200 {
		t.Fatalf("expected 200 overrides, got %d", sim.Stats.Overrides)
	}
	found := false
	for _, e := range sim.Events {
		if e.Category == "override" && e.Tick == 100 {
			found = true
		}
	}
	if !found {
		t.Fatal("expected an override event at the regime shift")
	}
}

func TestConfigErrors(t *testing.T) {
	cfg := SmallTestConfig()
	cfg.Firm.Techs = nil
	if _, err := NewSimulation(cfg); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig for empty technology set, got %v", err)
	}

	cfg = SmallTestConfig()
	cfg.RateUnit = 0
	_, err := NewSimulation(cfg)
	if !errors.Is(err, ErrConfig) || !errors.Is(err, ratebin.ErrGrid) {
		t.Fatalf("expected ErrConfig wrapping ErrGrid, got %v", err)
	}

	cfg = SmallTestConfig()
	cfg.Schedule = []RateOverride{{From: 0, To: 10, Rate: 0.05}, {From: 5, To: 20, Rate: 0.06}}
	if _, err := NewSimulation(cfg); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig for overlapping schedule, got %v", err)
	}

	cfg = SmallTestConfig()
	cfg.Household.Params.Gamma = -1
	if _, err := NewSimulation(cfg); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig for negative gamma, got %v", err)
	}
}

func TestFaultsBecomeEvents(t *testing.T) {
	sim := newSim(t, SmallTestConfig())
	sim.Household.Settle(economy.Settlement{Asset: -1})
	if err := sim.Household.Evaluate(sim.rng); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if sim.Stats.Faults != 1 || sim.Stats.FaultsByKind["non_positive_asset"] != 1 {
		t.Fatalf("expected one recorded fault, got %+v", sim.Stats)
	}
	if len(sim.Events) != 1 || sim.Events[0].Category != "fault" {
		t.Fatalf("expected one fault event, got %v", sim.Events)
	}
}

func TestSweepOrdersResultsBySeed(t *testing.T) {
	cfg := SmallTestConfig()
	cfg.Periods = 50
	seeds := []int64{11, 7, 23}

	results, err := Sweep(cfg, seeds)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if len(results) != len(seeds) {
		t.Fatalf("expected %d results, got %d", len(seeds), len(results))
	}
	for i, r := range results {
		if r.Seed != seeds[i] {
			t.Fatalf("result %d has seed %d, expected %d", i, r.Seed, seeds[i])
		}
		if r.History.Len() != 50 {
			t.Fatalf("seed %d: expected 50 observations, got %d", r.Seed, r.History.Len())
		}
	}

	cfg.Seed = 7
	solo := newSim(t, cfg)
	if err := solo.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	want, got := solo.History.All(), results[1].History.All()
	for i := range want {
		if want[i] != got[i] {
			t.Fatalf("replicate diverges from a solo run at period %d", i)
		}
	}
}

func TestSweepRejectsBadConfig(t *testing.T) {
	cfg := SmallTestConfig()
	cfg.RateMax = 0.001
	if _, err := Sweep(cfg, []int64{1}); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
}
