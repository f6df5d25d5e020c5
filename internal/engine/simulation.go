// Simulation ties the three agents together and runs them each period.
package engine

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/talgya/simplemacro/internal/agents"
	"github.com/talgya/simplemacro/internal/economy"
	"github.com/talgya/simplemacro/internal/entropy"
	"github.com/talgya/simplemacro/internal/ratebin"
)

// maxEvents bounds the in-memory event log; older events are dropped.
const maxEvents = 1000

// Drift noise is seeded from its own stream so it never consumes draws from
// the agents' source.
const driftStream = 1

// Simulation holds the complete economy state and wires agents together.
type Simulation struct {
	Config     Config
	Seed       int64 // Seed actually used
	Grid       ratebin.Grid
	Bank       *agents.Bank
	Household  *agents.Household
	Firm       *agents.Firm
	History    *economy.History
	Events     []Event // Recent events, oldest first
	LastPeriod uint64  // Most recent period processed

	Stats SimStats

	rng    *rand.Rand
	logger agents.LogObserver
}

// Event is a notable occurrence in the economy.
type Event struct {
	Tick        uint64 `json:"tick"`
	Description string `json:"description"`
	Category    string `json:"category"` // "fault", "override"
}

// SimStats tracks aggregate run statistics.
type SimStats struct {
	Periods      uint64         `json:"periods"`
	RateChanges  int            `json:"rate_changes"`
	PriceChanges int            `json:"price_changes"`
	Overrides    int            `json:"overrides"`
	Faults       int            `json:"faults"`
	FaultsByKind map[string]int `json:"faults_by_kind"`
}

// NewSimulation validates cfg and builds the agents. Initial firm prices and
// technology are drawn from the simulation's source.
func NewSimulation(cfg Config) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	grid, err := ratebin.NewGrid(cfg.RateUnit, cfg.RateMax)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	rng, seed := entropy.NewSource(cfg.Seed)
	s := &Simulation{
		Config:  cfg,
		Seed:    seed,
		Grid:    grid,
		History: economy.NewHistory(int(cfg.Periods)),
		rng:     rng,
		Stats:   SimStats{FaultsByKind: make(map[string]int)},
	}

	if s.Bank, err = agents.NewBank(cfg.Bank, grid, s.History, s); err != nil {
		return nil, fmt.Errorf("%w: bank: %w", ErrConfig, err)
	}
	if s.Household, err = agents.NewHousehold(cfg.Household, grid, s); err != nil {
		return nil, fmt.Errorf("%w: household: %w", ErrConfig, err)
	}
	drift := entropy.NewDrift(entropy.Derive(seed, driftStream), cfg.Firm.TechDrift, cfg.Firm.DriftScale)
	if s.Firm, err = agents.NewFirm(cfg.Firm, grid, rng, drift, s); err != nil {
		return nil, fmt.Errorf("%w: firm: %w", ErrConfig, err)
	}
	return s, nil
}

// Observe records a recovered domain fault as an event and logs it.
func (s *Simulation) Observe(d agents.Diagnostic) {
	s.Stats.Faults++
	s.Stats.FaultsByKind[string(d.Kind)]++
	s.logger.Observe(d)
	s.record(Event{
		Tick:        s.LastPeriod,
		Description: d.String(),
		Category:    "fault",
	})
}

func (s *Simulation) record(e Event) {
	s.Events = append(s.Events, e)
	if len(s.Events) > maxEvents {
		s.Events = s.Events[len(s.Events)-maxEvents:]
	}
}

// Step runs one period in the fixed order: rate, capital demand, price,
// consumption, lending, production, settlement, household evaluation.
func (s *Simulation) Step(period uint64) error {
	s.LastPeriod = period

	rate := s.Bank.SetInterest(s.rng)
	if r, ok := s.Config.override(period); ok {
		rate = s.Bank.Override(r)
		s.Stats.Overrides++
		if s.Bank.ActionChanged {
			s.record(Event{
				Tick:        period,
				Description: fmt.Sprintf("rate pinned at %.4f", r),
				Category:    "override",
			})
		}
	}
	if s.Bank.ActionChanged {
		s.Stats.RateChanges++
	}

	demand := s.Firm.Borrow(rate, s.Bank.Price)
	price, err := s.Firm.SetPrice(s.rng, rate)
	if err != nil {
		return fmt.Errorf("period %d: set price: %w", period, err)
	}
	if s.Firm.ActionChanged {
		s.Stats.PriceChanges++
	}
	s.Bank.PostPrice(price)

	spending, err := s.Household.Consume(s.rng, rate, price)
	if err != nil {
		return fmt.Errorf("period %d: consume: %w", period, err)
	}
	loan := s.Bank.Channel(spending, demand)
	s.Household.Deposit(loan.Returned)

	prod, err := s.Firm.ProduceEvaluate(s.rng, loan, spending)
	if err != nil {
		return fmt.Errorf("period %d: produce: %w", period, err)
	}
	s.Household.Accept(prod)

	settlement := s.Bank.TransferEvaluate(s.rng, s.Household.Asset, prod)
	s.Household.Settle(settlement)
	if err := s.Household.Evaluate(s.rng); err != nil {
		return fmt.Errorf("period %d: evaluate household: %w", period, err)
	}

	s.Stats.Periods++
	return nil
}

// Run drives the configured horizon through an Engine and returns the first
// step error, if any.
func (s *Simulation) Run() error {
	eng := NewEngine(s.Config.Periods, s.Config.ReportEvery)
	var runErr error
	eng.OnPeriod = func(period uint64) {
		if err := s.Step(period); err != nil {
			runErr = err
			eng.Stop()
		}
	}
	eng.OnReport = s.Report

	slog.Info("simulation started", "seed", s.Seed, "periods", s.Config.Periods, "rate_nodes", s.Grid.Nodes())
	eng.Run()
	if runErr != nil {
		return runErr
	}
	slog.Info("simulation finished", "seed", s.Seed, "periods", s.Stats.Periods, "faults", s.Stats.Faults)
	return nil
}

// Result packages the run's outputs. History and Events are shared, not copied.
func (s *Simulation) Result() Result {
	return Result{
		Seed:    s.Seed,
		History: s.History,
		Events:  s.Events,
		Stats:   s.Stats,
	}
}

// Report logs the latest observation and the running counters.
func (s *Simulation) Report(period uint64) {
	last, ok := s.History.Last()
	if !ok {
		return
	}
	slog.Info("period report",
		"period", PeriodLabel(period, s.Config.Periods),
		"seed", s.Seed,
		"rate", fmt.Sprintf("%.4f", last.Rate),
		"price", fmt.Sprintf("%.4f", last.Price),
		"output", fmt.Sprintf("%.3f", last.Output),
		"liquidity", fmt.Sprintf("%.3f", last.Liquidity),
		"profit", fmt.Sprintf("%.3f", last.Profit),
		"asset", fmt.Sprintf("%.3f", last.Asset),
		"rate_changes", s.Stats.RateChanges,
		"faults", s.Stats.Faults,
	)

	// Log recent faults.
	recentStart := 0
	if len(s.Events) > 5 {
		recentStart = len(s.Events) - 5
	}
	for _, e := range s.Events[recentStart:] {
		if e.Category == "fault" && e.Tick+s.Config.ReportEvery > period {
			slog.Debug("event", "tick", e.Tick, "category", e.Category, "description", e.Description)
		}
	}
}
