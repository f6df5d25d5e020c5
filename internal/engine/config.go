package engine

import (
	"errors"
	"fmt"

	"github.com/talgya/simplemacro/internal/agents"
	"github.com/talgya/simplemacro/internal/ratebin"
)

// ErrConfig wraps every configuration fault reported by NewSimulation.
var ErrConfig = errors.New("invalid configuration")

// RateOverride pins the bank's rate for periods [From, To).
type RateOverride struct {
	From uint64  `json:"from"`
	To   uint64  `json:"to"`
	Rate float64 `json:"rate"`
}

// Config describes one economy and how long to run it.
type Config struct {
	Seed        int64  `json:"seed"` // 0 draws a seed from crypto/rand
	Periods     uint64 `json:"periods"`
	ReportEvery uint64 `json:"report_every"`

	RateUnit float64 `json:"rate_unit"` // Width of one rate bin
	RateMax  float64 `json:"rate_max"`  // Upper bound of the rate grid

	Bank      agents.BankConfig      `json:"bank"`
	Household agents.HouseholdConfig `json:"household"`
	Firm      agents.FirmConfig      `json:"firm"`

	Schedule []RateOverride `json:"schedule,omitempty"`
}

// DefaultConfig returns the baseline economy: every agent at its defaults,
// a 0.5% rate grid up to 10%, run for 10000 periods.
func DefaultConfig() Config {
	return Config{
		Periods:     10000,
		ReportEvery: 1000,
		RateUnit:    0.005,
		RateMax:     0.1,
		Bank:        agents.DefaultBankConfig(),
		Household:   agents.DefaultHouseholdConfig(),
		Firm:        agents.DefaultFirmConfig(),
	}
}

// RegimeShiftConfig pins the rate at 5% for the first half of the run and 8%
// for the second, with trembles and level smoothing reduced to 1%.
func RegimeShiftConfig() Config {
	cfg := DefaultConfig()
	for _, p := range []*float64{
		&cfg.Bank.Params.TrembleAction, &cfg.Bank.Params.TrembleLevel, &cfg.Bank.Params.Lambda,
		&cfg.Household.Params.TrembleAction, &cfg.Household.Params.TrembleLevel, &cfg.Household.Params.Lambda,
		&cfg.Firm.Params.TrembleAction, &cfg.Firm.Params.TrembleLevel, &cfg.Firm.Params.Lambda,
	} {
		*p = 0.01
	}
	cfg.Schedule = []RateOverride{
		{From: 0, To: 5000, Rate: 0.05},
		{From: 5000, To: 10000, Rate: 0.08},
	}
	return cfg
}

// SmallTestConfig returns a short run suitable for tests.
func SmallTestConfig() Config {
	cfg := DefaultConfig()
	cfg.Seed = 42
	cfg.Periods = 100
	cfg.ReportEvery = 0
	return cfg
}

// Validate reports the first fault, wrapped in ErrConfig.
func (c Config) Validate() error {
	if _, err := ratebin.NewGrid(c.RateUnit, c.RateMax); err != nil {
		return fmt.Errorf("%w: rate grid: %w", ErrConfig, err)
	}
	if err := c.Bank.Validate(); err != nil {
		return fmt.Errorf("%w: bank: %w", ErrConfig, err)
	}
	if err := c.Household.Validate(); err != nil {
		return fmt.Errorf("%w: household: %w", ErrConfig, err)
	}
	if err := c.Firm.Validate(); err != nil {
		return fmt.Errorf("%w: firm: %w", ErrConfig, err)
	}
	for i, o := range c.Schedule {
		if o.To <= o.From {
			return fmt.Errorf("%w: schedule %d: empty period range [%d, %d)", ErrConfig, i, o.From, o.To)
		}
		if !(o.Rate >= 0) || o.Rate > c.RateMax {
			return fmt.Errorf("%w: schedule %d: rate %v outside [0, %v]", ErrConfig, i, o.Rate, c.RateMax)
		}
		if i > 0 && o.From < c.Schedule[i-1].To {
			return fmt.Errorf("%w: schedule %d overlaps the previous override", ErrConfig, i)
		}
	}
	return nil
}

// override returns the scheduled rate for period, if any.
func (c Config) override(period uint64) (float64, bool) {
	for _, o := range c.Schedule {
		if period >= o.From && period < o.To {
			return o.Rate, true
		}
	}
	return 0, false
}
