package agents

import (
	"fmt"
	"math"

	"github.com/talgya/simplemacro/internal/satisfice"
)

// BankConfig holds the Bank's policy and settlement parameters.
type BankConfig struct {
	Params      satisfice.Params
	Rate        float64 // Initial nominal rate
	MinRate     float64 // Lower bound of the exploration interval
	Step        float64 // Half-width of the exploration interval
	Window      int     // Trailing periods in the inflation proxy mean
	Residual    float64 // Fixed pass-through added to the household asset
	AssetGrowth float64 // Gross return on the household's carried asset
}

// DefaultBankConfig returns the baseline bank: 5% initial rate, 0.5% steps.
func DefaultBankConfig() BankConfig {
	return BankConfig{
		Params:      satisfice.DefaultParams(),
		Rate:        0.05,
		MinRate:     0.001,
		Step:        0.005,
		Window:      2,
		Residual:    0.3,
		AssetGrowth: 1.01,
	}
}

// Validate reports the first invalid field.
func (c BankConfig) Validate() error {
	if err := c.Params.Validate(); err != nil {
		return err
	}
	if !finite(c.MinRate) || c.MinRate < 0 {
		return fmt.Errorf("min rate must be non-negative, got %v", c.MinRate)
	}
	if !finite(c.Rate) || c.Rate < c.MinRate {
		return fmt.Errorf("initial rate %v below min rate %v", c.Rate, c.MinRate)
	}
	if !finite(c.Step) || c.Step <= 0 {
		return fmt.Errorf("rate step must be positive, got %v", c.Step)
	}
	if c.Window < 1 {
		return fmt.Errorf("inflation window must be at least 1, got %d", c.Window)
	}
	if !finite(c.Residual) || !finite(c.AssetGrowth) || c.AssetGrowth < 0 {
		return fmt.Errorf("residual %v and asset growth %v must be finite, growth non-negative", c.Residual, c.AssetGrowth)
	}
	return nil
}

// HouseholdConfig holds the Household's endowment and search parameters.
type HouseholdConfig struct {
	Params     satisfice.Params
	Asset      float64 // Initial asset
	Propensity float64 // Initial consumption share in every rate node
	Step       float64 // Relative exploration step (delta)
	AssetFloor float64 // Asset after recovering from a non-positive balance
}

// DefaultHouseholdConfig returns the baseline household.
func DefaultHouseholdConfig() HouseholdConfig {
	p := satisfice.DefaultParams()
	p.Inertia = 0.5
	return HouseholdConfig{
		Params:     p,
		Asset:      5,
		Propensity: 0.3,
		Step:       0.1,
		AssetFloor: 10,
	}
}

// Validate reports the first invalid field.
func (c HouseholdConfig) Validate() error {
	if err := c.Params.Validate(); err != nil {
		return err
	}
	if !finite(c.Asset) || c.Asset <= 0 {
		return fmt.Errorf("initial asset must be positive, got %v", c.Asset)
	}
	if !finite(c.Propensity) || c.Propensity < 0 || c.Propensity > 1 {
		return fmt.Errorf("propensity must lie in [0, 1], got %v", c.Propensity)
	}
	if !finite(c.Step) || c.Step <= 0 || c.Step > 1 {
		return fmt.Errorf("consumption step must lie in (0, 1], got %v", c.Step)
	}
	if !finite(c.AssetFloor) || c.AssetFloor <= 0 {
		return fmt.Errorf("asset floor must be positive, got %v", c.AssetFloor)
	}
	return nil
}

// FirmConfig holds the Firm's technology and pricing parameters.
type FirmConfig struct {
	Params       satisfice.Params
	Step         float64   // Relative price exploration step (delta)
	Techs        []float64 // Technology shock set, drawn uniformly
	CapitalShare float64   // Cobb-Douglas capital elasticity, in (0, 1)
	Depreciation float64
	MinPrice     float64 // Floor on the posted price
	PriceLow     float64 // Initial prices are drawn from [PriceLow, PriceHigh)
	PriceHigh    float64
	TechDrift    float64 // Simplex drift amplitude on technology; 0 disables
	DriftScale   float64 // Drift noise frequency per period
}

// DefaultFirmConfig returns the baseline firm with a neutral technology set.
func DefaultFirmConfig() FirmConfig {
	return FirmConfig{
		Params:       satisfice.DefaultParams(),
		Step:         0.05,
		Techs:        []float64{1, 1},
		CapitalShare: 0.4,
		Depreciation: 0.05,
		MinPrice:     0.01,
		PriceLow:     0.9,
		PriceHigh:    1.0,
		DriftScale:   0.01,
	}
}

// Validate reports the first invalid field.
func (c FirmConfig) Validate() error {
	if err := c.Params.Validate(); err != nil {
		return err
	}
	if len(c.Techs) == 0 {
		return fmt.Errorf("technology set is empty")
	}
	for i, t := range c.Techs {
		if !finite(t) || t <= 0 {
			return fmt.Errorf("technology %d must be positive, got %v", i, t)
		}
	}
	if !finite(c.CapitalShare) || c.CapitalShare <= 0 || c.CapitalShare >= 1 {
		return fmt.Errorf("capital share must lie in (0, 1), got %v", c.CapitalShare)
	}
	if !finite(c.Depreciation) || c.Depreciation < 0 {
		return fmt.Errorf("depreciation must be non-negative, got %v", c.Depreciation)
	}
	if !finite(c.MinPrice) || c.MinPrice <= 0 {
		return fmt.Errorf("min price must be positive, got %v", c.MinPrice)
	}
	if !finite(c.PriceLow) || !finite(c.PriceHigh) || c.PriceLow <= 0 || c.PriceHigh < c.PriceLow {
		return fmt.Errorf("initial price range [%v, %v) is invalid", c.PriceLow, c.PriceHigh)
	}
	if !finite(c.Step) || c.Step <= 0 || c.Step >= 1 {
		return fmt.Errorf("price step must lie in (0, 1), got %v", c.Step)
	}
	if !finite(c.TechDrift) || c.TechDrift < 0 || c.TechDrift >= 1 {
		return fmt.Errorf("tech drift must lie in [0, 1), got %v", c.TechDrift)
	}
	return nil
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
