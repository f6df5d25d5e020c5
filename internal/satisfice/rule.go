// Package satisfice implements the aspiration-adjustment decision rule shared by
// every agent in the economy: inertia, trembles, satisfaction levels that relax
// toward realized performance, and value estimates that smooth or reset.
package satisfice

import (
	"fmt"
	"math"
)

// Source is the random stream every stochastic step draws from.
// *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// Params are the behavioral constants of one satisficing agent.
type Params struct {
	TrembleAction float64 // Probability of exploring regardless of satisfaction
	TrembleLevel  float64 // Probability of a full jump of the satisfaction level
	Lambda        float64 // Satisfaction-level adjustment speed
	Gamma         float64 // Curvature of the stochastic learning rate U^Gamma
	Inertia       float64 // Probability of keeping the current action untouched
}

// DefaultParams returns the baseline behavioral constants.
func DefaultParams() Params {
	return Params{
		TrembleAction: 0.05,
		TrembleLevel:  0.05,
		Lambda:        0.05,
		Gamma:         0.5,
		Inertia:       0.9,
	}
}

// Validate reports the first parameter outside its domain.
func (p Params) Validate() error {
	probs := []struct {
		name string
		val  float64
	}{
		{"tremble_action", p.TrembleAction},
		{"tremble_level", p.TrembleLevel},
		{"inertia", p.Inertia},
	}
	for _, pr := range probs {
		if math.IsNaN(pr.val) || pr.val < 0 || pr.val > 1 {
			return fmt.Errorf("%s must lie in [0, 1], got %v", pr.name, pr.val)
		}
	}
	if math.IsNaN(p.Lambda) || p.Lambda < 0 {
		return fmt.Errorf("lambda must be non-negative, got %v", p.Lambda)
	}
	if math.IsNaN(p.Gamma) || math.IsInf(p.Gamma, 0) || p.Gamma < 0 {
		return fmt.Errorf("gamma must be finite and non-negative, got %v", p.Gamma)
	}
	return nil
}

// Aspiration is the (SatisfactionLevel, Value) pair of one performance dimension.
type Aspiration struct {
	Level float64 `json:"level"`
	Value float64 `json:"value"`
}

// Satisficed reports whether realized performance meets the aspiration.
func (a Aspiration) Satisficed() bool {
	return a.Value >= a.Level
}

// Draw is the outcome of the per-period action draw.
type Draw struct {
	Inertia bool // No decision this period
	Tremble bool // Forced exploration; always false under inertia
}

// Explore reports whether an agent with the given satisfaction state explores.
// Single-dimension policy: tremble or dissatisfaction.
func (d Draw) Explore(satisficed ...bool) bool {
	if d.Inertia {
		return false
	}
	if d.Tremble {
		return true
	}
	for _, ok := range satisficed {
		if !ok {
			return true
		}
	}
	return false
}

// Decide draws inertia first and, only when the agent is not inert, the tremble.
func (p Params) Decide(src Source) Draw {
	if src.Float64() < p.Inertia {
		return Draw{Inertia: true}
	}
	return Draw{Tremble: src.Float64() < p.TrembleAction}
}

// LearningRate draws U^gamma.
func LearningRate(src Source, gamma float64) float64 {
	return math.Pow(src.Float64(), gamma)
}

// Uniform draws from [lo, hi). A degenerate interval returns lo without drawing.
func Uniform(src Source, lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + (hi-lo)*src.Float64()
}

// AdaptLevels moves each satisfaction level toward its value. Without a level
// tremble the level only ratchets down, scaled by Lambda; with one it jumps
// toward the value in either direction. All dims share one tremble and one rate.
func (p Params) AdaptLevels(src Source, dims ...*Aspiration) {
	tremble := src.Float64() < p.TrembleLevel
	lamda := LearningRate(src, p.Gamma)
	for _, a := range dims {
		if tremble {
			a.Level += lamda * (a.Value - a.Level)
		} else {
			a.Level += lamda * p.Lambda * math.Min(a.Value-a.Level, 0)
		}
	}
}

// Outcome pairs a dimension with the performance observed this period.
type Outcome struct {
	Dim      *Aspiration
	Observed float64
}

// UpdateValues folds observations into the value estimates. A changed action
// discards the running estimate; otherwise the estimate moves by rho toward the
// observation. Non-finite observations leave their value untouched and are
// counted in the return value.
func (p Params) UpdateValues(src Source, changed bool, outcomes ...Outcome) int {
	rho := LearningRate(src, p.Gamma)
	rejected := 0
	for _, o := range outcomes {
		if !finite(o.Observed) {
			rejected++
			continue
		}
		UpdateValue(o.Dim, o.Observed, changed, rho)
	}
	return rejected
}

// UpdateValue applies the value law with an explicit learning rate.
func UpdateValue(a *Aspiration, observed float64, changed bool, rho float64) {
	if changed {
		a.Value = observed
		return
	}
	a.Value += rho * (observed - a.Value)
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
