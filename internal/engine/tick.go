// Package engine provides the period-based simulation loop.
package engine

import (
	"fmt"
	"log/slog"
)

// Engine drives a simulation forward one period at a time.
type Engine struct {
	Period      uint64 // Next period to run (monotonic, never resets)
	Horizon     uint64 // Run stops once Period reaches Horizon
	ReportEvery uint64 // 0 disables OnReport

	// Callbacks, populated during setup.
	OnPeriod func(period uint64) // Every period
	OnReport func(period uint64) // After every ReportEvery-th period

	stopped bool
}

// NewEngine creates an engine that runs periods [0, horizon).
func NewEngine(horizon, reportEvery uint64) *Engine {
	return &Engine{
		Horizon:     horizon,
		ReportEvery: reportEvery,
	}
}

// Run steps until the horizon is reached or Stop is called.
func (e *Engine) Run() {
	e.stopped = false
	slog.Debug("simulation engine started", "period", e.Period, "horizon", e.Horizon)
	for !e.stopped && e.Period < e.Horizon {
		e.step()
	}
	slog.Debug("simulation engine stopped", "period", e.Period)
}

// Stop halts the loop after the current period.
func (e *Engine) Stop() {
	e.stopped = true
}

// step runs one period and advances the counter.
func (e *Engine) step() {
	p := e.Period
	if e.OnPeriod != nil {
		e.OnPeriod(p)
	}
	e.Period++

	if e.ReportEvery > 0 && e.Period%e.ReportEvery == 0 && e.OnReport != nil {
		e.OnReport(p)
	}
}

// PeriodLabel renders a period as "period N/H".
func PeriodLabel(period, horizon uint64) string {
	return fmt.Sprintf("period %d/%d", period+1, horizon)
}
