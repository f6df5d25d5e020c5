// Package agents implements the three representative agents of the economy:
// the central Bank, the Household and the Firm. Each adapts one control
// variable with the satisficing rule and exchanges economy signals with the
// others in a fixed per-period order.
package agents

import (
	"fmt"
	"log/slog"
)

// Epsilon replaces non-positive bases and prices that would otherwise feed a
// fractional power or a division.
const Epsilon = 1e-9

// FaultKind classifies a recoverable domain fault.
type FaultKind string

const (
	FaultNonPositiveAsset FaultKind = "non_positive_asset"
	FaultNonPositiveBase  FaultKind = "non_positive_base"
	FaultNonPositivePrice FaultKind = "non_positive_price"
	FaultNonFinite        FaultKind = "non_finite_observation"
)

// Diagnostic records a fault an agent recovered from locally.
type Diagnostic struct {
	Agent    string    `json:"agent"`
	Kind     FaultKind `json:"kind"`
	Value    float64   `json:"value"`    // Offending value
	Fallback float64   `json:"fallback"` // Value used instead
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s %v (fallback %v)", d.Agent, d.Kind, d.Value, d.Fallback)
}

// Observer receives diagnostics. Agents never halt on a domain fault.
type Observer interface {
	Observe(Diagnostic)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Diagnostic)

func (f ObserverFunc) Observe(d Diagnostic) { f(d) }

// LogObserver writes diagnostics to a structured logger at warn level.
type LogObserver struct {
	Logger *slog.Logger
}

func (o LogObserver) Observe(d Diagnostic) {
	l := o.Logger
	if l == nil {
		l = slog.Default()
	}
	l.Warn("domain fault recovered",
		"agent", d.Agent,
		"kind", string(d.Kind),
		"value", d.Value,
		"fallback", d.Fallback,
	)
}

func report(o Observer, d Diagnostic) {
	if o != nil {
		o.Observe(d)
	}
}
