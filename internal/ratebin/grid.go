// Package ratebin discretizes the interest-rate domain into fixed-width nodes
// and stores one behavioral entry per node.
package ratebin

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrGrid marks an unusable rate partition.
	ErrGrid = errors.New("invalid rate grid")
	// ErrNodeRange marks a lookup outside the table.
	ErrNodeRange = errors.New("rate node out of range")
)

// nodeSlack absorbs binary rounding in rate/unit (0.095/0.005 is 18.999...).
const nodeSlack = 1e-9

// Node indexes one rate bin.
type Node int

// Grid partitions [0, Max) into bins of width Unit.
type Grid struct {
	Unit float64
	Max  float64
	n    int
}

// NewGrid builds a grid with floor(max/unit) nodes.
func NewGrid(unit, max float64) (Grid, error) {
	if math.IsNaN(unit) || math.IsInf(unit, 0) || unit <= 0 {
		return Grid{}, fmt.Errorf("%w: unit must be positive, got %v", ErrGrid, unit)
	}
	if math.IsNaN(max) || math.IsInf(max, 0) || max < unit {
		return Grid{}, fmt.Errorf("%w: max %v below unit %v", ErrGrid, max, unit)
	}
	n := int(math.Floor(max/unit + nodeSlack))
	return Grid{Unit: unit, Max: max, n: n}, nil
}

// Nodes returns the number of bins.
func (g Grid) Nodes() int {
	return g.n
}

// Node maps a rate to its bin. Rates at or above the last bin are clipped to
// it; negative rates map to node 0.
func (g Grid) Node(rate float64) Node {
	if math.IsNaN(rate) || rate <= 0 {
		return 0
	}
	rate = math.Min(g.Max-g.Unit, rate)
	n := int(math.Floor(rate/g.Unit + nodeSlack))
	if n >= g.n {
		n = g.n - 1
	}
	if n < 0 {
		n = 0
	}
	return Node(n)
}

// Table is a fixed-size per-node store.
type Table[T any] struct {
	grid Grid
	vals []T
}

// NewTable fills every node with init.
func NewTable[T any](g Grid, init T) *Table[T] {
	return NewTableFunc(g, func(Node) T { return init })
}

// NewTableFunc fills every node with fn(node).
func NewTableFunc[T any](g Grid, fn func(Node) T) *Table[T] {
	vals := make([]T, g.Nodes())
	for i := range vals {
		vals[i] = fn(Node(i))
	}
	return &Table[T]{grid: g, vals: vals}
}

// Grid returns the partition the table is keyed by.
func (t *Table[T]) Grid() Grid {
	return t.grid
}

// Len returns the number of entries.
func (t *Table[T]) Len() int {
	return len(t.vals)
}

// Get returns the entry for n.
func (t *Table[T]) Get(n Node) (T, error) {
	var zero T
	if !t.valid(n) {
		return zero, fmt.Errorf("%w: %d not in [0, %d)", ErrNodeRange, n, len(t.vals))
	}
	return t.vals[n], nil
}

// Ptr returns a pointer to the entry for n, for in-place updates.
func (t *Table[T]) Ptr(n Node) (*T, error) {
	if !t.valid(n) {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrNodeRange, n, len(t.vals))
	}
	return &t.vals[n], nil
}

// Set replaces the entry for n.
func (t *Table[T]) Set(n Node, v T) error {
	if !t.valid(n) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrNodeRange, n, len(t.vals))
	}
	t.vals[n] = v
	return nil
}

// Snapshot copies all entries in node order.
func (t *Table[T]) Snapshot() []T {
	out := make([]T, len(t.vals))
	copy(out, t.vals)
	return out
}

func (t *Table[T]) valid(n Node) bool {
	return n >= 0 && int(n) < len(t.vals)
}
