package ratebin

import (
	"errors"
	"testing"
)

func TestNodeCountAndLookup(t *testing.T) {
	g, err := NewGrid(0.005, 0.1)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	if g.Nodes() != 20 {
		t.Fatalf("expected 20 nodes, got %d", g.Nodes())
	}
	cases := []struct {
		rate float64
		want Node
	}{
		{0.0, 0},
		{0.0995, 19},
		{0.5, 19},
		{-0.01, 0},
		{0.05, 10},
		{0.0049, 0},
		{0.08, 16},
	}
	for _, c := range cases {
		if got := g.Node(c.rate); got != c.want {
			t.Errorf("Node(%v): expected %d, got %d", c.rate, c.want, got)
		}
	}
}

func TestNewGridRejectsBadPartition(t *testing.T) {
	if _, err := NewGrid(0, 0.1); !errors.Is(err, ErrGrid) {
		t.Fatalf("expected ErrGrid for zero unit, got %v", err)
	}
	if _, err := NewGrid(0.01, 0.001); !errors.Is(err, ErrGrid) {
		t.Fatalf("expected ErrGrid for max below unit, got %v", err)
	}
}

func TestTableBoundsChecked(t *testing.T) {
	g, _ := NewGrid(0.005, 0.1)
	tab := NewTable(g, 0.3)

	if tab.Len() != 20 {
		t.Fatalf("expected 20 entries, got %d", tab.Len())
	}
	v, err := tab.Get(19)
	if err != nil || v != 0.3 {
		t.Fatalf("expected 0.3, got %v (%v)", v, err)
	}
	if _, err := tab.Get(20); !errors.Is(err, ErrNodeRange) {
		t.Fatalf("expected ErrNodeRange, got %v", err)
	}
	if err := tab.Set(-1, 1); !errors.Is(err, ErrNodeRange) {
		t.Fatalf("expected ErrNodeRange, got %v", err)
	}
	if err := tab.Set(3, 0.7); err != nil {
		t.Fatalf("Set: %v", err)
	}
	p, err := tab.Ptr(3)
	if err != nil || *p != 0.7 {
		t.Fatalf("expected 0.7 through Ptr, got %v (%v)", p, err)
	}
}

func TestTableFuncAndSnapshot(t *testing.T) {
	g, _ := NewGrid(0.01, 0.05)
	tab := NewTableFunc(g, func(n Node) float64 { return float64(n) * 2 })

	snap := tab.Snapshot()
	if len(snap) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(snap))
	}
	snap[0] = 99
	if v, _ := tab.Get(0); v != 0 {
		t.Fatal("snapshot must not alias the table")
	}
	if v, _ := tab.Get(4); v != 8 {
		t.Fatalf("expected 8, got %v", v)
	}
}
