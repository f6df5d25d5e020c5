package economy

import (
	"math"
	"testing"
)

func fill(prices ...float64) *History {
	h := NewHistory(len(prices))
	for i, p := range prices {
		h.Append(Observation{Period: uint64(i), Price: p, Asset: float64(i + 1)})
	}
	return h
}

func TestTrailingMean(t *testing.T) {
	h := fill(1, 2, 4)

	if _, ok := h.TrailingMean(MetricPrice, 4); ok {
		t.Fatal("expected not ok with fewer periods than window")
	}
	m, ok := h.TrailingMean(MetricPrice, 2)
	if !ok {
		t.Fatal("expected ok")
	}
	if m != 3 {
		t.Fatalf("expected 3, got %f", m)
	}
}

func TestBlockMeansDropsPartialBlock(t *testing.T) {
	h := fill(1, 3, 5, 7, 9)

	got := h.BlockMeans(MetricPrice, 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(got))
	}
	if got[0] != 2 || got[1] != 6 {
		t.Fatalf("expected [2 6], got %v", got)
	}
	if h.BlockMeans(MetricPrice, 0) != nil {
		t.Fatal("expected nil for zero block")
	}
}

func TestSeriesAndUnknownMetric(t *testing.T) {
	h := fill(1, 2)
	if s := h.Series(MetricAsset); len(s) != 2 || s[1] != 2 {
		t.Fatalf("unexpected asset series %v", s)
	}
	if h.Series(Metric("volume")) != nil {
		t.Fatal("expected nil for unknown metric")
	}
	if _, err := (Observation{}).Value(Metric("volume")); err == nil {
		t.Fatal("expected error for unknown metric")
	}
}

func TestSummarize(t *testing.T) {
	if fill().Summarize() != nil {
		t.Fatal("expected nil summary for empty history")
	}
	h := fill(2, 4, 6)
	sums := h.Summarize()
	if len(sums) != len(Metrics) {
		t.Fatalf("expected %d summaries, got %d", len(Metrics), len(sums))
	}
	price := sums[0]
	if price.Metric != MetricPrice {
		t.Fatalf("expected price first, got %s", price.Metric)
	}
	if price.Mean != 4 || price.Min != 2 || price.Max != 6 || price.Last != 6 {
		t.Fatalf("unexpected price summary %+v", price)
	}
	if math.Abs(price.StdDev-2) > 1e-12 {
		t.Fatalf("expected sample std dev 2, got %f", price.StdDev)
	}
}

func TestAllIsACopy(t *testing.T) {
	h := fill(1)
	all := h.All()
	all[0].Price = 42
	if last, _ := h.Last(); last.Price != 1 {
		t.Fatal("All must not alias history")
	}
}
