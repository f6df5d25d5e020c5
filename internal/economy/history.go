package economy

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Observation is one period of aggregate outcomes as recorded by the Bank.
type Observation struct {
	Period    uint64  `json:"period"`
	Price     float64 `json:"price"`
	Profit    float64 `json:"profit"`
	Rate      float64 `json:"rate"`      // Nominal rate, fraction (0.05 = 5%)
	Liquidity float64 `json:"liquidity"` // Capital lent this period
	Output    float64 `json:"output"`    // Real consumption: consumption / price
	Asset     float64 `json:"asset"`     // Household terminal asset
	Inflation float64 `json:"inflation"` // (p_t - p_{t-1}) / p_{t-1}
}

// Metric names one observation series.
type Metric string

const (
	MetricPrice     Metric = "price"
	MetricProfit    Metric = "profit"
	MetricRate      Metric = "rate"
	MetricLiquidity Metric = "liquidity"
	MetricOutput    Metric = "output"
	MetricAsset     Metric = "asset"
	MetricInflation Metric = "inflation"
)

// Metrics lists every series in report order.
var Metrics = []Metric{
	MetricPrice, MetricProfit, MetricLiquidity, MetricOutput,
	MetricRate, MetricAsset, MetricInflation,
}

// Value returns the observation's value for m.
func (o Observation) Value(m Metric) (float64, error) {
	switch m {
	case MetricPrice:
		return o.Price, nil
	case MetricProfit:
		return o.Profit, nil
	case MetricRate:
		return o.Rate, nil
	case MetricLiquidity:
		return o.Liquidity, nil
	case MetricOutput:
		return o.Output, nil
	case MetricAsset:
		return o.Asset, nil
	case MetricInflation:
		return o.Inflation, nil
	}
	return 0, fmt.Errorf("unknown metric %q", m)
}

// History is the ordered record of observations. Not safe for concurrent use;
// each simulation owns one.
type History struct {
	obs []Observation
}

// NewHistory preallocates room for capacity periods.
func NewHistory(capacity int) *History {
	if capacity < 0 {
		capacity = 0
	}
	return &History{obs: make([]Observation, 0, capacity)}
}

// Append records one period.
func (h *History) Append(o Observation) {
	h.obs = append(h.obs, o)
}

// Len returns the number of recorded periods.
func (h *History) Len() int {
	return len(h.obs)
}

// Last returns the most recent observation.
func (h *History) Last() (Observation, bool) {
	if len(h.obs) == 0 {
		return Observation{}, false
	}
	return h.obs[len(h.obs)-1], true
}

// All returns a copy of every observation.
func (h *History) All() []Observation {
	out := make([]Observation, len(h.obs))
	copy(out, h.obs)
	return out
}

// Series extracts one metric across all periods. Unknown metrics yield nil.
func (h *History) Series(m Metric) []float64 {
	out := make([]float64, 0, len(h.obs))
	for _, o := range h.obs {
		v, err := o.Value(m)
		if err != nil {
			return nil
		}
		out = append(out, v)
	}
	return out
}

// TrailingMean is the mean of the last window values of m. ok is false when
// fewer than window periods are recorded.
func (h *History) TrailingMean(m Metric, window int) (mean float64, ok bool) {
	if window <= 0 || len(h.obs) < window {
		return 0, false
	}
	tail := make([]float64, 0, window)
	for _, o := range h.obs[len(h.obs)-window:] {
		v, err := o.Value(m)
		if err != nil {
			return 0, false
		}
		tail = append(tail, v)
	}
	return stat.Mean(tail, nil), true
}

// BlockMeans averages m over consecutive blocks of size block. A trailing
// partial block is dropped.
func (h *History) BlockMeans(m Metric, block int) []float64 {
	if block <= 0 {
		return nil
	}
	series := h.Series(m)
	out := make([]float64, 0, len(series)/block)
	for i := 0; i+block <= len(series); i += block {
		out = append(out, stat.Mean(series[i:i+block], nil))
	}
	return out
}

// SeriesSummary describes one metric over a run.
type SeriesSummary struct {
	Metric Metric  `json:"metric"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Last   float64 `json:"last"`
}

// Summarize reports every metric. Empty history yields nil.
func (h *History) Summarize() []SeriesSummary {
	if len(h.obs) == 0 {
		return nil
	}
	out := make([]SeriesSummary, 0, len(Metrics))
	for _, m := range Metrics {
		s := h.Series(m)
		sum := SeriesSummary{
			Metric: m,
			Min:    floats.Min(s),
			Max:    floats.Max(s),
			Last:   s[len(s)-1],
		}
		if len(s) > 1 {
			sum.Mean, sum.StdDev = stat.MeanStdDev(s, nil)
		} else {
			sum.Mean = s[0]
		}
		out = append(out, sum)
	}
	return out
}
