package agents

import (
	"math"

	"github.com/talgya/simplemacro/internal/economy"
	"github.com/talgya/simplemacro/internal/ratebin"
	"github.com/talgya/simplemacro/internal/satisfice"
)

// Bank sets the nominal rate, channels saving into firm capital, settles the
// household and records the economy.
type Bank struct {
	cfg  BankConfig
	grid ratebin.Grid

	Rate  float64 // Current nominal rate
	Price float64 // Last price posted by the firm
	Lent  float64 // Capital lent this period

	// Performance dimensions judged jointly when setting the rate.
	Output    satisfice.Aspiration
	Inflation satisfice.Aspiration

	ActionChanged bool

	prevRate float64
	period   uint64
	history  *economy.History
	observer Observer
}

// NewBank builds a bank posting cfg.Rate. history may be nil.
func NewBank(cfg BankConfig, grid ratebin.Grid, history *economy.History, obs Observer) (*Bank, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if history == nil {
		history = economy.NewHistory(0)
	}
	return &Bank{
		cfg:           cfg,
		grid:          grid,
		Rate:          cfg.Rate,
		Price:         1,
		ActionChanged: true,
		prevRate:      cfg.Rate,
		history:       history,
		observer:      obs,
	}, nil
}

// History returns the recorded observations.
func (b *Bank) History() *economy.History {
	return b.history
}

// SetInterest decides this period's rate. Output and inflation are judged
// jointly: a tremble or either shortfall triggers a uniform draw around the
// current rate, floored at MinRate.
func (b *Bank) SetInterest(src satisfice.Source) economy.RateSignal {
	b.prevRate = b.Rate
	draw := b.cfg.Params.Decide(src)
	if draw.Explore(b.Output.Satisficed(), b.Inflation.Satisficed()) {
		lo := math.Max(b.cfg.MinRate, b.Rate-b.cfg.Step)
		b.Rate = satisfice.Uniform(src, lo, b.Rate+b.cfg.Step)
	}
	b.ActionChanged = b.Rate != b.prevRate
	b.cfg.Params.AdaptLevels(src, &b.Output, &b.Inflation)
	return b.signal()
}

// Override pins the rate for a scripted regime. The change flag compares
// against the rate held before this period's decision.
func (b *Bank) Override(rate float64) economy.RateSignal {
	b.Rate = rate
	b.ActionChanged = b.Rate != b.prevRate
	return b.signal()
}

// PostPrice records the firm's posted price.
func (b *Bank) PostPrice(p economy.PriceSignal) {
	b.Price = p.Price
}

// Channel lends min(saving, demand) to the firm and hands the unlent rest
// back to the household without interest.
func (b *Bank) Channel(sp economy.Spending, demand float64) economy.Loan {
	saving := nonNegative(sp.Saving)
	demand = nonNegative(demand)
	b.Lent = math.Min(saving, demand)
	return economy.Loan{Lent: b.Lent, Returned: saving - b.Lent}
}

// TransferEvaluate pays deposit returns and firm profit into the household's
// asset, records the period, and updates the output and inflation values.
// asset is the household's balance after refunds this period.
func (b *Bank) TransferEvaluate(src satisfice.Source, asset float64, prod economy.Production) economy.Settlement {
	terminal := b.cfg.Residual + asset*b.cfg.AssetGrowth + (1+b.Rate)*b.Lent + prod.Profit

	price := b.Price
	if !(price > 0) || math.IsInf(price, 0) {
		report(b.observer, Diagnostic{Agent: "bank", Kind: FaultNonPositivePrice, Value: price, Fallback: Epsilon})
		price = Epsilon
	}
	output := prod.Sold / price

	// Squared deviation from the trailing mean, taken before this price is recorded.
	infltn := 0.0
	if mean, ok := b.history.TrailingMean(economy.MetricPrice, b.cfg.Window); ok {
		infltn = -(price - mean) * (price - mean)
	}

	rate := 0.0
	if b.history.Len() >= 2 {
		last, _ := b.history.Last()
		if last.Price > 0 {
			rate = (price - last.Price) / last.Price
		}
	}

	b.history.Append(economy.Observation{
		Period:    b.period,
		Price:     price,
		Profit:    prod.Profit,
		Rate:      b.Rate,
		Liquidity: b.Lent,
		Output:    output,
		Asset:     terminal,
		Inflation: rate,
	})
	b.period++

	rejected := b.cfg.Params.UpdateValues(src, b.ActionChanged,
		satisfice.Outcome{Dim: &b.Output, Observed: output},
		satisfice.Outcome{Dim: &b.Inflation, Observed: infltn},
	)
	if rejected > 0 {
		report(b.observer, Diagnostic{Agent: "bank", Kind: FaultNonFinite, Value: output, Fallback: b.Output.Value})
	}

	return economy.Settlement{Asset: terminal}
}

func (b *Bank) signal() economy.RateSignal {
	return economy.RateSignal{Rate: b.Rate, Node: b.grid.Node(b.Rate)}
}

func nonNegative(x float64) float64 {
	if math.IsNaN(x) || x < 0 {
		return 0
	}
	return x
}
