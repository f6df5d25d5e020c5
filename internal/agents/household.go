package agents

import (
	"math"

	"github.com/talgya/simplemacro/internal/economy"
	"github.com/talgya/simplemacro/internal/ratebin"
	"github.com/talgya/simplemacro/internal/satisfice"
)

// Household splits its asset between consumption and saving. The consumption
// share is kept per rate node and judged on two dimensions: real consumption
// and next-period asset.
type Household struct {
	cfg  HouseholdConfig
	grid ratebin.Grid

	propensity  *ratebin.Table[float64]
	consumption *ratebin.Table[satisfice.Aspiration]
	wealth      *ratebin.Table[satisfice.Aspiration]

	Asset       float64
	Consumption float64 // Realized nominal consumption this period
	Saving      float64
	Price       float64
	Rate        float64

	ActionChanged bool

	node     ratebin.Node
	observer Observer
}

// NewHousehold builds a household holding cfg.Asset.
func NewHousehold(cfg HouseholdConfig, grid ratebin.Grid, obs Observer) (*Household, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Household{
		cfg:           cfg,
		grid:          grid,
		propensity:    ratebin.NewTable(grid, cfg.Propensity),
		consumption:   ratebin.NewTable(grid, satisfice.Aspiration{}),
		wealth:        ratebin.NewTable(grid, satisfice.Aspiration{}),
		Asset:         cfg.Asset,
		Consumption:   1,
		Saving:        1,
		Price:         1,
		Rate:          1,
		ActionChanged: true,
		observer:      obs,
	}, nil
}

// Propensity returns the consumption share held for node n.
func (h *Household) Propensity(n ratebin.Node) (float64, error) {
	return h.propensity.Get(n)
}

// Propensities returns every node's consumption share.
func (h *Household) Propensities() []float64 {
	return h.propensity.Snapshot()
}

// Consume picks the share for the current rate node, disburses the whole
// asset as consumption and saving, and relaxes both satisfaction levels.
//
// Exploration intervals, with d the step:
//   - tremble or both unsatisfied: [c(1-d), c(1+d)]
//   - only consumption unsatisfied: [c, c(1+d)], consume more
//   - only asset unsatisfied: [c(1-d), c], save more
//
// clipped to [0, 1]. Both satisfied keeps c.
func (h *Household) Consume(src satisfice.Source, rate economy.RateSignal, price economy.PriceSignal) (economy.Spending, error) {
	h.Rate = rate.Rate
	h.Price = price.Price
	h.node = h.grid.Node(rate.Rate)

	c, err := h.propensity.Ptr(h.node)
	if err != nil {
		return economy.Spending{}, err
	}
	cons, wealth, err := h.aspirations()
	if err != nil {
		return economy.Spending{}, err
	}

	prev := *c
	draw := h.cfg.Params.Decide(src)
	if !draw.Inertia {
		lo := math.Max(0, prev*(1-h.cfg.Step))
		hi := math.Min(1, prev*(1+h.cfg.Step))
		satC, satA := cons.Satisficed(), wealth.Satisficed()
		switch {
		case draw.Tremble || (!satC && !satA):
			*c = satisfice.Uniform(src, lo, hi)
		case !satC:
			*c = satisfice.Uniform(src, prev, hi)
		case !satA:
			*c = satisfice.Uniform(src, lo, prev)
		}
	}
	h.ActionChanged = *c != prev

	asset := h.Asset
	h.Consumption = asset * *c
	h.Saving = asset - h.Consumption
	h.Asset = 0

	h.cfg.Params.AdaptLevels(src, cons, wealth)

	return economy.Spending{Asset: asset, Consumption: h.Consumption, Saving: h.Saving}, nil
}

// Deposit credits money handed back this period.
func (h *Household) Deposit(amount float64) {
	if amount > 0 {
		h.Asset += amount
	}
}

// Accept caps realized consumption at what the firm served and credits the
// unserved remainder.
func (h *Household) Accept(p economy.Production) {
	h.Consumption = p.Sold
	h.Deposit(p.Shortfall)
}

// Settle installs the terminal asset paid by the bank.
func (h *Household) Settle(s economy.Settlement) {
	h.Asset = s.Asset
}

// Evaluate recovers a non-positive asset and updates the real consumption
// and asset values of the node used this period.
func (h *Household) Evaluate(src satisfice.Source) error {
	if !(h.Asset > 0) {
		report(h.observer, Diagnostic{Agent: "household", Kind: FaultNonPositiveAsset, Value: h.Asset, Fallback: h.cfg.AssetFloor})
		h.Asset = h.cfg.AssetFloor
	}
	price := h.Price
	if !(price > 0) {
		report(h.observer, Diagnostic{Agent: "household", Kind: FaultNonPositivePrice, Value: price, Fallback: Epsilon})
		price = Epsilon
	}

	cons, wealth, err := h.aspirations()
	if err != nil {
		return err
	}
	rejected := h.cfg.Params.UpdateValues(src, h.ActionChanged,
		satisfice.Outcome{Dim: cons, Observed: h.Consumption / price},
		satisfice.Outcome{Dim: wealth, Observed: h.Asset},
	)
	if rejected > 0 {
		report(h.observer, Diagnostic{Agent: "household", Kind: FaultNonFinite, Value: h.Consumption / price, Fallback: cons.Value})
	}
	return nil
}

// Aspirations returns the consumption and asset aspirations of node n.
func (h *Household) Aspirations(n ratebin.Node) (consumption, asset satisfice.Aspiration, err error) {
	if consumption, err = h.consumption.Get(n); err != nil {
		return
	}
	asset, err = h.wealth.Get(n)
	return
}

func (h *Household) aspirations() (*satisfice.Aspiration, *satisfice.Aspiration, error) {
	cons, err := h.consumption.Ptr(h.node)
	if err != nil {
		return nil, nil, err
	}
	wealth, err := h.wealth.Ptr(h.node)
	if err != nil {
		return nil, nil, err
	}
	return cons, wealth, nil
}
