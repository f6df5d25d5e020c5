package agents

import (
	"math"

	"github.com/talgya/simplemacro/internal/economy"
	"github.com/talgya/simplemacro/internal/entropy"
	"github.com/talgya/simplemacro/internal/ratebin"
	"github.com/talgya/simplemacro/internal/satisfice"
)

// Firm prices per rate node by satisficing on profit, borrows the capital its
// marginal product justifies, and produces with Cobb-Douglas technology.
type Firm struct {
	cfg  FirmConfig
	grid ratebin.Grid

	price  *ratebin.Table[float64]
	profit *ratebin.Table[satisfice.Aspiration]

	Tech          float64
	CapitalDemand float64
	Capital       float64
	Profit        float64
	Rate          float64
	Posted        float64 // Price posted this period, after the floor

	ActionChanged bool

	node     ratebin.Node
	drift    *entropy.Drift
	produced uint64
	observer Observer
}

// NewFirm builds a firm. Initial node prices and the first technology draw
// come from src; drift may be nil.
func NewFirm(cfg FirmConfig, grid ratebin.Grid, src entropy.Source, drift *entropy.Drift, obs Observer) (*Firm, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	f := &Firm{
		cfg:  cfg,
		grid: grid,
		price: ratebin.NewTableFunc(grid, func(ratebin.Node) float64 {
			return satisfice.Uniform(src, cfg.PriceLow, cfg.PriceHigh)
		}),
		profit:        ratebin.NewTable(grid, satisfice.Aspiration{}),
		Capital:       100,
		ActionChanged: true,
		drift:         drift,
		observer:      obs,
	}
	f.Tech = cfg.Techs[src.Intn(len(cfg.Techs))]
	f.Posted = f.cfg.PriceLow
	return f, nil
}

// Price returns the price held for node n.
func (f *Firm) Price(n ratebin.Node) (float64, error) {
	return f.price.Get(n)
}

// Prices returns every node's price.
func (f *Firm) Prices() []float64 {
	return f.price.Snapshot()
}

// Aspiration returns the profit aspiration of node n.
func (f *Firm) Aspiration(n ratebin.Node) (satisfice.Aspiration, error) {
	return f.profit.Get(n)
}

// Borrow sets capital demand from the marginal product condition
// r = alpha*p*tech*K^(alpha-1), using the bank's last posted price.
func (f *Firm) Borrow(rate economy.RateSignal, bankPrice float64) float64 {
	f.Rate = rate.Rate
	alpha := f.cfg.CapitalShare
	f.CapitalDemand = math.Pow(f.base(rate.Rate, bankPrice, f.Tech), 1/(alpha-1))
	return f.CapitalDemand
}

// SetPrice decides the price for the current rate node. A tremble or an
// unmet profit aspiration draws from [p(1-d), p(1+d)]. The posted price is
// floored at MinPrice.
func (f *Firm) SetPrice(src satisfice.Source, rate economy.RateSignal) (economy.PriceSignal, error) {
	f.Rate = rate.Rate
	f.node = f.grid.Node(rate.Rate)

	p, err := f.price.Ptr(f.node)
	if err != nil {
		return economy.PriceSignal{}, err
	}
	asp, err := f.profit.Ptr(f.node)
	if err != nil {
		return economy.PriceSignal{}, err
	}

	prev := *p
	if f.cfg.Params.Decide(src).Explore(asp.Satisficed()) {
		*p = satisfice.Uniform(src, prev*(1-f.cfg.Step), prev*(1+f.cfg.Step))
	}
	f.ActionChanged = *p != prev
	f.Posted = math.Max(f.cfg.MinPrice, *p)

	f.cfg.Params.AdaptLevels(src, asp)
	return economy.PriceSignal{Price: f.Posted}, nil
}

// ProduceEvaluate draws technology, serves demand up to capacity, books
// profit net of interest and depreciation on the borrowed capital, and
// updates the node's profit value.
func (f *Firm) ProduceEvaluate(src entropy.Source, loan economy.Loan, sp economy.Spending) (economy.Production, error) {
	f.Capital = loan.Lent
	f.Tech = f.cfg.Techs[src.Intn(len(f.cfg.Techs))] * f.drift.Factor(f.produced)
	f.produced++

	alpha := f.cfg.CapitalShare
	capacity := f.Posted * f.Tech * math.Pow(f.base(f.Rate, f.Posted, f.Tech), alpha/(alpha-1))

	sold := nonNegative(sp.Consumption)
	shortfall := 0.0
	if sold > capacity {
		shortfall = sold - capacity
		sold = capacity
	}
	f.Profit = sold - (f.Rate+f.cfg.Depreciation)*f.Capital

	asp, err := f.profit.Ptr(f.node)
	if err != nil {
		return economy.Production{}, err
	}
	if f.cfg.Params.UpdateValues(src, f.ActionChanged, satisfice.Outcome{Dim: asp, Observed: f.Profit}) > 0 {
		report(f.observer, Diagnostic{Agent: "firm", Kind: FaultNonFinite, Value: f.Profit, Fallback: asp.Value})
	}

	return economy.Production{
		Tech:      f.Tech,
		Capacity:  capacity,
		Sold:      sold,
		Shortfall: shortfall,
		Profit:    f.Profit,
		Capital:   f.Capital,
	}, nil
}

// base is r/(alpha*p*tech), the quantity raised to fractional powers. Zero,
// negative or non-finite bases are replaced by Epsilon.
func (f *Firm) base(rate, price, tech float64) float64 {
	b := rate / (f.cfg.CapitalShare * price * tech)
	if !(b > 0) || math.IsInf(b, 0) {
		report(f.observer, Diagnostic{Agent: "firm", Kind: FaultNonPositiveBase, Value: b, Fallback: Epsilon})
		return Epsilon
	}
	return b
}
