// Package economy holds the values agents exchange each period and the
// history of aggregate observations the Bank records.
//
// Signals are immutable values: one agent produces each, the next stage of
// the period pipeline consumes it.
package economy

import "github.com/talgya/simplemacro/internal/ratebin"

// RateSignal is the Bank's posted nominal rate and its bin.
type RateSignal struct {
	Rate float64      `json:"rate"`
	Node ratebin.Node `json:"node"`
}

// PriceSignal is the Firm's posted price for the period.
type PriceSignal struct {
	Price float64 `json:"price"`
}

// Spending is the Household's disbursement of its asset.
type Spending struct {
	Asset       float64 `json:"asset"`       // Asset before disbursement
	Consumption float64 `json:"consumption"` // Nominal consumption demand
	Saving      float64 `json:"saving"`      // Asset - Consumption
}

// Loan is the Bank's intermediation of saving into firm capital.
type Loan struct {
	Lent     float64 `json:"lent"`     // min(saving, capital demand)
	Returned float64 `json:"returned"` // Unlent saving, back to the household
}

// Production is the Firm's realized output for the period.
type Production struct {
	Tech      float64 `json:"tech"`
	Capacity  float64 `json:"capacity"`
	Sold      float64 `json:"sold"`      // Consumption actually served
	Shortfall float64 `json:"shortfall"` // Unserved consumption, refunded
	Profit    float64 `json:"profit"`
	Capital   float64 `json:"capital"`
}

// Settlement is the household's terminal asset after transfers.
type Settlement struct {
	Asset float64 `json:"asset"`
}
