// Package billing computes bills, invoices and sales reports from orders.
// Arithmetic runs on unrounded values; rounding to cents happens only when
// a value is formatted for display.
package billing

import (
	"math"
	"strconv"

	"github.com/appetiteclub/roms/internal/order"
)

// Bill is the tax breakdown of one order at a given rate.
type Bill struct {
	Subtotal   float64 `json:"subtotal"`
	Tax        float64 `json:"tax"`
	GrandTotal float64 `json:"grand_total"`
	Rate       float64 `json:"rate"`
}

// Compute recomputes the subtotal from the items; the stored total is not
// consulted.
func Compute(o *order.Order, rate float64) Bill {
	subtotal := o.Subtotal()
	tax := subtotal * rate
	return Bill{
		Subtotal:   subtotal,
		Tax:        tax,
		GrandTotal: subtotal + tax,
		Rate:       rate,
	}
}

// Round2 rounds half away from zero to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Money formats v with two decimals.
func Money(v float64) string {
	return strconv.FormatFloat(Round2(v), 'f', 2, 64)
}

// Percent formats a rate such as 0.05 as "5".
func Percent(rate float64) string {
	return strconv.FormatFloat(math.Round(rate*10000)/100, 'f', -1, 64)
}

// RatePolicy decides which tax rate applies to an order.
type RatePolicy struct {
	// FreezeOnCompletion makes completed orders use the rate snapshotted
	// when they completed instead of the current one.
	FreezeOnCompletion bool
}

func (p RatePolicy) RateFor(o *order.Order, current float64) float64 {
	if p.FreezeOnCompletion && !o.IsOpen() && o.TaxRateAtCompletion != nil {
		return *o.TaxRateAtCompletion
	}
	return current
}
