package checkout

import (
	"math"

	"github.com/example/ec-shop/internal/model"
)

// Subtotal sums unit price times quantity over the snapshot.
func Subtotal(lines []model.SnapshotLine) float64 {
	var subtotal float64
	for _, l := range lines {
		subtotal += l.UnitPrice * float64(l.Quantity)
	}
	return subtotal
}

// DiscountedTotal applies every discount independently against the original
// subtotal. Discounts do not compound: two 10% codes take 20% off, not 19%.
func DiscountedTotal(lines []model.SnapshotLine, discounts []model.DiscountCode) float64 {
	subtotal := Subtotal(lines)
	total := subtotal
	for _, d := range discounts {
		total -= subtotal * d.Percent / 100
	}
	return total
}

// RoundCurrency rounds to 2 decimal places. Applied exactly once, when a
// value is about to be persisted; intermediate math stays unrounded so
// multiple codes do not compound rounding error.
func RoundCurrency(v float64) float64 {
	return math.Round(v*100) / 100
}
