package calculator

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Precision is the number of decimal places kept for every monetary amount.
const Precision = 2

// Tolerance is the largest accepted difference between a custom split sum and
// the expense amount.
var Tolerance = decimal.New(1, -Precision)

// AmountFromFloat converts a wire amount into a decimal, rejecting NaN and infinities.
// The value is not rounded; callers round where the rules say so.
func AmountFromFloat(f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, fmt.Errorf("%w: got %v", ErrInvalidAmount, f)
	}
	return decimal.NewFromFloat(f), nil
}

// RoundAmount rounds half away from zero to two decimal places.
func RoundAmount(d decimal.Decimal) decimal.Decimal {
	return d.Round(Precision)
}

// sum adds the amounts of the given shares.
func sum(shares []Share) decimal.Decimal {
	total := decimal.Zero
	for _, s := range shares {
		total = total.Add(s.Amount)
	}
	return total
}
