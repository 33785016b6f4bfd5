package types

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Amounts are arbitrary-precision decimals. Reports accumulate them without
// rounding; rounding only happens when an amount is displayed.

// Mean divides total by n, returning zero when n is not positive.
func Mean(total decimal.Decimal, n int) decimal.Decimal {
	if n <= 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(n)))
}

// SplitEvenly divides amount into n equal shares.
func SplitEvenly(amount decimal.Decimal, n int) decimal.Decimal {
	return Mean(amount, n)
}

// FormatAmount renders an amount as "$1,234.50".
func FormatAmount(d decimal.Decimal) string {
	neg := d.IsNegative()
	s := d.Abs().StringFixed(2)

	whole, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	out := "$" + b.String() + "." + frac
	if neg {
		return "-" + out
	}
	return out
}
