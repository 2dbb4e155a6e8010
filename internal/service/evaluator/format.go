package evaluator

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

const rupee = "₹"

// FormatCurrency renders an amount in rupees with Indian digit grouping and no
// fraction digits, e.g. 123456.7 -> "₹1,23,457". Amounts that round to zero
// render as "₹0" whatever their sign.
func FormatCurrency(amount float64) string {
	switch {
	case math.IsNaN(amount):
		return rupee + "NaN"
	case math.IsInf(amount, 1):
		return rupee + "∞"
	case math.IsInf(amount, -1):
		return "-" + rupee + "∞"
	}

	rounded := decimal.NewFromFloat(amount).Round(0)

	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Abs()
	}

	return sign + rupee + groupIndian(rounded.String())
}

// FormatNumber renders num with a fixed number of decimals. Rounding applies to
// the exact binary value, half away from zero, so 1.005 gives "1.00".
func FormatNumber(num float64, decimals int) string {
	switch {
	case math.IsNaN(num):
		return "NaN"
	case math.IsInf(num, 1):
		return "Infinity"
	case math.IsInf(num, -1):
		return "-Infinity"
	}

	if decimals < 0 {
		decimals = 0
	}
	return decimal.NewFromFloatWithExponent(num, int32(-decimals)).StringFixed(int32(decimals))
}

// groupIndian inserts separators after the last three digits and then every two.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]

	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	if head != "" {
		groups = append([]string{head}, groups...)
	}

	return strings.Join(append(groups, tail), ",")
}
