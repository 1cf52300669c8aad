package currency

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// Normalize checks that code is a known ISO 4217 currency and returns its
// canonical form.
func Normalize(code string) (string, error) {
	unit, err := currency.ParseISO(strings.TrimSpace(code))
	if err != nil {
		return "", fmt.Errorf("currency %q: %w", code, err)
	}
	return unit.String(), nil
}

// Format renders amount with two decimals, comma thousands separators and
// the currency code, e.g. "1,240.00 EUR".
func Format(amount decimal.Decimal, code string) string {
	negative := amount.IsNegative()
	if negative {
		amount = amount.Neg()
	}

	fixed := amount.StringFixed(2)
	intPart, fracPart, _ := strings.Cut(fixed, ".")

	result := addThousandsSeparator(intPart, ",") + "." + fracPart
	if negative {
		result = "-" + result
	}
	if code != "" {
		result += " " + code
	}
	return result
}

func addThousandsSeparator(s string, sep string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	numSeps := (n - 1) / 3
	result := make([]byte, n+numSeps)

	j := len(result) - 1
	for i := n - 1; i >= 0; i-- {
		result[j] = s[i]
		j--

		pos := n - i
		if pos%3 == 0 && i > 0 {
			result[j] = sep[0]
			j--
		}
	}

	return string(result)
}
