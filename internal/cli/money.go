package cli

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// parseMoney converts a major-unit amount such as "12.50" to cents.
func parseMoney(s string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("amount %q is negative", s)
	}
	if !d.Equal(d.Truncate(2)) {
		return 0, fmt.Errorf("amount %q has more than two decimal places", s)
	}
	return d.Shift(2).IntPart(), nil
}

// parseRate reads a percentage, falling back to def when s is empty.
func parseRate(s string, def decimal.Decimal) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return def, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid rate %q", s)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("rate %q is negative", s)
	}
	return d, nil
}
