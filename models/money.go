package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is handled as integer minor units (cents) everywhere inside the
// system. Decimal values only exist at the boundary: parsing admin
// input and rendering display strings.

// ParseCents converts a boundary price string like "99.99" into minor
// units, rounding to the cent.
func ParseCents(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q: %w", s, err)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("invalid price %q: negative", s)
	}
	return d.Shift(2).Round(0).IntPart(), nil
}

// FormatCents renders minor units in display form with two decimals.
func FormatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}
