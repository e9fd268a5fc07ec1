package handler

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Amounts cross the API as decimal strings ("1500.00") and are stored as
// int64 minor units. At most two decimal places are accepted.
func parseAmount(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parseAmount: %w", err)
	}
	if d.Exponent() < -2 {
		return 0, fmt.Errorf("parseAmount: more than two decimal places")
	}
	return d.Shift(2).IntPart(), nil
}

func formatAmount(minor int64) string {
	return decimal.New(minor, -2).StringFixed(2)
}
