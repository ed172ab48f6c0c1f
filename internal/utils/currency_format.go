package utils

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// FormatAmount renders an amount in the given display currency, e.g. "€1,234.50".
// Amounts are shifted into minor units using the currency's fraction so the
// formatter never rounds through floats.
func FormatAmount(amount decimal.Decimal, currencyCode string) string {
	cur := money.GetCurrency(currencyCode)
	if cur == nil {
		return amount.String()
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0)
	return money.New(minor.IntPart(), currencyCode).Display()
}
