package types

import "github.com/shopspring/decimal"

// Money amounts travel as JSON numbers, matching what clients of the storefront
// services already send and expect.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// MoneyScale is the number of fractional digits stored for balances and prices.
const MoneyScale = 2

// RoundMoney normalizes an amount read back from storage.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}
