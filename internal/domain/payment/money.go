package payment

import "github.com/shopspring/decimal"

var centsPerUnit = decimal.NewFromInt(100)

// ToMinorUnits converts a decimal amount in major units to the integer
// minor-unit representation the processor expects (e.g. 10.50 -> 1050).
// Anything beyond two fractional digits is truncated, never rounded.
//
// Zero-decimal currencies (JPY and friends) are not distinguished here; the
// processor receives the same *100 conversion for every currency.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(centsPerUnit).IntPart()
}

// FromMinorUnits converts an integer minor-unit amount back to major units
// with exactly two fractional digits (e.g. 1050 -> 10.50). The division is
// exact; no binary floating point is involved.
func FromMinorUnits(units int64) decimal.Decimal {
	return decimal.New(units, -2)
}
