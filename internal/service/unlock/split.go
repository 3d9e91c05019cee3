package unlock

import "github.com/shopspring/decimal"

// moneyPlaces is the scale of every stored USD amount.
const moneyPlaces = 4

var hundred = decimal.NewFromInt(100)

// Split is the commission split of one unlock.
type Split struct {
	Gross      decimal.Decimal
	FeePercent decimal.Decimal
	Fee        decimal.Decimal
	Net        decimal.Decimal
}

// SplitEarnings values credits at rate and takes feePercent off the top.
// Gross and Fee are rounded half away from zero; Net is their difference,
// so Gross == Fee + Net exactly.
func SplitEarnings(credits int64, rate, feePercent decimal.Decimal) Split {
	gross := decimal.NewFromInt(credits).Mul(rate).Round(moneyPlaces)
	fee := gross.Mul(feePercent).Div(hundred).Round(moneyPlaces)
	return Split{
		Gross:      gross,
		FeePercent: feePercent,
		Fee:        fee,
		Net:        gross.Sub(fee),
	}
}
