package domain

import "github.com/shopspring/decimal"

// Amount is a currency value that serializes as a JSON number with exactly
// two decimal places, rounded half-up at the serialization boundary.
// Internal pipeline arithmetic keeps full precision; conversion to Amount is
// the last step before output.
type Amount struct {
	decimal.Decimal
}

// Amt wraps a decimal as an output Amount.
func Amt(d decimal.Decimal) Amount {
	return Amount{d}
}

// MarshalJSON renders the amount as an unquoted number with two decimals,
// e.g. 1234.50, 0.00, -17.25.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.Round(2).StringFixed(2)), nil
}

// UnmarshalJSON accepts plain JSON numbers.
func (a *Amount) UnmarshalJSON(data []byte) error {
	d, err := decimal.NewFromString(string(data))
	if err != nil {
		return err
	}
	a.Decimal = d
	return nil
}
