// Package taxcalc computes the CGST/SGST/IGST split for a transaction in
// exact decimal arithmetic. The splitter is sign-agnostic: returns store the
// same computation and the aggregator negates at accumulation time.
package taxcalc

import (
	"github.com/shopspring/decimal"

	"gstrone/internal/domain"
)

var (
	two     = decimal.NewFromInt(2)
	hundred = decimal.NewFromInt(100)
)

// Split computes the tax breakdown for a taxable value at a GST rate.
//
// Intra-state: the total tax is halved into CGST and SGST, each rounded
// half-up to 2 decimals, with the residual cent assigned to SGST so that
// CGST + SGST equals round(total) exactly. Inter-state: the whole rounded
// total goes to IGST.
//
// A zero rate yields all-zero tax (nil-rated supply). A negative taxable
// value is a malformed record, not an implicit return.
func Split(taxableValue, rate decimal.Decimal, intraState bool) (domain.TaxAmounts, error) {
	if taxableValue.IsNegative() {
		return domain.TaxAmounts{}, domain.ErrNegativeTaxable
	}

	raw := taxableValue.Mul(rate).Div(hundred)
	total := roundHalfUp(raw)

	var t domain.TaxAmounts
	if intraState {
		t.CGST = roundHalfUp(raw.Div(two))
		// Remainder, not an independent rounding, so the halves always sum
		// back to the rounded total.
		t.SGST = total.Sub(t.CGST)
	} else {
		t.IGST = total
	}
	t.Cess = decimal.Zero
	t.CGST = orZero(t.CGST)
	t.SGST = orZero(t.SGST)
	t.IGST = orZero(t.IGST)
	return t, nil
}

// roundHalfUp rounds to 2 decimal places with ties away from zero, matching
// the portal's expectation for currency values.
func roundHalfUp(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

func orZero(d decimal.Decimal) decimal.Decimal {
	if d.IsZero() {
		return decimal.Zero
	}
	return d
}
