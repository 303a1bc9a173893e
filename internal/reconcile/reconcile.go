// Package reconcile cross-checks the GSTR-1 detail tables against the
// independently computed GSTR-3B rollup. Mismatches are advisory; generation
// never fails on a reconciliation warning.
package reconcile

import (
	"fmt"

	"github.com/shopspring/decimal"

	"gstrone/internal/aggregate"
	"gstrone/internal/domain"
)

// DefaultTolerance is the absolute rupee difference allowed before a mismatch
// warning is raised. Covers residual-cent drift from per-row rounding.
var DefaultTolerance = decimal.NewFromInt(1)

// Validator compares two independently derived figures for the same totals.
type Validator struct {
	tolerance decimal.Decimal
}

// New creates a Validator. A non-positive tolerance falls back to the default.
func New(tolerance decimal.Decimal) *Validator {
	if tolerance.LessThanOrEqual(decimal.Zero) {
		tolerance = DefaultTolerance
	}
	return &Validator{tolerance: tolerance}
}

// Validate returns one advisory warning per field whose detail-table figure
// and rollup figure differ by more than the tolerance. An empty slice means
// the two sources agree.
func (v *Validator) Validate(tables *aggregate.Tables, rollup *aggregate.Rollup) []string {
	warnings := []string{}

	checks := []struct {
		field  string
		detail decimal.Decimal
		rollup decimal.Decimal
	}{
		{"taxable value (detail tables vs sec 3.1.1(ii))", tables.DetailTotal(), rollup.Sec311II.TaxableValue},
		{"operator taxable value (eco_supplies vs sec 3.1.1(ii))", tables.EcoTotal(), rollup.Sec311II.TaxableValue},
		{"IGST (b2cs+b2cl vs sec 3.1.1(ii))", detailIGST(tables), rollup.Sec311II.IGST},
		{"CGST (b2cs vs sec 3.1.1(ii))", detailCGST(tables), rollup.Sec311II.CGST},
		{"SGST (b2cs vs sec 3.1.1(ii))", detailSGST(tables), rollup.Sec311II.SGST},
		{"inter-state taxable value (detail tables vs sec 3.2)", interStateDetail(tables), rollup.Sec32.TaxableValue},
	}

	for _, c := range checks {
		if c.detail.Sub(c.rollup).Abs().GreaterThan(v.tolerance) {
			warnings = append(warnings, fmt.Sprintf(
				"reconciliation mismatch on %s: GSTR-1 ₹%s vs GSTR-3B ₹%s",
				c.field, c.detail.StringFixed(2), c.rollup.StringFixed(2)))
		}
	}

	return warnings
}

func detailIGST(t *aggregate.Tables) decimal.Decimal {
	total := decimal.Zero
	for _, row := range t.B2CS {
		total = total.Add(row.IGST.Decimal)
	}
	for _, g := range t.B2CL {
		for _, inv := range g.Invoices {
			total = total.Add(inv.IGST.Decimal)
		}
	}
	return total
}

func detailCGST(t *aggregate.Tables) decimal.Decimal {
	total := decimal.Zero
	for _, row := range t.B2CS {
		total = total.Add(row.CGST.Decimal)
	}
	return total
}

func detailSGST(t *aggregate.Tables) decimal.Decimal {
	total := decimal.Zero
	for _, row := range t.B2CS {
		total = total.Add(row.SGST.Decimal)
	}
	return total
}

func interStateDetail(t *aggregate.Tables) decimal.Decimal {
	total := decimal.Zero
	for _, row := range t.B2CS {
		if row.SupplyType == domain.SupplyInter {
			total = total.Add(row.TaxableValue.Decimal)
		}
	}
	for _, g := range t.B2CL {
		for _, inv := range g.Invoices {
			total = total.Add(inv.TaxableValue.Decimal)
		}
	}
	for _, row := range t.Exempt {
		if row.SupplyType == "INTRB2C" {
			total = total.Add(row.NilAmount.Decimal)
		}
	}
	return total
}
