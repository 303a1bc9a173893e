package taxcalc_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gstrone/internal/domain"
	"gstrone/internal/taxcalc"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestSplit_IntraState(t *testing.T) {
	tests := []struct {
		name    string
		taxable string
		rate    string
		cgst    string
		sgst    string
	}{
		{"even split", "1000", "18", "90.00", "90.00"},
		{"odd cent lands on sgst", "100.03", "18", "9.00", "9.01"},
		{"half cent boundary rounds up", "0.50", "1", "0.00", "0.01"},
		{"five percent", "999.99", "5", "25.00", "25.00"},
		{"fractional rate", "1000", "0.1", "0.50", "0.50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tax, err := taxcalc.Split(dec(tt.taxable), dec(tt.rate), true)
			require.NoError(t, err)

			assert.Equal(t, tt.cgst, tax.CGST.StringFixed(2))
			assert.Equal(t, tt.sgst, tax.SGST.StringFixed(2))
			assert.True(t, tax.IGST.IsZero())

			// CGST+SGST must reconstruct the rounded total exactly.
			total := dec(tt.taxable).Mul(dec(tt.rate)).Div(dec("100")).Round(2)
			assert.True(t, tax.CGST.Add(tax.SGST).Equal(total),
				"CGST %s + SGST %s != rounded total %s", tax.CGST, tax.SGST, total)
		})
	}
}

func TestSplit_HalvesSumToRoundedTotalAcrossGrid(t *testing.T) {
	rates := []string{"0.1", "0.25", "1", "1.5", "3", "5", "6", "7.5", "12", "18", "28"}
	hundred := dec("100")
	cent := dec("0.01")

	// A paise-level sweep per slab; the step is coprime with 100 so every
	// residual-cent phase gets hit.
	for _, rs := range rates {
		rate := dec(rs)
		for cents := int64(1); cents <= 100000; cents += 97 {
			value := decimal.New(cents, -2)
			tax, err := taxcalc.Split(value, rate, true)
			require.NoError(t, err)

			total := value.Mul(rate).Div(hundred).Round(2)
			if !tax.CGST.Add(tax.SGST).Equal(total) {
				t.Fatalf("value %s rate %s: CGST %s + SGST %s != rounded total %s",
					value, rs, tax.CGST, tax.SGST, total)
			}
			if tax.SGST.Sub(tax.CGST).Abs().GreaterThan(cent) {
				t.Fatalf("value %s rate %s: halves %s/%s differ by more than a paisa",
					value, rs, tax.CGST, tax.SGST)
			}

			inter, err := taxcalc.Split(value, rate, false)
			require.NoError(t, err)
			if !inter.IGST.Equal(total) {
				t.Fatalf("value %s rate %s: IGST %s != rounded total %s",
					value, rs, inter.IGST, total)
			}
		}
	}
}

func TestSplit_InterState(t *testing.T) {
	tax, err := taxcalc.Split(dec("2000"), dec("18"), false)
	require.NoError(t, err)

	assert.Equal(t, "360.00", tax.IGST.StringFixed(2))
	assert.True(t, tax.CGST.IsZero())
	assert.True(t, tax.SGST.IsZero())
}

func TestSplit_HalfUpAtBoundary(t *testing.T) {
	// 55.70 * 9 / 100 = 5.013 -> 5.01; 111.50 * 18 / 100 = 20.07 exactly.
	// 0.25% of 2.00 = 0.005, which must round up, not to even.
	tax, err := taxcalc.Split(dec("2.00"), dec("0.25"), false)
	require.NoError(t, err)
	assert.Equal(t, "0.01", tax.IGST.StringFixed(2))
}

func TestSplit_ZeroRate(t *testing.T) {
	tax, err := taxcalc.Split(dec("5000"), decimal.Zero, true)
	require.NoError(t, err)
	assert.True(t, tax.Total().IsZero())
}

func TestSplit_NegativeTaxable(t *testing.T) {
	_, err := taxcalc.Split(dec("-10"), dec("18"), true)
	assert.ErrorIs(t, err, domain.ErrNegativeTaxable)
}
