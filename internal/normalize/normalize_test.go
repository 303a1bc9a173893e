package normalize_test

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gstrone/internal/domain"
	"gstrone/internal/normalize"
)

func TestMatcher_Priorities(t *testing.T) {
	m := normalize.NewMatcher()

	t.Run("exact match wins with full confidence", func(t *testing.T) {
		mapping, ok := m.Match("GST Rate")
		require.True(t, ok)
		assert.Equal(t, normalize.FieldRate, mapping.CanonicalField)
		assert.Equal(t, normalize.MatchExact, mapping.MatchType)
		assert.Equal(t, 1.0, mapping.Confidence)
	})

	t.Run("substring match", func(t *testing.T) {
		mapping, ok := m.Match("Total Taxable Value (INR)")
		require.True(t, ok)
		assert.Equal(t, normalize.FieldTaxableValue, mapping.CanonicalField)
		assert.Equal(t, normalize.MatchSubstring, mapping.MatchType)
		assert.GreaterOrEqual(t, mapping.Confidence, 0.85)
	})

	t.Run("fuzzy match stays below substring band", func(t *testing.T) {
		mapping, ok := m.Match("invoice numbr")
		require.True(t, ok)
		assert.Equal(t, normalize.FieldInvoiceNo, mapping.CanonicalField)
		assert.Equal(t, normalize.MatchFuzzy, mapping.MatchType)
		assert.Less(t, mapping.Confidence, 0.85)
		assert.GreaterOrEqual(t, mapping.Confidence, 0.70)
	})

	t.Run("garbage matches nothing", func(t *testing.T) {
		_, ok := m.Match("zzzzqqqq")
		assert.False(t, ok)
	})
}

func TestParseMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"₹1,234.56", "1234.56", true},
		{"Rs. 500", "500", true},
		{"(100.50)", "-100.5", true},
		{"-42", "-42", true},
		{"18", "18", true},
		{"", "0", false},
		{"n/a", "0", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, ok := normalize.ParseMoney(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, d.String())
			}
		})
	}
}

func TestStateCode(t *testing.T) {
	assert.Equal(t, "27", normalize.StateCode("Maharashtra"))
	assert.Equal(t, "29", normalize.StateCode("karnataka"))
	assert.Equal(t, "07", normalize.StateCode("7"))
	assert.Equal(t, "27", normalize.StateCode("27"))
	assert.Equal(t, "", normalize.StateCode("Atlantis"))
}

func salesHeaders() []string {
	return []string{"gst_rate", "total_taxable_sale_value", "end_customer_state_new"}
}

func TestNormalize_SalesRows(t *testing.T) {
	n := normalize.New("27")

	records := []domain.RawRecord{
		{"gst_rate": "18", "total_taxable_sale_value": "1000", "end_customer_state_new": "Maharashtra"},
		{"gst_rate": "18", "total_taxable_sale_value": "2000", "end_customer_state_new": "Karnataka"},
	}

	res := n.Normalize(salesHeaders(), records, domain.FileKindTCSSales)
	require.Len(t, res.Transactions, 2)
	assert.Empty(t, res.Skipped)

	intra := res.Transactions[0]
	assert.True(t, intra.IsIntraState)
	assert.Equal(t, "27", intra.PlaceOfSupply)
	assert.Equal(t, "90.00", intra.Tax.CGST.StringFixed(2))
	assert.Equal(t, "90.00", intra.Tax.SGST.StringFixed(2))

	inter := res.Transactions[1]
	assert.False(t, inter.IsIntraState)
	assert.Equal(t, "29", inter.PlaceOfSupply)
	assert.Equal(t, "360.00", inter.Tax.IGST.StringFixed(2))
}

func TestNormalize_ReturnsKeepMagnitudeAndFlag(t *testing.T) {
	n := normalize.New("27")

	records := []domain.RawRecord{
		{"gst_rate": "18", "total_taxable_sale_value": "-1000", "end_customer_state_new": "Maharashtra"},
	}

	res := n.Normalize(salesHeaders(), records, domain.FileKindTCSSalesReturn)
	require.Len(t, res.Transactions, 1)

	txn := res.Transactions[0]
	assert.True(t, txn.IsReturn)
	assert.Equal(t, domain.DocKindCreditNote, txn.DocKind)
	assert.True(t, txn.TaxableValue.Equal(decimal.NewFromInt(1000)))
}

func TestNormalize_SkipsAndWarnings(t *testing.T) {
	n := normalize.New("27")

	records := []domain.RawRecord{
		{"gst_rate": "18", "total_taxable_sale_value": ""},
		{"gst_rate": "17", "total_taxable_sale_value": "100"},
		{"gst_rate": "18", "total_taxable_sale_value": "-5"},
		{"gst_rate": "18", "total_taxable_sale_value": "100", "end_customer_state_new": "Narnia"},
	}

	res := n.Normalize(salesHeaders(), records, domain.FileKindTCSSales)

	// Missing value, invalid slab, and negative-on-sale are skipped; the
	// unknown state row is kept with a null jurisdiction.
	require.Len(t, res.Skipped, 3)
	require.Len(t, res.Transactions, 1)
	assert.Equal(t, "", res.Transactions[0].PlaceOfSupply)

	found := false
	for _, w := range res.Warnings {
		if strings.Contains(w, "Narnia") {
			found = true
		}
	}
	assert.True(t, found, "expected an unknown-state warning, got %v", res.Warnings)
}

func TestNormalize_InvoiceDetail(t *testing.T) {
	n := normalize.New("27")

	headers := []string{"Invoice No.", "Type"}
	records := []domain.RawRecord{
		{"Invoice No.": "inv 001", "Type": "Credit Note"},
		{"Invoice No.": "INV002", "Type": "Proforma Thing"},
		{"Invoice No.": "", "Type": "Invoice"},
	}

	res := n.Normalize(headers, records, domain.FileKindTaxInvoice)
	require.Len(t, res.Transactions, 2)
	require.Len(t, res.Skipped, 1)

	assert.Equal(t, "INV001", res.Transactions[0].DocNumberNorm)
	assert.Equal(t, domain.DocKindCreditNote, res.Transactions[0].DocKind)

	assert.Equal(t, domain.DocKindUnknown, res.Transactions[1].DocKind)
	require.NotEmpty(t, res.Warnings)
	assert.Contains(t, res.Warnings[0], "Proforma Thing")
}
