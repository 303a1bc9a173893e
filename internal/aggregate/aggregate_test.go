package aggregate_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gstrone/internal/aggregate"
	"gstrone/internal/domain"
	"gstrone/internal/port"
	"gstrone/internal/taxcalc"
)

const ecoGSTIN = "07AARCM9332R1CQ"

func salesTxn(t *testing.T, pos, taxable, rate string, sellerState string, isReturn bool) domain.CanonicalTransaction {
	t.Helper()
	txval := dec(taxable)
	r := dec(rate)
	intra := pos == sellerState

	tax, err := taxcalc.Split(txval, r, intra)
	require.NoError(t, err)

	kind := domain.FileKindTCSSales
	docKind := domain.DocKindTaxInvoice
	if isReturn {
		kind = domain.FileKindTCSSalesReturn
		docKind = domain.DocKindCreditNote
	}
	return domain.CanonicalTransaction{
		Origin:        domain.OriginMarketplace,
		FileKind:      kind,
		DocKind:       docKind,
		PlaceOfSupply: pos,
		TaxableValue:  txval,
		Rate:          r,
		IsReturn:      isReturn,
		IsIntraState:  intra,
		Tax:           tax,
	}
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func mustDate(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestBuild_SaleAndReturnCancel(t *testing.T) {
	txns := []domain.CanonicalTransaction{
		salesTxn(t, "27", "1000", "18", "27", false),
		salesTxn(t, "27", "1000", "18", "27", true),
		salesTxn(t, "29", "2000", "18", "27", false),
	}

	agg := aggregate.New(nil, 0.75, ecoGSTIN)
	tables := agg.Build(context.Background(), txns, nil)

	require.Len(t, tables.B2CS, 2)

	intra := tables.B2CS[0]
	assert.Equal(t, domain.SupplyIntra, intra.SupplyType)
	assert.Equal(t, "27", intra.POS)
	assert.Equal(t, "0.00", intra.TaxableValue.StringFixed(2))
	assert.Equal(t, "0.00", intra.CGST.StringFixed(2))
	assert.Equal(t, "0.00", intra.SGST.StringFixed(2))

	inter := tables.B2CS[1]
	assert.Equal(t, domain.SupplyInter, inter.SupplyType)
	assert.Equal(t, "29", inter.POS)
	assert.Equal(t, "2000.00", inter.TaxableValue.StringFixed(2))
	assert.Equal(t, "360.00", inter.IGST.StringFixed(2))

	require.Len(t, tables.Eco.EcoTCS, 1)
	assert.Equal(t, ecoGSTIN, tables.Eco.EcoTCS[0].EcoGSTIN)
	assert.Equal(t, "2000.00", tables.Eco.EcoTCS[0].TaxableValue.StringFixed(2))
	assert.Empty(t, tables.Eco.Eco95)
}

func TestBuild_DeterministicOrdering(t *testing.T) {
	txns := []domain.CanonicalTransaction{
		salesTxn(t, "29", "100", "28", "27", false),
		salesTxn(t, "29", "100", "5", "27", false),
		salesTxn(t, "07", "100", "18", "27", false),
	}

	tables := aggregate.New(nil, 0.75, ecoGSTIN).Build(context.Background(), txns, nil)
	require.Len(t, tables.B2CS, 3)

	// POS ascending, then rate ascending numerically.
	assert.Equal(t, "07", tables.B2CS[0].POS)
	assert.Equal(t, "29", tables.B2CS[1].POS)
	assert.Equal(t, "5.00", tables.B2CS[1].Rate.StringFixed(2))
	assert.Equal(t, "29", tables.B2CS[2].POS)
	assert.Equal(t, "28.00", tables.B2CS[2].Rate.StringFixed(2))
}

func TestBuild_SignSymmetry(t *testing.T) {
	sale := salesTxn(t, "29", "3333.33", "12", "27", false)
	ret := salesTxn(t, "29", "3333.33", "12", "27", true)

	tables := aggregate.New(nil, 0.75, ecoGSTIN).Build(context.Background(),
		[]domain.CanonicalTransaction{sale, ret}, nil)

	require.Len(t, tables.B2CS, 1)
	assert.True(t, tables.B2CS[0].TaxableValue.IsZero())
	assert.True(t, tables.B2CS[0].IGST.IsZero())
}

func TestBuild_ZeroRateGoesToExempt(t *testing.T) {
	txns := []domain.CanonicalTransaction{
		salesTxn(t, "29", "500", "0", "27", false),
		salesTxn(t, "27", "300", "0", "27", false),
	}

	tables := aggregate.New(nil, 0.75, ecoGSTIN).Build(context.Background(), txns, nil)
	assert.Empty(t, tables.B2CS)
	require.Len(t, tables.Exempt, 2)
	assert.Equal(t, "INTRB2C", tables.Exempt[0].SupplyType)
	assert.Equal(t, "500.00", tables.Exempt[0].NilAmount.StringFixed(2))
	assert.Equal(t, "INTRAB2C", tables.Exempt[1].SupplyType)
}

func TestBuild_LargeInvoiceThreshold(t *testing.T) {
	date := mustDate("2025-09-10")
	large := salesTxn(t, "29", "300000", "18", "27", false)
	large.DocNumberNorm = "INV900"
	large.DocDate = &date

	small := salesTxn(t, "29", "2000", "18", "27", false)

	tables := aggregate.New(nil, 0.75, ecoGSTIN).Build(context.Background(),
		[]domain.CanonicalTransaction{large, small}, nil)

	require.Len(t, tables.B2CL, 1)
	assert.Equal(t, "29", tables.B2CL[0].POS)
	require.Len(t, tables.B2CL[0].Invoices, 1)
	inv := tables.B2CL[0].Invoices[0]
	assert.Equal(t, "INV900", inv.Number)
	assert.Equal(t, "10-09-2025", inv.Date)
	assert.Equal(t, "300000.00", inv.TaxableValue.StringFixed(2))
	assert.Equal(t, "354000.00", inv.Value.StringFixed(2))

	require.Len(t, tables.B2CS, 1)
	assert.Equal(t, "2000.00", tables.B2CS[0].TaxableValue.StringFixed(2))
}

func TestBuild_DocIssFromRanges(t *testing.T) {
	ranges := []domain.DocumentRange{
		{Kind: domain.DocKindCreditNote, Prefix: "CN", From: "CN01", To: "CN05", IssuedCount: 5},
		{Kind: domain.DocKindTaxInvoice, Prefix: "INV", From: "INV001", To: "INV009", IssuedCount: 5, CancelledCount: 4},
	}

	tables := aggregate.New(nil, 0.75, ecoGSTIN).Build(context.Background(), nil, ranges)
	require.Len(t, tables.DocIss, 2)

	// Portal ordering puts invoices before credit notes regardless of input order.
	assert.Equal(t, "Invoices for outward supply", tables.DocIss[0].DocType)
	assert.Equal(t, int64(4), tables.DocIss[0].Cancelled)
	assert.Equal(t, "Credit Notes", tables.DocIss[1].DocType)
}

// lowConfidenceOracle always answers below any sane confidence threshold.
type lowConfidenceOracle struct{}

func (o *lowConfidenceOracle) Classify(_ context.Context, _ port.ClassifyInput) (*port.Suggestion, error) {
	return &port.Suggestion{Category: "b2cl", Confidence: 0.10, Rationale: "guess"}, nil
}

func (o *lowConfidenceOracle) Insights(_ context.Context, _ map[string]any) ([]string, error) {
	return nil, nil
}

func TestBuild_OracleIndependence(t *testing.T) {
	date := mustDate("2025-09-01")
	nearThreshold := salesTxn(t, "29", "240000", "18", "27", false)
	nearThreshold.DocNumberNorm = "INV100"
	nearThreshold.DocDate = &date

	txns := []domain.CanonicalTransaction{
		nearThreshold,
		salesTxn(t, "27", "1000", "18", "27", false),
	}

	disabled := aggregate.New(nil, 0.75, ecoGSTIN).Build(context.Background(), txns, nil)
	lowConf := aggregate.New(&lowConfidenceOracle{}, 0.75, ecoGSTIN).Build(context.Background(), txns, nil)

	a, err := json.Marshal(disabled)
	require.NoError(t, err)
	b, err := json.Marshal(lowConf)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

// confidentLargeOracle insists every row is invoice-level, at full confidence.
type confidentLargeOracle struct{}

func (o *confidentLargeOracle) Classify(_ context.Context, _ port.ClassifyInput) (*port.Suggestion, error) {
	return &port.Suggestion{Category: "b2cl", Confidence: 0.99, Rationale: "looks large"}, nil
}

func (o *confidentLargeOracle) Insights(_ context.Context, _ map[string]any) ([]string, error) {
	return nil, nil
}

func TestBuild_OracleCannotRouteReturnsToLargeInvoices(t *testing.T) {
	date := mustDate("2025-09-15")
	sale := salesTxn(t, "29", "260000", "18", "27", false)
	sale.DocNumberNorm = "INV500"
	sale.DocDate = &date

	ret := salesTxn(t, "29", "260000", "18", "27", true)
	ret.DocNumberNorm = "CN500"
	ret.DocDate = &date

	tables := aggregate.New(&confidentLargeOracle{}, 0.75, ecoGSTIN).Build(context.Background(),
		[]domain.CanonicalTransaction{sale, ret}, nil)

	// The sale is invoice-level; the return must subtract in the summary, not
	// appear as a second positive invoice.
	require.Len(t, tables.B2CL, 1)
	require.Len(t, tables.B2CL[0].Invoices, 1)
	assert.Equal(t, "INV500", tables.B2CL[0].Invoices[0].Number)

	require.Len(t, tables.B2CS, 1)
	assert.Equal(t, "-260000.00", tables.B2CS[0].TaxableValue.StringFixed(2))

	assert.Equal(t, "0.00", tables.DetailTotal().StringFixed(2))
}

func TestBuild_RegisteredBuyerExcludedFromB2CTables(t *testing.T) {
	registered := salesTxn(t, "29", "5000", "18", "27", false)
	registered.BuyerGSTIN = "29AAACB1234C1ZD"

	txns := []domain.CanonicalTransaction{
		registered,
		salesTxn(t, "29", "2000", "18", "27", false),
	}

	tables := aggregate.New(nil, 0.75, ecoGSTIN).Build(context.Background(), txns, nil)

	require.Len(t, tables.B2CS, 1)
	assert.Equal(t, "2000.00", tables.B2CS[0].TaxableValue.StringFixed(2))
	assert.Equal(t, "2000.00", tables.EcoTotal().StringFixed(2))

	require.Len(t, tables.Warnings, 1)
	assert.Contains(t, tables.Warnings[0], "buyer GSTIN")

	// The rollup excludes the same rows, so both legs reconcile.
	rollup := aggregate.BuildRollup(txns)
	assert.Equal(t, "2000.00", rollup.Sec311II.TaxableValue.StringFixed(2))
	assert.Equal(t, "2000.00", rollup.Sec32.TaxableValue.StringFixed(2))
}

func TestBuildRollup_IndependentOfTables(t *testing.T) {
	txns := []domain.CanonicalTransaction{
		salesTxn(t, "27", "1000", "18", "27", false),
		salesTxn(t, "27", "1000", "18", "27", true),
		salesTxn(t, "29", "2000", "18", "27", false),
	}

	rollup := aggregate.BuildRollup(txns)

	assert.Equal(t, "2000.00", rollup.Sec311II.TaxableValue.StringFixed(2))
	assert.Equal(t, "360.00", rollup.Sec311II.IGST.StringFixed(2))
	assert.Equal(t, "0.00", rollup.Sec311II.CGST.StringFixed(2))
	assert.Equal(t, "2000.00", rollup.Sec32.TaxableValue.StringFixed(2))
	assert.Equal(t, "360.00", rollup.Sec32.IGST.StringFixed(2))
	assert.True(t, rollup.Sec31A.TaxableValue.IsZero())
}
