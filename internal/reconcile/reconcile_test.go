package reconcile_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gstrone/internal/aggregate"
	"gstrone/internal/domain"
	"gstrone/internal/reconcile"
	"gstrone/internal/taxcalc"
)

func buildConsistent(t *testing.T) (*aggregate.Tables, *aggregate.Rollup) {
	t.Helper()

	mk := func(pos, taxable, rate string) domain.CanonicalTransaction {
		txval := decimal.RequireFromString(taxable)
		r := decimal.RequireFromString(rate)
		intra := pos == "27"
		tax, err := taxcalc.Split(txval, r, intra)
		require.NoError(t, err)
		return domain.CanonicalTransaction{
			FileKind:      domain.FileKindTCSSales,
			DocKind:       domain.DocKindTaxInvoice,
			PlaceOfSupply: pos,
			TaxableValue:  txval,
			Rate:          r,
			IsIntraState:  intra,
			Tax:           tax,
		}
	}

	txns := []domain.CanonicalTransaction{
		mk("27", "1000", "18"),
		mk("29", "2000", "18"),
	}
	tables := aggregate.New(nil, 0.75, "07AARCM9332R1CQ").Build(context.Background(), txns, nil)
	return tables, aggregate.BuildRollup(txns)
}

func TestValidate_ConsistentSourcesProduceNoWarnings(t *testing.T) {
	tables, rollup := buildConsistent(t)
	warnings := reconcile.New(decimal.NewFromInt(1)).Validate(tables, rollup)
	assert.Empty(t, warnings)
}

func TestValidate_RegisteredBuyerRowsDoNotDriftLegs(t *testing.T) {
	registered := domain.CanonicalTransaction{
		FileKind:      domain.FileKindTCSSales,
		DocKind:       domain.DocKindTaxInvoice,
		PlaceOfSupply: "29",
		BuyerGSTIN:    "29AAACB1234C1ZD",
		TaxableValue:  decimal.RequireFromString("5000"),
		Rate:          decimal.RequireFromString("18"),
	}
	var err error
	registered.Tax, err = taxcalc.Split(registered.TaxableValue, registered.Rate, false)
	require.NoError(t, err)

	unregistered := registered
	unregistered.BuyerGSTIN = ""
	unregistered.TaxableValue = decimal.RequireFromString("2000")
	unregistered.Tax, err = taxcalc.Split(unregistered.TaxableValue, unregistered.Rate, false)
	require.NoError(t, err)

	txns := []domain.CanonicalTransaction{registered, unregistered}
	tables := aggregate.New(nil, 0.75, "07AARCM9332R1CQ").Build(context.Background(), txns, nil)
	rollup := aggregate.BuildRollup(txns)

	// Both legs leave the registered row out, so only the data-quality warning
	// from aggregation remains and reconciliation stays clean.
	warnings := reconcile.New(decimal.NewFromInt(1)).Validate(tables, rollup)
	assert.Empty(t, warnings)
}

func TestValidate_DetectsDrift(t *testing.T) {
	tables, rollup := buildConsistent(t)

	// Poison the rollup by more than the tolerance.
	rollup.Sec311II.TaxableValue = rollup.Sec311II.TaxableValue.Add(decimal.NewFromInt(5))

	warnings := reconcile.New(decimal.NewFromInt(1)).Validate(tables, rollup)
	require.NotEmpty(t, warnings)
	assert.Contains(t, warnings[0], "GSTR-1")
	assert.Contains(t, warnings[0], "GSTR-3B")
}

func TestValidate_ToleranceAbsorbsResidualCents(t *testing.T) {
	tables, rollup := buildConsistent(t)
	rollup.Sec311II.TaxableValue = rollup.Sec311II.TaxableValue.Add(decimal.RequireFromString("0.99"))

	warnings := reconcile.New(decimal.NewFromInt(1)).Validate(tables, rollup)
	assert.Empty(t, warnings)
}
