// Package aggregate folds normalized transactions into the statutory GSTR-1
// detail tables and the independent GSTR-3B rollup.
package aggregate

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/shopspring/decimal"

	"gstrone/internal/domain"
	"gstrone/internal/port"
)

// LargeInvoiceThreshold is the statutory boundary above which an inter-state
// invoice to an unregistered buyer is reported invoice-level (b2cl) rather
// than in the small-buyer summary.
var LargeInvoiceThreshold = decimal.NewFromInt(250000)

const (
	categorySmall = "b2cs"
	categoryLarge = "b2cl"
)

// Aggregator builds the GSTR-1 tables for one generation run. Instances are
// cheap and must not be shared across concurrent runs.
type Aggregator struct {
	oracle        port.ClassificationOracle
	minConfidence float64
	ecoGSTIN      string
}

// New creates an Aggregator. oracle may be nil; the deterministic rules then
// decide every classification.
func New(oracle port.ClassificationOracle, minConfidence float64, ecoGSTIN string) *Aggregator {
	return &Aggregator{oracle: oracle, minConfidence: minConfidence, ecoGSTIN: ecoGSTIN}
}

type bucketKey struct {
	supplyType domain.SupplyType
	pos        string
	rate       string
}

type bucket struct {
	rate  decimal.Decimal
	txval decimal.Decimal
	igst  decimal.Decimal
	cgst  decimal.Decimal
	sgst  decimal.Decimal
	cess  decimal.Decimal
}

// Build aggregates the transaction set into every GSTR-1 table. Document
// ranges come from the sequencer and feed the documents-issued table.
func (a *Aggregator) Build(ctx context.Context, txns []domain.CanonicalTransaction, ranges []domain.DocumentRange) *Tables {
	t := &Tables{Eco: EcoSupplies{EcoTCS: []EcoRow{}, Eco95: []EcoRow{}}}

	buckets := map[bucketKey]*bucket{}
	var order []bucketKey

	ecoTotal := bucket{}
	hasSales := false
	registered := 0

	for i := range txns {
		txn := &txns[i]
		if !txn.HasAmounts() || txn.PlaceOfSupply == "" {
			continue
		}
		// B2C tables cover unregistered buyers only. Rows carrying a buyer
		// GSTIN belong in b2b, which this pipeline does not produce.
		if txn.BuyerGSTIN != "" {
			registered++
			continue
		}
		hasSales = true

		txval := txn.TaxableValue
		tax := txn.Tax
		if txn.IsReturn {
			txval = txval.Neg()
			tax = domain.TaxAmounts{
				CGST: tax.CGST.Neg(),
				SGST: tax.SGST.Neg(),
				IGST: tax.IGST.Neg(),
				Cess: tax.Cess.Neg(),
			}
		}

		ecoTotal.txval = ecoTotal.txval.Add(txval)
		ecoTotal.igst = ecoTotal.igst.Add(tax.IGST)
		ecoTotal.cgst = ecoTotal.cgst.Add(tax.CGST)
		ecoTotal.sgst = ecoTotal.sgst.Add(tax.SGST)

		if txn.Rate.IsZero() {
			a.addExempt(t, txn, txval)
			continue
		}

		if a.classify(ctx, txn) == categoryLarge {
			a.addLarge(t, txn)
			continue
		}

		supplyType := domain.SupplyInter
		if txn.IsIntraState {
			supplyType = domain.SupplyIntra
		}
		key := bucketKey{supplyType: supplyType, pos: txn.PlaceOfSupply, rate: txn.Rate.String()}
		b, ok := buckets[key]
		if !ok {
			b = &bucket{rate: txn.Rate}
			buckets[key] = b
			order = append(order, key)
		}
		b.txval = b.txval.Add(txval)
		b.igst = b.igst.Add(tax.IGST)
		b.cgst = b.cgst.Add(tax.CGST)
		b.sgst = b.sgst.Add(tax.SGST)
		b.cess = b.cess.Add(tax.Cess)
	}

	// POS ascending, then rate ascending numerically; first-encounter order
	// breaks remaining ties.
	sort.SliceStable(order, func(i, j int) bool {
		if order[i].pos != order[j].pos {
			return order[i].pos < order[j].pos
		}
		return buckets[order[i]].rate.LessThan(buckets[order[j]].rate)
	})

	for _, key := range order {
		b := buckets[key]
		t.B2CS = append(t.B2CS, B2CSRow{
			SupplyType:   key.supplyType,
			POS:          key.pos,
			Rate:         domain.Amt(b.rate),
			TaxableValue: domain.Amt(b.txval),
			IGST:         domain.Amt(b.igst),
			CGST:         domain.Amt(b.cgst),
			SGST:         domain.Amt(b.sgst),
			Cess:         domain.Amt(b.cess),
		})
	}

	sortLargeGroups(t)

	for _, kind := range domain.PortalDocOrder {
		for _, r := range ranges {
			if r.Kind != kind {
				continue
			}
			label, ok := domain.PortalDocLabels[kind]
			if !ok {
				label = domain.PortalDocLabels[domain.DocKindTaxInvoice]
			}
			t.DocIss = append(t.DocIss, DocIssRow{
				DocType:   label,
				From:      r.From,
				To:        r.To,
				IssuedNum: r.IssuedCount,
				Cancelled: r.CancelledCount,
			})
		}
	}

	if registered > 0 {
		t.Warnings = append(t.Warnings, fmt.Sprintf(
			"%d rows carry a buyer GSTIN and were excluded from the B2C tables; report them under b2b", registered))
	}

	if hasSales {
		t.Eco.EcoTCS = append(t.Eco.EcoTCS, EcoRow{
			EcoGSTIN:     a.ecoGSTIN,
			TaxableValue: domain.Amt(ecoTotal.txval),
			CGST:         domain.Amt(ecoTotal.cgst),
			SGST:         domain.Amt(ecoTotal.sgst),
			IGST:         domain.Amt(ecoTotal.igst),
		})
	}

	return t
}

// classify decides small vs large buyer reporting for one sales row. The
// deterministic rule is the statutory threshold; a configured oracle may
// refine the outcome for ambiguous rows but is never required.
func (a *Aggregator) classify(ctx context.Context, txn *domain.CanonicalTransaction) string {
	deterministic := categorySmall
	invoiceValue := txn.TaxableValue.Add(txn.Tax.Total())
	qualifies := !txn.IsReturn &&
		!txn.IsIntraState &&
		txn.BuyerGSTIN == "" &&
		txn.DocNumberNorm != "" &&
		txn.DocDate != nil &&
		invoiceValue.GreaterThan(LargeInvoiceThreshold)
	if qualifies {
		deterministic = categoryLarge
	}

	if a.oracle == nil {
		return deterministic
	}
	// Only rows near the threshold or with an unclear document type are worth
	// a network round trip.
	ambiguous := txn.DocKind == domain.DocKindUnknown ||
		invoiceValue.GreaterThan(LargeInvoiceThreshold.Mul(decimal.NewFromFloat(0.9)))
	if !ambiguous {
		return deterministic
	}

	sugg, err := a.oracle.Classify(ctx, port.ClassifyInput{
		DocTypeLabel:  string(txn.DocKind),
		DocNumber:     txn.DocNumberNorm,
		BuyerGSTIN:    txn.BuyerGSTIN,
		PlaceOfSupply: txn.PlaceOfSupply,
		TaxableValue:  txn.TaxableValue.String(),
		Rate:          txn.Rate.String(),
	})
	if err != nil {
		log.Printf("aggregate.Aggregator: oracle classify failed, using deterministic rule: %v", err)
		return deterministic
	}
	if sugg == nil || sugg.Confidence < a.minConfidence {
		return deterministic
	}
	switch sugg.Category {
	case categorySmall:
		return categorySmall
	case categoryLarge:
		// Invoice-level reporting stays limited to inter-state sales to
		// unregistered buyers with the invoice fields present. The oracle
		// refines within that rule, never past it.
		if txn.IsReturn || txn.IsIntraState || txn.BuyerGSTIN != "" ||
			txn.DocNumberNorm == "" || txn.DocDate == nil {
			return deterministic
		}
		return categoryLarge
	default:
		return deterministic
	}
}

func (a *Aggregator) addLarge(t *Tables, txn *domain.CanonicalTransaction) {
	inv := B2CLInvoice{
		Number:       txn.DocNumberNorm,
		Date:         txn.DocDate.Format("02-01-2006"),
		Value:        domain.Amt(txn.TaxableValue.Add(txn.Tax.Total())),
		Rate:         domain.Amt(txn.Rate),
		TaxableValue: domain.Amt(txn.TaxableValue),
		IGST:         domain.Amt(txn.Tax.IGST),
		Cess:         domain.Amt(txn.Tax.Cess),
	}
	for i := range t.B2CL {
		if t.B2CL[i].POS == txn.PlaceOfSupply {
			t.B2CL[i].Invoices = append(t.B2CL[i].Invoices, inv)
			return
		}
	}
	t.B2CL = append(t.B2CL, B2CLGroup{POS: txn.PlaceOfSupply, Invoices: []B2CLInvoice{inv}})
}

func (a *Aggregator) addExempt(t *Tables, txn *domain.CanonicalTransaction, txval decimal.Decimal) {
	supplyType := "INTRB2C"
	if txn.IsIntraState {
		supplyType = "INTRAB2C"
	}
	for i := range t.Exempt {
		if t.Exempt[i].SupplyType == supplyType {
			t.Exempt[i].NilAmount = domain.Amt(t.Exempt[i].NilAmount.Add(txval))
			return
		}
	}
	t.Exempt = append(t.Exempt, ExemptRow{
		SupplyType:   supplyType,
		NilAmount:    domain.Amt(txval),
		ExemptAmount: domain.Amt(decimal.Zero),
		NonGSTAmount: domain.Amt(decimal.Zero),
	})
}

func sortLargeGroups(t *Tables) {
	sort.SliceStable(t.B2CL, func(i, j int) bool { return t.B2CL[i].POS < t.B2CL[j].POS })
	for i := range t.B2CL {
		inv := t.B2CL[i].Invoices
		sort.SliceStable(inv, func(a, b int) bool { return inv[a].Number < inv[b].Number })
	}
}

// BuildRollup computes the GSTR-3B summary straight from the transaction set.
// It deliberately does not read the detail tables, so the reconciliation
// validator compares two independently derived figures.
func BuildRollup(txns []domain.CanonicalTransaction) *Rollup {
	r := &Rollup{}
	for i := range txns {
		txn := &txns[i]
		if !txn.HasAmounts() || txn.PlaceOfSupply == "" {
			continue
		}
		// Registered-buyer rows are excluded from the detail tables, so the
		// rollup excludes them too; both legs describe the same population.
		if txn.BuyerGSTIN != "" {
			continue
		}
		txval := txn.TaxableValue
		igst := txn.Tax.IGST
		cgst := txn.Tax.CGST
		sgst := txn.Tax.SGST
		cess := txn.Tax.Cess
		if txn.IsReturn {
			txval = txval.Neg()
			igst = igst.Neg()
			cgst = cgst.Neg()
			sgst = sgst.Neg()
			cess = cess.Neg()
		}

		// Everything flows through the operator for marketplace sellers.
		r.Sec311II.TaxableValue = r.Sec311II.TaxableValue.Add(txval)
		r.Sec311II.IGST = r.Sec311II.IGST.Add(igst)
		r.Sec311II.CGST = r.Sec311II.CGST.Add(cgst)
		r.Sec311II.SGST = r.Sec311II.SGST.Add(sgst)
		r.Sec311II.Cess = r.Sec311II.Cess.Add(cess)

		if !txn.IsIntraState {
			r.Sec32.TaxableValue = r.Sec32.TaxableValue.Add(txval)
			r.Sec32.IGST = r.Sec32.IGST.Add(igst)
		}
	}
	return r
}

// DetailTotal sums taxable value across the small-buyer, large-buyer, and
// exempt tables, the GSTR-1 side of the reconciliation.
func (t *Tables) DetailTotal() decimal.Decimal {
	total := decimal.Zero
	for _, row := range t.B2CS {
		total = total.Add(row.TaxableValue.Decimal)
	}
	for _, g := range t.B2CL {
		for _, inv := range g.Invoices {
			total = total.Add(inv.TaxableValue.Decimal)
		}
	}
	for _, row := range t.Exempt {
		total = total.Add(row.NilAmount.Decimal)
	}
	return total
}

// EcoTotal sums taxable value across the operator section.
func (t *Tables) EcoTotal() decimal.Decimal {
	total := decimal.Zero
	for _, row := range t.Eco.EcoTCS {
		total = total.Add(row.TaxableValue.Decimal)
	}
	for _, row := range t.Eco.Eco95 {
		total = total.Add(row.TaxableValue.Decimal)
	}
	return total
}

// String implements fmt.Stringer for log lines.
func (t *Tables) String() string {
	return fmt.Sprintf("tables{b2cs=%d b2cl=%d doc_iss=%d eco_tcs=%d exemp=%d}",
		len(t.B2CS), len(t.B2CL), len(t.DocIss), len(t.Eco.EcoTCS), len(t.Exempt))
}
