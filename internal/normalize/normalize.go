package normalize

import (
	"fmt"
	"strings"
	"time"

	"gstrone/internal/domain"
	"gstrone/internal/sequence"
	"gstrone/internal/taxcalc"
)

// SkippedRecord identifies one source row excluded from aggregation and why.
type SkippedRecord struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// Result is the outcome of normalizing one file's worth of raw records.
// Warnings attach to the run, not to individual records.
type Result struct {
	Transactions []domain.CanonicalTransaction
	Warnings     []string
	Skipped      []SkippedRecord
}

// Normalizer converts raw spreadsheet records into canonical transactions.
type Normalizer struct {
	matcher     *Matcher
	sellerState string
}

// New creates a Normalizer for a seller registered in the given state.
func New(sellerStateCode string) *Normalizer {
	return &Normalizer{
		matcher:     NewMatcher(),
		sellerState: sellerStateCode,
	}
}

// Normalize maps every record onto the canonical schema. Records missing
// mandatory fields are excluded and reported in Result.Skipped; lookup misses
// degrade to null fields with a run warning. The call never fails on data
// content.
func (n *Normalizer) Normalize(headers []string, records []domain.RawRecord, kind domain.FileKind) *Result {
	res := &Result{}
	mappings := n.matcher.MapHeaders(headers)

	// Invert to canonical-field → source column, keeping the highest
	// confidence when two columns claim the same field.
	columns := map[string]HeaderMapping{}
	for _, m := range mappings {
		if prev, ok := columns[m.CanonicalField]; !ok || m.Confidence > prev.Confidence {
			columns[m.CanonicalField] = m
		}
	}

	switch kind {
	case domain.FileKindTCSSales, domain.FileKindTCSSalesReturn:
		n.normalizeSales(columns, records, kind, res)
	case domain.FileKindTaxInvoice:
		n.normalizeInvoiceDetail(columns, records, res)
	default:
		res.Warnings = append(res.Warnings, fmt.Sprintf("file kind %q not recognised; no rows normalized", kind))
	}

	return res
}

func (n *Normalizer) normalizeSales(columns map[string]HeaderMapping, records []domain.RawRecord, kind domain.FileKind, res *Result) {
	for _, f := range mandatoryFields {
		if _, ok := columns[f]; !ok {
			res.Warnings = append(res.Warnings, fmt.Sprintf("no source column mapped to mandatory field %q; all rows of this file will be skipped", f))
		}
	}

	isReturn := kind == domain.FileKindTCSSalesReturn
	unknownStates := map[string]bool{}

	for i, rec := range records {
		taxableRaw, ok := n.cell(columns, rec, FieldTaxableValue)
		if !ok {
			res.Skipped = append(res.Skipped, SkippedRecord{Index: i, Reason: "missing taxable value"})
			continue
		}
		taxable, ok := ParseMoney(taxableRaw)
		if !ok {
			res.Skipped = append(res.Skipped, SkippedRecord{Index: i, Reason: fmt.Sprintf("unparseable taxable value %q", taxableRaw)})
			continue
		}

		rateRaw, ok := n.cell(columns, rec, FieldRate)
		if !ok {
			res.Skipped = append(res.Skipped, SkippedRecord{Index: i, Reason: "missing GST rate"})
			continue
		}
		rate, ok := ParseMoney(rateRaw)
		if !ok {
			res.Skipped = append(res.Skipped, SkippedRecord{Index: i, Reason: fmt.Sprintf("unparseable GST rate %q", rateRaw)})
			continue
		}
		if !ValidRate(rate) {
			res.Skipped = append(res.Skipped, SkippedRecord{Index: i, Reason: fmt.Sprintf("rate %s is not a GST slab", rate)})
			continue
		}

		// Returns arrive either as negative amounts or flagged by file kind;
		// the canonical record stores the magnitude and the IsReturn flag.
		if taxable.IsNegative() {
			if isReturn {
				taxable = taxable.Abs()
			} else {
				res.Skipped = append(res.Skipped, SkippedRecord{Index: i, Reason: "negative taxable value on a sale row"})
				continue
			}
		}

		pos := ""
		if stateRaw, ok := n.cell(columns, rec, FieldPlaceOfSupply); ok {
			pos = StateCode(stateRaw)
			if pos == "" && !unknownStates[stateRaw] {
				unknownStates[stateRaw] = true
				res.Warnings = append(res.Warnings, fmt.Sprintf("unknown place of supply %q; rows kept with null jurisdiction", stateRaw))
			}
		}

		intra := pos != "" && pos == n.sellerState
		tax, err := taxcalc.Split(taxable, rate, intra)
		if err != nil {
			res.Skipped = append(res.Skipped, SkippedRecord{Index: i, Reason: err.Error()})
			continue
		}
		if cessRaw, ok := n.cell(columns, rec, FieldCess); ok {
			if cess, ok := ParseMoney(cessRaw); ok {
				tax.Cess = cess.Round(2)
			} else {
				res.Warnings = append(res.Warnings, fmt.Sprintf("unparseable cess %q coerced to zero", cessRaw))
			}
		}

		txn := domain.CanonicalTransaction{
			Origin:        domain.OriginMarketplace,
			FileKind:      kind,
			DocKind:       domain.DocKindTaxInvoice,
			PlaceOfSupply: pos,
			TaxableValue:  taxable,
			Rate:          rate,
			IsReturn:      isReturn,
			IsIntraState:  intra,
			Tax:           tax,
		}
		if isReturn {
			txn.DocKind = domain.DocKindCreditNote
		}

		if gstin, ok := n.cell(columns, rec, FieldBuyerGSTIN); ok {
			gstin = strings.ToUpper(strings.TrimSpace(gstin))
			if len(gstin) == 15 {
				txn.BuyerGSTIN = gstin
			}
		}
		n.fillDocumentNumber(columns, rec, &txn)
		n.fillDocumentDate(columns, rec, &txn, res)

		res.Transactions = append(res.Transactions, txn)
	}
}

// normalizeInvoiceDetail handles the tax-invoice detail export, which carries
// only document identities for serial-continuity analysis.
func (n *Normalizer) normalizeInvoiceDetail(columns map[string]HeaderMapping, records []domain.RawRecord, res *Result) {
	unknownTypes := map[string]bool{}

	for i, rec := range records {
		num, ok := n.cell(columns, rec, FieldInvoiceNo)
		if !ok {
			res.Skipped = append(res.Skipped, SkippedRecord{Index: i, Reason: "missing invoice number"})
			continue
		}

		kind := domain.DocKindTaxInvoice
		if label, ok := n.cell(columns, rec, FieldDocType); ok {
			k, found := domain.DocKindLabels[strings.ToLower(strings.TrimSpace(label))]
			if found {
				kind = k
			} else {
				kind = domain.DocKindUnknown
				if !unknownTypes[label] {
					unknownTypes[label] = true
					res.Warnings = append(res.Warnings, fmt.Sprintf("unmapped document type label %q", label))
				}
			}
		}

		txn := domain.CanonicalTransaction{
			Origin:   domain.OriginMarketplace,
			FileKind: domain.FileKindTaxInvoice,
			DocKind:  kind,
		}
		txn.DocNumberRaw = num
		txn.DocNumberNorm = sequence.NormalizeNumber(num)
		txn.DocPrefix, txn.DocSerial, txn.SerialPad = sequence.SplitSerial(txn.DocNumberNorm)
		n.fillDocumentDate(columns, rec, &txn, res)

		res.Transactions = append(res.Transactions, txn)
	}
}

func (n *Normalizer) fillDocumentNumber(columns map[string]HeaderMapping, rec domain.RawRecord, txn *domain.CanonicalTransaction) {
	num, ok := n.cell(columns, rec, FieldInvoiceNo)
	if !ok {
		return
	}
	txn.DocNumberRaw = num
	txn.DocNumberNorm = sequence.NormalizeNumber(num)
	txn.DocPrefix, txn.DocSerial, txn.SerialPad = sequence.SplitSerial(txn.DocNumberNorm)
}

var dateLayouts = []string{"2006-01-02", "02-01-2006", "02/01/2006", "2006/01/02", "02 Jan 2006"}

func (n *Normalizer) fillDocumentDate(columns map[string]HeaderMapping, rec domain.RawRecord, txn *domain.CanonicalTransaction, res *Result) {
	raw, ok := n.cell(columns, rec, FieldInvoiceDate)
	if !ok {
		return
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			txn.DocDate = &t
			return
		}
	}
	res.Warnings = append(res.Warnings, fmt.Sprintf("unparseable document date %q left null", raw))
}

// cell reads the source cell mapped to a canonical field. ok is false when
// the field has no mapped column or the cell is blank.
func (n *Normalizer) cell(columns map[string]HeaderMapping, rec domain.RawRecord, field string) (string, bool) {
	m, ok := columns[field]
	if !ok {
		return "", false
	}
	v := strings.TrimSpace(rec[m.SourceHeader])
	if v == "" {
		return "", false
	}
	return v, true
}
