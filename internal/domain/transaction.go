package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RawRecord is one spreadsheet row as received from the ingestion layer:
// a flat mapping of source column name to raw cell text.
type RawRecord map[string]string

// TaxAmounts is the split tax computed for one transaction. CGST and SGST are
// populated for intra-state supplies, IGST for inter-state; cess is
// independent and usually zero. Mutually exclusive by IsIntraState.
type TaxAmounts struct {
	CGST decimal.Decimal `json:"cgst"`
	SGST decimal.Decimal `json:"sgst"`
	IGST decimal.Decimal `json:"igst"`
	Cess decimal.Decimal `json:"cess"`
}

// Total returns the sum of all tax components.
func (t TaxAmounts) Total() decimal.Decimal {
	return t.CGST.Add(t.SGST).Add(t.IGST).Add(t.Cess)
}

// CanonicalTransaction is one normalized line item. Instances are created
// once during normalization, are immutable afterwards, and are owned by the
// generation run that produced them.
type CanonicalTransaction struct {
	Origin   Origin       `json:"origin"`
	FileKind FileKind     `json:"file_kind"`
	DocKind  DocumentKind `json:"doc_kind"`

	DocNumberRaw  string `json:"doc_number_raw"`
	DocNumberNorm string `json:"doc_number_norm"`
	// DocPrefix and DocSerial are derived by splitting DocNumberNorm into a
	// leading alphanumeric prefix and a trailing numeric run. DocSerial is
	// nil when the number has no numeric suffix.
	DocPrefix string `json:"doc_prefix"`
	DocSerial *int64 `json:"doc_serial"`
	SerialPad int    `json:"serial_pad"`

	DocDate *time.Time `json:"doc_date"`

	// BuyerGSTIN is empty for unregistered buyers.
	BuyerGSTIN string `json:"buyer_gstin"`
	// PlaceOfSupply is the 2-digit state code, empty when unresolvable.
	PlaceOfSupply string `json:"place_of_supply"`

	// TaxableValue is stored positive even for returns; IsReturn drives sign
	// negation at aggregation time.
	TaxableValue decimal.Decimal `json:"taxable_value"`
	Rate         decimal.Decimal `json:"rate"`
	IsReturn     bool            `json:"is_return"`
	IsIntraState bool            `json:"is_intra_state"`

	Tax TaxAmounts `json:"tax"`
}

// HasAmounts reports whether the row carries the monetary fields needed for
// table aggregation (rows from tax-invoice detail files carry only document
// numbers for serial tracking).
func (t *CanonicalTransaction) HasAmounts() bool {
	return t.FileKind == FileKindTCSSales || t.FileKind == FileKindTCSSalesReturn
}

// DocumentRange is the serial-continuity analysis result for one document
// prefix. Computed once per generation run, never persisted as mutable state.
type DocumentRange struct {
	Kind           DocumentKind `json:"kind"`
	Prefix         string       `json:"prefix"`
	FirstSerial    int64        `json:"first_serial"`
	LastSerial     int64        `json:"last_serial"`
	IssuedCount    int          `json:"issued_count"`
	ExpectedCount  int64        `json:"expected_count"`
	CancelledCount int64        `json:"cancelled_count"`
	// CancelledSerials lists the missing serials when their count is within
	// the enumeration cap; nil above the cap (count-only reporting).
	CancelledSerials []int64 `json:"cancelled_serials,omitempty"`
	// From and To are the padded boundary document numbers, e.g. INV001.
	From       string `json:"from"`
	To         string `json:"to"`
	Sequential bool   `json:"sequential"`
}
