package aggregate

import (
	"github.com/shopspring/decimal"

	"gstrone/internal/domain"
)

// B2CSRow is one small-buyer summary bucket, keyed by supply type, place of
// supply and rate. Field names follow the portal schema.
type B2CSRow struct {
	SupplyType   domain.SupplyType `json:"sply_ty"`
	POS          string            `json:"pos"`
	Rate         domain.Amount     `json:"rate"`
	TaxableValue domain.Amount     `json:"txval"`
	IGST         domain.Amount     `json:"iamt"`
	CGST         domain.Amount     `json:"camt"`
	SGST         domain.Amount     `json:"samt"`
	Cess         domain.Amount     `json:"csamt"`
}

// B2CLInvoice is one large unregistered-buyer invoice line.
type B2CLInvoice struct {
	Number       string        `json:"inum"`
	Date         string        `json:"idt"`
	Value        domain.Amount `json:"val"`
	Rate         domain.Amount `json:"rate"`
	TaxableValue domain.Amount `json:"txval"`
	IGST         domain.Amount `json:"iamt"`
	Cess         domain.Amount `json:"csamt"`
}

// B2CLGroup groups large invoices by place of supply.
type B2CLGroup struct {
	POS      string        `json:"pos"`
	Invoices []B2CLInvoice `json:"inv"`
}

// DocIssRow is one documents-issued series entry.
type DocIssRow struct {
	DocType   string `json:"doc_type"`
	From      string `json:"doc_from"`
	To        string `json:"doc_to"`
	IssuedNum int    `json:"doc_num"`
	Cancelled int64  `json:"cancelled"`
}

// EcoRow is one platform-operator supply summary.
type EcoRow struct {
	EcoGSTIN     string        `json:"eco_gstin"`
	TaxableValue domain.Amount `json:"txval"`
	CGST         domain.Amount `json:"camt"`
	SGST         domain.Amount `json:"samt"`
	IGST         domain.Amount `json:"iamt"`
}

// EcoSupplies is the nested platform-operator section. EcoTCS covers supplies
// where the operator collects TCS; Eco95 covers operator-liable supplies under
// section 9(5), empty for goods marketplaces.
type EcoSupplies struct {
	EcoTCS []EcoRow `json:"eco_tcs"`
	Eco95  []EcoRow `json:"eco_9_5"`
}

// ExemptRow is one nil-rated / exempt summary bucket by supply type.
type ExemptRow struct {
	SupplyType   string        `json:"sply_ty"`
	NilAmount    domain.Amount `json:"nil_amt"`
	ExemptAmount domain.Amount `json:"expt_amt"`
	NonGSTAmount domain.Amount `json:"ngsup_amt"`
}

// Tables holds every populated GSTR-1 detail table for one generation run.
type Tables struct {
	B2CS     []B2CSRow
	B2CL     []B2CLGroup
	DocIss   []DocIssRow
	Eco      EcoSupplies
	Exempt   []ExemptRow
	Warnings []string
}

// SectionTotals is one GSTR-3B section accumulator. Values stay unrounded
// until serialization.
type SectionTotals struct {
	TaxableValue decimal.Decimal
	IGST         decimal.Decimal
	CGST         decimal.Decimal
	SGST         decimal.Decimal
	Cess         decimal.Decimal
}

// Rollup is the GSTR-3B summary, computed directly from the transaction set
// rather than from the detail tables so reconciliation has an independent
// source of truth.
type Rollup struct {
	// Sec31A is outward taxable supplies outside the operator flow. Zero for
	// pure marketplace sellers.
	Sec31A SectionTotals
	// Sec311II is supplies made through the e-commerce operator.
	Sec311II SectionTotals
	// Sec32 is inter-state supplies to unregistered persons (taxable value
	// and IGST only).
	Sec32 SectionTotals
}
