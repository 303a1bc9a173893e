package domain

// Origin identifies where a transaction row came from.
type Origin string

const (
	OriginMarketplace Origin = "marketplace"
	OriginManual      Origin = "manual"
)

// FileKind classifies an uploaded export file.
type FileKind string

const (
	FileKindTCSSales       FileKind = "tcs_sales"
	FileKindTCSSalesReturn FileKind = "tcs_sales_return"
	FileKindTaxInvoice     FileKind = "tax_invoice"
	FileKindUnknown        FileKind = "unknown"
)

// DocumentKind is the canonical document type of a transaction row.
type DocumentKind string

const (
	DocKindTaxInvoice      DocumentKind = "tax_invoice"
	DocKindCreditNote      DocumentKind = "credit_note"
	DocKindDebitNote       DocumentKind = "debit_note"
	DocKindDeliveryChallan DocumentKind = "delivery_challan"
	DocKindRefundVoucher   DocumentKind = "refund_voucher"
	DocKindReceiptVoucher  DocumentKind = "receipt_voucher"
	DocKindUnknown         DocumentKind = "unknown"
)

// DocKindLabels maps free-text document type labels from source files to
// canonical kinds. Lookup is against the lowercased, trimmed label.
var DocKindLabels = map[string]DocumentKind{
	"invoice":          DocKindTaxInvoice,
	"tax invoice":      DocKindTaxInvoice,
	"credit note":      DocKindCreditNote,
	"credit":           DocKindCreditNote,
	"cn":               DocKindCreditNote,
	"debit note":       DocKindDebitNote,
	"debit":            DocKindDebitNote,
	"dn":               DocKindDebitNote,
	"delivery challan": DocKindDeliveryChallan,
	"challan":          DocKindDeliveryChallan,
	"refund voucher":   DocKindRefundVoucher,
	"refund":           DocKindRefundVoucher,
	"receipt voucher":  DocKindReceiptVoucher,
	"receipt":          DocKindReceiptVoucher,
}

// PortalDocLabels maps canonical document kinds to the exact strings the GST
// portal schema expects in the documents-issued table.
var PortalDocLabels = map[DocumentKind]string{
	DocKindTaxInvoice:      "Invoices for outward supply",
	DocKindCreditNote:      "Credit Notes",
	DocKindDebitNote:       "Debit Notes",
	DocKindDeliveryChallan: "Delivery Challans",
	DocKindRefundVoucher:   "Refund Voucher",
	DocKindReceiptVoucher:  "Receipt Voucher",
}

// PortalDocOrder fixes the emission order of documents-issued groups.
var PortalDocOrder = []DocumentKind{
	DocKindTaxInvoice,
	DocKindCreditNote,
	DocKindDebitNote,
	DocKindDeliveryChallan,
	DocKindRefundVoucher,
	DocKindReceiptVoucher,
}

// SupplyType distinguishes intra-state from inter-state supplies in the
// aggregated tables.
type SupplyType string

const (
	SupplyIntra SupplyType = "INTRA"
	SupplyInter SupplyType = "INTER"
)

// UploadStatus represents the lifecycle of an uploaded export file.
type UploadStatus string

const (
	UploadStatusPending   UploadStatus = "pending"
	UploadStatusParsed    UploadStatus = "parsed"
	UploadStatusFailed    UploadStatus = "failed"
	UploadStatusProcessed UploadStatus = "processed"
)
