package normalize

// Canonical field names the normalizer can map source columns onto.
const (
	FieldBuyerGSTIN    = "gstin_uin"
	FieldInvoiceNo     = "invoice_no"
	FieldInvoiceDate   = "invoice_date"
	FieldTaxableValue  = "taxable_value"
	FieldPlaceOfSupply = "place_of_supply"
	FieldRate          = "gst_rate"
	FieldCess          = "cess_amount"
	FieldDocType       = "invoice_type"
)

// fieldSynonyms lists, per canonical field, the source column names seen in
// marketplace exports and manual workbooks. Matching normalizes both sides
// (lowercase, collapsed whitespace, punctuation stripped) before comparing.
var fieldSynonyms = map[string][]string{
	FieldBuyerGSTIN: {
		"gstin of recipient", "recipient gstin", "bill to gstin", "buyer gstin",
		"ctin", "gstin/uin", "gstin", "uin",
	},
	FieldInvoiceNo: {
		"invoice number", "invoice no.", "inv no", "invoice no", "inv_no",
		"bill no", "bill number",
	},
	FieldInvoiceDate: {
		"invoice date", "date", "inv date", "bill date", "transaction date",
	},
	FieldTaxableValue: {
		"taxable value", "total_taxable_sale_value", "txval", "taxable val",
		"assessable value", "invoice value",
	},
	FieldPlaceOfSupply: {
		"place of supply", "pos", "state", "end_customer_state_new",
		"customer state", "supply state", "destination state",
	},
	FieldRate: {
		"gst rate", "gst_rate", "rate", "tax rate", "gst %", "rate %",
	},
	FieldCess: {
		"cess", "cess amount", "csamt",
	},
	FieldDocType: {
		"invoice type", "type", "doc type", "document type",
	},
}

// mandatoryFields lists the canonical fields a sales/return row must resolve
// for the row to enter aggregation. Rows missing these are skipped (with a
// per-run report entry), not failed.
var mandatoryFields = []string{FieldTaxableValue, FieldRate}
