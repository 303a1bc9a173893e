package ingest

import (
	"strings"

	"gstrone/internal/domain"
)

// DetectKind identifies a marketplace export file from its filename and
// column headers. Filename patterns win; column signatures are the fallback
// for renamed files.
func DetectKind(filename string, headers []string) domain.FileKind {
	name := strings.ToLower(filename)

	switch {
	case strings.Contains(name, "tcs_sales_return") || strings.Contains(name, "sales_return"):
		return domain.FileKindTCSSalesReturn
	case strings.Contains(name, "tcs_sales"):
		return domain.FileKindTCSSales
	case strings.Contains(name, "tax_invoice") || strings.Contains(name, "invoice_details"):
		return domain.FileKindTaxInvoice
	}

	lower := make([]string, len(headers))
	for i, h := range headers {
		lower[i] = strings.ToLower(strings.TrimSpace(h))
	}
	contains := func(substrs ...string) bool {
		for _, h := range lower {
			ok := true
			for _, s := range substrs {
				if !strings.Contains(h, s) {
					ok = false
					break
				}
			}
			if ok {
				return true
			}
		}
		return false
	}
	has := func(col string) bool {
		for _, h := range lower {
			if h == col {
				return true
			}
		}
		return false
	}

	// Tax-invoice detail files carry a document type column and invoice numbers.
	if contains("type") && contains("invoice", "no") {
		return domain.FileKindTaxInvoice
	}

	// TCS sales files carry the rate and taxable-value signature columns.
	if has("gst_rate") && has("total_taxable_sale_value") {
		if strings.Contains(name, "return") {
			return domain.FileKindTCSSalesReturn
		}
		return domain.FileKindTCSSales
	}

	return domain.FileKindUnknown
}
