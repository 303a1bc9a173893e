// Package csvexport renders generated filing tables as CSV for sellers who
// review in a spreadsheet before uploading to the portal.
package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gstrone/internal/aggregate"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// b2csColumns defines the small-buyer summary header row.
var b2csColumns = []string{
	"Supply Type",
	"Place of Supply",
	"Rate",
	"Taxable Value",
	"IGST",
	"CGST",
	"SGST",
	"Cess",
}

// docIssColumns defines the documents-issued header row.
var docIssColumns = []string{
	"Document Type",
	"Serial From",
	"Serial To",
	"Issued",
	"Cancelled",
}

// Writer wraps csv.Writer for exporting filing tables.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w. Callers wanting Excel
// compatibility should write BOM to w first.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteB2CS writes the small-buyer summary table with its header row.
func (w *Writer) WriteB2CS(rows []aggregate.B2CSRow) error {
	if err := w.csv.Write(b2csColumns); err != nil {
		return err
	}
	for i := range rows {
		r := &rows[i]
		record := []string{
			string(r.SupplyType),
			r.POS,
			r.Rate.StringFixed(2),
			r.TaxableValue.StringFixed(2),
			r.IGST.StringFixed(2),
			r.CGST.StringFixed(2),
			r.SGST.StringFixed(2),
			r.Cess.StringFixed(2),
		}
		if err := w.csv.Write(record); err != nil {
			return err
		}
	}
	return nil
}

// WriteDocIss writes the documents-issued table with its header row.
func (w *Writer) WriteDocIss(rows []aggregate.DocIssRow) error {
	if err := w.csv.Write(docIssColumns); err != nil {
		return err
	}
	for i := range rows {
		r := &rows[i]
		record := []string{
			r.DocType,
			r.From,
			r.To,
			strconv.Itoa(r.IssuedNum),
			strconv.FormatInt(r.Cancelled, 10),
		}
		if err := w.csv.Write(record); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use in Content-Disposition. Replaces
// non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized filename for the Content-Disposition
// header, e.g. b2cs_092025_2025-10-11.csv.
func BuildFilename(table, filingPeriod string) string {
	sanitized := SanitizeFilename(table + "_" + filingPeriod)
	date := time.Now().Format("2006-01-02")
	return fmt.Sprintf("%s_%s.csv", sanitized, date)
}
