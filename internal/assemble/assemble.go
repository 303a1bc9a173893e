// Package assemble renders the aggregated tables into the portal-compliant
// GSTR-1 and GSTR-3B JSON documents.
package assemble

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"

	"gstrone/internal/aggregate"
	"gstrone/internal/domain"
)

// Version is the portal schema version stamped into every document.
const Version = "GST3.1.6"

var gstinRe = regexp.MustCompile(`^[0-9A-Z]{15}$`)

// GSTR1 is the complete portal payload. Every statutory key is present even
// when its table is empty; the portal rejects documents with missing keys.
type GSTR1 struct {
	GSTIN        string `json:"gstin"`
	FilingPeriod string `json:"fp"`
	Version      string `json:"version"`
	Hash         string `json:"hash"`

	B2B         []any                 `json:"b2b"`
	B2CL        []aggregate.B2CLGroup `json:"b2cl"`
	B2CS        []aggregate.B2CSRow   `json:"b2cs"`
	CDNR        []any                 `json:"cdnr"`
	CDNUR       []any                 `json:"cdnur"`
	Exports     []any                 `json:"exp"`
	Advances    []any                 `json:"at"`
	AdvancesAdj []any                 `json:"atadj"`
	Exempt      []aggregate.ExemptRow `json:"exemp"`
	HSN         []any                 `json:"hsn"`
	DocIss      []aggregate.DocIssRow `json:"doc_iss"`
	EcoSupplies aggregate.EcoSupplies `json:"eco_supplies"`
	NilSupplies map[string]any        `json:"nil_supplies"`
}

// Section31 is a GSTR-3B outward-supply section.
type Section31 struct {
	TaxableValue domain.Amount `json:"txval"`
	IGST         domain.Amount `json:"iamt"`
	CGST         domain.Amount `json:"camt"`
	SGST         domain.Amount `json:"samt"`
	Cess         domain.Amount `json:"csamt"`
}

// Section32 is the inter-state unregistered section; taxable value and IGST
// only per the portal schema.
type Section32 struct {
	TaxableValue domain.Amount `json:"txval"`
	IGST         domain.Amount `json:"iamt"`
}

// GSTR3B is the summary return payload.
type GSTR3B struct {
	GSTIN        string `json:"gstin"`
	FilingPeriod string `json:"fp"`
	Version      string `json:"version"`
	Hash         string `json:"hash"`

	Sec31A   Section31 `json:"sec_31a"`
	Sec311II Section31 `json:"sec_311_ii"`
	Sec32    Section32 `json:"sec_32"`
}

// Document is the full output of one generation run.
type Document struct {
	GSTR1    GSTR1    `json:"gstr1"`
	GSTR3B   GSTR3B   `json:"gstr3b"`
	Warnings []string `json:"warnings"`
}

// ValidateHeader checks the fatal input preconditions: a 15-character GSTIN
// and an MMYYYY filing period. Violations abort generation before any
// document is produced.
func ValidateHeader(gstin, filingPeriod string) error {
	if !gstinRe.MatchString(gstin) {
		return fmt.Errorf("gstin %q: %w", gstin, domain.ErrInvalidGSTIN)
	}
	if len(filingPeriod) != 6 {
		return fmt.Errorf("filing period %q: %w", filingPeriod, domain.ErrInvalidFilingPeriod)
	}
	month, err := strconv.Atoi(filingPeriod[:2])
	if err != nil || month < 1 || month > 12 {
		return fmt.Errorf("filing period %q: %w", filingPeriod, domain.ErrInvalidFilingPeriod)
	}
	if _, err := strconv.Atoi(filingPeriod[2:]); err != nil {
		return fmt.Errorf("filing period %q: %w", filingPeriod, domain.ErrInvalidFilingPeriod)
	}
	return nil
}

// Assemble builds the final document set. Inputs must already be aggregated;
// this step only validates headers, fixes empty placeholders, and copies the
// rollup into serializable form. An empty version falls back to the package
// default.
func Assemble(gstin, filingPeriod, version string, tables *aggregate.Tables, rollup *aggregate.Rollup, warnings []string) (*Document, error) {
	if err := ValidateHeader(gstin, filingPeriod); err != nil {
		return nil, err
	}
	if version == "" {
		version = Version
	}

	doc := &Document{
		GSTR1: GSTR1{
			GSTIN:        gstin,
			FilingPeriod: filingPeriod,
			Version:      version,
			B2B:          []any{},
			B2CL:         emptyGroups(tables.B2CL),
			B2CS:         emptyRows(tables.B2CS),
			CDNR:         []any{},
			CDNUR:        []any{},
			Exports:      []any{},
			Advances:     []any{},
			AdvancesAdj:  []any{},
			Exempt:       emptyExempt(tables.Exempt),
			HSN:          []any{},
			DocIss:       emptyDocIss(tables.DocIss),
			EcoSupplies:  tables.Eco,
			NilSupplies:  map[string]any{},
		},
		GSTR3B: GSTR3B{
			GSTIN:        gstin,
			FilingPeriod: filingPeriod,
			Version:      version,
			Sec31A: Section31{
				TaxableValue: domain.Amt(rollup.Sec31A.TaxableValue),
				IGST:         domain.Amt(rollup.Sec31A.IGST),
				CGST:         domain.Amt(rollup.Sec31A.CGST),
				SGST:         domain.Amt(rollup.Sec31A.SGST),
				Cess:         domain.Amt(rollup.Sec31A.Cess),
			},
			Sec311II: Section31{
				TaxableValue: domain.Amt(rollup.Sec311II.TaxableValue),
				IGST:         domain.Amt(rollup.Sec311II.IGST),
				CGST:         domain.Amt(rollup.Sec311II.CGST),
				SGST:         domain.Amt(rollup.Sec311II.SGST),
				Cess:         domain.Amt(rollup.Sec311II.Cess),
			},
			Sec32: Section32{
				TaxableValue: domain.Amt(rollup.Sec32.TaxableValue),
				IGST:         domain.Amt(rollup.Sec32.IGST),
			},
		},
		Warnings: warnings,
	}
	if doc.Warnings == nil {
		doc.Warnings = []string{}
	}
	if doc.GSTR1.EcoSupplies.EcoTCS == nil {
		doc.GSTR1.EcoSupplies.EcoTCS = []aggregate.EcoRow{}
	}
	if doc.GSTR1.EcoSupplies.Eco95 == nil {
		doc.GSTR1.EcoSupplies.Eco95 = []aggregate.EcoRow{}
	}

	h, err := contentHash(doc.GSTR1)
	if err != nil {
		return nil, fmt.Errorf("hashing gstr1: %w", err)
	}
	doc.GSTR1.Hash = h
	h, err = contentHash(doc.GSTR3B)
	if err != nil {
		return nil, fmt.Errorf("hashing gstr3b: %w", err)
	}
	doc.GSTR3B.Hash = h

	return doc, nil
}

// contentHash is the hex SHA-256 of the payload serialized with its hash field
// still empty. Struct field order makes the serialization canonical, so the
// same tables always hash the same.
func contentHash(payload any) (string, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

// Nil slices serialize as JSON null; the portal wants [].

func emptyRows(rows []aggregate.B2CSRow) []aggregate.B2CSRow {
	if rows == nil {
		return []aggregate.B2CSRow{}
	}
	return rows
}

func emptyGroups(groups []aggregate.B2CLGroup) []aggregate.B2CLGroup {
	if groups == nil {
		return []aggregate.B2CLGroup{}
	}
	return groups
}

func emptyExempt(rows []aggregate.ExemptRow) []aggregate.ExemptRow {
	if rows == nil {
		return []aggregate.ExemptRow{}
	}
	return rows
}

func emptyDocIss(rows []aggregate.DocIssRow) []aggregate.DocIssRow {
	if rows == nil {
		return []aggregate.DocIssRow{}
	}
	return rows
}
