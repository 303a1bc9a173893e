// Package sequence analyses invoice-number continuity per document series.
// A series is the leading alphanumeric prefix of a document number; the
// trailing numeric run is its serial. Gaps between the first and last
// observed serial are reported as cancelled documents.
package sequence

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"gstrone/internal/domain"
)

// DefaultEnumerationCap bounds explicit missing-serial enumeration; beyond it
// only the cancelled count is reported.
const DefaultEnumerationCap = 100

var serialRe = regexp.MustCompile(`^(.+?)(\d{1,12})$`)

// NormalizeNumber trims, uppercases, and removes interior spaces from a raw
// document number.
func NormalizeNumber(raw string) string {
	return strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(raw)), " ", "")
}

// SplitSerial splits a normalized document number into prefix, numeric serial,
// and the serial's zero-pad width. Serial is nil when the number carries no
// trailing numeric run.
//
//	"INV001"       -> ("INV", 1, 3)
//	"AB-2024-0042" -> ("AB-2024-", 42, 4)
//	"ADHOC"        -> ("ADHOC", nil, 0)
func SplitSerial(norm string) (string, *int64, int) {
	m := serialRe.FindStringSubmatch(norm)
	if m == nil {
		return norm, nil, 0
	}
	serial, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		return norm, nil, 0
	}
	return m[1], &serial, len(m[2])
}

// FormatSerial renders a serial back into document-number form with its pad.
func FormatSerial(prefix string, serial int64, pad int) string {
	return fmt.Sprintf("%s%0*d", prefix, pad, serial)
}

// Result is the continuity analysis over one transaction set.
type Result struct {
	Ranges []domain.DocumentRange
	// NonSequential groups document numbers with no numeric serial, per kind.
	NonSequential map[domain.DocumentKind][]string
	Warnings      []string
}

// Analyzer detects serial ranges and cancelled documents.
type Analyzer struct {
	enumerationCap int
}

// NewAnalyzer creates an Analyzer. A cap of 0 falls back to the default.
func NewAnalyzer(enumerationCap int) *Analyzer {
	if enumerationCap <= 0 {
		enumerationCap = DefaultEnumerationCap
	}
	return &Analyzer{enumerationCap: enumerationCap}
}

type seriesKey struct {
	kind   domain.DocumentKind
	prefix string
}

// Analyze groups document-issuing transactions by kind and prefix, then
// computes one DocumentRange per series. Duplicate serials count once toward
// the issued count and raise a data-quality warning. Missing serials are
// enumerated explicitly while the gap stays within the enumeration cap.
// Numbers with no numeric serial land in a residual non-sequential range per
// kind.
func (a *Analyzer) Analyze(txns []domain.CanonicalTransaction) *Result {
	res := &Result{NonSequential: map[domain.DocumentKind][]string{}}

	series := map[seriesKey]map[int64]int{}
	pads := map[seriesKey]int{}
	var order []seriesKey

	for i := range txns {
		t := &txns[i]
		if t.DocNumberNorm == "" {
			continue
		}
		if t.DocSerial == nil {
			res.NonSequential[t.DocKind] = append(res.NonSequential[t.DocKind], t.DocNumberNorm)
			continue
		}
		key := seriesKey{kind: t.DocKind, prefix: t.DocPrefix}
		if _, ok := series[key]; !ok {
			series[key] = map[int64]int{}
			order = append(order, key)
		}
		series[key][*t.DocSerial]++
		if t.SerialPad > pads[key] {
			pads[key] = t.SerialPad
		}
	}

	// Deterministic output: kind order as first seen, prefixes sorted within.
	sort.SliceStable(order, func(i, j int) bool {
		if order[i].kind != order[j].kind {
			return order[i].kind < order[j].kind
		}
		return order[i].prefix < order[j].prefix
	})

	for _, key := range order {
		counts := series[key]
		serials := make([]int64, 0, len(counts))
		dupes := 0
		for s, c := range counts {
			serials = append(serials, s)
			if c > 1 {
				dupes += c - 1
			}
		}
		sort.Slice(serials, func(i, j int) bool { return serials[i] < serials[j] })

		if dupes > 0 {
			res.Warnings = append(res.Warnings, fmt.Sprintf(
				"series %s: %d duplicate document numbers counted once", key.prefix, dupes))
		}

		first, last := serials[0], serials[len(serials)-1]
		expected := last - first + 1
		issued := len(serials)
		cancelled := expected - int64(issued)
		if cancelled < 0 {
			cancelled = 0
		}

		r := domain.DocumentRange{
			Kind:           key.kind,
			Prefix:         key.prefix,
			FirstSerial:    first,
			LastSerial:     last,
			IssuedCount:    issued,
			ExpectedCount:  expected,
			CancelledCount: cancelled,
			From:           FormatSerial(key.prefix, first, pads[key]),
			To:             FormatSerial(key.prefix, last, pads[key]),
			Sequential:     cancelled == 0,
		}

		if cancelled > 0 && cancelled <= int64(a.enumerationCap) {
			r.CancelledSerials = missingSerials(serials, first, last)
		}

		res.Ranges = append(res.Ranges, r)
	}

	res.Ranges = append(res.Ranges, a.residualRanges(res.NonSequential)...)

	return res
}

// residualRanges reports numbers with no numeric serial as one bucket per
// document kind. The bucket carries the issued count only and is never
// sequential; serial arithmetic does not apply to it.
func (a *Analyzer) residualRanges(nonSeq map[domain.DocumentKind][]string) []domain.DocumentRange {
	kinds := make([]domain.DocumentKind, 0, len(nonSeq))
	for kind := range nonSeq {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	var ranges []domain.DocumentRange
	for _, kind := range kinds {
		seen := map[string]struct{}{}
		uniq := make([]string, 0, len(nonSeq[kind]))
		for _, n := range nonSeq[kind] {
			if _, ok := seen[n]; ok {
				continue
			}
			seen[n] = struct{}{}
			uniq = append(uniq, n)
		}
		if len(uniq) == 0 {
			continue
		}
		sort.Strings(uniq)
		ranges = append(ranges, domain.DocumentRange{
			Kind:          kind,
			IssuedCount:   len(uniq),
			ExpectedCount: int64(len(uniq)),
			From:          uniq[0],
			To:            uniq[len(uniq)-1],
			Sequential:    false,
		})
	}
	return ranges
}

// missingSerials is the set difference of [first, last] against the observed
// sorted serial list.
func missingSerials(observed []int64, first, last int64) []int64 {
	var missing []int64
	idx := 0
	for s := first; s <= last; s++ {
		for idx < len(observed) && observed[idx] < s {
			idx++
		}
		if idx >= len(observed) || observed[idx] != s {
			missing = append(missing, s)
		}
	}
	return missing
}
