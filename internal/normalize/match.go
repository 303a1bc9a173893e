package normalize

import (
	"regexp"
	"strings"

	"github.com/agnivade/levenshtein"
)

// MatchType identifies which matching rule produced a header mapping.
type MatchType string

const (
	MatchExact     MatchType = "exact"
	MatchSubstring MatchType = "substring"
	MatchFuzzy     MatchType = "fuzzy"
)

// HeaderMapping is one resolved source-column → canonical-field mapping.
type HeaderMapping struct {
	SourceHeader   string    `json:"source_header"`
	CanonicalField string    `json:"canonical_field"`
	Confidence     float64   `json:"confidence"`
	MatchType      MatchType `json:"match_type"`
}

// minMatchConfidence is the floor below which a candidate mapping is
// discarded rather than risked.
const minMatchConfidence = 0.70

var (
	spaceRe = regexp.MustCompile(`\s+`)
	punctRe = regexp.MustCompile(`[\(\)\[\]{}"'` + "`" + `]`)
)

// normalizeHeader lowercases, trims, collapses whitespace, and strips
// bracketing punctuation so that "Invoice  No." and "invoice no." compare equal.
func normalizeHeader(h string) string {
	s := strings.ToLower(strings.TrimSpace(h))
	s = spaceRe.ReplaceAllString(s, " ")
	s = punctRe.ReplaceAllString(s, "")
	return s
}

// Matcher maps raw spreadsheet headers to canonical fields using a
// priority-ordered rule list: exact match, then substring, then fuzzy.
type Matcher struct {
	synonyms map[string][]string
}

// NewMatcher creates a Matcher over the built-in canonical field synonyms.
func NewMatcher() *Matcher {
	return &Matcher{synonyms: fieldSynonyms}
}

// Match resolves a single header to its best canonical field, or returns
// false when no rule reaches the confidence floor.
func (m *Matcher) Match(header string) (HeaderMapping, bool) {
	best := HeaderMapping{SourceHeader: header}

	for field := range m.synonyms {
		score, typ := m.score(header, field)
		if score > best.Confidence {
			best.CanonicalField = field
			best.Confidence = score
			best.MatchType = typ
		}
	}

	if best.Confidence < minMatchConfidence {
		return HeaderMapping{}, false
	}
	return best, true
}

// MapHeaders resolves all headers, keyed by the original source header.
// Headers that match nothing are simply absent from the result.
func (m *Matcher) MapHeaders(headers []string) map[string]HeaderMapping {
	out := make(map[string]HeaderMapping, len(headers))
	for _, h := range headers {
		if mapping, ok := m.Match(h); ok {
			out[h] = mapping
		}
	}
	return out
}

func (m *Matcher) score(header, field string) (float64, MatchType) {
	hn := normalizeHeader(header)
	if hn == "" {
		return 0, ""
	}

	for _, syn := range m.synonyms[field] {
		if hn == normalizeHeader(syn) {
			return 1.0, MatchExact
		}
	}

	// Substring: longer overlaps score higher within the 0.85–0.95 band.
	var bestSub float64
	for _, syn := range m.synonyms[field] {
		sn := normalizeHeader(syn)
		if strings.Contains(hn, sn) || strings.Contains(sn, hn) {
			shorter, longer := len(hn), len(sn)
			if shorter > longer {
				shorter, longer = longer, shorter
			}
			score := 0.85 + 0.1*float64(shorter)/float64(longer)
			if score > bestSub {
				bestSub = score
			}
		}
	}
	if bestSub > 0 {
		return bestSub, MatchSubstring
	}

	// Fuzzy: edit-distance similarity, scaled into 0.70–0.85 so a fuzzy hit
	// never outranks a substring or exact hit.
	var bestRatio float64
	for _, syn := range m.synonyms[field] {
		sn := normalizeHeader(syn)
		if r := similarity(hn, sn); r > bestRatio {
			bestRatio = r
		}
	}
	if bestRatio >= 0.75 {
		return 0.70 + (bestRatio-0.75)*0.6, MatchFuzzy
	}

	return 0, ""
}

// similarity is 1 - normalized Levenshtein distance.
func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 0
	}
	d := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(d)/float64(longest)
}
