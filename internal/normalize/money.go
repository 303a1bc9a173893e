package normalize

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var currencyRe = regexp.MustCompile(`[₹$€£,\s]|Rs\.?`)

// ParseMoney parses a monetary cell into an exact decimal. It tolerates
// currency symbols, thousands separators, and accounting-style parentheses
// for negatives. Returns ok=false for cells that carry no parseable number.
//
//	"₹1,234.56"  -> 1234.56
//	"(100.50)"   -> -100.50
//	""           -> 0, false
func ParseMoney(raw string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	s = currencyRe.ReplaceAllString(s, "")
	if s == "" {
		return decimal.Zero, false
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if negative {
		d = d.Neg()
	}
	return d, true
}

// validRates are the GST rate slabs accepted for aggregation.
var validRates = map[string]bool{
	"0": true, "0.1": true, "0.25": true, "1": true, "1.5": true,
	"3": true, "5": true, "6": true, "7.5": true, "12": true,
	"18": true, "28": true,
}

// ValidRate reports whether the rate is one of the statutory GST slabs.
func ValidRate(rate decimal.Decimal) bool {
	return validRates[rate.String()]
}
