package normalize

import "strings"

// stateCodes maps lowercased Indian state/UT names to their 2-digit GST
// jurisdiction codes.
var stateCodes = map[string]string{
	"andhra pradesh":        "37",
	"arunachal pradesh":     "12",
	"assam":                 "18",
	"bihar":                 "10",
	"chhattisgarh":          "22",
	"goa":                   "30",
	"gujarat":               "24",
	"haryana":               "06",
	"himachal pradesh":      "02",
	"jharkhand":             "20",
	"karnataka":             "29",
	"kerala":                "32",
	"madhya pradesh":        "23",
	"maharashtra":           "27",
	"manipur":               "14",
	"meghalaya":             "17",
	"mizoram":               "15",
	"nagaland":              "13",
	"odisha":                "21",
	"punjab":                "03",
	"rajasthan":             "08",
	"sikkim":                "11",
	"tamil nadu":            "33",
	"telangana":             "36",
	"tripura":               "16",
	"uttar pradesh":         "09",
	"uttarakhand":           "05",
	"west bengal":           "19",
	"andaman and nicobar islands": "35",
	"chandigarh":                  "04",
	"dadra and nagar haveli and daman and diu": "26",
	"delhi":             "07",
	"jammu and kashmir": "01",
	"ladakh":            "38",
	"lakshadweep":       "31",
	"puducherry":        "34",
}

// StateCode resolves a state name or code to a 2-digit GST state code.
// Returns "" when the value cannot be resolved.
func StateCode(value string) string {
	s := strings.ToLower(strings.TrimSpace(value))
	if s == "" {
		return ""
	}

	// Already a numeric code ("27", "7", "07").
	if len(s) <= 2 && isDigits(s) {
		if len(s) == 1 {
			return "0" + s
		}
		return s
	}

	if code, ok := stateCodes[s]; ok {
		return code
	}

	// Partial match covers variants like "Delhi (NCT)" or "Tamilnadu".
	for name, code := range stateCodes {
		if strings.Contains(s, name) || strings.Contains(name, s) {
			return code
		}
	}

	return ""
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
