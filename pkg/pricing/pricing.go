// Package pricing parses raw marketplace price text.
package pricing

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	numberToken    = regexp.MustCompile(`\d[\d.,]*`)
	decimalComma   = regexp.MustCompile(`,\d{2}$`)
	nonNumberChars = regexp.MustCompile(`[^\d.,]+`)
)

// Price is the result of parsing a raw price string. Value is nil when no number was found.
type Price struct {
	Value    *float64
	Currency string
}

// Parse extracts the price value and currency from text such as "EGP 2,013.50" or "1.299,00 ر.س".
// Currency is empty when the text carries no recognizable currency marker.
func Parse(raw string) Price {
	p := Price{Currency: DetectCurrency(raw)}
	if v, ok := ParseValue(raw); ok {
		p.Value = &v
	}
	return p
}

// ParseValue returns the last number-like token of raw, rounded to 2 decimals.
func ParseValue(raw string) (float64, bool) {
	s := strings.ReplaceAll(raw, " ", " ")
	s = nonNumberChars.ReplaceAllString(s, " ")

	tokens := numberToken.FindAllString(s, -1)
	if len(tokens) == 0 {
		return 0, false
	}

	num := normalize(strings.TrimRight(tokens[len(tokens)-1], ".,"))
	v, err := strconv.ParseFloat(num, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return math.Round(v*100) / 100, true
}

func normalize(num string) string {
	hasComma := strings.Contains(num, ",")
	hasDot := strings.Contains(num, ".")

	switch {
	case hasComma && !hasDot:
		// "99,50" is a decimal comma, "2,013" a thousands separator
		if decimalComma.MatchString(num) && strings.Count(num, ",") == 1 {
			return strings.Replace(num, ",", ".", 1)
		}
		return strings.ReplaceAll(num, ",", "")
	case hasComma && hasDot:
		// the separator appearing last is the decimal one
		if strings.LastIndex(num, ",") > strings.LastIndex(num, ".") {
			num = strings.ReplaceAll(num, ".", "")
			return strings.Replace(num, ",", ".", 1)
		}
		return strings.ReplaceAll(num, ",", "")
	case hasDot && strings.Count(num, ".") > 1:
		// "1.234.567"
		return strings.ReplaceAll(num, ".", "")
	}
	return num
}

var currencyMarkers = []struct {
	code    string
	markers []string
}{
	{"EGP", []string{"egp", "جنيه", "ج.م"}},
	{"SAR", []string{"sar", "ريال", "ر.س"}},
	{"AED", []string{"aed", "درهم", "د.إ"}},
	{"USD", []string{"usd", "us$", "$"}},
}

// DetectCurrency returns the ISO code found in raw, or an empty string.
func DetectCurrency(raw string) string {
	text := strings.ToLower(raw)
	for _, c := range currencyMarkers {
		for _, m := range c.markers {
			if strings.Contains(text, m) {
				return c.code
			}
		}
	}
	return ""
}
