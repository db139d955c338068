// Package matching turns quiz answers into catalog criteria.
package matching

import (
	"regexp"
	"strconv"
	"strings"
)

// PriceRange is an optional lower and upper bound parsed from option text.
type PriceRange struct {
	Min *float64
	Max *float64
}

const numberPattern = `(\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d+(?:\.\d+)?)`

var (
	currencySymbols = strings.NewReplacer("$", "", "€", "", "£", "", "¥", "", "₹", "")

	underPattern = regexp.MustCompile(`(?:under|less than|below|<)\s*` + numberPattern)
	overPattern  = regexp.MustCompile(`(?:over|above|more than|>)\s*` + numberPattern)
	plusPattern  = regexp.MustCompile(numberPattern + `\s*\+`)
	rangePattern = regexp.MustCompile(numberPattern + `\s*(?:-|–|—)\s*` + numberPattern)
)

// ParsePriceRange reads a budget out of display text such as "Under $50", "$100+" or
// "$50 - $100". It returns nil when the text carries no recognisable range.
func ParsePriceRange(text string) *PriceRange {
	normalized := currencySymbols.Replace(strings.ToLower(strings.TrimSpace(text)))
	if normalized == "" {
		return nil
	}

	if m := underPattern.FindStringSubmatch(normalized); m != nil {
		if max, ok := parseAmount(m[1]); ok {
			return &PriceRange{Max: &max}
		}
	}
	if m := overPattern.FindStringSubmatch(normalized); m != nil {
		if min, ok := parseAmount(m[1]); ok {
			return &PriceRange{Min: &min}
		}
	}
	if m := plusPattern.FindStringSubmatch(normalized); m != nil {
		if min, ok := parseAmount(m[1]); ok {
			return &PriceRange{Min: &min}
		}
	}
	if m := rangePattern.FindStringSubmatch(normalized); m != nil {
		min, okMin := parseAmount(m[1])
		max, okMax := parseAmount(m[2])
		if okMin && okMax {
			if min > max {
				min, max = max, min
			}
			return &PriceRange{Min: &min, Max: &max}
		}
	}
	return nil
}

func parseAmount(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
