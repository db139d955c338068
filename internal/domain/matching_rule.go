package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// CurrentMatchingRuleVersion is written by the editor for new options.
const CurrentMatchingRuleVersion = 2

// MatchingRule maps an option to catalog predicates.
type MatchingRule struct {
	Version         int
	Tags            []string
	Types           []string
	ExactProductIDs []string
	BudgetMin       *float64
	BudgetMax       *float64
}

// IsEmpty reports whether the rule contributes no predicates at all.
func (r MatchingRule) IsEmpty() bool {
	return len(r.Tags) == 0 && len(r.Types) == 0 && len(r.ExactProductIDs) == 0 &&
		r.BudgetMin == nil && r.BudgetMax == nil
}

// field aliases accepted from older editor versions
var (
	tagKeys       = []string{"tags", "productTags"}
	typeKeys      = []string{"types", "productTypes"}
	productIDKeys = []string{"exactProductIds", "productIds"}
	budgetMinKeys = []string{"budgetMin", "minPrice"}
	budgetMaxKeys = []string{"budgetMax", "maxPrice"}
)

// ParseMatchingRule decodes an option payload. It only fails when the payload is not a JSON
// object; individual malformed or unknown fields are dropped.
func ParseMatchingRule(raw []byte) (MatchingRule, error) {
	var rule MatchingRule
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return rule, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return MatchingRule{}, fmt.Errorf("matching rule is not a JSON object: %w", err)
	}

	rule.Version = 1
	if v, ok := fields["version"]; ok {
		if n, ok := decodeNumber(v); ok && n >= 1 {
			rule.Version = int(n)
		}
	}
	rule.Tags = decodeStringSet(fields, tagKeys)
	rule.Types = decodeStringSet(fields, typeKeys)
	rule.ExactProductIDs = decodeStringSet(fields, productIDKeys)
	rule.BudgetMin = decodeFirstNumber(fields, budgetMinKeys)
	rule.BudgetMax = decodeFirstNumber(fields, budgetMaxKeys)
	return rule, nil
}

// decodeStringSet accepts a string array or a comma separated string for each alias key.
func decodeStringSet(fields map[string]json.RawMessage, keys []string) []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" {
			return
		}
		if _, dup := seen[s]; dup {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	for _, key := range keys {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		var list []interface{}
		if err := json.Unmarshal(raw, &list); err == nil {
			for _, item := range list {
				switch v := item.(type) {
				case string:
					add(v)
				case float64:
					add(strconv.FormatFloat(v, 'f', -1, 64))
				}
			}
			continue
		}
		var joined string
		if err := json.Unmarshal(raw, &joined); err == nil {
			for _, part := range strings.Split(joined, ",") {
				add(part)
			}
		}
	}
	return out
}

func decodeFirstNumber(fields map[string]json.RawMessage, keys []string) *float64 {
	for _, key := range keys {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		if n, ok := decodeNumber(raw); ok && n >= 0 {
			return &n
		}
	}
	return nil
}

func decodeNumber(raw json.RawMessage) (float64, bool) {
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}
