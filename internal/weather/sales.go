package weather

import (
	"strings"

	"weather-report/internal/table"
)

// salesExclude are columns never considered sales candidates: the derived
// report fields plus the raw provider fields they come from.
var salesExclude = map[string]struct{}{
	ColDate:         {},
	ColTemp:         {},
	ColHumidity:     {},
	ColPrecip:       {},
	colTemperature:  {},
	colRelHumidity:  {},
	colPrecip1Hour:  {},
	colPrecip24Hour: {},
}

// salesPriority is the ordered exact-match vocabulary. The first entry
// with a matching column wins, even when a later entry would match a
// different column.
var salesPriority = []string{
	"売れた個数", "売上個数", "販売個数", "販売数量", "売上数", "販売数",
	"個数", "数量",
	"units_sold", "qty_sold", "sold", "sales_qty", "sales", "出荷数",
}

// Token sets for the containment rule: a candidate must contain one token
// from each set. Substring containment, not whole words.
var (
	soldTokens  = []string{"売", "販", "出荷", "sold", "sale", "ship"}
	countTokens = []string{"数", "個", "量", "qty", "count", "unit", "quantity"}
)

// GuessSalesColumn picks the numeric column of a joined table most likely
// to hold a sold-quantity metric. Resolution is deterministic: exact
// priority match first, then token containment, then the first remaining
// numeric column in table order. The second return value is false when no
// numeric candidate exists; ambiguity is never an error.
func GuessSalesColumn(t *table.Table) (string, bool) {
	if t.IsEmpty() {
		return "", false
	}

	candidates := make([]string, 0)
	for _, c := range t.Columns() {
		if _, excluded := salesExclude[c]; excluded {
			continue
		}
		if t.IsNumeric(c) {
			candidates = append(candidates, c)
		}
	}
	if len(candidates) == 0 {
		return "", false
	}

	for _, want := range salesPriority {
		for _, c := range candidates {
			if strings.EqualFold(c, want) {
				return c, true
			}
		}
	}

	for _, c := range candidates {
		lc := strings.ToLower(c)
		if containsAny(lc, soldTokens) && containsAny(lc, countTokens) {
			return c, true
		}
	}

	return candidates[0], true
}

func containsAny(s string, tokens []string) bool {
	for _, tok := range tokens {
		if strings.Contains(s, tok) {
			return true
		}
	}
	return false
}
