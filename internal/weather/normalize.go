package weather

import (
	"sort"
	"time"

	"cloud.google.com/go/civil"

	"weather-report/internal/table"
)

// Normalize converts a decoded JSON payload into an observation table.
//
// Three shapes are recognised, in priority order: a columnar mapping whose
// list-valued entries all share one length, a list of objects (directly or
// nested under a known container key), and a single object treated as one
// row. Anything else degrades to a best-effort one-row table.
//
// When a timestamp candidate column is present it is parsed into a UTC
// "timestamp" column, and convenience "date" / "datetime_local" columns are
// derived in loc. Cells that fail to parse become nil instants.
func Normalize(payload any, loc *time.Location) *table.Table {
	t := columnarTable(payload)
	if t == nil {
		t = flattenTable(payload)
	}
	resolveTimestamps(t, loc)
	return t
}

// columnarTable expands a mapping of equal-length lists into rows, one per
// index. Returns nil when the payload is not columnar.
func columnarTable(payload any) *table.Table {
	m, ok := payload.(map[string]any)
	if !ok {
		return nil
	}

	listKeys := make([]string, 0, len(m))
	for k, v := range m {
		if _, ok := v.([]any); ok {
			listKeys = append(listKeys, k)
		}
	}
	if len(listKeys) == 0 {
		return nil
	}
	sort.Strings(listKeys)

	n := -1
	for _, k := range listKeys {
		l := len(m[k].([]any))
		if n == -1 {
			n = l
		} else if l != n {
			return nil
		}
	}

	t := table.New(listKeys...)
	for i := 0; i < n; i++ {
		row := make(table.Row, len(listKeys))
		for _, k := range listKeys {
			row[k] = m[k].([]any)[i]
		}
		t.Append(row)
	}
	return t
}

// flattenTable handles the row-oriented shapes: a list of objects, a
// mapping with a nested list under a container key, or a single mapping.
func flattenTable(payload any) *table.Table {
	var elems []any
	switch v := payload.(type) {
	case []any:
		elems = v
	case map[string]any:
		for _, key := range containerKeys {
			if nested, ok := v[key].([]any); ok {
				elems = nested
				break
			}
		}
		if elems == nil {
			elems = []any{v}
		}
	default:
		elems = []any{payload}
	}

	t := table.New()
	for _, e := range elems {
		t.Append(flattenRow(e))
	}
	return t
}

// flattenRow turns one payload element into a row, expanding nested
// mappings one level deep into dotted column names.
func flattenRow(e any) table.Row {
	m, ok := e.(map[string]any)
	if !ok {
		return table.Row{"value": e}
	}
	row := make(table.Row, len(m))
	for k, v := range m {
		if nested, ok := v.(map[string]any); ok {
			for nk, nv := range nested {
				row[k+"."+nk] = nv
			}
			continue
		}
		row[k] = v
	}
	return row
}

// resolveTimestamps parses the first present timestamp candidate column
// into UTC instants and derives the local-date and local-datetime columns.
func resolveTimestamps(t *table.Table, loc *time.Location) {
	source := ""
	for _, cand := range timestampCandidates {
		if t.HasColumn(cand) {
			source = cand
			break
		}
	}
	if source == "" {
		return
	}

	t.AddColumn(ColTimestamp)
	t.AddColumn(ColDate)
	t.AddColumn(ColLocalTime)
	for _, row := range t.Rows() {
		ts, ok := parseInstant(row[source])
		if !ok {
			row[ColTimestamp] = nil
			row[ColDate] = nil
			row[ColLocalTime] = nil
			continue
		}
		local := ts.In(loc)
		row[ColTimestamp] = ts
		row[ColDate] = civil.DateOf(local)
		row[ColLocalTime] = local
	}
}

// instantLayouts are tried in order when parsing a timestamp cell. Layouts
// without an offset are interpreted as UTC.
var instantLayouts = []struct {
	layout string
	wall   bool
}{
	{time.RFC3339Nano, false},
	{time.RFC3339, false},
	{"2006-01-02T15:04:05", true},
	{"2006-01-02T15:04", true},
	{"2006-01-02 15:04:05", true},
	{"2006-01-02", true},
}

func parseInstant(v any) (time.Time, bool) {
	switch c := v.(type) {
	case time.Time:
		return c.UTC(), true
	case string:
		for _, l := range instantLayouts {
			if l.wall {
				if ts, err := time.ParseInLocation(l.layout, c, time.UTC); err == nil {
					return ts, true
				}
				continue
			}
			if ts, err := time.Parse(l.layout, c); err == nil {
				return ts.UTC(), true
			}
		}
	case float64:
		// Epoch seconds, as some providers report.
		return time.Unix(int64(c), 0).UTC(), true
	}
	return time.Time{}, false
}
