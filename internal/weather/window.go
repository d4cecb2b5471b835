package weather

import (
	"time"

	"cloud.google.com/go/civil"

	"weather-report/internal/table"
)

// MonthBounds returns the UTC instants for the first day 00:00:00 and the
// last day 23:59:59 of a calendar month. Month length follows the
// Gregorian calendar, leap years included.
func MonthBounds(year, month int) (time.Time, time.Time) {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(year, time.Month(month)+1, 0, 23, 59, 59, 0, time.UTC)
	return first, last
}

// MonthBoundsLocal returns the same wall-clock bounds expressed in loc and
// converted to UTC. These are the instants handed to the history API as
// the query range.
func MonthBoundsLocal(year, month int, loc *time.Location) (time.Time, time.Time) {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	last := time.Date(year, time.Month(month)+1, 0, 23, 59, 59, 0, loc)
	return first.UTC(), last.UTC()
}

// FormatBound renders an instant in the wire format expected by the
// history API: ISO-8601 with a literal Z designator.
func FormatBound(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}

// ClampToMonth restricts an observation table to one calendar month in
// loc. The month window is half-open on the upper bound, [start of month,
// start of next month), so boundary instants never leak into an adjacent
// month. The "date" and "datetime_local" columns are recomputed from the
// retained local instants; rows without a resolvable instant are dropped.
func ClampToMonth(t *table.Table, year, month int, loc *time.Location) *table.Table {
	if t.IsEmpty() {
		return t.Clone()
	}

	instants := resolveInstants(t)
	if instants == nil {
		return t.Clone()
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	nextStart := time.Date(year, time.Month(month)+1, 1, 0, 0, 0, 0, loc)

	out := table.New(t.Columns()...)
	out.AddColumn(ColDate)
	out.AddColumn(ColLocalTime)
	for i, row := range t.Rows() {
		ts, ok := instants[i]
		if !ok {
			continue
		}
		local := ts.In(loc)
		if local.Before(start) || !local.Before(nextStart) {
			continue
		}
		clamped := make(table.Row, len(row)+2)
		for k, v := range row {
			clamped[k] = v
		}
		clamped[ColDate] = civil.DateOf(local)
		clamped[ColLocalTime] = local
		out.Append(clamped)
	}
	return out
}

// resolveInstants determines the authoritative instant per row, trying the
// resolved timestamp column first, then the local-datetime convenience
// column, then the raw candidate columns. Returns nil when the table has
// no usable instant column at all.
func resolveInstants(t *table.Table) map[int]time.Time {
	source := ""
	switch {
	case t.HasColumn(ColTimestamp):
		source = ColTimestamp
	case t.HasColumn(ColLocalTime):
		source = ColLocalTime
	default:
		for _, cand := range timestampCandidates {
			if t.HasColumn(cand) {
				source = cand
				break
			}
		}
	}
	if source == "" {
		return nil
	}

	instants := make(map[int]time.Time, t.Len())
	for i, row := range t.Rows() {
		if ts, ok := parseInstant(row[source]); ok {
			instants[i] = ts
		}
	}
	return instants
}
