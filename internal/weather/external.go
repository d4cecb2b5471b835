package weather

import (
	"time"

	"cloud.google.com/go/civil"

	"weather-report/internal/table"
)

// metricDateColumns are the recognised date-bearing column names of an
// externally supplied table, tried in order.
var metricDateColumns = []string{"date", "日付"}

// PrepareMetricDaily normalises an externally supplied per-day metric
// table (typically a sales or inventory CSV) for joining with the daily
// aggregate table: the date column is detected and parsed, numeric-looking
// text columns are coerced (grouping separators tolerated, failed cells
// become nil), rows are restricted to the given year and month, and the
// surviving numeric columns are summed per date.
//
// A table without a recognised date column is ErrNoDateColumn. Rows whose
// date fails to parse are dropped.
func PrepareMetricDaily(t *table.Table, year, month int) (*table.Table, error) {
	if t.IsEmpty() {
		return table.New(), nil
	}

	dateSrc := ""
	for _, c := range metricDateColumns {
		if t.HasColumn(c) {
			dateSrc = c
			break
		}
	}
	if dateSrc == "" {
		return nil, ErrNoDateColumn
	}

	work := t.Clone()
	numericCols := make([]string, 0)
	for _, c := range work.Columns() {
		if c == dateSrc || c == ColDate {
			continue
		}
		if !work.IsNumeric(c) {
			work.CoerceNumeric(c)
		}
		if work.IsNumeric(c) {
			numericCols = append(numericCols, c)
		}
	}

	type sums struct {
		values map[string]float64
	}
	groups := make(map[civil.Date]*sums)
	order := make([]civil.Date, 0)
	for _, row := range work.Rows() {
		date, ok := parseDateCell(row[dateSrc])
		if !ok || date.Year != year || int(date.Month) != month {
			continue
		}
		acc := groups[date]
		if acc == nil {
			acc = &sums{values: make(map[string]float64, len(numericCols))}
			groups[date] = acc
			order = append(order, date)
		}
		for _, c := range numericCols {
			if v, ok := table.AsFloat(row[c]); ok {
				acc.values[c] += v
			}
		}
	}

	out := table.New(append([]string{ColDate}, numericCols...)...)
	sortDates(order)
	for _, date := range order {
		row := table.Row{ColDate: date}
		for _, c := range numericCols {
			row[c] = groups[date].values[c]
		}
		out.Append(row)
	}
	return out, nil
}

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006/1/2",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

func parseDateCell(v any) (civil.Date, bool) {
	switch c := v.(type) {
	case civil.Date:
		return c, true
	case time.Time:
		return civil.DateOf(c), true
	case string:
		for _, layout := range dateLayouts {
			if ts, err := time.Parse(layout, c); err == nil {
				return civil.DateOf(ts), true
			}
		}
	}
	return civil.Date{}, false
}
