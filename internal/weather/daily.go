package weather

import (
	"math"
	"sort"
	"time"

	"cloud.google.com/go/civil"

	"weather-report/internal/table"
)

// dayAccumulator collects one date's observation values.
type dayAccumulator struct {
	tempSum, humSum float64
	tempN, humN     int
	precipMax       float64
	precipSum       float64
	precipN         int
}

// DailyAggregates reduces an observation table to one row per local date.
//
// Operators are fixed per field: temperature and humidity are averaged,
// rounded to one decimal. Precipitation depends on which source field the
// provider reported: a rolling 24-hour accumulation is reduced with max
// (successive hourly readings of the same window are not additive), a
// plain hourly field with sum. When both are present the 24-hour field
// wins.
//
// A missing "date" column is derived from the timestamp column in loc. A
// non-empty table with neither is reported as ErrNoDateColumn; an empty
// table yields an empty result.
func DailyAggregates(t *table.Table, loc *time.Location) (*table.Table, error) {
	if t.IsEmpty() {
		return table.New(), nil
	}

	hasDate := t.HasColumn(ColDate)
	if !hasDate && !t.HasColumn(ColTimestamp) {
		return nil, ErrNoDateColumn
	}

	tempSrc := pickSource(t, colTemperature, ColTemp)
	humSrc := pickSource(t, colRelHumidity, ColHumidity)
	precipSrc := ""
	precipMax := false
	if t.HasColumn(colPrecip24Hour) {
		precipSrc, precipMax = colPrecip24Hour, true
	} else if t.HasColumn(colPrecip1Hour) {
		precipSrc = colPrecip1Hour
	}

	groups := make(map[civil.Date]*dayAccumulator)
	order := make([]civil.Date, 0)
	for _, row := range t.Rows() {
		date, ok := rowDate(row, hasDate, loc)
		if !ok {
			continue
		}
		acc := groups[date]
		if acc == nil {
			acc = &dayAccumulator{}
			groups[date] = acc
			order = append(order, date)
		}

		if tempSrc != "" {
			if v, ok := table.AsFloat(row[tempSrc]); ok {
				acc.tempSum += v
				acc.tempN++
			}
		}
		if humSrc != "" {
			if v, ok := table.AsFloat(row[humSrc]); ok {
				acc.humSum += v
				acc.humN++
			}
		}
		if precipSrc != "" {
			if v, ok := table.AsFloat(row[precipSrc]); ok {
				if acc.precipN == 0 || v > acc.precipMax {
					acc.precipMax = v
				}
				acc.precipSum += v
				acc.precipN++
			}
		}
	}

	cols := []string{ColDate}
	if tempSrc != "" {
		cols = append(cols, ColTemp)
	}
	if humSrc != "" {
		cols = append(cols, ColHumidity)
	}
	if precipSrc != "" {
		cols = append(cols, ColPrecip)
	}

	out := table.New(cols...)
	sortDates(order)
	for _, date := range order {
		acc := groups[date]
		row := table.Row{ColDate: date}
		if tempSrc != "" {
			row[ColTemp] = meanRounded(acc.tempSum, acc.tempN)
		}
		if humSrc != "" {
			row[ColHumidity] = meanRounded(acc.humSum, acc.humN)
		}
		if precipSrc != "" {
			switch {
			case acc.precipN == 0:
				row[ColPrecip] = nil
			case precipMax:
				row[ColPrecip] = acc.precipMax
			default:
				row[ColPrecip] = acc.precipSum
			}
		}
		out.Append(row)
	}
	return out, nil
}

// pickSource returns the first present source column for a derived field.
func pickSource(t *table.Table, names ...string) string {
	for _, n := range names {
		if t.HasColumn(n) {
			return n
		}
	}
	return ""
}

// rowDate extracts the group key for a row, deriving it from the resolved
// timestamp when the date column is absent.
func rowDate(row table.Row, hasDate bool, loc *time.Location) (civil.Date, bool) {
	if hasDate {
		if d, ok := row[ColDate].(civil.Date); ok {
			return d, true
		}
		return civil.Date{}, false
	}
	ts, ok := row[ColTimestamp].(time.Time)
	if !ok {
		return civil.Date{}, false
	}
	return civil.DateOf(ts.In(loc)), true
}

func sortDates(dates []civil.Date) {
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
}

// meanRounded averages n samples and rounds to one decimal place. Returns
// nil when no samples contributed.
func meanRounded(sum float64, n int) any {
	if n == 0 {
		return nil
	}
	return round1(sum / float64(n))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
