package weather

import (
	"cloud.google.com/go/civil"

	"weather-report/internal/table"
)

// Canonical ten-day bucket labels. The third bucket runs through the last
// day of the month, so the partition covers every month length without
// special cases.
const (
	BucketEarly = "1–10"
	BucketMid   = "11–20"
	BucketLate  = "21–末"
)

var bucketOrder = []string{BucketEarly, BucketMid, BucketLate}

// bucketFor maps a day of month to its bucket label.
func bucketFor(day int) string {
	switch {
	case day <= 10:
		return BucketEarly
	case day <= 20:
		return BucketMid
	default:
		return BucketLate
	}
}

// TenDayBuckets reduces a daily table to at most three sub-month periods.
// Temperature and humidity are averaged (one decimal), precipitation is
// summed. Buckets with no contributing days are omitted; the rest always
// appear in canonical order regardless of input row order. A table without
// a "date" column, like an empty one, yields an empty result.
func TenDayBuckets(daily *table.Table) *table.Table {
	if daily.IsEmpty() || !daily.HasColumn(ColDate) {
		return table.New()
	}

	hasTemp := daily.HasColumn(ColTemp)
	hasHum := daily.HasColumn(ColHumidity)
	hasPrecip := daily.HasColumn(ColPrecip)

	type bucketAccumulator struct {
		present         bool
		tempSum, humSum float64
		tempN, humN     int
		precipSum       float64
		precipN         int
	}
	accs := make(map[string]*bucketAccumulator, len(bucketOrder))
	for _, b := range bucketOrder {
		accs[b] = &bucketAccumulator{}
	}

	for _, row := range daily.Rows() {
		date, ok := row[ColDate].(civil.Date)
		if !ok {
			continue
		}
		acc := accs[bucketFor(date.Day)]
		acc.present = true
		if hasTemp {
			if v, ok := table.AsFloat(row[ColTemp]); ok {
				acc.tempSum += v
				acc.tempN++
			}
		}
		if hasHum {
			if v, ok := table.AsFloat(row[ColHumidity]); ok {
				acc.humSum += v
				acc.humN++
			}
		}
		if hasPrecip {
			if v, ok := table.AsFloat(row[ColPrecip]); ok {
				acc.precipSum += v
				acc.precipN++
			}
		}
	}

	cols := []string{ColBucket}
	if hasTemp {
		cols = append(cols, ColTemp)
	}
	if hasHum {
		cols = append(cols, ColHumidity)
	}
	if hasPrecip {
		cols = append(cols, ColPrecip)
	}

	out := table.New(cols...)
	for _, b := range bucketOrder {
		acc := accs[b]
		if !acc.present {
			continue
		}
		row := table.Row{ColBucket: b}
		if hasTemp {
			row[ColTemp] = meanRounded(acc.tempSum, acc.tempN)
		}
		if hasHum {
			row[ColHumidity] = meanRounded(acc.humSum, acc.humN)
		}
		if hasPrecip {
			if acc.precipN == 0 {
				row[ColPrecip] = nil
			} else {
				row[ColPrecip] = acc.precipSum
			}
		}
		out.Append(row)
	}
	return out
}
