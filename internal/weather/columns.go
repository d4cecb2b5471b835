// Package weather implements the normalization and aggregation pipeline:
// arbitrary history payloads become observation tables, which are clamped
// to a local calendar month and reduced to daily and ten-day summaries.
package weather

import "errors"

// Derived column names shared across the pipeline.
const (
	ColTimestamp = "timestamp"
	ColDate      = "date"
	ColLocalTime = "datetime_local"

	ColTemp     = "temp"
	ColHumidity = "humidity"
	ColPrecip   = "precip"
	ColBucket   = "bucket"
)

// Raw provider field names recognised by the aggregator.
const (
	colTemperature  = "temperature"
	colRelHumidity  = "relativeHumidity"
	colPrecip1Hour  = "precip1Hour"
	colPrecip24Hour = "precip24Hour"
)

// timestampCandidates are tried in order when resolving the instant column
// of a payload. The order is part of the contract: validTime* fields name
// observation times, fcstValid* fields forecast times.
var timestampCandidates = []string{
	"validTimeLocal",
	"validTimeUtc",
	"fcstValidLocal",
	"fcstValidUtc",
	"time",
	"validTime",
}

// containerKeys are the payload keys searched, in order, for a nested list
// of observation objects.
var containerKeys = []string{"data", "observations", "series", "result", "results"}

// ErrNoDateColumn reports that an operation requiring a date (or a
// resolvable instant) received a non-empty table without one. It is
// distinct from the empty-input case, which yields an empty output.
var ErrNoDateColumn = errors.New("weather: no date column and no resolvable timestamp")
