package weather

import (
	"errors"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"

	"weather-report/internal/table"
)

func readTestCSV(t *testing.T, raw string) *table.Table {
	t.Helper()
	tab, err := table.ReadCSV(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	return tab
}

func TestPrepareMetricDailyJapaneseHeader(t *testing.T) {
	tab := readTestCSV(t, "日付,売れた個数,備考\n"+
		"2025-06-01,\"1,234\",misc\n"+
		"2025-06-01,100,misc\n"+
		"2025-06-02,50,misc\n"+
		"2025-07-01,999,other month\n")

	out, err := PrepareMetricDaily(tab, 2025, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Len() != 2 {
		t.Fatalf("expected 2 daily rows, got %d", out.Len())
	}

	// Duplicate dates sum; grouping separators parse.
	if v, _ := out.Float(0, "売れた個数"); v != 1334 {
		t.Fatalf("expected 1334, got %v", v)
	}
	if d := out.Value(0, ColDate).(civil.Date); d != (civil.Date{Year: 2025, Month: time.June, Day: 1}) {
		t.Fatalf("unexpected date %v", d)
	}
	if out.HasColumn("備考") {
		t.Fatal("non-numeric text column must be excluded")
	}
}

func TestPrepareMetricDailyEnglishHeader(t *testing.T) {
	tab := readTestCSV(t, "date,units_sold\n2025-06-03,12\n2025-06-04,8\n")

	out, err := PrepareMetricDaily(tab, 2025, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", out.Len())
	}
}

func TestPrepareMetricDailyMissingDateColumn(t *testing.T) {
	tab := readTestCSV(t, "units_sold\n12\n")

	if _, err := PrepareMetricDaily(tab, 2025, 6); !errors.Is(err, ErrNoDateColumn) {
		t.Fatalf("expected ErrNoDateColumn, got %v", err)
	}
}

func TestPrepareMetricDailyDropsBadDates(t *testing.T) {
	tab := readTestCSV(t, "date,units_sold\nnot-a-date,12\n2025-06-05,3\n")

	out, err := PrepareMetricDaily(tab, 2025, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Len() != 1 {
		t.Fatalf("unparseable dates must be dropped, got %d rows", out.Len())
	}
}

func TestPrepareMetricDailyNoNumericColumns(t *testing.T) {
	tab := readTestCSV(t, "date,memo\n2025-06-01,foo\n2025-06-01,bar\n")

	out, err := PrepareMetricDaily(tab, 2025, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Len() != 1 {
		t.Fatalf("expected distinct dates only, got %d rows", out.Len())
	}
	if len(out.Columns()) != 1 {
		t.Fatalf("expected only the date column, got %v", out.Columns())
	}
}

func TestPrepareMetricDailyEmpty(t *testing.T) {
	out, err := PrepareMetricDaily(table.New(), 2025, 6)
	if err != nil {
		t.Fatalf("empty input must not error: %v", err)
	}
	if !out.IsEmpty() {
		t.Fatal("empty input must yield empty output")
	}
}

func TestPrepareMetricDailyJoinsWithDaily(t *testing.T) {
	daily := table.New(ColDate, ColTemp)
	daily.Append(table.Row{ColDate: dateJune(1), ColTemp: 20.0})
	daily.Append(table.Row{ColDate: dateJune(2), ColTemp: 21.0})
	daily.Append(table.Row{ColDate: dateJune(3), ColTemp: 22.0})

	metric := readTestCSV(t, "日付,販売数\n2025-06-01,5\n2025-06-03,7\n")
	prepared, err := PrepareMetricDaily(metric, 2025, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	joined := daily.InnerJoin(prepared, ColDate)
	if joined.Len() != 2 {
		t.Fatalf("inner join should keep matching dates only, got %d", joined.Len())
	}
	col, ok := GuessSalesColumn(joined)
	if !ok || col != "販売数" {
		t.Fatalf("expected 販売数, got %q (ok=%v)", col, ok)
	}
}
