package table

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"
)

func TestReadCSVPreservesHeaderOrder(t *testing.T) {
	tab, err := ReadCSV(strings.NewReader("b,a,c\n1,2,3\n"))
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	want := []string{"b", "a", "c"}
	got := tab.Columns()
	if len(got) != len(want) {
		t.Fatalf("columns %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("columns %v, want %v", got, want)
		}
	}
	if tab.Value(0, "a") != "2" {
		t.Fatalf("cells must stay strings, got %v", tab.Value(0, "a"))
	}
}

func TestCoerceNumeric(t *testing.T) {
	tab := New("v")
	tab.Append(Row{"v": "1,234"})
	tab.Append(Row{"v": " 56 "})
	tab.Append(Row{"v": "oops"})
	tab.Append(Row{"v": 7.0})

	coerced, failed := tab.CoerceNumeric("v")
	if coerced != 2 || failed != 1 {
		t.Fatalf("coerced=%d failed=%d, want 2 and 1", coerced, failed)
	}
	if v, _ := tab.Float(0, "v"); v != 1234 {
		t.Fatalf("grouping separator not handled: %v", v)
	}
	if tab.Value(2, "v") != nil {
		t.Fatal("failed cell must be marked nil")
	}
	if v, _ := tab.Float(3, "v"); v != 7 {
		t.Fatal("numeric cells must pass through")
	}
}

func TestIsNumeric(t *testing.T) {
	tab := New("n", "s", "m", "empty")
	tab.Append(Row{"n": 1.0, "s": "x", "m": 2.0})
	tab.Append(Row{"n": 2.0, "s": "y", "m": "nope"})

	if !tab.IsNumeric("n") {
		t.Fatal("all-numeric column must be numeric")
	}
	if tab.IsNumeric("s") || tab.IsNumeric("m") {
		t.Fatal("text or mixed columns are not numeric")
	}
	if tab.IsNumeric("empty") {
		t.Fatal("a column with no values is not numeric")
	}
}

func TestInnerJoin(t *testing.T) {
	left := New("date", "temp")
	left.Append(Row{"date": civil.Date{Year: 2025, Month: 6, Day: 1}, "temp": 20.0})
	left.Append(Row{"date": civil.Date{Year: 2025, Month: 6, Day: 2}, "temp": 21.0})

	right := New("date", "qty", "temp")
	right.Append(Row{"date": civil.Date{Year: 2025, Month: 6, Day: 2}, "qty": 5.0, "temp": 99.0})
	right.Append(Row{"date": civil.Date{Year: 2025, Month: 6, Day: 3}, "qty": 7.0, "temp": 98.0})

	joined := left.InnerJoin(right, "date")
	if joined.Len() != 1 {
		t.Fatalf("expected 1 matching row, got %d", joined.Len())
	}
	if v, _ := joined.Float(0, "qty"); v != 5 {
		t.Fatalf("right column not joined: %v", v)
	}
	// Left side wins on duplicate column names.
	if v, _ := joined.Float(0, "temp"); v != 21 {
		t.Fatalf("duplicate column must keep the left value, got %v", v)
	}
}

func TestWriteCSVFormatting(t *testing.T) {
	tab := New("date", "temp", "note")
	tab.Append(Row{
		"date": civil.Date{Year: 2025, Month: 6, Day: 1},
		"temp": 11.5,
		"note": nil,
	})

	var buf bytes.Buffer
	if err := tab.WriteCSV(&buf); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	want := "date,temp,note\n2025-06-01,11.5,\n"
	if buf.String() != want {
		t.Fatalf("csv output %q, want %q", buf.String(), want)
	}
}

func TestFormatCell(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"x", "x"},
		{1.25, "1.25"},
		{true, "true"},
		{ts, "2025-06-01T12:00:00Z"},
		{civil.Date{Year: 2025, Month: 6, Day: 1}, "2025-06-01"},
	}
	for _, c := range cases {
		if got := FormatCell(c.in); got != c.want {
			t.Fatalf("FormatCell(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestAppendRegistersUnknownColumnsSorted(t *testing.T) {
	tab := New("a")
	tab.Append(Row{"a": 1.0, "z": 2.0, "b": 3.0})

	got := tab.Columns()
	want := []string{"a", "b", "z"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("columns %v, want %v", got, want)
		}
	}
}

func TestFilterAndClone(t *testing.T) {
	tab := New("v")
	tab.Append(Row{"v": 1.0})
	tab.Append(Row{"v": 2.0})

	kept := tab.Filter(func(r Row) bool {
		v, _ := AsFloat(r["v"])
		return v > 1
	})
	if kept.Len() != 1 {
		t.Fatalf("filter kept %d rows", kept.Len())
	}

	dup := tab.Clone()
	dup.Set(0, "v", 9.0)
	if v, _ := tab.Float(0, "v"); v != 1 {
		t.Fatal("clone must not share row maps")
	}
}
