// Package table implements a small ordered-column table used to carry
// observation and report data between pipeline stages. Cell values are
// dynamically typed: nil, float64, string, bool, time.Time or civil.Date.
package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Row maps column names to cell values.
type Row map[string]any

// Table holds rows with an explicit column order. Column order is
// significant: heuristics over joined tables resolve ties by it.
type Table struct {
	cols []string
	rows []Row
}

// New creates an empty table with the given column order.
func New(cols ...string) *Table {
	t := &Table{}
	for _, c := range cols {
		t.AddColumn(c)
	}
	return t
}

// Columns returns the column names in table order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.cols))
	copy(out, t.cols)
	return out
}

// Len reports the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// IsEmpty reports whether the table has no rows.
func (t *Table) IsEmpty() bool { return t == nil || len(t.rows) == 0 }

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.cols {
		if c == name {
			return true
		}
	}
	return false
}

// AddColumn registers a column at the end of the order if not present.
func (t *Table) AddColumn(name string) {
	if !t.HasColumn(name) {
		t.cols = append(t.cols, name)
	}
}

// Append adds a row. Keys not yet registered as columns are appended in
// sorted order, so that tables built from Go maps stay deterministic.
func (t *Table) Append(row Row) {
	extra := make([]string, 0)
	for k := range row {
		if !t.HasColumn(k) {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		t.cols = append(t.cols, k)
	}
	t.rows = append(t.rows, row)
}

// Row returns the i-th row. The returned map is shared, not copied.
func (t *Table) Row(i int) Row { return t.rows[i] }

// Rows returns the backing row slice.
func (t *Table) Rows() []Row { return t.rows }

// Value returns the cell at (i, col), or nil when the column is absent.
func (t *Table) Value(i int, col string) any { return t.rows[i][col] }

// Set stores a value at (i, col), registering the column when needed.
func (t *Table) Set(i int, col string, v any) {
	t.AddColumn(col)
	t.rows[i][col] = v
}

// Float returns the cell at (i, col) as a float64 when it holds a
// numeric value.
func (t *Table) Float(i int, col string) (float64, bool) {
	return AsFloat(t.rows[i][col])
}

// AsFloat converts supported numeric cell kinds to float64.
func AsFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// IsNumeric reports whether the column holds at least one value and every
// non-nil cell is numeric.
func (t *Table) IsNumeric(col string) bool {
	seen := false
	for _, row := range t.rows {
		v, ok := row[col]
		if !ok || v == nil {
			continue
		}
		if _, ok := AsFloat(v); !ok {
			return false
		}
		seen = true
	}
	return seen
}

// Clone returns a copy with fresh row maps.
func (t *Table) Clone() *Table {
	out := New(t.cols...)
	for _, row := range t.rows {
		dup := make(Row, len(row))
		for k, v := range row {
			dup[k] = v
		}
		out.rows = append(out.rows, dup)
	}
	return out
}

// Filter returns a new table holding the rows for which keep returns true.
func (t *Table) Filter(keep func(Row) bool) *Table {
	out := New(t.cols...)
	for _, row := range t.rows {
		if keep(row) {
			out.rows = append(out.rows, row)
		}
	}
	return out
}

// SortBy stably sorts rows in place.
func (t *Table) SortBy(less func(a, b Row) bool) {
	sort.SliceStable(t.rows, func(i, j int) bool {
		return less(t.rows[i], t.rows[j])
	})
}

// CoerceNumeric converts string cells of the column into float64 values.
// Grouping separators and surrounding whitespace are tolerated. Cells that
// fail to parse are marked nil; the counts tell the caller how widespread
// failures were.
func (t *Table) CoerceNumeric(col string) (coerced, failed int) {
	for _, row := range t.rows {
		v, ok := row[col]
		if !ok || v == nil {
			continue
		}
		if _, ok := AsFloat(v); ok {
			continue
		}
		s, ok := v.(string)
		if !ok {
			row[col] = nil
			failed++
			continue
		}
		s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
		d, err := decimal.NewFromString(s)
		if err != nil {
			row[col] = nil
			failed++
			continue
		}
		row[col] = d.InexactFloat64()
		coerced++
	}
	return coerced, failed
}

// InnerJoin joins two tables on the given key column, keeping the left
// table's row order. Right-side columns already present on the left are
// not duplicated.
func (t *Table) InnerJoin(other *Table, key string) *Table {
	out := New(t.cols...)
	rightCols := make([]string, 0, len(other.cols))
	for _, c := range other.cols {
		if c == key || t.HasColumn(c) {
			continue
		}
		rightCols = append(rightCols, c)
		out.AddColumn(c)
	}

	index := make(map[string][]Row)
	for _, row := range other.rows {
		k := FormatCell(row[key])
		if k == "" {
			continue
		}
		index[k] = append(index[k], row)
	}

	for _, left := range t.rows {
		k := FormatCell(left[key])
		if k == "" {
			continue
		}
		for _, right := range index[k] {
			merged := make(Row, len(left)+len(rightCols))
			for col, v := range left {
				merged[col] = v
			}
			for _, col := range rightCols {
				merged[col] = right[col]
			}
			out.rows = append(out.rows, merged)
		}
	}
	return out
}

// WriteCSV writes the table with a header row.
func (t *Table) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.cols); err != nil {
		return err
	}
	record := make([]string, len(t.cols))
	for _, row := range t.rows {
		for i, col := range t.cols {
			record[i] = FormatCell(row[col])
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// FormatCell renders a cell value for delimited or tabular output. Nil
// cells render empty; dates and instants use ISO forms.
func FormatCell(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case float64:
		return strconv.FormatFloat(c, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(c)
	case time.Time:
		return c.Format(time.RFC3339)
	case civil.Date:
		return c.String()
	default:
		return fmt.Sprint(c)
	}
}
