package app

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"weather-report/internal/table"
)

// printTable renders a result table with aligned columns.
func printTable(w io.Writer, title string, t *table.Table) {
	fmt.Fprintf(w, "%s\n", title)
	if t.IsEmpty() {
		fmt.Fprintln(w, "  (no data)")
		fmt.Fprintln(w)
		return
	}

	writer := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, strings.Join(t.Columns(), "\t"))

	cols := t.Columns()
	cells := make([]string, len(cols))
	for _, row := range t.Rows() {
		for i, col := range cols {
			cells[i] = sanitizeInline(table.FormatCell(row[col]))
		}
		fmt.Fprintln(writer, strings.Join(cells, "\t"))
	}
	writer.Flush()
	fmt.Fprintln(w)
}

func sanitizeInline(v string) string {
	cleaned := strings.ReplaceAll(v, "\n", " ")
	cleaned = strings.ReplaceAll(cleaned, "\r", " ")
	return cleaned
}
