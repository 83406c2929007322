package output

import (
	"bytes"
	"strings"
	"text/tabwriter"
)

// emptyCell is printed for cells with no value.
const emptyCell = "-"

// Table renders aligned columns with text/tabwriter.
type Table struct {
	buf     bytes.Buffer
	w       *tabwriter.Writer
	columns int
	rows    int
}

// NewTable starts a table with the given header columns.
// Padding is three spaces between columns.
func NewTable(columns ...string) *Table {
	t := &Table{columns: len(columns)}
	t.w = tabwriter.NewWriter(&t.buf, 0, 0, 3, ' ', 0)
	t.write(columns)
	return t
}

// Row appends a row. Missing trailing cells and empty cells print as "-".
func (t *Table) Row(values ...string) {
	t.rows++
	cells := make([]string, max(len(values), t.columns))
	for i := range cells {
		cells[i] = emptyCell
		if i < len(values) && values[i] != "" {
			cells[i] = values[i]
		}
	}
	t.write(cells)
}

// Len returns the number of data rows.
func (t *Table) Len() int { return t.rows }

func (t *Table) write(cells []string) {
	_, _ = t.w.Write([]byte(strings.Join(cells, "\t") + "\n"))
}

// String flushes the writer and returns the table without a trailing newline.
// A table without data rows renders as an empty string.
func (t *Table) String() string {
	if t.rows == 0 {
		return ""
	}
	_ = t.w.Flush()
	return strings.TrimSuffix(t.buf.String(), "\n")
}
