// Package dataset provides the in-memory tabular data source the index engine
// reads from, together with loaders for CSV, XLSX, SQLite and S3 objects.
package dataset

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/aristath/kafkanator/pkg/inequality"
)

// Table is an immutable column-oriented table of string cells. Every method
// that derives data returns fresh slices or a new Table.
type Table struct {
	columns []string
	index   map[string]int
	cells   [][]string // cells[column][row]
	rows    int
}

// New builds a table from a header and row-major records. All records must
// have exactly len(columns) cells.
func New(columns []string, records [][]string) (*Table, error) {
	t := &Table{
		columns: make([]string, len(columns)),
		index:   make(map[string]int, len(columns)),
		cells:   make([][]string, len(columns)),
		rows:    len(records),
	}

	for i, name := range columns {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, inequality.DomainError("table", "column %d has an empty name", i)
		}
		if _, dup := t.index[name]; dup {
			return nil, inequality.DomainError("table", "duplicate column %q", name)
		}
		t.columns[i] = name
		t.index[name] = i
		t.cells[i] = make([]string, len(records))
	}

	for r, record := range records {
		if len(record) != len(columns) {
			return nil, inequality.DomainError("table", "row %d has %d cells, expected %d", r, len(record), len(columns))
		}
		for c, cell := range record {
			t.cells[c][r] = strings.TrimSpace(cell)
		}
	}

	return t, nil
}

// Columns returns the column names in their original order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// HasColumn reports whether name is a column of t.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return t.rows
}

func (t *Table) column(op, name string) ([]string, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, inequality.NotFoundError(op, "column %q does not exist", name)
	}
	return t.cells[i], nil
}

// Strings returns a copy of the raw cells of a column.
func (t *Table) Strings(name string) ([]string, error) {
	col, err := t.column("strings", name)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(col))
	copy(out, col)
	return out, nil
}

// Numeric parses every cell of a column as a float. Empty or non-numeric
// cells are domain errors.
func (t *Table) Numeric(name string) ([]float64, error) {
	col, err := t.column("numeric", name)
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(col))
	for r, cell := range col {
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil || math.IsNaN(v) {
			return nil, inequality.DomainError("numeric", "column %q row %d is not a number: %q", name, r, cell)
		}
		out[r] = v
	}
	return out, nil
}

// GroupBy partitions the row indices by the distinct values of a column.
// Every row lands in exactly one group.
func (t *Table) GroupBy(name string) (map[string][]int, error) {
	col, err := t.column("group-by", name)
	if err != nil {
		return nil, err
	}

	groups := make(map[string][]int)
	for r, key := range col {
		groups[key] = append(groups[key], r)
	}
	return groups, nil
}

// Rows returns a new table restricted to the given row indices, in the given order.
func (t *Table) Rows(indices []int) (*Table, error) {
	out := &Table{
		columns: t.columns,
		index:   t.index,
		cells:   make([][]string, len(t.columns)),
		rows:    len(indices),
	}

	for c := range t.columns {
		out.cells[c] = make([]string, len(indices))
	}
	for i, r := range indices {
		if r < 0 || r >= t.rows {
			return nil, fmt.Errorf("row index %d out of range [0,%d)", r, t.rows)
		}
		for c := range t.columns {
			out.cells[c][i] = t.cells[c][r]
		}
	}

	return out, nil
}

// SortBy returns a new table stably sorted ascending by the numeric value of a column.
func (t *Table) SortBy(name string) (*Table, error) {
	values, err := t.Numeric(name)
	if err != nil {
		return nil, err
	}

	order := make([]int, t.rows)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return values[order[a]] < values[order[b]]
	})

	return t.Rows(order)
}

// WithColumn returns a new table with the named column added, or replaced
// when it already exists.
func (t *Table) WithColumn(name string, values []string) (*Table, error) {
	if len(values) != t.rows {
		return nil, fmt.Errorf("column %q has %d values, table has %d rows", name, len(values), t.rows)
	}

	col := make([]string, len(values))
	copy(col, values)

	out := &Table{
		columns: append([]string{}, t.columns...),
		index:   make(map[string]int, len(t.columns)+1),
		cells:   append([][]string{}, t.cells...),
		rows:    t.rows,
	}
	for i, c := range out.columns {
		out.index[c] = i
	}

	if i, ok := out.index[name]; ok {
		out.cells[i] = col
	} else {
		out.index[name] = len(out.columns)
		out.columns = append(out.columns, name)
		out.cells = append(out.cells, col)
	}

	return out, nil
}

// Records returns the table as row-major records, header excluded.
func (t *Table) Records() [][]string {
	out := make([][]string, t.rows)
	for r := 0; r < t.rows; r++ {
		row := make([]string, len(t.columns))
		for c := range t.columns {
			row[c] = t.cells[c][r]
		}
		out[r] = row
	}
	return out
}
