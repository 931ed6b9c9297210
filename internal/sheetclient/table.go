package sheetclient

import (
	"fmt"
	"sort"
	"strings"
)

// Table is a header row plus data rows. A row's position is its index.
type Table struct {
	Columns []string
	Rows    [][]any
}

// tableFromValues treats the first row as the header, pads data rows to the
// header width and drops every row that has a missing value.
func tableFromValues(values [][]any) *Table {
	t := &Table{Columns: []string{}, Rows: [][]any{}}
	if len(values) == 0 {
		return t
	}
	for _, v := range values[0] {
		t.Columns = append(t.Columns, cellString(v))
	}
	width := len(t.Columns)
	for _, raw := range values[1:] {
		row := make([]any, width)
		copy(row, raw)
		if hasMissing(row) {
			continue
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func hasMissing(row []any) bool {
	for _, v := range row {
		if isMissing(v) {
			return true
		}
	}
	return false
}

func isMissing(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}

func cellString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// List returns the data rows without the header.
func (t *Table) List() [][]any {
	out := make([][]any, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = append([]any(nil), row...)
	}
	return out
}

// Map returns column -> row index -> value.
func (t *Table) Map() map[string]map[int]any {
	out := make(map[string]map[int]any, len(t.Columns))
	for c, name := range t.Columns {
		col := make(map[int]any, len(t.Rows))
		for i, row := range t.Rows {
			if c < len(row) {
				col[i] = row[c]
			}
		}
		out[name] = col
	}
	return out
}

// Values renders the table as a grid for writing. The index column, when
// requested, holds the 0-based row position under an empty header.
func (t *Table) Values(copyIndex, copyHead bool) [][]any {
	out := make([][]any, 0, len(t.Rows)+1)
	if copyHead {
		head := make([]any, 0, len(t.Columns)+1)
		if copyIndex {
			head = append(head, "")
		}
		for _, c := range t.Columns {
			head = append(head, c)
		}
		out = append(out, head)
	}
	for i, row := range t.Rows {
		r := make([]any, 0, len(row)+1)
		if copyIndex {
			r = append(r, i)
		}
		r = append(r, row...)
		out = append(out, r)
	}
	return out
}

// TableFromMap builds a table from column -> values. Columns are sorted by
// name; shorter columns are padded with nil.
func TableFromMap(data map[string][]any) *Table {
	cols := make([]string, 0, len(data))
	height := 0
	for k, v := range data {
		cols = append(cols, k)
		if len(v) > height {
			height = len(v)
		}
	}
	sort.Strings(cols)

	t := &Table{Columns: cols, Rows: make([][]any, height)}
	for i := range t.Rows {
		row := make([]any, len(cols))
		for c, name := range cols {
			if vals := data[name]; i < len(vals) {
				row[c] = vals[i]
			}
		}
		t.Rows[i] = row
	}
	return t
}
