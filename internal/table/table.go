// Package table holds the in-memory tabular snapshot built from exported
// documents: ordered columns, positional rows and nil as the missing value.
package table

// IDColumn is the store-assigned identifier dropped after export.
const IDColumn = "_id"

// Field is one key/value pair of a document, in document order.
type Field struct {
	Key   string
	Value any
}

// Record is one schemaless document.
type Record []Field

// Table is an ordered set of rows sharing one column set. A nil cell is missing.
type Table struct {
	Columns []string
	Rows    [][]any
}

// IsNull reports whether v is the missing-value marker.
func IsNull(v any) bool {
	return v == nil
}

// FromRecords builds a table fragment from one page of documents. Columns
// appear in first-seen order; absent keys become nil cells.
func FromRecords(records []Record) *Table {
	t := &Table{}
	index := make(map[string]int)
	for _, rec := range records {
		for _, f := range rec {
			if _, ok := index[f.Key]; !ok {
				index[f.Key] = len(t.Columns)
				t.Columns = append(t.Columns, f.Key)
			}
		}
	}

	t.Rows = make([][]any, 0, len(records))
	for _, rec := range records {
		row := make([]any, len(t.Columns))
		for _, f := range rec {
			row[index[f.Key]] = f.Value
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Concat joins fragments in order. The result carries the union of their
// columns in first-seen order; cells for columns a fragment lacks are nil.
// Zero fragments yield an empty, columnless table.
func Concat(fragments ...*Table) *Table {
	out := &Table{}
	index := make(map[string]int)
	total := 0
	for _, frag := range fragments {
		for _, c := range frag.Columns {
			if _, ok := index[c]; !ok {
				index[c] = len(out.Columns)
				out.Columns = append(out.Columns, c)
			}
		}
		total += len(frag.Rows)
	}

	out.Rows = make([][]any, 0, total)
	for _, frag := range fragments {
		pos := make([]int, len(frag.Columns))
		for i, c := range frag.Columns {
			pos[i] = index[c]
		}
		for _, src := range frag.Rows {
			row := make([]any, len(out.Columns))
			for i, v := range src {
				row[pos[i]] = v
			}
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool {
	return t.Len() == 0
}

// ColumnIndex returns the position of name, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// DropColumns removes the named columns that are present and returns how
// many were removed.
func (t *Table) DropColumns(names ...string) int {
	drop := make(map[int]bool)
	for _, n := range names {
		if i := t.ColumnIndex(n); i >= 0 {
			drop[i] = true
		}
	}
	if len(drop) == 0 {
		return 0
	}

	keep := make([]int, 0, len(t.Columns)-len(drop))
	cols := make([]string, 0, len(t.Columns)-len(drop))
	for i, c := range t.Columns {
		if !drop[i] {
			keep = append(keep, i)
			cols = append(cols, c)
		}
	}
	for r, row := range t.Rows {
		next := make([]any, len(keep))
		for j, i := range keep {
			next[j] = row[i]
		}
		t.Rows[r] = next
	}
	t.Columns = cols
	return len(drop)
}

// NormalizeNulls rewrites every string cell exactly equal to marker as nil
// and returns the number of cells rewritten. Applying it twice is the same as
// applying it once.
func (t *Table) NormalizeNulls(marker string) int {
	n := 0
	for _, row := range t.Rows {
		for i, v := range row {
			if s, ok := v.(string); ok && s == marker {
				row[i] = nil
				n++
			}
		}
	}
	return n
}

// Select returns a new table holding the given rows in the given order.
// Rows are shared with t, not copied.
func (t *Table) Select(rows []int) *Table {
	out := &Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([][]any, len(rows)),
	}
	for i, r := range rows {
		out.Rows[i] = t.Rows[r]
	}
	return out
}
