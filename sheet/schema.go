package sheet

import (
	"sort"
	"strings"

	"inbound/apperrors"
)

// Column describes one logical field of a table and the header names it may
// appear under.
type Column struct {
	Field    string
	Name     string
	Aliases  []string
	Required bool
}

// Schema is the typed view of a table.
type Schema struct {
	Table   string
	Columns []Column
}

// Header returns the canonical header names in schema order.
func (s Schema) Header() []string {
	header := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		header[i] = c.Name
	}
	return header
}

// Binding resolves a schema against the header row that actually exists.
// Optional columns that are absent are simply unbound.
type Binding struct {
	schema Schema
	table  *Table
	cols   map[string]int
}

// Bind matches the schema against the table header. A missing required
// column is a ConfigError.
func Bind(t *Table, s Schema) (*Binding, error) {
	index := t.ColIndex()
	b := &Binding{schema: s, table: t, cols: make(map[string]int, len(s.Columns))}
	for _, c := range s.Columns {
		col, ok := lookupColumn(index, c)
		if !ok {
			if c.Required {
				return nil, apperrors.NewConfigError(t.Name, c.Name)
			}
			continue
		}
		b.cols[c.Field] = col
	}
	return b, nil
}

func lookupColumn(index map[string]int, c Column) (int, bool) {
	if i, ok := index[strings.ToLower(c.Name)]; ok {
		return i, true
	}
	for _, alias := range c.Aliases {
		if i, ok := index[strings.ToLower(alias)]; ok {
			return i, true
		}
	}
	return 0, false
}

func (b *Binding) Table() *Table { return b.table }

// Has reports whether the field's column exists in the table.
func (b *Binding) Has(field string) bool {
	_, ok := b.cols[field]
	return ok
}

// Column returns the column index bound to field.
func (b *Binding) Column(field string) (int, bool) {
	i, ok := b.cols[field]
	return i, ok
}

// Get reads a field from a data row; unbound fields read as "".
func (b *Binding) Get(row []string, field string) string {
	col, ok := b.cols[field]
	if !ok {
		return ""
	}
	return Cell(row, col)
}

// Find returns the first data row whose field equals key, compared trimmed
// and case-insensitively.
func (b *Binding) Find(field, key string) ([]string, bool) {
	col, ok := b.cols[field]
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return nil, false
	}
	for _, row := range b.table.Rows {
		if strings.EqualFold(Cell(row, col), key) {
			return row, true
		}
	}
	return nil, false
}

// Row lays values (keyed by field) out in the column order of the current
// header. Fields with no column are returned in dropped, sorted.
func (b *Binding) Row(values map[string]any) (row []any, dropped []string) {
	row = make([]any, len(b.table.Header))
	for i := range row {
		row[i] = ""
	}
	for field, v := range values {
		col, ok := b.cols[field]
		if !ok {
			dropped = append(dropped, field)
			continue
		}
		row[col] = v
	}
	sort.Strings(dropped)
	return row, dropped
}
