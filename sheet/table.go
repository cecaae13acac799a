// Package sheet models header-addressed tables (one header row followed by
// data rows) and the stores that hold them.
package sheet

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrTableNotFound = errors.New("table not found")
	ErrTableExists   = errors.New("table already exists")
)

// Store is the tabular store the inbound workflows run against.
// Row numbers are 1-based sheet rows: the header is row 1 and the first data
// row is row 2.
type Store interface {
	// Table returns the header and every data row of the named table, or
	// ErrTableNotFound.
	Table(ctx context.Context, name string) (*Table, error)
	CreateTable(ctx context.Context, name string, header []string) (*Table, error)
	AppendRow(ctx context.Context, name string, row []any) error
	SetHeader(ctx context.Context, name string, header []string) error
	FreezeHeader(ctx context.Context, name string) error
	// WriteColumn overwrites one column for consecutive rows starting at
	// firstRow in a single call.
	WriteColumn(ctx context.Context, name string, col, firstRow int, values []any) error
}

// RowsAppender is implemented by stores that can append many rows in one
// call.
type RowsAppender interface {
	AppendRows(ctx context.Context, name string, rows [][]any) error
}

// AppendRows uses the store's bulk append when it has one.
func AppendRows(ctx context.Context, store Store, name string, rows [][]any) error {
	if ra, ok := store.(RowsAppender); ok {
		return ra.AppendRows(ctx, name, rows)
	}
	for _, row := range rows {
		if err := store.AppendRow(ctx, name, row); err != nil {
			return err
		}
	}
	return nil
}

// Table is a snapshot of a table. Rows[i] is sheet row i+2.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

// FirstDataRow is the sheet row number of Rows[0].
const FirstDataRow = 2

// ColIndex maps trimmed, lower-cased header names to their column index.
// The first occurrence of a duplicated header wins.
func (t *Table) ColIndex() map[string]int {
	idx := make(map[string]int, len(t.Header))
	for i, name := range t.Header {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		if _, ok := idx[key]; !ok {
			idx[key] = i
		}
	}
	return idx
}

// Cell returns the trimmed cell value or "" when the row is short.
func Cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

// TimestampLayout is how timestamps are written into cells.
const TimestampLayout = "2006-01-02 15:04:05"

// CellString renders a value the way stores persist it.
func CellString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return val.Format(TimestampLayout)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
