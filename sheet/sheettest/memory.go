// Package sheettest provides an in-memory sheet.Store that records calls.
package sheettest

import (
	"context"
	"fmt"
	"sync"

	"inbound/sheet"
)

// Store keeps tables in memory. Reads and writes are counted per table so
// tests can assert on I/O volume.
type Store struct {
	mu      sync.Mutex
	tables  map[string]*sheet.Table
	frozen  map[string]bool
	Reads   map[string]int
	Writes  map[string]int
	Appends map[string]int
	// FailTable makes Table return this error for the named table.
	FailTable map[string]error
}

func New() *Store {
	return &Store{
		tables:    make(map[string]*sheet.Table),
		frozen:    make(map[string]bool),
		Reads:     make(map[string]int),
		Writes:    make(map[string]int),
		Appends:   make(map[string]int),
		FailTable: make(map[string]error),
	}
}

// Seed installs a table with the given header and rows.
func (s *Store) Seed(name string, header []string, rows ...[]string) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &sheet.Table{Name: name, Header: append([]string(nil), header...)}
	for _, r := range rows {
		t.Rows = append(t.Rows, append([]string(nil), r...))
	}
	s.tables[name] = t
	return s
}

// Snapshot returns a copy of the table without counting a read.
func (s *Store) Snapshot(name string) *sheet.Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[name]
	if !ok {
		return nil
	}
	return clone(t)
}

func (s *Store) IsFrozen(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frozen[name]
}

func clone(t *sheet.Table) *sheet.Table {
	out := &sheet.Table{Name: t.Name, Header: append([]string(nil), t.Header...)}
	for _, r := range t.Rows {
		out.Rows = append(out.Rows, append([]string(nil), r...))
	}
	return out
}

func (s *Store) Table(_ context.Context, name string) (*sheet.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Reads[name]++
	if err := s.FailTable[name]; err != nil {
		return nil, err
	}
	t, ok := s.tables[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, sheet.ErrTableNotFound)
	}
	return clone(t), nil
}

func (s *Store) CreateTable(_ context.Context, name string, header []string) (*sheet.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tables[name]; ok {
		return nil, fmt.Errorf("%s: %w", name, sheet.ErrTableExists)
	}
	t := &sheet.Table{Name: name, Header: append([]string(nil), header...)}
	s.tables[name] = t
	return clone(t), nil
}

func (s *Store) AppendRow(_ context.Context, name string, row []any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[name]
	if !ok {
		return fmt.Errorf("%s: %w", name, sheet.ErrTableNotFound)
	}
	cells := make([]string, len(row))
	for i, v := range row {
		cells[i] = sheet.CellString(v)
	}
	t.Rows = append(t.Rows, cells)
	s.Appends[name]++
	return nil
}

func (s *Store) SetHeader(_ context.Context, name string, header []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[name]
	if !ok {
		return fmt.Errorf("%s: %w", name, sheet.ErrTableNotFound)
	}
	t.Header = append([]string(nil), header...)
	return nil
}

func (s *Store) FreezeHeader(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tables[name]; !ok {
		return fmt.Errorf("%s: %w", name, sheet.ErrTableNotFound)
	}
	s.frozen[name] = true
	return nil
}

func (s *Store) WriteColumn(_ context.Context, name string, col, firstRow int, values []any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[name]
	if !ok {
		return fmt.Errorf("%s: %w", name, sheet.ErrTableNotFound)
	}
	s.Writes[name]++
	for i, v := range values {
		idx := firstRow - sheet.FirstDataRow + i
		for len(t.Rows) <= idx {
			t.Rows = append(t.Rows, nil)
		}
		for len(t.Rows[idx]) <= col {
			t.Rows[idx] = append(t.Rows[idx], "")
		}
		t.Rows[idx][col] = sheet.CellString(v)
	}
	return nil
}

var _ sheet.Store = (*Store)(nil)
