package sheet

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/xuri/excelize/v2"
)

// Workbook is a Store backed by an .xlsx file; every sheet is a table.
// A workbook without a path lives in memory only.
type Workbook struct {
	mu     sync.Mutex
	file   *excelize.File
	path   string
	frozen map[string]bool
}

// OpenWorkbook opens path, or starts an empty workbook when the file does
// not exist yet. The file is written on the first mutation.
func OpenWorkbook(path string) (*Workbook, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &Workbook{file: excelize.NewFile(), path: path, frozen: map[string]bool{}}, nil
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	return &Workbook{file: f, path: path, frozen: map[string]bool{}}, nil
}

// NewMemoryWorkbook returns an unsaved in-memory workbook.
func NewMemoryWorkbook() *Workbook {
	return &Workbook{file: excelize.NewFile(), frozen: map[string]bool{}}
}

func (w *Workbook) Close() error {
	return w.file.Close()
}

func (w *Workbook) exists(name string) (bool, error) {
	idx, err := w.file.GetSheetIndex(name)
	if err != nil {
		return false, err
	}
	return idx != -1, nil
}

func (w *Workbook) save() error {
	if w.path == "" {
		return nil
	}
	if err := w.file.SaveAs(w.path); err != nil {
		return fmt.Errorf("save workbook %s: %w", w.path, err)
	}
	return nil
}

func (w *Workbook) Table(_ context.Context, name string) (*Table, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	ok, err := w.exists(name)
	if err != nil {
		return nil, fmt.Errorf("lookup sheet %s: %w", name, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrTableNotFound)
	}
	rows, err := w.file.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", name, err)
	}
	t := &Table{Name: name}
	if len(rows) == 0 {
		return t, nil
	}
	t.Header = rows[0]
	t.Rows = rows[1:]
	return t, nil
}

func (w *Workbook) CreateTable(_ context.Context, name string, header []string) (*Table, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	ok, err := w.exists(name)
	if err != nil {
		return nil, fmt.Errorf("lookup sheet %s: %w", name, err)
	}
	if ok {
		return nil, fmt.Errorf("%s: %w", name, ErrTableExists)
	}
	if _, err := w.file.NewSheet(name); err != nil {
		return nil, fmt.Errorf("create sheet %s: %w", name, err)
	}
	if err := w.writeHeader(name, header); err != nil {
		return nil, err
	}
	if err := w.save(); err != nil {
		return nil, err
	}
	return &Table{Name: name, Header: append([]string(nil), header...)}, nil
}

func (w *Workbook) writeHeader(name string, header []string) error {
	cells := make([]any, len(header))
	for i, h := range header {
		cells[i] = h
	}
	if err := w.file.SetSheetRow(name, "A1", &cells); err != nil {
		return fmt.Errorf("write header of %s: %w", name, err)
	}
	return nil
}

func (w *Workbook) SetHeader(_ context.Context, name string, header []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	ok, err := w.exists(name)
	if err != nil {
		return fmt.Errorf("lookup sheet %s: %w", name, err)
	}
	if !ok {
		return fmt.Errorf("%s: %w", name, ErrTableNotFound)
	}
	if err := w.writeHeader(name, header); err != nil {
		return err
	}
	return w.save()
}

func (w *Workbook) AppendRow(ctx context.Context, name string, row []any) error {
	return w.AppendRows(ctx, name, [][]any{row})
}

// AppendRows writes rows below the last used row and saves once.
func (w *Workbook) AppendRows(_ context.Context, name string, rows [][]any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	ok, err := w.exists(name)
	if err != nil {
		return fmt.Errorf("lookup sheet %s: %w", name, err)
	}
	if !ok {
		return fmt.Errorf("%s: %w", name, ErrTableNotFound)
	}
	existing, err := w.file.GetRows(name)
	if err != nil {
		return fmt.Errorf("read sheet %s: %w", name, err)
	}
	next := len(existing) + 1
	if next < FirstDataRow {
		next = FirstDataRow
	}
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, next+i)
		if err != nil {
			return err
		}
		if err := w.file.SetSheetRow(name, cell, &rows[i]); err != nil {
			return fmt.Errorf("append row to %s: %w", name, err)
		}
	}
	return w.save()
}

func (w *Workbook) FreezeHeader(_ context.Context, name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	err := w.file.SetPanes(name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
	if err != nil {
		return fmt.Errorf("freeze header of %s: %w", name, err)
	}
	w.frozen[name] = true
	return w.save()
}

// IsFrozen reports whether FreezeHeader was applied to name through this
// workbook handle.
func (w *Workbook) IsFrozen(name string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.frozen[name]
}

func (w *Workbook) WriteColumn(_ context.Context, name string, col, firstRow int, values []any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(values) == 0 {
		return nil
	}
	ok, err := w.exists(name)
	if err != nil {
		return fmt.Errorf("lookup sheet %s: %w", name, err)
	}
	if !ok {
		return fmt.Errorf("%s: %w", name, ErrTableNotFound)
	}
	cell, err := excelize.CoordinatesToCellName(col+1, firstRow)
	if err != nil {
		return err
	}
	if err := w.file.SetSheetCol(name, cell, &values); err != nil {
		return fmt.Errorf("write column %d of %s: %w", col, name, err)
	}
	return w.save()
}
