package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/jmoiron/sqlx"

	"inbound/sheet"
)

const schema = `
CREATE TABLE IF NOT EXISTS sheet_tables (
	name   TEXT PRIMARY KEY,
	header TEXT NOT NULL,
	frozen INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS sheet_rows (
	table_name TEXT NOT NULL,
	row_no     INTEGER NOT NULL,
	cells      TEXT NOT NULL,
	PRIMARY KEY (table_name, row_no)
);
`

// Open opens the SQLite file used as the tabular store.
func Open(path string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if path == ":memory:" {
		// every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

// InitSchema creates the tables that hold sheet data.
func InitSchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// SheetStore keeps header-addressed tables in SQLite. Header and row cells
// are stored as JSON string arrays; row_no is the sheet row number.
type SheetStore struct {
	db *sqlx.DB
	mu sync.Mutex
}

func NewSheetStore(db *sqlx.DB) *SheetStore {
	return &SheetStore{db: db}
}

type tableRow struct {
	Name   string `db:"name"`
	Header string `db:"header"`
	Frozen int    `db:"frozen"`
}

type cellRow struct {
	RowNo int    `db:"row_no"`
	Cells string `db:"cells"`
}

func getTableMeta(ctx context.Context, q sqlx.QueryerContext, name string) (*tableRow, error) {
	var meta tableRow
	err := sqlx.GetContext(ctx, q, &meta, `SELECT name, header, frozen FROM sheet_tables WHERE name = ?`, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", name, sheet.ErrTableNotFound)
		}
		return nil, fmt.Errorf("get table %s failed: %w", name, err)
	}
	return &meta, nil
}

func (s *SheetStore) Table(ctx context.Context, name string) (*sheet.Table, error) {
	meta, err := getTableMeta(ctx, s.db, name)
	if err != nil {
		return nil, err
	}
	t := &sheet.Table{Name: name}
	if err := json.Unmarshal([]byte(meta.Header), &t.Header); err != nil {
		return nil, fmt.Errorf("decode header of %s: %w", name, err)
	}

	var rows []cellRow
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT row_no, cells FROM sheet_rows WHERE table_name = ? ORDER BY row_no`, name); err != nil {
		return nil, fmt.Errorf("get rows of %s failed: %w", name, err)
	}
	for _, r := range rows {
		// rows never written (spacers) read back as empty
		for len(t.Rows)+sheet.FirstDataRow < r.RowNo {
			t.Rows = append(t.Rows, []string{})
		}
		var cells []string
		if err := json.Unmarshal([]byte(r.Cells), &cells); err != nil {
			return nil, fmt.Errorf("decode row %d of %s: %w", r.RowNo, name, err)
		}
		t.Rows = append(t.Rows, cells)
	}
	return t, nil
}

func (s *SheetStore) CreateTable(ctx context.Context, name string, header []string) (*sheet.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := getTableMeta(ctx, s.db, name); err == nil {
		return nil, fmt.Errorf("%s: %w", name, sheet.ErrTableExists)
	} else if !errors.Is(err, sheet.ErrTableNotFound) {
		return nil, err
	}
	encoded, err := json.Marshal(header)
	if err != nil {
		return nil, err
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO sheet_tables (name, header) VALUES (?, ?)`, name, string(encoded)); err != nil {
		return nil, fmt.Errorf("CreateTable %s failed: %w", name, err)
	}
	return &sheet.Table{Name: name, Header: append([]string(nil), header...)}, nil
}

func (s *SheetStore) SetHeader(ctx context.Context, name string, header []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	encoded, err := json.Marshal(header)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE sheet_tables SET header = ? WHERE name = ?`, string(encoded), name)
	if err != nil {
		return fmt.Errorf("SetHeader %s failed: %w", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", name, sheet.ErrTableNotFound)
	}
	return nil
}

func (s *SheetStore) FreezeHeader(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `UPDATE sheet_tables SET frozen = 1 WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("FreezeHeader %s failed: %w", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", name, sheet.ErrTableNotFound)
	}
	return nil
}

// IsFrozen reports whether the table's header row is frozen.
func (s *SheetStore) IsFrozen(ctx context.Context, name string) (bool, error) {
	meta, err := getTableMeta(ctx, s.db, name)
	if err != nil {
		return false, err
	}
	return meta.Frozen == 1, nil
}

func encodeCells(row []any) (string, error) {
	cells := make([]string, len(row))
	for i, v := range row {
		cells[i] = sheet.CellString(v)
	}
	encoded, err := json.Marshal(cells)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

func (s *SheetStore) AppendRow(ctx context.Context, name string, row []any) error {
	return s.AppendRows(ctx, name, [][]any{row})
}

// AppendRows appends rows after the last stored row in one transaction.
func (s *SheetStore) AppendRows(ctx context.Context, name string, rows [][]any) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	if _, err = getTableMeta(ctx, tx, name); err != nil {
		return err
	}
	var last int
	if err = tx.GetContext(ctx, &last,
		`SELECT COALESCE(MAX(row_no), 1) FROM sheet_rows WHERE table_name = ?`, name); err != nil {
		return fmt.Errorf("AppendRows %s: last row: %w", name, err)
	}
	for i, row := range rows {
		cells, encErr := encodeCells(row)
		if encErr != nil {
			err = encErr
			return err
		}
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO sheet_rows (table_name, row_no, cells) VALUES (?, ?, ?)`, name, last+1+i, cells); err != nil {
			return fmt.Errorf("AppendRows %s failed: %w", name, err)
		}
	}
	return nil
}

// WriteColumn rewrites one column across consecutive rows inside a single
// transaction. Rows that do not exist yet are created.
func (s *SheetStore) WriteColumn(ctx context.Context, name string, col, firstRow int, values []any) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(values) == 0 {
		return nil
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	if _, err = getTableMeta(ctx, tx, name); err != nil {
		return err
	}
	lastRow := firstRow + len(values) - 1
	var existing []cellRow
	if err = tx.SelectContext(ctx, &existing,
		`SELECT row_no, cells FROM sheet_rows WHERE table_name = ? AND row_no BETWEEN ? AND ?`,
		name, firstRow, lastRow); err != nil {
		return fmt.Errorf("WriteColumn %s: read range: %w", name, err)
	}
	byRow := make(map[int][]string, len(existing))
	for _, r := range existing {
		var cells []string
		if err = json.Unmarshal([]byte(r.Cells), &cells); err != nil {
			return fmt.Errorf("decode row %d of %s: %w", r.RowNo, name, err)
		}
		byRow[r.RowNo] = cells
	}

	const q = `
		INSERT INTO sheet_rows (table_name, row_no, cells)
		VALUES (?, ?, ?)
		ON CONFLICT(table_name, row_no) DO UPDATE SET
			cells = excluded.cells
	`
	stmt, err := tx.PreparexContext(ctx, q)
	if err != nil {
		return fmt.Errorf("WriteColumn %s: prepare: %w", name, err)
	}
	defer stmt.Close()

	for i, v := range values {
		rowNo := firstRow + i
		cells := byRow[rowNo]
		for len(cells) <= col {
			cells = append(cells, "")
		}
		cells[col] = sheet.CellString(v)
		encoded, mErr := json.Marshal(cells)
		if mErr != nil {
			return mErr
		}
		if _, err = stmt.ExecContext(ctx, name, rowNo, string(encoded)); err != nil {
			return fmt.Errorf("WriteColumn %s row %d failed: %w", name, rowNo, err)
		}
	}
	return nil
}
