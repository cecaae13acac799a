package database

import (
	"context"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inbound/sheet"
)

func newTestStore(t *testing.T) *SheetStore {
	t.Helper()
	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, InitSchema(context.Background(), db))
	return NewSheetStore(db)
}

func TestSheetStore_CreateAppendRead(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Table(ctx, "Verification_Log")
	assert.True(t, errors.Is(err, sheet.ErrTableNotFound))

	_, err = s.CreateTable(ctx, "Verification_Log", []string{"Skid_ID", "Variance"})
	require.NoError(t, err)
	_, err = s.CreateTable(ctx, "Verification_Log", []string{"Skid_ID"})
	assert.True(t, errors.Is(err, sheet.ErrTableExists))

	require.NoError(t, s.AppendRow(ctx, "Verification_Log", []any{"SK-1", -8.0}))
	require.NoError(t, s.AppendRow(ctx, "Verification_Log", []any{"SK-2", 0.0}))

	tbl, err := s.Table(ctx, "Verification_Log")
	require.NoError(t, err)
	assert.Equal(t, []string{"Skid_ID", "Variance"}, tbl.Header)
	assert.Equal(t, [][]string{{"SK-1", "-8"}, {"SK-2", "0"}}, tbl.Rows)

	err = s.AppendRow(ctx, "Missing", []any{"x"})
	assert.True(t, errors.Is(err, sheet.ErrTableNotFound))
}

func TestSheetStore_FreezeAndHeader(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.CreateTable(ctx, "Verification_Log", []string{"A"})
	require.NoError(t, err)

	frozen, err := s.IsFrozen(ctx, "Verification_Log")
	require.NoError(t, err)
	assert.False(t, frozen)

	require.NoError(t, s.FreezeHeader(ctx, "Verification_Log"))
	frozen, err = s.IsFrozen(ctx, "Verification_Log")
	require.NoError(t, err)
	assert.True(t, frozen)

	require.NoError(t, s.SetHeader(ctx, "Verification_Log", []string{"B", "A"}))
	tbl, err := s.Table(ctx, "Verification_Log")
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A"}, tbl.Header)

	assert.True(t, errors.Is(s.FreezeHeader(ctx, "Nope"), sheet.ErrTableNotFound))
}

func TestSheetStore_WriteColumnKeepsSpacerRows(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.CreateTable(ctx, "Master_Log", []string{"Customer_PO_Number", "Project"})
	require.NoError(t, err)
	require.NoError(t, s.WriteColumn(ctx, "Master_Log", 0, 3, []any{"PO1", "PO2"}))

	tbl, err := s.Table(ctx, "Master_Log")
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 3)
	assert.Empty(t, tbl.Rows[0], "row 2 was never written")
	assert.Equal(t, []string{"PO1"}, tbl.Rows[1])

	require.NoError(t, s.WriteColumn(ctx, "Master_Log", 1, 3, []any{"Alpha", ""}))
	tbl, err = s.Table(ctx, "Master_Log")
	require.NoError(t, err)
	assert.Equal(t, []string{"PO1", "Alpha"}, tbl.Rows[1])
	assert.Equal(t, []string{"PO2", ""}, tbl.Rows[2])
}

func TestSheetStore_AppendRows(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	_, err := s.CreateTable(ctx, "Item_Master", []string{"SKU", "UOM"})
	require.NoError(t, err)
	require.NoError(t, s.AppendRow(ctx, "Item_Master", []any{"A", "EA"}))

	require.NoError(t, sheet.AppendRows(ctx, s, "Item_Master", [][]any{{"B", "CS"}, {"C", "BX"}}))
	tbl, err := s.Table(ctx, "Item_Master")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"A", "EA"}, {"B", "CS"}, {"C", "BX"}}, tbl.Rows)
}
