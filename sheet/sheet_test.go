package sheet

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inbound/apperrors"
)

var testSchema = Schema{
	Table: "Inbound_Skids",
	Columns: []Column{
		{Field: "skid_id", Name: "Skid_ID", Required: true},
		{Field: "fbpn", Name: "FBPN"},
		{Field: "qty", Name: "Qty", Aliases: []string{"Quantity"}},
	},
}

func TestBind_MissingRequiredColumnIsConfigError(t *testing.T) {
	tbl := &Table{Name: "Inbound_Skids", Header: []string{"FBPN", "Qty"}}

	_, err := Bind(tbl, testSchema)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrConfig))
}

func TestBind_AliasesAndCaseInsensitiveHeaders(t *testing.T) {
	tbl := &Table{
		Name:   "Inbound_Skids",
		Header: []string{" skid_id ", "Quantity"},
		Rows:   [][]string{{"SK-1", "10"}, {"SK-2"}},
	}

	b, err := Bind(tbl, testSchema)
	require.NoError(t, err)
	assert.True(t, b.Has("qty"))
	assert.False(t, b.Has("fbpn"))

	row, ok := b.Find("skid_id", " sk-1 ")
	require.True(t, ok)
	assert.Equal(t, "10", b.Get(row, "qty"))
	assert.Equal(t, "", b.Get(row, "fbpn"))

	row, ok = b.Find("skid_id", "SK-2")
	require.True(t, ok)
	assert.Equal(t, "", b.Get(row, "qty"), "short rows read as blank")

	_, ok = b.Find("skid_id", "")
	assert.False(t, ok)
}

func TestBinding_RowDropsUnboundFields(t *testing.T) {
	tbl := &Table{Name: "Inbound_Skids", Header: []string{"Qty", "Skid_ID", "Other"}}
	b, err := Bind(tbl, testSchema)
	require.NoError(t, err)

	row, dropped := b.Row(map[string]any{"skid_id": "SK-9", "qty": 4.0, "fbpn": "FB-1", "unknown": "x"})
	assert.Equal(t, []any{4.0, "SK-9", ""}, row)
	assert.Equal(t, []string{"fbpn", "unknown"}, dropped)
}

func TestCellString(t *testing.T) {
	assert.Equal(t, "", CellString(nil))
	assert.Equal(t, "-8", CellString(-8.0))
	assert.Equal(t, "0.5", CellString(0.5))
	assert.Equal(t, "12", CellString(12))
	assert.Equal(t, "abc", CellString("abc"))
}

func TestWorkbook_TableLifecycle(t *testing.T) {
	ctx := context.Background()
	wb := NewMemoryWorkbook()
	defer wb.Close()

	_, err := wb.Table(ctx, "Verification_Log")
	assert.True(t, errors.Is(err, ErrTableNotFound))

	_, err = wb.CreateTable(ctx, "Verification_Log", []string{"Skid_ID", "Qty"})
	require.NoError(t, err)
	_, err = wb.CreateTable(ctx, "Verification_Log", []string{"Skid_ID"})
	assert.True(t, errors.Is(err, ErrTableExists))

	require.NoError(t, wb.FreezeHeader(ctx, "Verification_Log"))
	assert.True(t, wb.IsFrozen("Verification_Log"))

	require.NoError(t, wb.AppendRow(ctx, "Verification_Log", []any{"SK-1", 5.0}))
	require.NoError(t, wb.AppendRow(ctx, "Verification_Log", []any{"SK-2", 7.0}))

	tbl, err := wb.Table(ctx, "Verification_Log")
	require.NoError(t, err)
	assert.Equal(t, []string{"Skid_ID", "Qty"}, tbl.Header)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, []string{"SK-2", "7"}, tbl.Rows[1])

	require.NoError(t, wb.WriteColumn(ctx, "Verification_Log", 1, FirstDataRow, []any{"50", "70"}))
	tbl, err = wb.Table(ctx, "Verification_Log")
	require.NoError(t, err)
	assert.Equal(t, "50", tbl.Rows[0][1])
	assert.Equal(t, "70", tbl.Rows[1][1])

	require.NoError(t, wb.SetHeader(ctx, "Verification_Log", []string{"Skid", "Quantity"}))
	tbl, err = wb.Table(ctx, "Verification_Log")
	require.NoError(t, err)
	assert.Equal(t, []string{"Skid", "Quantity"}, tbl.Header)
}

func TestWorkbook_PersistsToPath(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "inbound.xlsx")

	wb, err := OpenWorkbook(path)
	require.NoError(t, err)
	_, err = wb.CreateTable(ctx, "PO_Master", []string{"Customer_PO", "Project"})
	require.NoError(t, err)
	require.NoError(t, wb.AppendRow(ctx, "PO_Master", []any{"PO1", "Alpha"}))
	require.NoError(t, wb.Close())

	reopened, err := OpenWorkbook(path)
	require.NoError(t, err)
	defer reopened.Close()
	tbl, err := reopened.Table(ctx, "PO_Master")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"PO1", "Alpha"}}, tbl.Rows)
}

func TestWorkbook_AppendRows(t *testing.T) {
	ctx := context.Background()
	wb := NewMemoryWorkbook()
	_, err := wb.CreateTable(ctx, "Item_Master", []string{"SKU", "UOM"})
	require.NoError(t, err)

	require.NoError(t, AppendRows(ctx, wb, "Item_Master", [][]any{{"A", "EA"}, {"B", "CS"}}))
	require.NoError(t, wb.AppendRow(ctx, "Item_Master", []any{"C", "BX"}))
	tbl, err := wb.Table(ctx, "Item_Master")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"A", "EA"}, {"B", "CS"}, {"C", "BX"}}, tbl.Rows)
}
