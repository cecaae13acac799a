package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inbound/apperrors"
	"inbound/appctx"
	"inbound/model"
	"inbound/sheet/sheettest"
)

func seededStore() *sheettest.Store {
	return sheettest.New().
		Seed(model.TableSkids,
			[]string{"Skid_ID", "TXN_ID", "FBPN", "MFPN", "Project", "SKU", "Qty"},
			[]string{"SKD-001", "TX-1", "FB-100", "MF-100", "Alpha", "SKU-1", "100"},
			[]string{"SKD-002", "TX-2", "FB-200", "MF-200", "Beta", "", "12.5"},
			[]string{"SKD-003", "", "FB-300", "", "", "", ""},
		).
		Seed(model.TableStaging,
			[]string{"Skid_ID", "Push_Number", "Manufacturer"},
			[]string{"skd-001", "P-9", ""},
		).
		Seed(model.TableMasterLog,
			[]string{"TXN_ID", "Manufacturer", "Push_Number"},
			[]string{"TX-1", "Acme", "P-OLD"},
			[]string{"TX-2", "Globex", "P-2"},
		).
		Seed(model.TableItemMaster,
			[]string{"SKU", "FBPN", "UOM", "Asset_Type"},
			[]string{"sku-1", "", "each", "Server"},
			[]string{"", "FB-200", "CS", "Cable"},
			[]string{"", "FB-200", "BX", "Second"},
		)
}

func testEnv(store *sheettest.Store) appctx.Env {
	return appctx.New(store, "tester", nil, nil)
}

func TestResolveSkidInfo(t *testing.T) {
	ctx := context.Background()
	env := testEnv(seededStore())

	info, err := ResolveSkidInfo(ctx, env, "  skd-001 ")
	require.NoError(t, err)
	assert.Equal(t, "SKD-001", info.SkidID)
	assert.Equal(t, "FB-100", info.FBPN)
	assert.Equal(t, "MF-100", info.MFPN)
	assert.Equal(t, "Alpha", info.Project)
	assert.True(t, decimal.NewFromInt(100).Equal(info.ExpectedQty))

	// push number from staging, manufacturer only from master log
	assert.Equal(t, "P-9", info.PushNumber)
	assert.Equal(t, "Acme", info.Manufacturer)
	assert.Equal(t, SourceStaging, info.Sources[model.FieldPushNumber])
	assert.Equal(t, SourceMasterLog, info.Sources[model.FieldManufacturer])

	assert.Equal(t, "each", info.UOM, "Item_Master unit is returned as stored")
	assert.Equal(t, "Server", info.AssetType)
}

func TestResolveSkidInfo_NoEnrichmentSources(t *testing.T) {
	info, err := ResolveSkidInfo(context.Background(), testEnv(seededStore()), "SKD-003")
	require.NoError(t, err)
	assert.Empty(t, info.Manufacturer)
	assert.Empty(t, info.PushNumber)
	assert.Equal(t, "EA", info.UOM)
	assert.Empty(t, info.AssetType)
	assert.True(t, info.ExpectedQty.IsZero())
}

func TestResolveSkidInfo_OptionalTablesMissing(t *testing.T) {
	store := sheettest.New().Seed(model.TableSkids,
		[]string{"Skid_ID", "TXN_ID"},
		[]string{"SKD-1", "TX-1"},
	)
	info, err := ResolveSkidInfo(context.Background(), testEnv(store), "SKD-1")
	require.NoError(t, err)
	assert.Equal(t, "SKD-1", info.SkidID)
	assert.Equal(t, "EA", info.UOM)
}

func TestResolveSkidInfo_Errors(t *testing.T) {
	ctx := context.Background()
	env := testEnv(seededStore())

	_, err := ResolveSkidInfo(ctx, env, "   ")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	_, err = ResolveSkidInfo(ctx, env, "SKD-999")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	_, err = ResolveSkidInfo(ctx, testEnv(sheettest.New()), "SKD-001")
	assert.True(t, errors.Is(err, apperrors.ErrConfig))

	noKey := sheettest.New().Seed(model.TableSkids, []string{"Pallet", "FBPN"})
	_, err = ResolveSkidInfo(ctx, testEnv(noKey), "SKD-001")
	var cfgErr *apperrors.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "Skid_ID", cfgErr.Column)
}

func TestResolveSkidInfo_GS1Scan(t *testing.T) {
	store := sheettest.New().Seed(model.TableSkids,
		[]string{"Skid_ID"},
		[]string{"012345678901234567"},
	)
	info, err := ResolveSkidInfo(context.Background(), testEnv(store), "(00)012345678901234567")
	require.NoError(t, err)
	assert.Equal(t, "012345678901234567", info.SkidID)
}

func TestResolveSkidInfo_NumericIDStartingWithZeros(t *testing.T) {
	store := sheettest.New().Seed(model.TableSkids,
		[]string{"Skid_ID"},
		[]string{"00123456789012345678"},
		[]string{"123456789012345678"},
	)
	info, err := ResolveSkidInfo(context.Background(), testEnv(store), "00123456789012345678")
	require.NoError(t, err)
	assert.Equal(t, "00123456789012345678", info.SkidID, "exact match wins over the scanned SSCC")

	store = sheettest.New().Seed(model.TableSkids,
		[]string{"Skid_ID"},
		[]string{"123456789012345678"},
	)
	info, err = ResolveSkidInfo(context.Background(), testEnv(store), "00123456789012345678")
	require.NoError(t, err)
	assert.Equal(t, "123456789012345678", info.SkidID)
}

func TestResolveItemDetails_BlankUnitDefaults(t *testing.T) {
	store := sheettest.New().Seed(model.TableItemMaster,
		[]string{"SKU", "UOM", "Asset_Type"},
		[]string{"SKU-1", "PCS", "Cable"},
		[]string{"SKU-2", " ", "Rack"},
	)
	d, err := ResolveItemDetails(context.Background(), testEnv(store), "SKU-1", "")
	require.NoError(t, err)
	assert.Equal(t, "PCS", d.UOM)

	d, err = ResolveItemDetails(context.Background(), testEnv(store), "SKU-2", "")
	require.NoError(t, err)
	assert.Equal(t, "EA", d.UOM)
}

func TestResolveItemDetails(t *testing.T) {
	ctx := context.Background()
	env := testEnv(seededStore())

	d, err := ResolveItemDetails(ctx, env, "SKU-1", "FB-200")
	require.NoError(t, err)
	assert.Equal(t, model.ItemDetails{UOM: "each", AssetType: "Server", MatchedBy: "sku"}, d)

	d, err = ResolveItemDetails(ctx, env, "SKU-X", "fb-200")
	require.NoError(t, err)
	assert.Equal(t, model.ItemDetails{UOM: "CS", AssetType: "Cable", MatchedBy: "fbpn"}, d, "first FBPN row wins")

	d, err = ResolveItemDetails(ctx, env, "", "")
	require.NoError(t, err)
	assert.Equal(t, model.ItemDetails{UOM: "EA"}, d)

	d, err = ResolveItemDetails(ctx, testEnv(sheettest.New()), "SKU-1", "")
	require.NoError(t, err)
	assert.Equal(t, "EA", d.UOM)
}
