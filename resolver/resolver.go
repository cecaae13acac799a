package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"inbound/apperrors"
	"inbound/appctx"
	"inbound/barcode"
	"inbound/mappers"
	"inbound/model"
	"inbound/sheet"
	"inbound/units"
)

// Source names reported in SkidInfo.Sources.
const (
	SourceSkids      = model.TableSkids
	SourceStaging    = model.TableStaging
	SourceMasterLog  = model.TableMasterLog
	SourceItemMaster = model.TableItemMaster
)

// ResolveSkidInfo returns the skid row for skidID, enriched with
// manufacturer and push number (Staging, then Master_Log by TXN_ID) and with
// UOM and asset type from Item_Master.
func ResolveSkidInfo(ctx context.Context, env appctx.Env, skidID string) (model.SkidInfo, error) {
	key := strings.TrimSpace(skidID)
	if key == "" {
		return model.SkidInfo{}, apperrors.NewNotFoundError("skid", "")
	}

	t, err := env.Store.Table(ctx, model.TableSkids)
	if err != nil {
		if errors.Is(err, sheet.ErrTableNotFound) {
			return model.SkidInfo{}, apperrors.NewConfigError(model.TableSkids, "")
		}
		return model.SkidInfo{}, fmt.Errorf("ResolveSkidInfo failed: %w", err)
	}
	b, err := sheet.Bind(t, model.SkidSchema)
	if err != nil {
		return model.SkidInfo{}, err
	}
	row, ok := b.Find(model.FieldSkidID, key)
	if !ok {
		// scanned GS1-128 labels carry the SSCC behind an AI prefix
		if scanned := barcode.NormalizeScan(key); scanned != key {
			row, ok = b.Find(model.FieldSkidID, scanned)
		}
	}
	if !ok {
		return model.SkidInfo{}, apperrors.NewNotFoundError("skid", key)
	}
	info, err := mappers.RowToSkidInfo(b, row)
	if err != nil {
		return model.SkidInfo{}, fmt.Errorf("ResolveSkidInfo failed: %w", err)
	}

	targets := []string{model.FieldManufacturer, model.FieldPushNumber}
	fields := []string{model.FieldManufacturer, model.FieldPushNumber}
	res, err := Run(ctx, nil, targets, []Step{
		{
			Source: SourceStaging,
			Fields: fields,
			Lookup: rowLookup(env.Store, model.StagingSchema, model.FieldSkidID, info.SkidID, fields),
		},
		{
			Source: SourceMasterLog,
			Fields: fields,
			Lookup: rowLookup(env.Store, model.MasterLogSchema, model.FieldTxnID, info.TxnID, fields),
		},
	})
	if err != nil {
		return model.SkidInfo{}, fmt.Errorf("ResolveSkidInfo failed: %w", err)
	}
	info.Manufacturer = res.Values[model.FieldManufacturer]
	info.PushNumber = res.Values[model.FieldPushNumber]
	info.Sources = res.Sources

	item, err := ResolveItemDetails(ctx, env, info.SKU, info.FBPN)
	if err != nil {
		return model.SkidInfo{}, fmt.Errorf("ResolveSkidInfo failed: %w", err)
	}
	info.UOM = item.UOM
	info.AssetType = item.AssetType
	if item.MatchedBy != "" {
		info.Sources[model.FieldUOM] = SourceItemMaster
		info.Sources[model.FieldAssetType] = SourceItemMaster
	}

	env.Log().Debug("resolved skid",
		zap.String("skid_id", info.SkidID),
		zap.Any("sources", info.Sources),
	)
	return info, nil
}

// ResolveItemDetails matches Item_Master by SKU, then by FBPN. The first
// matching row wins as a whole; with no match the unit is EA and the asset
// type blank. A missing Item_Master table resolves to the default.
func ResolveItemDetails(ctx context.Context, env appctx.Env, sku, fbpn string) (model.ItemDetails, error) {
	details := model.ItemDetails{UOM: units.DefaultUOM}

	t, err := env.Store.Table(ctx, model.TableItemMaster)
	if err != nil {
		if errors.Is(err, sheet.ErrTableNotFound) {
			return details, nil
		}
		return details, fmt.Errorf("ResolveItemDetails failed: %w", err)
	}
	b, err := sheet.Bind(t, model.ItemMasterSchema)
	if err != nil {
		return details, err
	}

	row, ok := b.Find(model.FieldSKU, sku)
	matchedBy := "sku"
	if !ok {
		row, ok = b.Find(model.FieldFBPN, fbpn)
		matchedBy = "fbpn"
	}
	if !ok {
		return details, nil
	}
	if uom := strings.TrimSpace(b.Get(row, model.FieldUOM)); uom != "" {
		details.UOM = uom
	}
	details.AssetType = b.Get(row, model.FieldAssetType)
	details.MatchedBy = matchedBy
	return details, nil
}

// rowLookup finds the first row of an optional table whose keyField equals
// key and returns the requested fields from it.
func rowLookup(store sheet.Store, schema sheet.Schema, keyField, key string, fields []string) Lookup {
	return func(ctx context.Context) (map[string]string, error) {
		if key == "" {
			return nil, nil
		}
		t, err := store.Table(ctx, schema.Table)
		if err != nil {
			return nil, err
		}
		b, err := sheet.Bind(t, schema)
		if err != nil {
			return nil, err
		}
		row, ok := b.Find(keyField, key)
		if !ok {
			return nil, apperrors.NewNotFoundError(schema.Table, key)
		}
		out := make(map[string]string, len(fields))
		for _, f := range fields {
			out[f] = b.Get(row, f)
		}
		return out, nil
	}
}
