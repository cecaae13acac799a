package mappers

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"inbound/model"
	"inbound/sheet"
)

var timestampLayouts = []string{
	sheet.TimestampLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"01-02-06 15:04",
	"2006-01-02",
	"1/2/2006",
}

// ParseTimestamp reads a timestamp cell. Values without a zone are taken to
// be in loc.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range timestampLayouts {
		if layout == time.RFC3339 {
			if t, err := time.Parse(layout, s); err == nil {
				return t.In(loc), nil
			}
			continue
		}
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// ParseQty reads a quantity cell; blank cells are zero.
func ParseQty(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid quantity %q: %w", s, err)
	}
	return d, nil
}

// RowToSkidInfo maps an Inbound_Skids row. Enrichment fields are left for
// the resolver.
func RowToSkidInfo(b *sheet.Binding, row []string) (model.SkidInfo, error) {
	qty, err := ParseQty(b.Get(row, model.FieldQty))
	if err != nil {
		return model.SkidInfo{}, err
	}
	return model.SkidInfo{
		SkidID:      b.Get(row, model.FieldSkidID),
		TxnID:       b.Get(row, model.FieldTxnID),
		FBPN:        b.Get(row, model.FieldFBPN),
		MFPN:        b.Get(row, model.FieldMFPN),
		Project:     b.Get(row, model.FieldProject),
		SKU:         b.Get(row, model.FieldSKU),
		ExpectedQty: qty,
		PONumber:    b.Get(row, model.FieldPONumber),
		BOLNumber:   b.Get(row, model.FieldBOLNumber),
	}, nil
}

// VerificationToValues turns a record into field-keyed cell values.
// Quantities are written as numbers so the sheet can sum them.
func VerificationToValues(rec *model.VerificationRecord) map[string]any {
	return map[string]any{
		model.FieldTimestamp:    rec.Timestamp.Format(sheet.TimestampLayout),
		model.FieldBOLNumber:    rec.BOLNumber,
		model.FieldPONumber:     rec.PONumber,
		model.FieldAssetType:    rec.AssetType,
		model.FieldManufacturer: rec.Manufacturer,
		model.FieldMFPN:         rec.MFPN,
		model.FieldFBPN:         rec.FBPN,
		model.FieldUOM:          rec.UOM,
		model.FieldExpectedQty:  rec.ExpectedQty.InexactFloat64(),
		model.FieldActualQty:    rec.ActualQty.InexactFloat64(),
		model.FieldVariance:     rec.Variance.InexactFloat64(),
		model.FieldBoxLabels:    rec.BoxLabels,
		model.FieldVerifiedBy:   rec.VerifiedBy,
		model.FieldSkidID:       rec.SkidID,
		model.FieldTxnID:        rec.TxnID,
		model.FieldStatus:       rec.Status,
	}
}

// RowToVerification maps a Verification_Log row. Status is taken verbatim
// from the sheet when the column exists, otherwise derived from the variance.
func RowToVerification(b *sheet.Binding, row []string, loc *time.Location) (model.VerificationRecord, error) {
	ts, err := ParseTimestamp(b.Get(row, model.FieldTimestamp), loc)
	if err != nil {
		return model.VerificationRecord{}, err
	}
	expected, err := ParseQty(b.Get(row, model.FieldExpectedQty))
	if err != nil {
		return model.VerificationRecord{}, err
	}
	actual, err := ParseQty(b.Get(row, model.FieldActualQty))
	if err != nil {
		return model.VerificationRecord{}, err
	}
	variance := actual.Sub(expected)
	if b.Has(model.FieldVariance) && b.Get(row, model.FieldVariance) != "" {
		if variance, err = ParseQty(b.Get(row, model.FieldVariance)); err != nil {
			return model.VerificationRecord{}, err
		}
	}
	rec := model.VerificationRecord{
		Timestamp:    ts,
		BOLNumber:    b.Get(row, model.FieldBOLNumber),
		PONumber:     b.Get(row, model.FieldPONumber),
		AssetType:    b.Get(row, model.FieldAssetType),
		Manufacturer: b.Get(row, model.FieldManufacturer),
		MFPN:         b.Get(row, model.FieldMFPN),
		FBPN:         b.Get(row, model.FieldFBPN),
		UOM:          b.Get(row, model.FieldUOM),
		ExpectedQty:  expected,
		ActualQty:    actual,
		Variance:     variance,
		VerifiedBy:   b.Get(row, model.FieldVerifiedBy),
		SkidID:       b.Get(row, model.FieldSkidID),
		TxnID:        b.Get(row, model.FieldTxnID),
	}
	if n, err := ParseQty(b.Get(row, model.FieldBoxLabels)); err == nil {
		rec.BoxLabels = int(n.IntPart())
	}
	if b.Has(model.FieldStatus) {
		rec.Status = b.Get(row, model.FieldStatus)
	} else {
		rec.Status = model.StatusForVariance(variance)
	}
	return rec, nil
}

// FillBoxDefaults copies skid-level values from the verification record into
// boxes that left them blank.
func FillBoxDefaults(boxes []model.Box, rec *model.VerificationRecord, project, pushNumber string) []model.Box {
	out := make([]model.Box, len(boxes))
	for i, box := range boxes {
		if box.SkidID == "" {
			box.SkidID = rec.SkidID
		}
		if box.FBPN == "" {
			box.FBPN = rec.FBPN
		}
		if box.Manufacturer == "" {
			box.Manufacturer = rec.Manufacturer
		}
		if box.Project == "" {
			box.Project = project
		}
		if box.PushNumber == "" {
			box.PushNumber = pushNumber
		}
		if box.UOM == "" {
			box.UOM = rec.UOM
		}
		out[i] = box
	}
	return out
}
