// Package verification records skid verification events in
// Verification_Log and triggers box label generation.
package verification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"inbound/apperrors"
	"inbound/appctx"
	"inbound/label"
	"inbound/mappers"
	"inbound/model"
	"inbound/resolver"
	"inbound/sheet"
)

// LabelRenderer is the label side effect of a verification.
type LabelRenderer interface {
	RenderBoxLabels(ctx context.Context, env appctx.Env, boxes []model.Box) label.Result
}

// Result is returned once the row is durable. Label fields are empty when
// no labels were requested or generation failed.
type Result struct {
	Variance      decimal.Decimal `json:"variance"`
	Status        string          `json:"status"`
	LabelURL      string          `json:"labelUrl"`
	LabelHTMLURL  string          `json:"labelHtmlUrl"`
	LabelError    string          `json:"labelError,omitempty"`
	DroppedFields []string        `json:"droppedFields,omitempty"`
}

// MarshalJSON writes the variance as a JSON number.
func (r Result) MarshalJSON() ([]byte, error) {
	type plain Result
	return json.Marshal(struct {
		plain
		Variance json.Number `json:"variance"`
	}{plain(r), json.Number(r.Variance.String())})
}

type Recorder struct {
	Labels   LabelRenderer
	validate *validator.Validate
}

func NewRecorder(labels LabelRenderer) *Recorder {
	return &Recorder{Labels: labels, validate: validator.New()}
}

// Record appends one Verification_Log row for payload. The acting user and
// timestamp come from env.
func (r *Recorder) Record(ctx context.Context, env appctx.Env, payload model.VerificationPayload) (Result, error) {
	logger := env.Log()

	if err := r.validatePayload(&payload); err != nil {
		return Result{}, err
	}

	t, err := ensureTable(ctx, env.Store)
	if err != nil {
		return Result{}, fmt.Errorf("Record failed: %w", err)
	}
	b, err := sheet.Bind(t, model.VerificationReadSchema)
	if err != nil {
		return Result{}, err
	}

	uom := strings.TrimSpace(payload.UOM)
	assetType := strings.TrimSpace(payload.AssetType)
	if uom == "" || assetType == "" {
		details, err := resolver.ResolveItemDetails(ctx, env, payload.SKU, payload.FBPN)
		if err != nil {
			return Result{}, fmt.Errorf("Record failed: %w", err)
		}
		if uom == "" {
			uom = details.UOM
		}
		if assetType == "" {
			assetType = details.AssetType
		}
	}

	variance := payload.ActualQty.Sub(payload.ExpectedQty)
	rec := model.VerificationRecord{
		Timestamp:    env.Now.In(env.Loc()),
		BOLNumber:    strings.TrimSpace(payload.BOLNumber),
		PONumber:     strings.TrimSpace(payload.PONumber),
		AssetType:    assetType,
		Manufacturer: strings.TrimSpace(payload.Manufacturer),
		MFPN:         strings.TrimSpace(payload.MFPN),
		FBPN:         strings.TrimSpace(payload.FBPN),
		UOM:          uom,
		ExpectedQty:  payload.ExpectedQty,
		ActualQty:    payload.ActualQty,
		Variance:     variance,
		BoxLabels:    payload.BoxLabels,
		VerifiedBy:   env.User,
		SkidID:       strings.TrimSpace(payload.SkidID),
		TxnID:        strings.TrimSpace(payload.TxnID),
		Status:       model.StatusForVariance(variance),
	}

	values := mappers.VerificationToValues(&rec)
	if !b.Has(model.FieldStatus) {
		delete(values, model.FieldStatus)
	}
	row, dropped := b.Row(values)
	if len(dropped) > 0 {
		logger.Debug("verification fields without a column",
			zap.String("skid_id", rec.SkidID),
			zap.Strings("fields", dropped),
		)
	}
	if err := env.Store.AppendRow(ctx, model.TableVerification, row); err != nil {
		return Result{}, fmt.Errorf("Record failed: %w", err)
	}
	logger.Info("verification recorded",
		zap.String("skid_id", rec.SkidID),
		zap.String("variance", variance.String()),
		zap.String("status", rec.Status),
	)

	res := Result{Variance: variance, Status: rec.Status, DroppedFields: dropped}
	if payload.GenerateLabels && len(payload.Boxes) > 0 && r.Labels != nil {
		boxes := r.boxesFor(ctx, env, &rec, payload.Boxes)
		lr := r.Labels.RenderBoxLabels(ctx, env, boxes)
		if lr.Success {
			res.LabelURL = lr.PDFURL
			res.LabelHTMLURL = lr.HTMLURL
		} else {
			logger.Warn("labels not generated; verification kept",
				zap.String("skid_id", rec.SkidID),
				zap.String("error", lr.Error),
			)
			res.LabelError = lr.Error
		}
	}
	return res, nil
}

func (r *Recorder) validatePayload(p *model.VerificationPayload) error {
	if r.validate == nil {
		r.validate = validator.New()
	}
	p.SkidID = strings.TrimSpace(p.SkidID)
	if err := r.validate.Struct(p); err != nil {
		return apperrors.NewValidationError(err)
	}
	if p.ExpectedQty.IsNegative() || p.ActualQty.IsNegative() {
		return apperrors.NewValidationError(errors.New("quantities must not be negative"))
	}
	return nil
}

// boxesFor fills blank box fields from the record and, when a box lacks a
// project or push number, from the resolved skid. Resolution failures only
// leave those fields blank.
func (r *Recorder) boxesFor(ctx context.Context, env appctx.Env, rec *model.VerificationRecord, boxes []model.Box) []model.Box {
	var project, push string
	needSkid := false
	for _, b := range boxes {
		if b.Project == "" || b.PushNumber == "" || b.Manufacturer == "" {
			needSkid = true
			break
		}
	}
	if needSkid {
		info, err := resolver.ResolveSkidInfo(ctx, env, rec.SkidID)
		if err != nil {
			env.Log().Debug("skid lookup for labels failed", zap.String("skid_id", rec.SkidID), zap.Error(err))
		} else {
			project, push = info.Project, info.PushNumber
			if rec.Manufacturer == "" {
				copyRec := *rec
				copyRec.Manufacturer = info.Manufacturer
				rec = &copyRec
			}
		}
	}
	return mappers.FillBoxDefaults(boxes, rec, project, push)
}

// ensureTable returns Verification_Log, creating it with the canonical
// header and a frozen header row when absent.
func ensureTable(ctx context.Context, store sheet.Store) (*sheet.Table, error) {
	t, err := store.Table(ctx, model.TableVerification)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, sheet.ErrTableNotFound) {
		return nil, err
	}
	t, err = store.CreateTable(ctx, model.TableVerification, model.VerificationHeader())
	if errors.Is(err, sheet.ErrTableExists) {
		return store.Table(ctx, model.TableVerification)
	}
	if err != nil {
		return nil, err
	}
	if err := store.FreezeHeader(ctx, model.TableVerification); err != nil {
		return nil, err
	}
	return t, nil
}
