// Package backfill fills blank Master_Log projects from PO_Master.
package backfill

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"inbound/apperrors"
	"inbound/appctx"
	"inbound/model"
	"inbound/sheet"
)

// masterLogFirstRow is the sheet row of the first Master_Log data row.
const masterLogFirstRow = sheet.FirstDataRow + model.MasterLogSpacerRows

type Summary struct {
	Updated    int `json:"updated"`
	MissingPO  int `json:"rowsMissingPo"`
	PONotFound int `json:"rowsPoNotFound"`
	MapSize    int `json:"mapSize"`
}

// ProjectFromPOMaster reads PO_Master and Master_Log once each and writes
// the Master_Log Project column back in one call. Existing projects are
// never overwritten. Any missing table or required column aborts before
// anything is written.
func ProjectFromPOMaster(ctx context.Context, env appctx.Env) (Summary, error) {
	logger := env.Log()

	poTable, err := readTable(ctx, env.Store, model.TablePOMaster)
	if err != nil {
		return Summary{}, err
	}
	poBinding, err := sheet.Bind(poTable, model.POMasterSchema)
	if err != nil {
		return Summary{}, err
	}
	logTable, err := readTable(ctx, env.Store, model.TableMasterLog)
	if err != nil {
		return Summary{}, err
	}
	logBinding, err := sheet.Bind(logTable, model.MasterLogBackfillSchema)
	if err != nil {
		return Summary{}, err
	}

	projects := ProjectMap(poBinding)
	summary := Summary{MapSize: len(projects)}

	projectCol, _ := logBinding.Column(model.FieldProject)
	var data [][]string
	if len(logTable.Rows) > model.MasterLogSpacerRows {
		data = logTable.Rows[model.MasterLogSpacerRows:]
	}
	values := make([]any, len(data))
	for i, row := range data {
		project := logBinding.Get(row, model.FieldProject)
		values[i] = project
		po := logBinding.Get(row, model.FieldPONumber)
		if po == "" {
			summary.MissingPO++
			continue
		}
		if project != "" {
			continue
		}
		mapped, ok := projects[normalizePO(po)]
		if !ok {
			summary.PONotFound++
			continue
		}
		values[i] = mapped
		summary.Updated++
	}

	if summary.Updated > 0 {
		if err := env.Store.WriteColumn(ctx, model.TableMasterLog, projectCol, masterLogFirstRow, values); err != nil {
			return summary, fmt.Errorf("ProjectFromPOMaster failed: %w", err)
		}
	}
	logger.Info("project backfill finished",
		zap.Int("updated", summary.Updated),
		zap.Int("missing_po", summary.MissingPO),
		zap.Int("po_not_found", summary.PONotFound),
		zap.Int("map_size", summary.MapSize),
	)
	return summary, nil
}

// ProjectMap builds PO -> Project from PO_Master; the last row for a PO
// wins. Rows with a blank PO or project are ignored.
func ProjectMap(b *sheet.Binding) map[string]string {
	m := make(map[string]string)
	for _, row := range b.Table().Rows {
		po := normalizePO(b.Get(row, model.FieldCustomerPO))
		project := b.Get(row, model.FieldProject)
		if po == "" || project == "" {
			continue
		}
		m[po] = project
	}
	return m
}

func normalizePO(po string) string {
	return strings.ToUpper(strings.TrimSpace(po))
}

func readTable(ctx context.Context, store sheet.Store, name string) (*sheet.Table, error) {
	t, err := store.Table(ctx, name)
	if err != nil {
		if errors.Is(err, sheet.ErrTableNotFound) {
			return nil, apperrors.NewConfigError(name, "")
		}
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return t, nil
}
