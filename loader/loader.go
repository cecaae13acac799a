// Package loader imports CSV exports (item master, PO master, skid lists)
// into store tables.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"inbound/appctx"
	"inbound/model"
	"inbound/parsers"
	"inbound/sheet"
)

type Summary struct {
	Table          string   `json:"table"`
	Rows           int      `json:"rows"`
	Skipped        int      `json:"skipped"`
	Created        bool     `json:"created"`
	DroppedColumns []string `json:"droppedColumns,omitempty"`
}

// LoadCSV imports the CSV file at path into table.
func LoadCSV(ctx context.Context, env appctx.Env, path, table, encoding string) (Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return Summary{}, fmt.Errorf("could not open file %s: %w", path, err)
	}
	defer f.Close()
	return Load(ctx, env, f, table, encoding)
}

// Load reads a CSV with a header row. A missing table is created with the
// CSV header; otherwise CSV columns are matched to the table header by name,
// case-insensitively, and unmatched CSV columns are dropped. Blank records
// are skipped. All rows are appended in one call.
func Load(ctx context.Context, env appctx.Env, r io.Reader, table, encoding string) (Summary, error) {
	logger := env.Log()
	summary := Summary{Table: table}

	reader, err := parsers.NewCSVReader(r, encoding)
	if err != nil {
		return summary, err
	}
	csvHeader, err := reader.Read()
	if err == io.EOF {
		return summary, fmt.Errorf("%s: empty csv", table)
	}
	if err != nil {
		return summary, fmt.Errorf("read csv header: %w", err)
	}
	for i := range csvHeader {
		csvHeader[i] = strings.TrimSpace(csvHeader[i])
	}

	t, err := env.Store.Table(ctx, table)
	switch {
	case errors.Is(err, sheet.ErrTableNotFound):
		if t, err = env.Store.CreateTable(ctx, table, csvHeader); err != nil {
			return summary, fmt.Errorf("create %s: %w", table, err)
		}
		if err := env.Store.FreezeHeader(ctx, table); err != nil {
			return summary, fmt.Errorf("freeze %s: %w", table, err)
		}
		summary.Created = true
	case err != nil:
		return summary, fmt.Errorf("read %s: %w", table, err)
	}

	// target[i] is the table column for csv column i, or -1.
	index := t.ColIndex()
	target := make([]int, len(csvHeader))
	for i, name := range csvHeader {
		col, ok := index[strings.ToLower(name)]
		if !ok {
			target[i] = -1
			if name != "" {
				summary.DroppedColumns = append(summary.DroppedColumns, name)
			}
			continue
		}
		target[i] = col
	}

	var rows [][]any
	for {
		record, readErr := reader.Read()
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			logger.Warn("skipping unreadable csv row", zap.String("table", table), zap.Error(readErr))
			summary.Skipped++
			continue
		}
		if isBlank(record) {
			summary.Skipped++
			continue
		}
		row := blankRow(len(t.Header))
		for i, v := range record {
			if i < len(target) && target[i] >= 0 {
				row[target[i]] = strings.TrimSpace(v)
			}
		}
		rows = append(rows, row)
	}

	summary.Rows = len(rows)
	if table == model.TableMasterLog && len(rows) > 0 {
		for i := len(t.Rows); i < model.MasterLogSpacerRows; i++ {
			rows = append([][]any{blankRow(len(t.Header))}, rows...)
		}
	}

	if len(rows) > 0 {
		if err := sheet.AppendRows(ctx, env.Store, table, rows); err != nil {
			return summary, fmt.Errorf("append to %s: %w", table, err)
		}
	}
	logger.Info("csv imported",
		zap.String("table", table),
		zap.Int("rows", summary.Rows),
		zap.Int("skipped", summary.Skipped),
		zap.Bool("created", summary.Created),
		zap.Strings("dropped_columns", summary.DroppedColumns),
	)
	return summary, nil
}

func blankRow(n int) []any {
	row := make([]any, n)
	for i := range row {
		row[i] = ""
	}
	return row
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
