// Package report builds the verification summary PDF for a date range.
package report

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"inbound/apperrors"
	"inbound/appctx"
	"inbound/mappers"
	"inbound/model"
	"inbound/pdf"
	"inbound/render"
	"inbound/sheet"
	"inbound/storage"
)

// TypeVerification is the router key for this report.
const TypeVerification = "verification"

const dateLayout = "2006-01-02"

type Request struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Frequency string `json:"frequency"`
}

// Result is a soft outcome: no data and rendering failures are reported
// here, not as errors.
type Result struct {
	Success  bool   `json:"success"`
	NoData   bool   `json:"noData,omitempty"`
	URL      string `json:"url,omitempty"`
	Name     string `json:"name,omitempty"`
	RowCount int    `json:"rowCount"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
}

type Service struct {
	PDF           pdf.Renderer
	Storage       storage.Storage
	Router        FolderRouter
	DefaultFolder string
}

func NewService(renderer pdf.Renderer, store storage.Storage, router FolderRouter, defaultFolder string) *Service {
	return &Service{PDF: renderer, Storage: store, Router: router, DefaultFolder: defaultFolder}
}

// Range returns [start 00:00:00.000, end 23:59:59.999] in loc.
func Range(startDate, endDate string, loc *time.Location) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation(dateLayout, strings.TrimSpace(startDate), loc)
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.NewValidationError(fmt.Errorf("startDate: %w", err))
	}
	end, err := time.ParseInLocation(dateLayout, strings.TrimSpace(endDate), loc)
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.NewValidationError(fmt.Errorf("endDate: %w", err))
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, apperrors.NewValidationError(errors.New("endDate is before startDate"))
	}
	end = end.AddDate(0, 0, 1).Add(-time.Millisecond)
	return start, end, nil
}

// Records returns the Verification_Log rows inside [start, end], oldest
// first. Rows whose timestamp cannot be read are skipped.
func Records(ctx context.Context, env appctx.Env, start, end time.Time) ([]model.VerificationRecord, error) {
	t, err := env.Store.Table(ctx, model.TableVerification)
	if err != nil {
		if errors.Is(err, sheet.ErrTableNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", model.TableVerification, err)
	}
	b, err := sheet.Bind(t, model.VerificationReadSchema)
	if err != nil {
		return nil, err
	}

	var out []model.VerificationRecord
	for i, row := range t.Rows {
		rec, err := mappers.RowToVerification(b, row, env.Loc())
		if err != nil {
			env.Log().Debug("skipping verification row",
				zap.Int("row", i+sheet.FirstDataRow),
				zap.Error(err),
			)
			continue
		}
		if rec.Timestamp.Before(start) || rec.Timestamp.After(end) {
			continue
		}
		out = append(out, rec)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

// Generate renders and files the report for req. Invalid dates and store
// failures are errors; an empty range and rendering failures are results.
func (s *Service) Generate(ctx context.Context, env appctx.Env, req Request) (Result, error) {
	logger := env.Log()
	start, end, err := Range(req.StartDate, req.EndDate, env.Loc())
	if err != nil {
		return Result{}, err
	}
	records, err := Records(ctx, env, start, end)
	if err != nil {
		return Result{}, fmt.Errorf("Generate failed: %w", err)
	}
	if len(records) == 0 {
		logger.Info("no verification records in range",
			zap.String("start", req.StartDate),
			zap.String("end", req.EndDate),
		)
		return Result{
			NoData:  true,
			Message: fmt.Sprintf("No verification records between %s and %s.", req.StartDate, req.EndDate),
		}, nil
	}

	doc := render.VerificationReportHTML(render.ReportData{
		Title:       "Inbound Verification Report",
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Frequency:   req.Frequency,
		GeneratedAt: env.Now,
		Location:    env.Loc(),
		Records:     records,
	})

	data, err := s.PDF.Render(ctx, doc, pdf.PaperLetter)
	if err != nil {
		logger.Error("report pdf failed", zap.Error(err))
		return Result{RowCount: len(records), Error: "render report pdf: " + err.Error()}, nil
	}

	folder := s.folderFor(ctx, env, req.Frequency)
	folder, err = s.Storage.EnsureFolder(ctx, folder)
	if err != nil {
		logger.Error("report folder failed", zap.Error(err))
		return Result{RowCount: len(records), Error: "report folder: " + err.Error()}, nil
	}
	file, err := s.Storage.Save(ctx, folder, FileName(req), "application/pdf", data)
	if err != nil {
		logger.Error("report save failed", zap.Error(err))
		return Result{RowCount: len(records), Error: "save report: " + err.Error()}, nil
	}

	logger.Info("report generated",
		zap.String("name", file.Name),
		zap.Int("rows", len(records)),
		zap.String("folder", folder),
	)
	return Result{Success: true, URL: file.URL, Name: file.Name, RowCount: len(records)}, nil
}

// folderFor asks the router and falls back to DefaultFolder when it is
// missing or fails.
func (s *Service) folderFor(ctx context.Context, env appctx.Env, frequency string) string {
	if s.Router != nil {
		folder, err := s.Router.FolderFor(ctx, TypeVerification, frequency)
		if err == nil && folder != "" {
			return folder
		}
		env.Log().Warn("report folder routing unavailable; using default",
			zap.String("frequency", frequency),
			zap.Error(err),
		)
	}
	return s.DefaultFolder
}

var unsafeName = strings.NewReplacer("/", "-", `\`, "-", ":", "-", " ", "_", "..", "-")

// FileName is Verification_Report_[<Frequency>_]<start>_to_<end>.pdf. The
// frequency is title-cased and stripped of path characters.
func FileName(req Request) string {
	name := "Verification_Report_"
	if f := unsafeName.Replace(strings.TrimSpace(req.Frequency)); f != "" {
		r, size := utf8.DecodeRuneInString(f)
		name += string(unicode.ToUpper(r)) + strings.ToLower(f[size:]) + "_"
	}
	return name + strings.TrimSpace(req.StartDate) + "_to_" + strings.TrimSpace(req.EndDate) + ".pdf"
}
