package main

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"inbound/appctx"
	"inbound/barcode"
	"inbound/config"
	"inbound/database"
	"inbound/label"
	"inbound/pdf"
	"inbound/report"
	"inbound/sheet"
	"inbound/storage"
	"inbound/units"
	"inbound/verification"
)

// app holds the wired services for one process.
type app struct {
	cfg      config.Config
	logger   *zap.Logger
	store    sheet.Store
	envs     appctx.Factory
	storage  storage.Storage
	labels   *label.Service
	recorder *verification.Recorder
	reports  *report.Service
	closers  []func() error
}

func newApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	if cfg.UOMAliasFile != "" {
		if _, err := units.LoadAliasFile(cfg.UOMAliasFile); err != nil {
			logger.Warn("UOM alias file not loaded; using built-in aliases", zap.String("path", cfg.UOMAliasFile), zap.Error(err))
		}
	}

	store, err := a.openStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.store = store

	files, err := a.openStorage(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.storage = files

	var enc barcode.Encoder = barcode.ImageEncoder{}
	if cfg.Barcode.Provider == "service" {
		enc = barcode.ServiceEncoder{BaseURL: cfg.Barcode.ServiceURL}
	}
	renderer := pdf.NewChrome(cfg.Chrome.BinPath, cfg.Chrome.Headless, cfg.ChromeTimeout(), logger.Named("pdf"))

	a.envs = appctx.Factory{
		Store:       store,
		DefaultUser: cfg.DefaultUser,
		Location:    cfg.Location(),
		Logger:      logger,
	}
	a.labels = label.NewService(enc, renderer, files, cfg.ReceivingFolder)
	a.recorder = verification.NewRecorder(a.labels)
	a.reports = report.NewService(renderer, files, report.ConfigRouter{Folders: cfg.ReportFolders}, cfg.ReportsFolder)
	return a, nil
}

func (a *app) openStore(ctx context.Context) (sheet.Store, error) {
	switch a.cfg.Store.Backend {
	case "sqlite":
		db, err := database.Open(a.cfg.Store.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		if err := database.InitSchema(ctx, db); err != nil {
			return nil, fmt.Errorf("init sqlite store: %w", err)
		}
		a.logger.Info("using sqlite store", zap.String("path", a.cfg.Store.SQLitePath))
		return database.NewSheetStore(db), nil
	default:
		wb, err := sheet.OpenWorkbook(a.cfg.Store.WorkbookPath)
		if err != nil {
			return nil, fmt.Errorf("open workbook store: %w", err)
		}
		a.closers = append(a.closers, wb.Close)
		a.logger.Info("using workbook store", zap.String("path", a.cfg.Store.WorkbookPath))
		return wb, nil
	}
}

func (a *app) openStorage(ctx context.Context) (storage.Storage, error) {
	sc := a.cfg.Storage
	switch strings.ToLower(sc.Provider) {
	case "gcs":
		g, err := storage.NewGCS(ctx, sc.GCSBucket, sc.GCSCredentialsFile)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, g.Close)
		return g, nil
	case "minio":
		m, err := storage.NewMinIO(ctx, sc.MinIOEndpoint, sc.MinIOAccessKey, sc.MinIOSecretKey, sc.MinIOBucket, sc.MinIOUseSSL)
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return storage.NewLocal(sc.LocalRoot, sc.BaseURL), nil
	}
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("close failed", zap.Error(err))
		}
	}
	a.closers = nil
}
