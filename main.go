package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"inbound/backfill"
	"inbound/config"
	"inbound/loader"
	"inbound/logging"
	"inbound/report"
)

var (
	configPath string
	logLevel   string

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "inbound",
	Short:         "Inbound skid verification: counts, variance, box labels and reports",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional
		_ = godotenv.Load()

		var err error
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return err
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		logger, err = logging.New(cfg.LogLevel, cfg.LogFormat)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var (
	servePort   string
	openOnStart bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		port := cfg.Port
		if servePort != "" {
			port = servePort
		}
		mux := http.NewServeMux()
		SetupRoutes(mux, a)
		srv := &http.Server{
			Addr:              ":" + port,
			Handler:           logging.RequestLogger(logger)(mux),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info("starting server", zap.String("addr", "http://localhost:"+port))
			errCh <- srv.ListenAndServe()
		}()
		if openOnStart {
			openBrowser("http://localhost:" + port)
		}

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server start error: %w", err)
			}
			return nil
		case <-ctx.Done():
		}
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

var (
	importTable    string
	importEncoding string
)

var importCmd = &cobra.Command{
	Use:   "import [csv files...]",
	Short: "Import CSV exports into a table",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !loader.ImportableTables[importTable] {
			return fmt.Errorf("table cannot be imported: %q", importTable)
		}
		a, err := newApp(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		env := a.envs.Background()
		for _, path := range args {
			summary, err := loader.LoadCSV(cmd.Context(), env, path, importTable, importEncoding)
			if err != nil {
				return fmt.Errorf("failed to load %s: %w", path, err)
			}
			if err := printJSON(cmd, summary); err != nil {
				return err
			}
		}
		return nil
	},
}

var reportReq report.Request

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate the verification report for a date range",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.reports.Generate(cmd.Context(), a.envs.Background(), reportReq)
		if err != nil {
			return err
		}
		return printJSON(cmd, res)
	},
}

var backfillCmd = &cobra.Command{
	Use:   "backfill-project",
	Short: "Fill blank Master_Log projects from PO_Master",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		summary, err := backfill.ProjectFromPOMaster(cmd.Context(), a.envs.Background())
		if err != nil {
			return err
		}
		return printJSON(cmd, summary)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Config file (JSON)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the configured log level")

	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "Listen port (default from config)")
	serveCmd.Flags().BoolVar(&openOnStart, "open", false, "Open the API root in a browser")

	importCmd.Flags().StringVarP(&importTable, "table", "t", "", "Target table (required)")
	importCmd.Flags().StringVarP(&importEncoding, "encoding", "e", "utf-8", "CSV encoding: utf-8, windows-1252 or shift-jis")
	_ = importCmd.MarkFlagRequired("table")

	reportCmd.Flags().StringVar(&reportReq.StartDate, "start", "", "First day, YYYY-MM-DD (required)")
	reportCmd.Flags().StringVar(&reportReq.EndDate, "end", "", "Last day, YYYY-MM-DD (required)")
	reportCmd.Flags().StringVar(&reportReq.Frequency, "frequency", "", "Report frequency used for folder routing")
	_ = reportCmd.MarkFlagRequired("start")
	_ = reportCmd.MarkFlagRequired("end")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(backfillCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if logger != nil {
			logger.Error("command failed", zap.Error(err))
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func openBrowser(url string) {
	var err error
	switch runtime.GOOS {
	case "windows":
		err = exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	case "darwin":
		err = exec.Command("open", url).Start()
	default:
		err = exec.Command("xdg-open", url).Start()
	}
	if err != nil {
		logger.Warn("could not open browser", zap.Error(err))
	}
}
