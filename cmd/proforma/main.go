package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"proforma/internal/config"
	"proforma/internal/invoice"
	"proforma/internal/logger"
	"proforma/internal/pipeline"
	"proforma/internal/render"
	"proforma/internal/settings"
	"proforma/internal/storage"
)

var rootCmd = &cobra.Command{
	Use:   "proforma",
	Short: "Build proforma invoice PDFs from packlists",
	Long: `proforma turns packlist exports (CSV, XLSX, HTML or mail) into a
single PDF: a summary page followed by one invoice per order.

Settings live in a JSON file (PROFORMA_SETTINGS_PATH); the invoice
ledger and the synced SKU catalog live in SQLite (DB_PATH).`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	ctx, cancel := signalContext()
	err := rootCmd.ExecuteContext(ctx)
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// env is configuration plus logging, enough for commands that touch no state.
func env() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if err := logger.Setup(cfg.LoggerConfig()); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

type app struct {
	cfg   config.Config
	db    *storage.DB
	store *settings.Store
	gen   *pipeline.GenerationService
}

func openApp() (*app, error) {
	cfg, err := env()
	if err != nil {
		return nil, err
	}
	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	store := settings.NewStore(cfg.SettingsPath, cfg.DefaultSettingsPath)
	return &app{
		cfg:   cfg,
		db:    db,
		store: store,
		gen:   pipeline.NewGenerationService(cfg, store, db, invoice.NewEngine(render.New())),
	}, nil
}

func (a *app) Close() {
	_ = a.db.Close()
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
