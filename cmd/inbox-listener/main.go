package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"proforma/internal/config"
	"proforma/internal/invoice"
	"proforma/internal/listener"
	"proforma/internal/logger"
	"proforma/internal/pipeline"
	"proforma/internal/render"
	"proforma/internal/settings"
	"proforma/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)
	must(logger.Setup(cfg.LoggerConfig()))

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	store := settings.NewStore(cfg.SettingsPath, cfg.DefaultSettingsPath)
	gen := pipeline.NewGenerationService(cfg, store, db, invoice.NewEngine(render.New()))

	svc := listener.NewService(db, cfg, gen)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	must(svc.Run(ctx))
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
