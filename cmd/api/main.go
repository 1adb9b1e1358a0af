// Command api serves the reconciliation HTTP API.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/purelyibiza/invoice-reconciler/internal/api"
	"github.com/purelyibiza/invoice-reconciler/internal/application/reconcile"
	"github.com/purelyibiza/invoice-reconciler/internal/infrastructure/archive"
	"github.com/purelyibiza/invoice-reconciler/internal/infrastructure/config"
	"github.com/purelyibiza/invoice-reconciler/internal/infrastructure/sheets"
	"github.com/purelyibiza/invoice-reconciler/internal/infrastructure/storage"
	"github.com/purelyibiza/invoice-reconciler/internal/observability"
)

func main() {
	configFile := flag.String("config", "", "Configuration file path")
	flag.Parse()

	_ = godotenv.Load()

	cfg := config.LoadOrEnv(*configFile)
	logger := observability.NewLogger(cfg.Observability.Logging)

	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()

	store, err := storage.NewStorage(cfg.Storage.DatabasePath)
	if err != nil {
		logger.Error("Failed to initialize storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close()

	svc, err := sheets.NewService(ctx, cfg.Sheets.CredentialsFile)
	if err != nil {
		logger.Error("Failed to connect to Google Sheets", slog.String("error", err.Error()))
		os.Exit(1)
	}
	invoiceSheet := sheets.NewStore(svc, cfg.Sheets.InvoiceSpreadsheetID, cfg.Sheets.InvoiceSheetName)
	bankSheet := sheets.NewStore(svc, cfg.Sheets.BankSpreadsheetID, cfg.Sheets.BankSheetName)

	mover, err := archive.NewMover(cfg.Folders.ArchiveFolder(), cfg.Folders.ReconciledFolder())
	if err != nil {
		logger.Error("Failed to prepare reconciled folder", slog.String("error", err.Error()))
		os.Exit(1)
	}

	orchestrator := reconcile.NewOrchestrator(
		invoiceSheet, bankSheet, mover, store,
		cfg.Reconcile.MatcherConfig(),
		observability.NewComponentLogger(cfg.Observability.Logging, "reconcile"),
	)

	server := api.NewServer(cfg.API, store, orchestrator,
		observability.NewComponentLogger(cfg.Observability.Logging, "api"))

	errCh := make(chan error, 1)
	go func() {
		logger.Info("API server starting", slog.Int("port", cfg.API.Port))
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logger.Error("API server failed", slog.String("error", err.Error()))
		os.Exit(1)
	case sig := <-sigCh:
		logger.Info("Shutting down", slog.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
