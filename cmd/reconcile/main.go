// Command reconcile runs one reconciliation pass against the invoice and
// bank sheets and prints a summary.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/purelyibiza/invoice-reconciler/internal/application/reconcile"
	"github.com/purelyibiza/invoice-reconciler/internal/infrastructure/archive"
	"github.com/purelyibiza/invoice-reconciler/internal/infrastructure/config"
	"github.com/purelyibiza/invoice-reconciler/internal/infrastructure/sheets"
	"github.com/purelyibiza/invoice-reconciler/internal/infrastructure/storage"
	"github.com/purelyibiza/invoice-reconciler/internal/observability"
)

func main() {
	var (
		configFile = flag.String("config", "", "Configuration file path")
		dryRun     = flag.Bool("dry-run", false, "Match without writing back or moving files")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	// Optional .env for local development; ignored when absent.
	_ = godotenv.Load()

	cfg := config.LoadOrEnv(*configFile)
	if *verbose {
		cfg.Observability.Logging.Level = "debug"
	}
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

	summary, err := orchestrator.Run(ctx, reconcile.Options{DryRun: *dryRun})
	if err != nil {
		logger.Error("Reconciliation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	printSummary(summary)
}

func printSummary(s *reconcile.Summary) {
	fmt.Printf("\nReconciliation complete (run %s)\n", s.RunID)
	if s.DryRun {
		fmt.Println("DRY RUN: no changes were written")
	}
	fmt.Printf("  Invoices considered: %d (%d dropped)\n", s.InvoicesConsidered, s.InvoicesDropped)
	fmt.Printf("  Payments considered: %d (%d dropped)\n", s.PaymentsConsidered, s.PaymentsDropped)
	fmt.Printf("  Matches:             %d\n", s.Matches)
	fmt.Printf("  Files moved:         %d (%d missing)\n", s.FilesMoved, s.FilesMissing)
}
