package reconcile

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/purelyibiza/invoice-reconciler/internal/domain/matcher"
	"github.com/purelyibiza/invoice-reconciler/internal/infrastructure/sheets"
	"github.com/purelyibiza/invoice-reconciler/internal/infrastructure/storage"
)

// ErrRunInProgress is returned when a reconciliation run is requested
// while another one is still executing. Two concurrent runs would read the
// same available payments and could both consume one, so runs are
// serialized.
var ErrRunInProgress = errors.New("reconciliation run already in progress")

// Sheet is one external store worksheet: read everything, write back a
// batch of cells.
type Sheet interface {
	ReadTable(ctx context.Context) (*sheets.Table, error)
	BatchUpdate(ctx context.Context, updates []sheets.CellUpdate) error
}

// FileMover relocates a matched invoice file into the reconciled folder.
type FileMover interface {
	Move(filename string) error
}

// Options holds per-run settings.
type Options struct {
	// DryRun performs the full matching pass but writes nothing back and
	// moves no files.
	DryRun bool
}

// Summary reports what one run did.
type Summary struct {
	RunID  string `json:"run_id"`
	DryRun bool   `json:"dry_run"`

	InvoicesConsidered int `json:"invoices_considered"`
	PaymentsConsidered int `json:"payments_considered"`
	Matches            int `json:"matches"`
	InvoicesDropped    int `json:"invoices_dropped"`
	PaymentsDropped    int `json:"payments_dropped"`
	FilesMoved         int `json:"files_moved"`
	FilesMissing       int `json:"files_missing"`
}

// Orchestrator runs the reconciliation process end to end: read both
// sheets, match, apply changes, record the run.
type Orchestrator struct {
	invoiceSheet Sheet
	bankSheet    Sheet
	mover        FileMover
	repo         storage.Repository
	matcher      *matcher.Matcher
	logger       *slog.Logger

	// runMu serializes runs within this process. The external stores have
	// no cross-run locking of their own.
	runMu sync.Mutex
}

// NewOrchestrator creates a reconciliation orchestrator. repo may be nil
// when run history is not wanted (e.g. one-off CLI invocations against a
// scratch setup).
func NewOrchestrator(
	invoiceSheet Sheet,
	bankSheet Sheet,
	mover FileMover,
	repo storage.Repository,
	matcherConfig matcher.Config,
	logger *slog.Logger,
) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		invoiceSheet: invoiceSheet,
		bankSheet:    bankSheet,
		mover:        mover,
		repo:         repo,
		matcher:      matcher.New(matcherConfig),
		logger:       logger,
	}
}
