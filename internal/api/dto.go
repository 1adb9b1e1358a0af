package api

import (
	"time"

	"github.com/purelyibiza/invoice-reconciler/internal/infrastructure/storage"
)

// StartReconcileRequest is the body of POST /api/reconcile.
type StartReconcileRequest struct {
	DryRun bool `json:"dry_run"`
}

// RunResponse represents one reconciliation run in API responses.
type RunResponse struct {
	ID         string `json:"id"`
	StartedAt  string `json:"started_at"`
	FinishedAt string `json:"finished_at"`
	Status     string `json:"status"`
	DryRun     bool   `json:"dry_run"`

	InvoicesConsidered int `json:"invoices_considered"`
	PaymentsConsidered int `json:"payments_considered"`
	Matches            int `json:"matches"`
	InvoicesDropped    int `json:"invoices_dropped"`
	PaymentsDropped    int `json:"payments_dropped"`
	FilesMoved         int `json:"files_moved"`
	FilesMissing       int `json:"files_missing"`

	ErrorMessage string `json:"error_message,omitempty"`
}

// RunListResponse is the body of GET /api/runs.
type RunListResponse struct {
	Runs  []RunResponse `json:"runs"`
	Count int           `json:"count"`
}

func toRunResponse(run *storage.ReconcileRun) RunResponse {
	return RunResponse{
		ID:                 run.ID,
		StartedAt:          run.StartedAt.UTC().Format(time.RFC3339),
		FinishedAt:         run.FinishedAt.UTC().Format(time.RFC3339),
		Status:             run.Status,
		DryRun:             run.DryRun,
		InvoicesConsidered: run.InvoicesConsidered,
		PaymentsConsidered: run.PaymentsConsidered,
		Matches:            run.Matches,
		InvoicesDropped:    run.InvoicesDropped,
		PaymentsDropped:    run.PaymentsDropped,
		FilesMoved:         run.FilesMoved,
		FilesMissing:       run.FilesMissing,
		ErrorMessage:       run.ErrorMessage,
	}
}
