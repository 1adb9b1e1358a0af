package storage

import "time"

// Run statuses.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusDryRun  = "dry-run"
)

// ReconcileRun is the persisted outcome of one reconciliation run.
type ReconcileRun struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Status     string
	DryRun     bool

	InvoicesConsidered int
	PaymentsConsidered int
	Matches            int
	InvoicesDropped    int
	PaymentsDropped    int
	FilesMoved         int
	FilesMissing       int

	ErrorMessage string
}

// Stats aggregates run history for the dashboard.
type Stats struct {
	TotalRuns    int       `json:"total_runs"`
	SuccessCount int       `json:"success_count"`
	FailureCount int       `json:"failure_count"`
	DryRunCount  int       `json:"dry_run_count"`
	TotalMatches int       `json:"total_matches"`
	LastRunAt    time.Time `json:"last_run_at"`
}
