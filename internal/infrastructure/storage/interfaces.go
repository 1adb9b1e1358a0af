package storage

// Repository defines the run-history storage interface. It allows swapping
// implementations and makes testing handlers with mocks straightforward.
type Repository interface {
	// SaveRun saves or updates a reconciliation run record.
	SaveRun(run *ReconcileRun) error

	// GetRun retrieves a run by ID.
	GetRun(id string) (*ReconcileRun, error)

	// ListRuns returns the most recent runs, newest first.
	ListRuns(limit int) ([]*ReconcileRun, error)

	// GetStats returns aggregate statistics over all runs.
	GetStats() (*Stats, error)

	Close() error
}
