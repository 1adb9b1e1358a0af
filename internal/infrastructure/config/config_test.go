package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_YAML(t *testing.T) {
	content := `
sheets:
  credentials_file: /etc/reconciler/credentials.json
  invoice_spreadsheet_id: inv-123
  bank_spreadsheet_id: bank-456
reconcile:
  primary_match_threshold: 75
  secondary_match_threshold: 95
  payment_date_tolerance_days: 3
folders:
  invoice_folder: /data/invoices
storage:
  database_path: /data/reconciler.db
observability:
  logging:
    level: debug
    format: json
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "inv-123", cfg.Sheets.InvoiceSpreadsheetID)
	assert.Equal(t, "bank-456", cfg.Sheets.BankSpreadsheetID)
	assert.Equal(t, 75, cfg.Reconcile.PrimaryMatchThreshold)
	assert.Equal(t, 95, cfg.Reconcile.SecondaryMatchThreshold)
	assert.Equal(t, 3, cfg.Reconcile.PaymentDateToleranceDays)
	assert.Equal(t, "debug", cfg.Observability.Logging.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_DefaultsPreserved(t *testing.T) {
	content := `
sheets:
  invoice_spreadsheet_id: inv-123
  bank_spreadsheet_id: bank-456
folders:
  invoice_folder: /data/invoices
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	// Unset sections keep their defaults.
	assert.Equal(t, 80, cfg.Reconcile.PrimaryMatchThreshold)
	assert.Equal(t, 90, cfg.Reconcile.SecondaryMatchThreshold)
	assert.Equal(t, 5, cfg.Reconcile.PaymentDateToleranceDays)
	assert.Equal(t, "Sheet1", cfg.Sheets.InvoiceSheetName)
	assert.Equal(t, 8080, cfg.API.Port)
}

func TestLoad_ExpandsEnvVars(t *testing.T) {
	t.Setenv("TEST_INVOICE_SHEET", "from-env")
	content := `
sheets:
  invoice_spreadsheet_id: ${TEST_INVOICE_SHEET}
  bank_spreadsheet_id: bank-456
folders:
  invoice_folder: /data/invoices
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Sheets.InvoiceSpreadsheetID)
}

func TestFoldersConfig_DerivedPaths(t *testing.T) {
	f := FoldersConfig{InvoiceFolder: filepath.Join("data", "invoices")}

	assert.Equal(t, filepath.Join("data", "invoices", "archive"), f.ArchiveFolder())
	assert.Equal(t, filepath.Join("data", "invoices", "archive", "reconciled"), f.ReconciledFolder())
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := defaults()
		cfg.Sheets.InvoiceSpreadsheetID = "inv"
		cfg.Sheets.BankSpreadsheetID = "bank"
		cfg.Folders.InvoiceFolder = "/data/invoices"
		return cfg
	}

	assert.NoError(t, valid().Validate())

	missingInvoice := valid()
	missingInvoice.Sheets.InvoiceSpreadsheetID = ""
	assert.Error(t, missingInvoice.Validate())

	missingFolder := valid()
	missingFolder.Folders.InvoiceFolder = ""
	assert.Error(t, missingFolder.Validate())

	badThresholds := valid()
	badThresholds.Reconcile.SecondaryMatchThreshold = 10
	assert.Error(t, badThresholds.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("INVOICE_SPREADSHEET_ID", "inv-env")
	t.Setenv("BANK_SPREADSHEET_ID", "bank-env")
	t.Setenv("PRIMARY_MATCH_THRESHOLD", "70")
	t.Setenv("INVOICE_FOLDER", "/data/invoices")

	cfg := LoadFromEnv()

	assert.Equal(t, "inv-env", cfg.Sheets.InvoiceSpreadsheetID)
	assert.Equal(t, 70, cfg.Reconcile.PrimaryMatchThreshold)
	assert.Equal(t, 90, cfg.Reconcile.SecondaryMatchThreshold)
	assert.NoError(t, cfg.Validate())
}
