// Package config provides centralized configuration management.
//
// Configuration can be loaded from:
//  1. YAML file (config.yaml)
//  2. Environment variables (fallback)
//
// Example usage:
//
//	cfg := config.LoadOrEnv()
//	dbPath := cfg.Storage.DatabasePath
//	thresholds := cfg.Reconcile
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/purelyibiza/invoice-reconciler/internal/domain/matcher"
)

// Config represents the entire application configuration
type Config struct {
	Sheets        SheetsConfig        `yaml:"sheets"`
	Reconcile     ReconcileConfig     `yaml:"reconcile"`
	Folders       FoldersConfig       `yaml:"folders"`
	Storage       StorageConfig       `yaml:"storage"`
	API           APIConfig           `yaml:"api"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// SheetsConfig holds the Google Sheets connection settings for the two
// systems of record.
type SheetsConfig struct {
	CredentialsFile      string `yaml:"credentials_file"`
	InvoiceSpreadsheetID string `yaml:"invoice_spreadsheet_id"`
	InvoiceSheetName     string `yaml:"invoice_sheet_name"`
	BankSpreadsheetID    string `yaml:"bank_spreadsheet_id"`
	BankSheetName        string `yaml:"bank_sheet_name"`
}

// ReconcileConfig holds the matching thresholds and date tolerance.
type ReconcileConfig struct {
	PrimaryMatchThreshold    int `yaml:"primary_match_threshold"`
	SecondaryMatchThreshold  int `yaml:"secondary_match_threshold"`
	PaymentDateToleranceDays int `yaml:"payment_date_tolerance_days"`
}

// MatcherConfig converts the section into the matcher's value object.
func (r ReconcileConfig) MatcherConfig() matcher.Config {
	return matcher.Config{
		PrimaryThreshold:   r.PrimaryMatchThreshold,
		SecondaryThreshold: r.SecondaryMatchThreshold,
		DateToleranceDays:  r.PaymentDateToleranceDays,
	}
}

// FoldersConfig holds the invoice folder layout. The archive and
// reconciled folders are derived from the invoice folder, matching the
// layout the upload pipeline writes into.
type FoldersConfig struct {
	InvoiceFolder string `yaml:"invoice_folder"`
}

// ArchiveFolder is where processed invoice files live until reconciled.
func (f FoldersConfig) ArchiveFolder() string {
	return filepath.Join(f.InvoiceFolder, "archive")
}

// ReconciledFolder is where matched invoice files are moved to.
func (f FoldersConfig) ReconciledFolder() string {
	return filepath.Join(f.ArchiveFolder(), "reconciled")
}

// StorageConfig holds database configuration
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// APIConfig holds HTTP API server configuration
type APIConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Validate checks the configuration for values the run cannot proceed
// without.
func (c *Config) Validate() error {
	if c.Sheets.InvoiceSpreadsheetID == "" {
		return fmt.Errorf("sheets.invoice_spreadsheet_id is required")
	}
	if c.Sheets.BankSpreadsheetID == "" {
		return fmt.Errorf("sheets.bank_spreadsheet_id is required")
	}
	if c.Folders.InvoiceFolder == "" {
		return fmt.Errorf("folders.invoice_folder is required")
	}
	if err := c.Reconcile.MatcherConfig().Validate(); err != nil {
		return fmt.Errorf("reconcile: %w", err)
	}
	return nil
}

// Load reads and parses the config file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables (e.g., ${INVOICE_SPREADSHEET_ID})
	expanded := os.ExpandEnv(string(data))

	cfg := defaults()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables only
func LoadFromEnv() *Config {
	cfg := defaults()
	cfg.Sheets = SheetsConfig{
		CredentialsFile:      getEnv("SHEETS_CREDENTIALS_FILE", "credentials.json"),
		InvoiceSpreadsheetID: os.Getenv("INVOICE_SPREADSHEET_ID"),
		InvoiceSheetName:     getEnv("INVOICE_SHEET_NAME", "Sheet1"),
		BankSpreadsheetID:    os.Getenv("BANK_SPREADSHEET_ID"),
		BankSheetName:        getEnv("BANK_SHEET_NAME", "Sheet1"),
	}
	cfg.Reconcile = ReconcileConfig{
		PrimaryMatchThreshold:    getEnvInt("PRIMARY_MATCH_THRESHOLD", 80),
		SecondaryMatchThreshold:  getEnvInt("SECONDARY_MATCH_THRESHOLD", 90),
		PaymentDateToleranceDays: getEnvInt("PAYMENT_DATE_TOLERANCE_DAYS", 5),
	}
	cfg.Folders.InvoiceFolder = os.Getenv("INVOICE_FOLDER")
	cfg.Storage.DatabasePath = getEnv("RECONCILER_DB_PATH", "reconciler.db")
	cfg.API.Port = getEnvInt("API_PORT", 8080)
	cfg.Observability.Logging = LoggingConfig{
		Level:  getEnv("LOG_LEVEL", "info"),
		Format: getEnv("LOG_FORMAT", "console"),
	}
	return cfg
}

// LoadOrEnv tries to load from config.yaml, falls back to environment variables
func LoadOrEnv(path string) *Config {
	if path == "" {
		path = "config.yaml"
	}
	if cfg, err := Load(path); err == nil {
		return cfg
	}
	return LoadFromEnv()
}

func defaults() *Config {
	return &Config{
		Sheets: SheetsConfig{
			CredentialsFile:  "credentials.json",
			InvoiceSheetName: "Sheet1",
			BankSheetName:    "Sheet1",
		},
		Reconcile: ReconcileConfig{
			PrimaryMatchThreshold:    80,
			SecondaryMatchThreshold:  90,
			PaymentDateToleranceDays: 5,
		},
		Storage: StorageConfig{DatabasePath: "reconciler.db"},
		API: APIConfig{
			Port:           8080,
			AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{Level: "info", Format: "console"},
		},
	}
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable with a fallback default
func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var result int
		if _, err := fmt.Sscanf(val, "%d", &result); err == nil {
			return result
		}
	}
	return fallback
}
