// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Optional string settings use "" to mean the ambient default.
package config

import (
	"context"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn warning error"`

	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr" validate:"required"`

	// SpreadsheetID selects a Google Sheets document. Empty reads the local
	// workbook at WorkbookPath instead.
	SpreadsheetID string `koanf:"spreadsheet_id"`

	// SheetName selects the sheet. Empty reads the first sheet.
	SheetName string `koanf:"sheet_name"`

	// CredentialsFile is a service account JSON for the Sheets API. Empty uses
	// application default credentials.
	CredentialsFile string `koanf:"credentials_file"`

	// SheetsEndpoint overrides the Sheets API base URL.
	SheetsEndpoint string `koanf:"sheets_endpoint" validate:"omitempty,url"`

	// WorkbookPath is the .xlsx file read when no spreadsheet id is set.
	WorkbookPath string `koanf:"workbook_path" validate:"required_without=SpreadsheetID"`

	// TimeZone is the IANA zone dates are rendered in.
	TimeZone string `koanf:"time_zone" validate:"required,timezone"`

	// SkipIfTotalIsZero drops column pairs whose total parses to zero.
	SkipIfTotalIsZero bool `koanf:"skip_if_total_is_zero"`

	// ReadTimeoutMS bounds one grid read. Zero disables the bound.
	ReadTimeoutMS int `koanf:"read_timeout_ms" validate:"gte=0"`

	// MetricsNamespace and MetricsSubsystem prefix every Prometheus metric.
	MetricsNamespace string `koanf:"metrics_namespace" validate:"required"`
	MetricsSubsystem string `koanf:"metrics_subsystem" validate:"required"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		WorkbookPath:      "evaluation.xlsx",
		TimeZone:          "Asia/Tokyo",
		SkipIfTotalIsZero: true,
		ReadTimeoutMS:     15_000,
		MetricsNamespace:  "evalsheet",
		MetricsSubsystem:  "reader",
	}
}

// Location loads TimeZone. Load has already validated it, so the UTC
// fallback only applies to hand-built configs.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ReadTimeout returns ReadTimeoutMS as a duration.
func (c *Config) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutMS) * time.Millisecond
}
