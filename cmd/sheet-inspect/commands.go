package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	app "github.com/okian/evalsheet/internal/app"
	"github.com/okian/evalsheet/internal/config"
	"github.com/okian/evalsheet/internal/domain/analysis"
	"github.com/okian/evalsheet/internal/inspect"
	"github.com/okian/evalsheet/pkg/logger"

	"github.com/spf13/cobra"
)

// flags shared by every subcommand. Empty values keep the loaded config.
type rootFlags struct {
	configFile    string
	spreadsheetID string
	sheetName     string
	workbookPath  string
	verbose       bool
}

func newRootCmd() *cobra.Command {
	f := &rootFlags{}

	root := &cobra.Command{
		Use:   "sheet-inspect",
		Short: "Inspect a construction evaluation sheet",
		Long: `Reads the configured evaluation sheet once, using the same
EVALSHEET_* configuration as the server, and prints its layout or a report.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&f.configFile, "config", "", "YAML config file (overrides EVALSHEET_CONFIG)")
	root.PersistentFlags().StringVar(&f.spreadsheetID, "spreadsheet-id", "", "Google Sheets document id")
	root.PersistentFlags().StringVar(&f.sheetName, "sheet", "", "sheet name (default: first sheet)")
	root.PersistentFlags().StringVar(&f.workbookPath, "workbook", "", "local .xlsx workbook")
	root.PersistentFlags().BoolVarP(&f.verbose, "verbose", "v", false, "log reads to stderr")

	root.AddCommand(newStructureCmd(f), newReportCmd(f))
	return root
}

func newStructureCmd(f *rootFlags) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "structure",
		Short: "Print sheet name, size, the header rows and the rows around the total",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, svc, err := start(cmd, f)
			if err != nil {
				return err
			}
			defer svc.Stop()

			sh, err := svc.Sheet(cmd.Context())
			if err != nil {
				return err
			}

			s := inspect.Describe(sh.Title, sh.Cells, cfg.Location())
			if asJSON {
				return writeJSON(cmd, s)
			}
			return s.WriteText(cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of text")
	return cmd
}

func newReportCmd(f *rootFlags) *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the report payload served by GET /evaluations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, svc, err := start(cmd, f)
			if err != nil {
				return err
			}
			defer svc.Stop()

			rep, err := svc.Report(cmd.Context(), mode)
			if err != nil {
				return err
			}
			return writeJSON(cmd, rep)
		},
	}
	cmd.Flags().StringVar(&mode, "mode", string(analysis.ModeAll), "report mode: all, summary or detail")
	return cmd
}

// start loads config, applies flag overrides and starts a service.
func start(cmd *cobra.Command, f *rootFlags) (*config.Config, *app.Service, error) {
	if f.configFile != "" {
		if err := os.Setenv("EVALSHEET_CONFIG", f.configFile); err != nil {
			return nil, nil, err
		}
	}
	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	if f.spreadsheetID != "" {
		cfg.SpreadsheetID = strings.TrimSpace(f.spreadsheetID)
	}
	if f.sheetName != "" {
		cfg.SheetName = strings.TrimSpace(f.sheetName)
	}
	if f.workbookPath != "" {
		cfg.WorkbookPath = f.workbookPath
		if f.spreadsheetID == "" {
			cfg.SpreadsheetID = ""
		}
	}
	if err := config.Validate(cfg); err != nil {
		return nil, nil, err
	}

	log := logger.Nop()
	if f.verbose {
		if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithOutput(cmd.ErrOrStderr())); err != nil {
			return nil, nil, err
		}
		_ = logger.SetLevelString("debug")
		log = logger.Named("inspect")
	}

	svc := app.New(append(app.FromConfig(cfg), app.WithLogger(log))...)
	if err := svc.Start(cmd.Context()); err != nil {
		return nil, nil, err
	}
	return cfg, svc, nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
