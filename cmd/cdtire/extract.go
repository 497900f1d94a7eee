package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ukaji3/cdtire-go/internal/store"
	"github.com/ukaji3/cdtire-go/pkg/cdtire"
	"github.com/ukaji3/cdtire-go/pkg/cdtire/models"
	"github.com/ukaji3/cdtire-go/pkg/cdtire/output"
)

type extractFlags struct {
	outputPath string
	pretty     bool
	records    bool
	sheetsDir  string
	allowEmpty bool
	store      bool
	project    string
	protocol   string
}

func newExtractCmd(a *app) *cobra.Command {
	f := &extractFlags{}
	cmd := &cobra.Command{
		Use:   "extract [input.xlsx]",
		Short: "Extract test-run records from a protocol workbook",
		Long: `extract locates the header row of every sheet, maps its columns to
test-run fields and writes the extracted records as JSON.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runExtract(cmd, f, args[0])
		},
	}

	cmd.Flags().StringVarP(&f.outputPath, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().BoolVar(&f.pretty, "pretty", false, "Pretty-print JSON output")
	cmd.Flags().BoolVar(&f.records, "records", false, `Write only the records, as a {"data": [...]} payload`)
	cmd.Flags().StringVar(&f.sheetsDir, "sheets-dir", "", "Directory for per-sheet output files")
	cmd.Flags().BoolVar(&f.allowEmpty, "allow-empty", false, "Succeed even when no sheet yields a record")
	cmd.Flags().BoolVar(&f.store, "store", false, "Save the records to the run store")
	cmd.Flags().StringVar(&f.project, "project", "", "Project name for the run store (default: $CDTIRE_PROJECT)")
	cmd.Flags().StringVar(&f.protocol, "protocol", "", "Protocol for the run store (default: $CDTIRE_PROTOCOL)")
	return cmd
}

func (a *app) runExtract(cmd *cobra.Command, f *extractFlags, inputPath string) error {
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", inputPath)
	}

	opts := cdtire.DefaultOptions()
	opts.AllowEmpty = f.allowEmpty

	wb, err := cdtire.Extract(inputPath, opts)
	if errors.Is(err, cdtire.ErrNoValidData) {
		fmt.Fprintln(cmd.ErrOrStderr(), cdtire.NoValidDataMessage)
	}
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	var jsonData []byte
	if f.records {
		jsonData, err = output.RecordsToJSON(wb, f.pretty)
	} else {
		jsonData, err = output.ToJSON(wb, f.pretty)
	}
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}

	if f.outputPath != "" {
		if err := os.WriteFile(f.outputPath, jsonData, 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	} else if f.sheetsDir == "" {
		fmt.Fprintln(cmd.OutOrStdout(), string(jsonData))
	}

	if f.sheetsDir != "" {
		if err := writeSheetFiles(wb, f.sheetsDir, f.pretty); err != nil {
			return fmt.Errorf("failed to write sheet files: %w", err)
		}
	}

	if f.store {
		project := orDefault(f.project, a.cfg.Project.Name)
		protocol := orDefault(f.protocol, a.cfg.Project.Protocol)
		if err := a.saveRuns(cmd, project, protocol, wb.Records()); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) saveRuns(cmd *cobra.Command, project, protocol string, records []models.Record) error {
	if a.dsn == "" {
		return fmt.Errorf("run store: no DSN (set --dsn or CDTIRE_DATABASE_URL)")
	}
	s, err := store.Open(cmd.Context(), a.dsn)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Migrate(cmd.Context()); err != nil {
		return err
	}
	return s.SaveRuns(cmd.Context(), project, protocol, records)
}

func writeSheetFiles(wb *models.WorkbookData, dir string, pretty bool) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	for i := range wb.Sheets {
		sheet := &wb.Sheets[i]
		jsonData, err := output.SheetToJSON(sheet, pretty)
		if err != nil {
			return err
		}

		filename := filepath.Join(dir, safeFileName(sheet.Name)+".json")
		if err := os.WriteFile(filename, jsonData, 0644); err != nil {
			return err
		}
	}

	return nil
}

// safeFileName replaces path separators in a sheet name.
func safeFileName(name string) string {
	out := []rune(name)
	for i, r := range out {
		if r == '/' || r == '\\' || r == os.PathSeparator {
			out[i] = '_'
		}
	}
	return string(out)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
