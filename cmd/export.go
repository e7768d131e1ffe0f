package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/theirongolddev/cbudget/internal/pipeline"
	"github.com/theirongolddev/cbudget/internal/source"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export expenses as JSON, CSV, YAML or XLSX",
	Example: `  cbudget export -o expenses.xlsx
  cbudget export --format csv --window -n 90 > last-quarter.csv`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

var (
	exportFormat string
	exportOutput string
	exportWindow bool
)

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "json, csv, yaml or xlsx (default from --output extension, else json)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default stdout)")
	exportCmd.Flags().BoolVar(&exportWindow, "window", false, "Only export the --days window")
	rootCmd.AddCommand(exportCmd)
}

func runExport(_ *cobra.Command, _ []string) error {
	format, err := exportFormatFor(exportFormat, exportOutput)
	if err != nil {
		return err
	}
	if format == source.FormatXLSX && exportOutput == "" {
		return errors.New("xlsx export needs --output")
	}

	ds, err := loadData()
	if err != nil {
		return err
	}

	expenses, since, until := applyFilters(ds.Expenses)
	if exportWindow {
		expenses = pipeline.FilterByTime(expenses, since, until)
	}
	pipeline.SortLog(expenses)

	if exportOutput == "" {
		return source.Write(os.Stdout, format, expenses)
	}

	f, err := os.Create(exportOutput)
	if err != nil {
		return fmt.Errorf("creating %s: %w", exportOutput, err)
	}
	if err := source.Write(f, format, expenses); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing %s: %w", exportOutput, err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Wrote %s expenses to %s\n", formatNumber(int64(len(expenses))), exportOutput)
	}
	return nil
}

// exportFormatFor resolves the --format flag, falling back to the output
// file's extension and then JSON.
func exportFormatFor(flag, output string) (source.Format, error) {
	if flag != "" {
		f, ok := source.FormatFromExt(flag)
		if !ok {
			return "", fmt.Errorf("unknown format %q", flag)
		}
		return f, nil
	}
	if output != "" {
		if f, ok := source.FormatFromExt(filepath.Ext(output)); ok {
			return f, nil
		}
	}
	return source.FormatJSON, nil
}
