package cmd

import (
	"fmt"
	"os"

	"github.com/theirongolddev/cbudget/internal/pipeline"
	"github.com/theirongolddev/cbudget/internal/source"
	"github.com/theirongolddev/cbudget/internal/store"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <file-or-dir>...",
	Short: "Import expenses from CSV, JSON, YAML or XLSX files",
	Long: `Import expenses from files. Directories are scanned for supported files.
Files already imported with the same size and modification time are skipped
unless --force is given.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

var importForce bool

func init() {
	importCmd.Flags().BoolVar(&importForce, "force", false, "Re-import files even if unchanged")
	rootCmd.AddCommand(importCmd)
}

func runImport(_ *cobra.Command, args []string) error {
	files, err := collectImportFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Println("\n  No CSV, JSON, YAML or XLSX files found.")
		return nil
	}

	st, err := store.Open(dbPath())
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	res, err := pipeline.Import(st, files, importForce, progressFunc("Parsing"))
	if err != nil {
		return err
	}
	if !flagQuiet {
		fmt.Fprintln(os.Stderr)
	}

	fmt.Printf("  Imported %s expenses from %d file%s", formatNumber(int64(len(res.Expenses))), res.Imported, plural(res.Imported))
	if res.Unchanged > 0 {
		fmt.Printf(", %d unchanged", res.Unchanged)
	}
	fmt.Println()
	if res.BadDates > 0 {
		fmt.Printf("  %d row%s kept without a usable date\n", res.BadDates, plural(res.BadDates))
	}
	for _, e := range res.Errors {
		fmt.Fprintf(os.Stderr, "  skipped: %v\n", e)
	}
	return nil
}

// collectImportFiles expands directories and checks file extensions.
func collectImportFiles(args []string) ([]source.DiscoveredFile, error) {
	var files []source.DiscoveredFile
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			found, err := source.ScanDir(arg)
			if err != nil {
				return nil, fmt.Errorf("scanning %s: %w", arg, err)
			}
			files = append(files, found...)
			continue
		}
		df, ok := source.Discover(arg)
		if !ok {
			return nil, fmt.Errorf("%s: unsupported file type (want .csv, .json, .yaml, .yml or .xlsx)", arg)
		}
		files = append(files, df)
	}
	return files, nil
}
