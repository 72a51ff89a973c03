// Command sbdfcat prints an SBDF file's column schema and row count. It
// is a thin external collaborator: it consumes the sbdf module only
// through its public API and is never imported by the core module.
package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/sbdf-go/sbdf"
)

var rootCmd = &cobra.Command{
	Use:   "sbdfcat file...",
	Short: "sbdfcat prints an SBDF file's schema and row count",
	Long:  "sbdfcat prints an SBDF file's schema and row count",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, path := range args {
			if err := catFile(path); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
		}
		return nil
	},
}

func catFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	tables, err := sbdf.ReadTables(f)
	if err != nil {
		return err
	}

	for i, t := range tables {
		fmt.Printf("table %d: %d columns, %s rows\n", i, t.Metadata.ColumnCount(), humanize.Comma(int64(t.RowCount())))
		for _, col := range t.Metadata.Columns() {
			fmt.Printf("  %-24s %s\n", col.Name(), col.ValueKind())
		}
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
