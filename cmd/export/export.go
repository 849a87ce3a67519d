// Package export implements the export command
package export

import (
	"fmt"
	"io"

	"kpss-tercih/cmd/common"
	"kpss-tercih/cmd/root"
	"kpss-tercih/internal/container"
	"kpss-tercih/internal/logging"
	"kpss-tercih/internal/snapshot"

	"github.com/spf13/cobra"
)

// Options are the flags of the export command.
type Options struct {
	CSV  bool
	XLSX bool
	Dir  string
}

var opts Options

// Cmd represents the export command
var Cmd = &cobra.Command{
	Use:   "export",
	Short: "Export the parsed data as CSV or XLSX",
	Long: `Export the qualifications and positions of the last parse as CSV files
and/or an XLSX workbook. Without --csv or --xlsx both are written.

Example:
  kpss-tercih export --xlsx -o parsed_data/
  kpss-tercih export --csv --csv-delimiter ";" --dir exports/`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Run(root.GetContainer(), opts, cmd.OutOrStdout())
	},
}

func init() {
	Cmd.Flags().BoolVar(&opts.CSV, "csv", false, "Write qualifications.csv and positions.csv")
	Cmd.Flags().BoolVar(&opts.XLSX, "xlsx", false, "Write the XLSX workbook")
	Cmd.Flags().StringVar(&opts.Dir, "dir", "", "Target directory (default is the output directory)")
}

// Run reads the snapshot of the output directory and writes the exports.
func Run(c *container.Container, o Options, w io.Writer) error {
	source := c.GetConfig().Output.Dir
	snap, err := snapshot.Load(source)
	if err != nil {
		return fmt.Errorf("failed to load parsed data (run parse first): %w", err)
	}

	if !o.CSV && !o.XLSX {
		o.CSV, o.XLSX = true, true
	}
	dir := o.Dir
	if dir == "" {
		dir = source
	}
	if err := common.Export(c, snap, dir, o.CSV, o.XLSX); err != nil {
		return err
	}

	c.GetLogger().Info("Export completed",
		logging.F(logging.FieldRunID, snap.RunID()),
		logging.F(logging.FieldOutputDir, dir))
	_, err = fmt.Fprintf(w, "Exported %d qualifications and %d positions to %s\n",
		len(snap.Qualifications()), len(snap.Positions()), dir)
	return err
}
