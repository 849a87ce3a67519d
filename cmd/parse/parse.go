// Package parse implements the parse command
package parse

import (
	"context"
	"fmt"
	"io"

	"kpss-tercih/cmd/common"
	"kpss-tercih/cmd/root"
	"kpss-tercih/internal/container"
	"kpss-tercih/internal/logging"
	"kpss-tercih/internal/models"

	"github.com/spf13/cobra"
)

// Options are the flags of the parse command.
type Options struct {
	PublicDir    string
	CSV          bool
	XLSX         bool
	ReportFormat string
}

var opts Options

// Cmd represents the parse command
var Cmd = &cobra.Command{
	Use:   "parse",
	Short: "Parse the bulletin PDFs of a directory",
	Long: `Parse every bulletin PDF of the input directory into qualifications.json
and positions.json in the output directory.

Files that cannot be decoded or classified are reported and skipped; the
remaining files are still processed.

Example:
  kpss-tercih parse -i attached_assets/ -o parsed_data/ --xlsx`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Run(cmd.Context(), root.GetContainer(), opts, cmd.OutOrStdout())
	},
}

func init() {
	Cmd.Flags().StringVar(&opts.PublicDir, "public-dir", "", "Also write the JSON collections to this directory")
	Cmd.Flags().BoolVar(&opts.CSV, "csv", false, "Also export CSV files")
	Cmd.Flags().BoolVar(&opts.XLSX, "xlsx", false, "Also export an XLSX workbook")
	Cmd.Flags().StringVar(&opts.ReportFormat, "report-format", "text", "Summary format (text, json, yaml)")
}

// Run parses the configured input directory and prints the run summary.
func Run(ctx context.Context, c *container.Container, o Options, w io.Writer) error {
	cfg := c.GetConfig()
	logger := c.GetLogger()

	out := common.OutputOptionsFromConfig(c)
	if o.PublicDir != "" {
		out.PublicDir = o.PublicDir
	}
	out.CSV = out.CSV || o.CSV
	out.XLSX = out.XLSX || o.XLSX

	logger.Info("Parsing bulletins",
		logging.F(logging.FieldFile, cfg.Input.Dir),
		logging.F(logging.FieldOutputDir, out.Dir))

	snap, rep, err := common.ProcessDirectory(ctx, c, cfg.Input.Dir, out)
	if err != nil {
		return err
	}
	if err := common.PrintReport(w, c, rep, o.ReportFormat); err != nil {
		return err
	}

	logger.Info("Parse completed",
		logging.F(logging.FieldRunID, snap.RunID()),
		logging.F("qualifications", len(snap.Qualifications())),
		logging.F("positions", len(snap.Positions())))

	if len(rep.Files) > 0 && rep.CountStatus(models.FileStatusFailed) == len(rep.Files) {
		return fmt.Errorf("none of the %d files could be parsed", len(rep.Files))
	}
	return nil
}
