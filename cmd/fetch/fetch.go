// Package fetch implements the fetch command
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"

	"kpss-tercih/cmd/common"
	"kpss-tercih/cmd/root"
	"kpss-tercih/internal/container"
	"kpss-tercih/internal/fetcher"
	"kpss-tercih/internal/logging"

	"github.com/spf13/cobra"
)

// Options are the flags of the fetch command.
type Options struct {
	Check        bool
	PublicDir    string
	ReportFormat string
}

var opts Options

// Cmd represents the fetch command
var Cmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the latest bulletins from ÖSYM and parse them",
	Long: `Find the latest KPSS preference guide on the ÖSYM site, download its
bulletin PDFs into the input directory and parse them.

The update state (guide URL and file hashes) is kept next to the parsed
data, so the command reports which bulletins changed since the last run.
With --check nothing is downloaded.

Example:
  kpss-tercih fetch --check
  kpss-tercih fetch -i attached_assets/ -o parsed_data/`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Run(cmd.Context(), root.GetContainer(), opts, cmd.OutOrStdout())
	},
}

func init() {
	Cmd.Flags().BoolVar(&opts.Check, "check", false, "Only report whether a newer guide is published")
	Cmd.Flags().StringVar(&opts.PublicDir, "public-dir", "", "Also write the JSON collections to this directory")
	Cmd.Flags().StringVar(&opts.ReportFormat, "report-format", "text", "Summary format (text, json, yaml)")
}

// Run checks for or performs an update.
func Run(ctx context.Context, c *container.Container, o Options, w io.Writer) error {
	cfg := c.GetConfig()
	logger := c.GetLogger()
	statePath := cfg.StateFilePath()
	prev := fetcher.LoadState(statePath)

	if o.Check {
		latest, changed, err := c.GetFetcher().Check(ctx, prev)
		if err != nil {
			return fmt.Errorf("failed to check for updates: %w", err)
		}
		if changed {
			fmt.Fprintf(w, "New guide available: %s\n", latest)
		} else {
			fmt.Fprintf(w, "Up to date: %s\n", latest)
		}
		return nil
	}

	res, err := c.GetFetcher().Update(ctx, cfg.Input.Dir, prev)
	if err != nil {
		return fmt.Errorf("failed to download bulletins: %w", err)
	}
	if len(res.Downloads) == 0 {
		return errors.New("no bulletin could be downloaded")
	}

	out := common.OutputOptionsFromConfig(c)
	if o.PublicDir != "" {
		out.PublicDir = o.PublicDir
	}
	_, rep, err := common.ProcessDirectory(ctx, c, cfg.Input.Dir, out)
	if err != nil {
		return err
	}

	// only a successful parse moves the recorded state forward
	if err := fetcher.SaveState(statePath, res.State); err != nil {
		return fmt.Errorf("failed to save update state: %w", err)
	}
	logger.Info("Saved update state", logging.F(logging.FieldOutputFile, statePath))

	if err := common.PrintReport(w, c, rep, o.ReportFormat); err != nil {
		return err
	}
	printSummary(w, res)
	return nil
}

func printSummary(w io.Writer, res *fetcher.Result) {
	fmt.Fprintf(w, "\nGuide: %s\n", res.GuideURL)
	fmt.Fprintf(w, "Downloaded %d of %d linked PDFs (%d skipped, %d failed)\n",
		len(res.Downloads), res.Links, len(res.Skipped), len(res.Failed))
	for _, name := range res.Failed {
		fmt.Fprintf(w, "  failed: %s\n", name)
	}
	if !res.Changed() {
		fmt.Fprintln(w, "No bulletin changed since the last update")
		return
	}
	fmt.Fprintln(w, "Changed bulletins:")
	for _, name := range res.ChangedFiles {
		fmt.Fprintf(w, "  %s\n", name)
	}
}
