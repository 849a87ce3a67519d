// Package classify implements the classify command
package classify

import (
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"

	"kpss-tercih/cmd/root"
	"kpss-tercih/internal/container"
	"kpss-tercih/internal/fileutils"

	"github.com/spf13/cobra"
)

// Cmd represents the classify command
var Cmd = &cobra.Command{
	Use:   "classify [file...]",
	Short: "Show how bulletin files would be routed",
	Long: `Show the bulletin kind and education level decided for each file name,
without opening the files. Without arguments every PDF of the input
directory is listed.

Example:
  kpss-tercih classify tablo3_lisans18122025.pdf ozel_kosullar.pdf`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Run(root.GetContainer(), args, cmd.OutOrStdout())
	},
}

// Run prints one line per file name. Names default to the PDFs of the
// configured input directory.
func Run(c *container.Container, names []string, w io.Writer) error {
	if len(names) == 0 {
		files, err := fileutils.ListFilesWithExtension(c.GetConfig().Input.Dir, ".pdf")
		if err != nil {
			return fmt.Errorf("failed to list input directory: %w", err)
		}
		names = files
	}

	cls := c.GetClassifier()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tKIND\tLEVEL\tRULE")
	for _, name := range names {
		got := cls.Classify(name)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", filepath.Base(name), got.Kind, orDash(string(got.Level)), orDash(got.Rule))
	}
	return tw.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
