// Package search implements the search command
package search

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"kpss-tercih/cmd/root"
	"kpss-tercih/internal/container"
	"kpss-tercih/internal/models"
	"kpss-tercih/internal/snapshot"

	"github.com/spf13/cobra"
)

// Options are the flags of the search command.
type Options struct {
	Level   string
	Cities  []string
	Codes   []string
	Query   string
	Limit   int
	Offset  int
	Format  string
	Filters bool
}

var opts Options

// Cmd represents the search command
var Cmd = &cobra.Command{
	Use:   "search",
	Short: "Search the parsed positions",
	Long: `Search the positions of the last parse by education level, city,
qualification code and free text.

A position matches a code filter when it lists one of the codes or the
generic code of the level (2001, 3001, 4001). "all" or "Tümü" disable the
city or code filter.

Example:
  kpss-tercih search --level Lisans --city Ankara --city İzmir --code 4419
  kpss-tercih search --filters`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Run(root.GetContainer(), opts, cmd.OutOrStdout())
	},
}

func init() {
	Cmd.Flags().StringVar(&opts.Level, "level", "", "Education level (Ortaöğretim, Önlisans, Lisans)")
	Cmd.Flags().StringSliceVar(&opts.Cities, "city", nil, "City to include, repeatable")
	Cmd.Flags().StringSliceVar(&opts.Codes, "code", nil, "Qualification code to match, repeatable")
	Cmd.Flags().StringVarP(&opts.Query, "query", "q", "", "Text that must occur in the institution or title")
	Cmd.Flags().IntVar(&opts.Limit, "limit", 50, "Maximum number of results (0 for all)")
	Cmd.Flags().IntVar(&opts.Offset, "offset", 0, "Number of results to skip")
	Cmd.Flags().StringVar(&opts.Format, "format", "text", "Output format (text, json)")
	Cmd.Flags().BoolVar(&opts.Filters, "filters", false, "List the available cities, levels and qualifications instead")
}

// Run loads the snapshot from the output directory and prints the matches.
func Run(c *container.Container, o Options, w io.Writer) error {
	format := strings.ToLower(o.Format)
	if format != "text" && format != "json" {
		return fmt.Errorf("unsupported output format: %s", o.Format)
	}

	snap, err := snapshot.Load(c.GetConfig().Output.Dir)
	if err != nil {
		return fmt.Errorf("failed to load parsed data (run parse first): %w", err)
	}

	if o.Filters {
		return printFilters(w, snap.Meta(), format)
	}

	level, err := models.ParseEducationLevel(o.Level)
	if err != nil {
		return err
	}
	res, err := snap.Search(snapshot.Query{
		EducationLevel: level,
		Cities:         o.Cities,
		Codes:          o.Codes,
		Text:           o.Query,
		Limit:          o.Limit,
		Offset:         o.Offset,
	}, c.GetVocabulary())
	if err != nil {
		return err
	}

	if format == "json" {
		return writeJSON(w, res)
	}
	return printMatches(w, res, o.Offset)
}

func printMatches(w io.Writer, res snapshot.SearchResult, offset int) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "OSYM CODE\tINSTITUTION\tTITLE\tCITY\tQUOTA\tCODES")
	for _, m := range res.Matches {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			m.OsymCode, m.Institution, m.Title, m.City, m.Quota, strings.Join(m.QualificationCodes, " "))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	from := 0
	if len(res.Matches) > 0 {
		from = offset + 1
	}
	_, err := fmt.Fprintf(w, "\n%d-%d of %d positions\n", from, offset+len(res.Matches), res.Total)
	return err
}

func printFilters(w io.Writer, meta snapshot.Meta, format string) error {
	if format == "json" {
		return writeJSON(w, meta)
	}
	fmt.Fprintf(w, "Levels: %s\n", strings.Join(meta.EducationLevels, ", "))
	fmt.Fprintf(w, "Cities (%d): %s\n", len(meta.Cities), strings.Join(meta.Cities, ", "))
	fmt.Fprintf(w, "Qualifications: %d\n", len(meta.Qualifications))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, q := range meta.Qualifications {
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", q.Code, q.EducationLevel, q.Description)
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
