// Package seed implements the seed command
package seed

import (
	"context"
	"fmt"
	"io"

	"kpss-tercih/cmd/root"
	"kpss-tercih/internal/container"
	"kpss-tercih/internal/logging"
	"kpss-tercih/internal/snapshot"
	"kpss-tercih/internal/store"

	"github.com/spf13/cobra"
)

// Cmd represents the seed command
var Cmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the parsed data into PostgreSQL",
	Long: `Apply the schema migrations and replace the content of the
qualifications, positions and position_qualifications tables with the last
parse, in a single transaction.

The connection string is read from DATABASE_URL (or KPSS_DATABASE_URL).

Example:
  DATABASE_URL=postgres://kpss@localhost/kpss kpss-tercih seed -o parsed_data/`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Run(cmd.Context(), root.GetContainer(), cmd.OutOrStdout())
	},
}

// Run seeds the database from the snapshot of the output directory.
func Run(ctx context.Context, c *container.Container, w io.Writer) error {
	snap, err := snapshot.Load(c.GetConfig().Output.Dir)
	if err != nil {
		return fmt.Errorf("failed to load parsed data (run parse first): %w", err)
	}

	db, err := c.OpenStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	stats, err := db.Seed(ctx, snap)
	if err != nil {
		return fmt.Errorf("failed to seed database: %w", err)
	}
	counts, err := db.Counts(ctx)
	if err != nil {
		return fmt.Errorf("failed to count rows: %w", err)
	}

	c.GetLogger().Info("Database seeded",
		logging.F(logging.FieldRunID, snap.RunID()),
		logging.F("positions", stats.Positions))

	fmt.Fprintf(w, "Loaded %d qualifications, %d positions and %d links\n",
		stats.Qualifications, stats.Positions, stats.Links)
	if stats.DuplicatePositions > 0 {
		fmt.Fprintf(w, "Skipped %d positions with a duplicate osym code\n", stats.DuplicatePositions)
	}
	if stats.UnknownCodes > 0 {
		fmt.Fprintf(w, "Skipped %d links to unknown qualification codes\n", stats.UnknownCodes)
	}
	for _, table := range store.Tables {
		fmt.Fprintf(w, "  %s: %d rows\n", table, counts[table])
	}
	return nil
}
