// Package common contains shared functionality for command handlers
package common

import (
	"context"
	"fmt"
	"io"

	"kpss-tercih/internal/container"
	"kpss-tercih/internal/logging"
	"kpss-tercih/internal/pipeline"
	"kpss-tercih/internal/report"
	"kpss-tercih/internal/snapshot"
)

// OutputOptions selects where a parsed snapshot is written.
type OutputOptions struct {
	Dir       string
	PublicDir string
	CSV       bool
	XLSX      bool
}

// OutputOptionsFromConfig returns the output section of the configuration.
func OutputOptionsFromConfig(c *container.Container) OutputOptions {
	cfg := c.GetConfig()
	return OutputOptions{
		Dir:       cfg.Output.Dir,
		PublicDir: cfg.Output.PublicDir,
		CSV:       cfg.Output.CSV,
		XLSX:      cfg.Output.XLSX,
	}
}

// ProcessDirectory runs the pipeline over every PDF of inputDir and writes
// the resulting snapshot as selected by out.
func ProcessDirectory(ctx context.Context, c *container.Container, inputDir string, out OutputOptions) (*snapshot.Snapshot, *report.RunReport, error) {
	logger := c.GetLogger()
	sources, err := pipeline.SourcesFromDir(inputDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list input directory: %w", err)
	}
	if len(sources) == 0 {
		logger.Warn("No PDF files found", logging.F(logging.FieldFile, inputDir))
	}

	snap, rep, err := c.GetPipeline().Run(ctx, sources)
	if err != nil {
		return nil, nil, err
	}
	if err := WriteSnapshot(c, snap, out); err != nil {
		return nil, nil, err
	}
	return snap, rep, nil
}

// WriteSnapshot writes the JSON collections and the optional public copy
// and flat exports.
func WriteSnapshot(c *container.Container, snap *snapshot.Snapshot, out OutputOptions) error {
	logger := c.GetLogger()
	if err := snap.Write(out.Dir); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	logger.Info("Wrote snapshot", logging.F(logging.FieldOutputDir, out.Dir))

	if out.PublicDir != "" {
		if err := snap.WriteCollections(out.PublicDir); err != nil {
			return fmt.Errorf("failed to write public copy: %w", err)
		}
		logger.Info("Wrote public copy", logging.F(logging.FieldOutputDir, out.PublicDir))
	}
	return Export(c, snap, out.Dir, out.CSV, out.XLSX)
}

// Export writes the requested flat formats into dir.
func Export(c *container.Container, snap *snapshot.Snapshot, dir string, csv, xlsx bool) error {
	exp := c.GetExporter()
	if csv {
		if _, err := exp.WriteCSV(snap, dir); err != nil {
			return fmt.Errorf("failed to export CSV: %w", err)
		}
	}
	if xlsx {
		if _, err := exp.WriteWorkbookFile(snap, dir); err != nil {
			return fmt.Errorf("failed to export XLSX: %w", err)
		}
	}
	return nil
}

// PrintReport renders rep in format to w.
func PrintReport(w io.Writer, c *container.Container, rep *report.RunReport, format string) error {
	out, err := c.GetReportGenerator().GenerateReport(rep, format)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}
