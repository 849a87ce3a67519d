package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"kpss-tercih/internal/logging"
	"kpss-tercih/internal/models"

	"gopkg.in/yaml.v3"
)

// ReportGenerator renders run reports in various formats.
type ReportGenerator struct {
	logger logging.Logger
}

// NewReportGenerator creates a new instance of ReportGenerator.
func NewReportGenerator(logger logging.Logger) *ReportGenerator {
	return &ReportGenerator{logger: logger}
}

// GenerateReport renders report as "text", "json" or "yaml".
func (g *ReportGenerator) GenerateReport(report *RunReport, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "", "text":
		return g.generateTextReport(report)
	case "json":
		return g.generateJSONReport(report)
	case "yaml", "yml":
		return g.generateYAMLReport(report)
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
}

func (g *ReportGenerator) generateJSONReport(report *RunReport) ([]byte, error) {
	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		g.logger.WithError(err).Error("Failed to marshal JSON report")
		return nil, fmt.Errorf("failed to marshal JSON report: %w", err)
	}
	return out, nil
}

func (g *ReportGenerator) generateYAMLReport(report *RunReport) ([]byte, error) {
	out, err := yaml.Marshal(report)
	if err != nil {
		g.logger.WithError(err).Error("Failed to marshal YAML report")
		return nil, fmt.Errorf("failed to marshal YAML report: %w", err)
	}
	return out, nil
}

func (g *ReportGenerator) generateTextReport(report *RunReport) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Run %s (%d ms)\n\n", report.RunID, report.DurationMS)

	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tKIND\tLEVEL\tSTATUS\tQUALIFICATIONS\tPOSITIONS\tREJECTED")
	for _, f := range report.Files {
		status := f.Status
		if f.Error != "" {
			status += ": " + f.Error
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%d\n",
			f.File, f.Kind, dash(f.Level), status, f.Qualifications, f.Positions, f.Rejected)
	}
	if err := tw.Flush(); err != nil {
		return nil, fmt.Errorf("failed to render text report: %w", err)
	}

	fmt.Fprintln(&buf)
	tw = tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LEVEL\tQUALIFICATIONS\tPOSITIONS")
	for _, level := range models.EducationLevels {
		q, p := report.QualificationsByLevel[string(level)], report.PositionsByLevel[string(level)]
		if q == 0 && p == 0 {
			continue
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\n", level, q, p)
	}
	fmt.Fprintf(tw, "TOTAL\t%d\t%d\n", report.TotalQualifications, report.TotalPositions)
	if err := tw.Flush(); err != nil {
		return nil, fmt.Errorf("failed to render text report: %w", err)
	}

	if len(report.RejectedByReason) > 0 {
		fmt.Fprintln(&buf, "\nRejected segments:")
		for _, reason := range sortedKeys(report.RejectedByReason) {
			fmt.Fprintf(&buf, "  %s: %d\n", reason, report.RejectedByReason[reason])
		}
	}
	if len(report.Conflicts) > 0 {
		fmt.Fprintf(&buf, "\nQualification conflicts: %d\n", len(report.Conflicts))
		for _, c := range report.Conflicts {
			fmt.Fprintf(&buf, "  %s: kept %s, dropped %s\n", c.Code, c.KeptFrom, c.DroppedFrom)
		}
	}
	if report.DuplicateOsymCodes > 0 {
		fmt.Fprintf(&buf, "\nDuplicate osym codes: %d\n", report.DuplicateOsymCodes)
	}
	fmt.Fprintf(&buf, "\nFiles: %d ok, %d failed, %d skipped\n",
		report.CountStatus(models.FileStatusOK),
		report.CountStatus(models.FileStatusFailed),
		report.CountStatus(models.FileStatusSkipped))
	return buf.Bytes(), nil
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
