// Package report describes what a pipeline run did: per-file status,
// per-level record counts, rejected segments and merge conflicts.
package report

import (
	"sort"
	"time"

	"kpss-tercih/internal/models"
)

// FileEntry is the outcome for one input file.
type FileEntry struct {
	File           string `json:"file" yaml:"file"`
	Kind           string `json:"kind" yaml:"kind"`
	Level          string `json:"level,omitempty" yaml:"level,omitempty"`
	Status         string `json:"status" yaml:"status"`
	Error          string `json:"error,omitempty" yaml:"error,omitempty"`
	Qualifications int    `json:"qualifications" yaml:"qualifications"`
	Positions      int    `json:"positions" yaml:"positions"`
	Segments       int    `json:"segments" yaml:"segments"`
	Rejected       int    `json:"rejected" yaml:"rejected"`
	DurationMS     int64  `json:"durationMs" yaml:"duration_ms"`
}

// Conflict is a qualification code defined differently by two files.
type Conflict struct {
	Code        string `json:"code" yaml:"code"`
	KeptFrom    string `json:"keptFrom" yaml:"kept_from"`
	DroppedFrom string `json:"droppedFrom" yaml:"dropped_from"`
}

// RunReport is the summary of one run.
type RunReport struct {
	RunID                 string         `json:"runId" yaml:"run_id"`
	StartedAt             time.Time      `json:"startedAt" yaml:"started_at"`
	DurationMS            int64          `json:"durationMs" yaml:"duration_ms"`
	Files                 []FileEntry    `json:"files" yaml:"files"`
	QualificationsByLevel map[string]int `json:"qualificationsByLevel" yaml:"qualifications_by_level"`
	PositionsByLevel      map[string]int `json:"positionsByLevel" yaml:"positions_by_level"`
	RejectedByReason      map[string]int `json:"rejectedByReason" yaml:"rejected_by_reason"`
	Conflicts             []Conflict     `json:"conflicts" yaml:"conflicts"`
	DuplicateOsymCodes    int            `json:"duplicateOsymCodes" yaml:"duplicate_osym_codes"`
	TotalQualifications   int            `json:"totalQualifications" yaml:"total_qualifications"`
	TotalPositions        int            `json:"totalPositions" yaml:"total_positions"`
}

// NewRunReport returns an empty report with its maps allocated.
func NewRunReport(runID string, startedAt time.Time) *RunReport {
	return &RunReport{
		RunID:                 runID,
		StartedAt:             startedAt,
		Files:                 []FileEntry{},
		QualificationsByLevel: map[string]int{},
		PositionsByLevel:      map[string]int{},
		RejectedByReason:      map[string]int{},
		Conflicts:             []Conflict{},
	}
}

// CountStatus returns how many files ended with status.
func (r *RunReport) CountStatus(status string) int {
	n := 0
	for _, f := range r.Files {
		if f.Status == status {
			n++
		}
	}
	return n
}

// Failed reports whether any file could not be processed.
func (r *RunReport) Failed() bool {
	return r.CountStatus(models.FileStatusFailed) > 0
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
