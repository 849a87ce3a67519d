// Package parsererror defines the error taxonomy of the bulletin ingestion
// pipeline. Failures are contained at the smallest unit (one file, one
// segment); these types let callers tell those units apart with errors.As.
package parsererror

import (
	"errors"
	"fmt"
)

// ErrNotPDF is wrapped by DocumentParseError when the input lacks a PDF header.
var ErrNotPDF = errors.New("input is not a PDF document")

// DocumentParseError means a PDF could not be decoded at all. The file is
// skipped and the batch continues.
type DocumentParseError struct {
	File string
	Page int // 0 when the failure is not tied to a page
	Err  error
}

func (e *DocumentParseError) Error() string {
	if e.Page > 0 {
		return fmt.Sprintf("cannot decode PDF '%s' (page %d): %v", e.File, e.Page, e.Err)
	}
	return fmt.Sprintf("cannot decode PDF '%s': %v", e.File, e.Err)
}

func (e *DocumentParseError) Unwrap() error {
	return e.Err
}

// ClassificationMiss means a filename matched no bulletin rule. It is
// informational: the file is skipped, never routed to a guessed parser.
type ClassificationMiss struct {
	File string
}

func (e *ClassificationMiss) Error() string {
	return fmt.Sprintf("'%s' does not look like a known bulletin", e.File)
}

// SegmentRejected describes a position segment that lacked institution,
// title or city and was therefore dropped.
type SegmentRejected struct {
	OsymCode string
	Reason   string
	Snippet  string
}

func (e *SegmentRejected) Error() string {
	if e.OsymCode == "" {
		return fmt.Sprintf("segment rejected: %s", e.Reason)
	}
	return fmt.Sprintf("segment %s rejected: %s", e.OsymCode, e.Reason)
}

// RecordConflict is reported when the same qualification code arrives from
// several bulletins with different descriptions.
type RecordConflict struct {
	Code     string
	Kept     string
	Dropped  string
	KeptFrom string
	DropFrom string
}

func (e *RecordConflict) Error() string {
	return fmt.Sprintf("qualification %s defined twice: kept %q (%s), dropped %q (%s)",
		e.Code, truncate(e.Kept, 40), e.KeptFrom, truncate(e.Dropped, 40), e.DropFrom)
}

// ValidationError represents a configuration or vocabulary that failed validation.
type ValidationError struct {
	Source string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Source, e.Reason)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
