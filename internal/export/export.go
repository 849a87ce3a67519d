// Package export writes a snapshot as CSV files and as an XLSX workbook for
// consumers that cannot read the JSON collections.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"kpss-tercih/internal/fileutils"
	"kpss-tercih/internal/logging"
	"kpss-tercih/internal/models"
	"kpss-tercih/internal/snapshot"

	"github.com/gocarina/gocsv"
)

// CodeSeparator joins the qualification codes of a position in flat outputs.
const CodeSeparator = ";"

// positionRow is the flat CSV view of a position.
type positionRow struct {
	OsymCode           string `csv:"osymCode"`
	SecondaryCode      string `csv:"sbbCode"`
	Institution        string `csv:"institution"`
	EmploymentType     string `csv:"employmentType"`
	Title              string `csv:"title"`
	City               string `csv:"city"`
	Quota              int    `csv:"quota"`
	QualificationCodes string `csv:"qualificationCodes"`
	EducationLevel     string `csv:"educationLevel"`
}

func toPositionRow(p models.Position) positionRow {
	return positionRow{
		OsymCode:           p.OsymCode,
		SecondaryCode:      p.SecondaryCode,
		Institution:        p.Institution,
		EmploymentType:     p.EmploymentType,
		Title:              p.Title,
		City:               p.City,
		Quota:              p.Quota,
		QualificationCodes: strings.Join(p.QualificationCodes, CodeSeparator),
		EducationLevel:     string(p.EducationLevel),
	}
}

// Exporter writes flat representations of a snapshot.
type Exporter struct {
	logger    logging.Logger
	delimiter rune
}

// New creates an Exporter. A zero delimiter means ','.
func New(logger logging.Logger, delimiter rune) *Exporter {
	if delimiter == 0 {
		delimiter = ','
	}
	return &Exporter{logger: logger, delimiter: delimiter}
}

// WriteQualificationsCSV writes quals to w with a header row.
func (e *Exporter) WriteQualificationsCSV(w io.Writer, quals []models.Qualification) error {
	if quals == nil {
		quals = []models.Qualification{}
	}
	return e.marshal(w, &quals)
}

// WritePositionsCSV writes positions to w with a header row; codes are joined
// with CodeSeparator.
func (e *Exporter) WritePositionsCSV(w io.Writer, positions []models.Position) error {
	rows := make([]positionRow, len(positions))
	for i, p := range positions {
		rows[i] = toPositionRow(p)
	}
	return e.marshal(w, &rows)
}

func (e *Exporter) marshal(w io.Writer, rows interface{}) error {
	csvWriter := csv.NewWriter(w)
	csvWriter.Comma = e.delimiter
	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		return fmt.Errorf("error writing CSV data: %w", err)
	}
	return nil
}

// WriteCSV writes models.QualificationsCSV and models.PositionsCSV into dir
// and returns their paths.
func (e *Exporter) WriteCSV(snap *snapshot.Snapshot, dir string) ([]string, error) {
	var qbuf, pbuf bytes.Buffer
	if err := e.WriteQualificationsCSV(&qbuf, snap.Qualifications()); err != nil {
		return nil, err
	}
	if err := e.WritePositionsCSV(&pbuf, snap.Positions()); err != nil {
		return nil, err
	}

	files := []struct {
		name string
		data []byte
	}{
		{models.QualificationsCSV, qbuf.Bytes()},
		{models.PositionsCSV, pbuf.Bytes()},
	}
	paths := make([]string, 0, len(files))
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if err := fileutils.WriteFile(path, f.data, models.PermissionReportFile); err != nil {
			return nil, fmt.Errorf("error writing %s: %w", f.name, err)
		}
		paths = append(paths, path)
	}
	e.logger.Info("Wrote CSV exports",
		logging.F(logging.FieldOutputDir, dir),
		logging.F(logging.FieldCount, len(paths)),
		logging.F("delimiter", string(e.delimiter)))
	return paths, nil
}
