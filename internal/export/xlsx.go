package export

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"kpss-tercih/internal/fileutils"
	"kpss-tercih/internal/logging"
	"kpss-tercih/internal/models"
	"kpss-tercih/internal/snapshot"

	"github.com/xuri/excelize/v2"
)

// Sheet names of the workbook.
const (
	QualificationsSheet = "Nitelikler"
	PositionsSheet      = "Kadrolar"
)

var (
	qualificationHeaders = []interface{}{"Kod", "Açıklama", "Öğrenim Düzeyi"}
	positionHeaders      = []interface{}{
		"ÖSYM Kodu", "SBB Kodu", "Kurum", "İstihdam", "Kadro Unvanı", "İl", "Kontenjan", "Nitelik Kodları", "Öğrenim Düzeyi",
	}
)

// WriteWorkbook renders both collections into one workbook and writes it to w.
func (e *Exporter) WriteWorkbook(w io.Writer, snap *snapshot.Snapshot) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			e.logger.WithError(err).Warn("Failed to close workbook")
		}
	}()

	if err := f.SetSheetName("Sheet1", QualificationsSheet); err != nil {
		return fmt.Errorf("error naming sheet: %w", err)
	}
	if _, err := f.NewSheet(PositionsSheet); err != nil {
		return fmt.Errorf("error adding sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("error creating header style: %w", err)
	}

	quals := snap.Qualifications()
	qrows := make([][]interface{}, len(quals))
	for i, q := range quals {
		qrows[i] = []interface{}{q.Code, q.Description, string(q.EducationLevel)}
	}
	if err := writeSheet(f, QualificationsSheet, qualificationHeaders, qrows, bold); err != nil {
		return err
	}

	positions := snap.Positions()
	prows := make([][]interface{}, len(positions))
	for i, p := range positions {
		prows[i] = []interface{}{
			p.OsymCode, p.SecondaryCode, p.Institution, p.EmploymentType, p.Title, p.City,
			p.Quota, strings.Join(p.QualificationCodes, CodeSeparator), string(p.EducationLevel),
		}
	}
	if err := writeSheet(f, PositionsSheet, positionHeaders, prows, bold); err != nil {
		return err
	}

	_ = f.SetColWidth(QualificationsSheet, "B", "B", 80)
	_ = f.SetColWidth(QualificationsSheet, "C", "C", 16)
	_ = f.SetColWidth(PositionsSheet, "C", "C", 45)
	_ = f.SetColWidth(PositionsSheet, "E", "E", 30)
	_ = f.SetColWidth(PositionsSheet, "F", "F", 16)
	_ = f.SetColWidth(PositionsSheet, "H", "I", 20)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, headers []interface{}, rows [][]interface{}, headerStyle int) error {
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return fmt.Errorf("error writing %s header: %w", sheet, err)
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("error styling %s header: %w", sheet, err)
	}
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("error writing %s row %d: %w", sheet, i+2, err)
		}
	}
	return nil
}

// WriteWorkbookFile writes models.WorkbookFile into dir and returns its path.
func (e *Exporter) WriteWorkbookFile(snap *snapshot.Snapshot, dir string) (string, error) {
	var buf bytes.Buffer
	if err := e.WriteWorkbook(&buf, snap); err != nil {
		return "", err
	}
	path := filepath.Join(dir, models.WorkbookFile)
	if err := fileutils.WriteFile(path, buf.Bytes(), models.PermissionReportFile); err != nil {
		return "", fmt.Errorf("error writing workbook: %w", err)
	}
	quals, positions := len(snap.Qualifications()), len(snap.Positions())
	e.logger.Info("Wrote XLSX workbook",
		logging.F(logging.FieldOutputFile, path),
		logging.F("qualifications", quals),
		logging.F("positions", positions))
	return path, nil
}
