package models

// Output file names written by a pipeline run.
const (
	QualificationsFile = "qualifications.json"
	PositionsFile      = "positions.json"
	QualificationsCSV  = "qualifications.csv"
	PositionsCSV       = "positions.csv"
	WorkbookFile       = "kpss-tercih.xlsx"
)

// File permissions
const (
	PermissionConfigFile = 0600
	PermissionDirectory  = 0750
	PermissionReportFile = 0644
)

// Run status of a single input file.
const (
	FileStatusOK      = "ok"
	FileStatusFailed  = "failed"
	FileStatusSkipped = "skipped"
)
