package logging

// Field names shared by every stage of the ingestion pipeline, so that one
// bulletin can be followed through the logs by filtering on file_path.
const (
	FieldFile           = "file_path"
	FieldKind           = "kind"
	FieldEducationLevel = "education_level"
	FieldStage          = "stage"
	FieldCode           = "code"
	FieldOsymCode       = "osym_code"
	FieldReason         = "reason"
	FieldStatus         = "status"
	FieldError          = "error"
	FieldDuration       = "duration_ms"
	FieldCount          = "count"
	FieldRejected       = "rejected"
	FieldConflicts      = "conflicts"
	FieldPages          = "pages"
	FieldURL            = "url"
	FieldOutputDir      = "output_dir"
	FieldOutputFile     = "output_file"
	FieldRunID          = "run_id"
)
