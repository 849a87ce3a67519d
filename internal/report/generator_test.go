package report

import (
	"encoding/json"
	"testing"
	"time"

	"kpss-tercih/internal/logging"
	"kpss-tercih/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleReport() *RunReport {
	r := NewRunReport("run-42", time.Date(2025, 12, 18, 10, 0, 0, 0, time.UTC))
	r.DurationMS = 1500
	r.Files = []FileEntry{
		{File: "tablo3_lisans.pdf", Kind: "position", Level: "Lisans", Status: models.FileStatusOK, Positions: 120, Segments: 124, Rejected: 4},
		{File: "lisansnitelik.pdf", Kind: "qualification", Level: "Lisans", Status: models.FileStatusOK, Qualifications: 300},
		{File: "broken.pdf", Kind: "position", Level: "Önlisans", Status: models.FileStatusFailed, Error: "cannot decode PDF"},
		{File: "duyuru.pdf", Kind: "unclassified", Status: models.FileStatusSkipped},
	}
	r.QualificationsByLevel["Lisans"] = 300
	r.PositionsByLevel["Lisans"] = 120
	r.RejectedByReason["no_city"] = 3
	r.RejectedByReason["no_employment_type"] = 1
	r.Conflicts = []Conflict{{Code: "6225", KeptFrom: "a.pdf", DroppedFrom: "b.pdf"}}
	r.TotalQualifications = 300
	r.TotalPositions = 120
	return r
}

func TestReportGenerator_Text(t *testing.T) {
	out, err := NewReportGenerator(logging.NewMockLogger()).GenerateReport(sampleReport(), "text")
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, "Run run-42 (1500 ms)")
	assert.Contains(t, text, "tablo3_lisans.pdf")
	assert.Contains(t, text, "failed: cannot decode PDF")
	assert.Contains(t, text, "no_city: 3")
	assert.Contains(t, text, "6225: kept a.pdf, dropped b.pdf")
	assert.Contains(t, text, "Files: 2 ok, 1 failed, 1 skipped")
	assert.NotContains(t, text, "Ortaöğretim")
}

func TestReportGenerator_JSON(t *testing.T) {
	out, err := NewReportGenerator(logging.NewMockLogger()).GenerateReport(sampleReport(), "json")
	require.NoError(t, err)

	var decoded RunReport
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "run-42", decoded.RunID)
	assert.Len(t, decoded.Files, 4)
	assert.Equal(t, 120, decoded.PositionsByLevel["Lisans"])
}

func TestReportGenerator_YAML(t *testing.T) {
	out, err := NewReportGenerator(logging.NewMockLogger()).GenerateReport(sampleReport(), "yaml")
	require.NoError(t, err)

	var decoded RunReport
	require.NoError(t, yaml.Unmarshal(out, &decoded))
	assert.Equal(t, 300, decoded.TotalQualifications)
	assert.Equal(t, "6225", decoded.Conflicts[0].Code)
}

func TestReportGenerator_UnsupportedFormat(t *testing.T) {
	_, err := NewReportGenerator(logging.NewMockLogger()).GenerateReport(sampleReport(), "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported report format: xml")
}

func TestRunReport_Status(t *testing.T) {
	r := sampleReport()
	assert.Equal(t, 2, r.CountStatus(models.FileStatusOK))
	assert.True(t, r.Failed())

	empty := NewRunReport("x", time.Now())
	assert.False(t, empty.Failed())
}
