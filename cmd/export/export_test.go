package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"kpss-tercih/internal/config"
	"kpss-tercih/internal/container"
	"kpss-tercih/internal/logging"
	"kpss-tercih/internal/models"
	"kpss-tercih/internal/snapshot"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContainer(t *testing.T, delimiter string) *container.Container {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	chdir(t, dir)
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Output.Dir = filepath.Join(dir, "parsed")
	cfg.CSV.Delimiter = delimiter

	snap := snapshot.New(
		[]models.Qualification{{Code: "4419", Description: "Hukuk lisans programından mezun olmak.", EducationLevel: models.LevelBachelor}},
		[]models.Position{{OsymCode: "302010101", SecondaryCode: "00001", Institution: "ADIYAMAN İL ÖZEL İDARESİ",
			EmploymentType: "MEMUR", Title: "AVUKAT", City: "ADIYAMAN", Quota: 1,
			QualificationCodes: []string{"4419", "7225"}, EducationLevel: models.LevelBachelor}},
		"run-export")
	require.NoError(t, snap.Write(cfg.Output.Dir))

	c, err := container.NewContainer(cfg, container.WithLogger(logging.NewMockLogger()))
	require.NoError(t, err)
	return c
}

func TestRun_DefaultsToBothFormats(t *testing.T) {
	c := newContainer(t, ",")
	var out bytes.Buffer
	require.NoError(t, Run(c, Options{}, &out))

	dir := c.GetConfig().Output.Dir
	assert.FileExists(t, filepath.Join(dir, models.QualificationsCSV))
	assert.FileExists(t, filepath.Join(dir, models.PositionsCSV))
	assert.FileExists(t, filepath.Join(dir, models.WorkbookFile))
	assert.Contains(t, out.String(), "Exported 1 qualifications and 1 positions")
}

func TestRun_CSVOnlyWithDelimiter(t *testing.T) {
	c := newContainer(t, ";")
	target := filepath.Join(t.TempDir(), "exports")
	require.NoError(t, Run(c, Options{CSV: true, Dir: target}, &bytes.Buffer{}))

	assert.NoFileExists(t, filepath.Join(target, models.WorkbookFile))
	data, err := os.ReadFile(filepath.Join(target, models.PositionsCSV))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "302010101;00001;")
	assert.Contains(t, lines[1], "\"4419;7225\"")
}

func TestRun_XLSXOnly(t *testing.T) {
	c := newContainer(t, ",")
	require.NoError(t, Run(c, Options{XLSX: true}, &bytes.Buffer{}))
	dir := c.GetConfig().Output.Dir
	assert.FileExists(t, filepath.Join(dir, models.WorkbookFile))
	assert.NoFileExists(t, filepath.Join(dir, models.PositionsCSV))
}

func TestRun_NoSnapshot(t *testing.T) {
	c := newContainer(t, ",")
	c.GetConfig().Output.Dir = t.TempDir()
	err := Run(c, Options{}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run parse first")
}
