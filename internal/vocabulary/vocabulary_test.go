package vocabulary

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"kpss-tercih/internal/logging"
	"kpss-tercih/internal/models"
	"kpss-tercih/internal/parsererror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	v := Default()
	require.NotNil(t, v)
	assert.Len(t, v.Cities, 81)
	assert.Equal(t, []string{"SÖZLEŞMELİ PERSONEL", "MEMUR", "İŞÇİ"}, v.EmploymentTypes)
	assert.True(t, v.IsCity("İSTANBUL"))
	assert.True(t, v.IsCity("IĞDIR"))
	assert.False(t, v.IsCity("ISTANBUL"))

	code, ok := v.GenericCode(models.LevelAssociate)
	assert.True(t, ok)
	assert.Equal(t, "3001", code)
	_, ok = v.GenericCode(models.LevelSpecial)
	assert.False(t, ok)
}

func TestCitiesAreUniqueAndUpperCase(t *testing.T) {
	seen := map[string]bool{}
	for _, c := range Cities {
		assert.False(t, seen[c], "duplicate city %s", c)
		seen[c] = true
		assert.NotContains(t, c, "i", "city %s must use Turkish capitals", c)
	}
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cities  []string
		types   []string
		generic map[models.EducationLevel]string
	}{
		{"no cities", []string{" "}, EmploymentTypes, GenericCodes},
		{"no employment types", Cities, nil, GenericCodes},
		{"duplicate city", []string{"VAN", "VAN"}, EmploymentTypes, GenericCodes},
		{"bad generic code", Cities, EmploymentTypes, map[models.EducationLevel]string{models.LevelBachelor: "9001"}},
		{"bad level", Cities, EmploymentTypes, map[models.EducationLevel]string{"Doktora": "4001"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cities, tt.types, tt.generic)
			var ve *parsererror.ValidationError
			assert.True(t, errors.As(err, &ve), "got %v", err)
		})
	}
}

func TestParse_Override(t *testing.T) {
	data := []byte(`
employment_types:
  - SÖZLEŞMELİ PERSONEL
  - MEMUR
  - İŞÇİ
  - KADROLU
generic_codes:
  lisans: "4001"
  onlisans: "3001"
`)
	v, err := Parse(data, "test.yaml", logging.NewMockLogger())
	require.NoError(t, err)
	assert.Len(t, v.Cities, 81)
	assert.Equal(t, "KADROLU", v.EmploymentTypes[3])
	_, ok := v.GenericCode(models.LevelSecondary)
	assert.False(t, ok)
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte("cities: [unterminated"), "bad.yaml", logging.NewMockLogger())
	assert.Error(t, err)

	_, err = Parse([]byte("generic_codes:\n  doktora: \"4001\"\n"), "bad.yaml", logging.NewMockLogger())
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	logger := logging.NewMockLogger()

	v, err := Load("", logger)
	require.NoError(t, err)
	assert.Len(t, v.Cities, 81)

	v, err = Load(filepath.Join(t.TempDir(), "missing.yaml"), logger)
	require.NoError(t, err)
	assert.Len(t, v.Cities, 81)
	assert.Len(t, logger.EntriesByLevel("WARN"), 1)

	path := filepath.Join(t.TempDir(), "vocabulary.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cities: [ANKARA, VAN]\n"), 0600))
	v, err = Load(path, logger)
	require.NoError(t, err)
	assert.Equal(t, []string{"ANKARA", "VAN"}, v.Cities)
	assert.False(t, v.IsCity("ADANA"))
}
