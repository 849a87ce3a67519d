package qualparser

import (
	"testing"

	"kpss-tercih/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		level models.EducationLevel
		want  []models.Qualification
	}{
		{
			name:  "two records with wrapped description",
			text:  "3249 Bilgisayar Programcılığı  önlisans programından mezun olmak  3250 Muhasebe",
			level: models.LevelAssociate,
			want: []models.Qualification{
				{Code: "3249", Description: "Bilgisayar Programcılığı önlisans programından mezun olmak", EducationLevel: models.LevelAssociate},
				{Code: "3250", Description: "Muhasebe", EducationLevel: models.LevelAssociate},
			},
		},
		{
			name:  "noise before first code is ignored",
			text:  "KPSS-2025/9  NİTELİK KODLARI  2001 Ortaöğretim Kurumlarının herhangi bir alanından mezun olmak.",
			level: models.LevelSecondary,
			want: []models.Qualification{
				{Code: "2001", Description: "Ortaöğretim Kurumlarının herhangi bir alanından mezun olmak.", EducationLevel: models.LevelSecondary},
			},
		},
		{
			name:  "page numbers and short fragments are dropped",
			text:  "4001 Herhangi bir lisans  12  programından  b)  mezun olmak.",
			level: models.LevelBachelor,
			want: []models.Qualification{
				{Code: "4001", Description: "Herhangi bir lisans programından mezun olmak.", EducationLevel: models.LevelBachelor},
			},
		},
		{
			name:  "code without description is not emitted",
			text:  "3001  12  7225 MEB onaylı sertifika",
			level: models.LevelSpecial,
			want: []models.Qualification{
				{Code: "7225", Description: "MEB onaylı sertifika", EducationLevel: models.LevelSpecial},
			},
		},
		{
			name:  "description on the following cell",
			text:  "6225\n\nBilgisayar işletmeni sertifikası",
			level: models.LevelSpecial,
			want: []models.Qualification{
				{Code: "6225", Description: "Bilgisayar işletmeni sertifikası", EducationLevel: models.LevelSpecial},
			},
		},
		{
			name:  "empty input",
			text:  "   \n  ",
			level: models.LevelBachelor,
			want:  nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.text, tt.level))
		})
	}
}

func TestParse_FourDigitFragmentOpensRecord(t *testing.T) {
	got := Parse("4001 Herhangi bir lisans  2024 yılında mezun", models.LevelBachelor)
	require.Len(t, got, 2)
	assert.Equal(t, "2024", got[1].Code)
	assert.Equal(t, "yılında mezun", got[1].Description)
}

func TestParse_Idempotent(t *testing.T) {
	text := "3249 Bilgisayar  Programcılığı  3250 Muhasebe  ve Vergi"
	assert.Equal(t, Parse(text, models.LevelAssociate), Parse(text, models.LevelAssociate))
}

func TestParse_EveryRecordHasCodeAndDescription(t *testing.T) {
	text := "1001  2002  x  3003 A  4004 Bir açıklama  5  5005"
	for _, q := range Parse(text, models.LevelBachelor) {
		assert.Len(t, q.Code, 4)
		assert.NotEmpty(t, q.Description)
	}
}

func TestParse_DescriptionWrappedOnSingleNewline(t *testing.T) {
	got := Parse("3249 Bilgisayar Programcılığı\nönlisans programından mezun olmak.  3250 Muhasebe", models.LevelAssociate)

	require.Len(t, got, 2)
	assert.Equal(t, "3249", got[0].Code)
	assert.Equal(t, "Bilgisayar Programcılığı önlisans programından mezun olmak.", got[0].Description)
	assert.Equal(t, "3250", got[1].Code)
}
