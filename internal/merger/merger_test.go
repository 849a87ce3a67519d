package merger

import (
	"testing"

	"kpss-tercih/internal/logging"
	"kpss-tercih/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func q(code, desc string, level models.EducationLevel) models.Qualification {
	return models.Qualification{Code: code, Description: desc, EducationLevel: level}
}

func sampleBatches() []QualificationBatch {
	return []QualificationBatch{
		{Source: "onlisans_nitelik.pdf", Records: []models.Qualification{
			q("3001", "Herhangi bir önlisans programından mezun olmak.", models.LevelAssociate),
			q("6225", "Bilgisayar işletmeni sertifikasına sahip olmak.", models.LevelAssociate),
		}},
		{Source: "ozel_kosullar.pdf", Records: []models.Qualification{
			q("6225", "MEB onaylı bilgisayar işletmeni sertifikası.", models.LevelSpecial),
			q("7225", "Güvenlik soruşturması olumlu olmak.", models.LevelSpecial),
		}},
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{"", PolicyFirstWins, false},
		{"first-wins", PolicyFirstWins, false},
		{" LAST-WINS ", PolicyLastWins, false},
		{"newest", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePolicy(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMerge_FirstWins(t *testing.T) {
	logger := logging.NewMockLogger()
	res := New(PolicyFirstWins, logger).Merge(sampleBatches(), nil)

	require.Len(t, res.Qualifications, 3)
	assert.Equal(t, []string{"3001", "6225", "7225"}, codes(res.Qualifications))
	assert.Equal(t, "Bilgisayar işletmeni sertifikasına sahip olmak.", res.Qualifications[1].Description)
	assert.Equal(t, models.LevelAssociate, res.Qualifications[1].EducationLevel)

	require.Len(t, res.Conflicts, 1)
	c := res.Conflicts[0]
	assert.Equal(t, "6225", c.Code)
	assert.Equal(t, "onlisans_nitelik.pdf", c.KeptFrom)
	assert.Equal(t, "ozel_kosullar.pdf", c.DropFrom)
	assert.Len(t, logger.EntriesByLevel("WARN"), 1)
}

func TestMerge_LastWins(t *testing.T) {
	res := New(PolicyLastWins, logging.NewMockLogger()).Merge(sampleBatches(), nil)

	require.Len(t, res.Qualifications, 3)
	assert.Equal(t, []string{"3001", "6225", "7225"}, codes(res.Qualifications))
	assert.Equal(t, "MEB onaylı bilgisayar işletmeni sertifikası.", res.Qualifications[1].Description)
	assert.Equal(t, models.LevelSpecial, res.Qualifications[1].EducationLevel)

	require.Len(t, res.Conflicts, 1)
	assert.Equal(t, "ozel_kosullar.pdf", res.Conflicts[0].KeptFrom)
}

func TestMerge_IdenticalDuplicateIsNotAConflict(t *testing.T) {
	batches := []QualificationBatch{
		{Source: "a.pdf", Records: []models.Qualification{q("4001", "Lisans", models.LevelBachelor)}},
		{Source: "b.pdf", Records: []models.Qualification{q("4001", "Lisans", models.LevelBachelor)}},
	}
	res := New("", logging.NewMockLogger()).Merge(batches, nil)
	assert.Len(t, res.Qualifications, 1)
	assert.Empty(t, res.Conflicts)
}

func TestMerge_CodeUniqueness(t *testing.T) {
	for _, policy := range []Policy{PolicyFirstWins, PolicyLastWins} {
		res := New(policy, logging.NewMockLogger()).Merge(sampleBatches(), nil)
		seen := map[string]bool{}
		for _, qual := range res.Qualifications {
			assert.False(t, seen[qual.Code], "duplicate %s under %s", qual.Code, policy)
			seen[qual.Code] = true
		}
	}
}

func TestMerge_PositionsConcatenated(t *testing.T) {
	logger := logging.NewMockLogger()
	posBatches := []PositionBatch{
		{Source: "tablo1_ort.pdf", Records: []models.Position{{OsymCode: "102010101"}, {OsymCode: "102010102"}}},
		{Source: "tablo3_lisans.pdf", Records: []models.Position{{OsymCode: "302010101"}, {OsymCode: "102010101"}}},
	}
	res := New(PolicyFirstWins, logger).Merge(nil, posBatches)

	require.Len(t, res.Positions, 4)
	assert.Equal(t, "102010101", res.Positions[3].OsymCode)
	assert.Equal(t, 1, res.DuplicateOsymCodes)
	assert.Len(t, logger.EntriesByLevel("DEBUG"), 1)
	assert.Empty(t, res.Qualifications)
}

func TestMerge_Deterministic(t *testing.T) {
	m := New(PolicyFirstWins, logging.NewMockLogger())
	assert.Equal(t, m.Merge(sampleBatches(), nil), m.Merge(sampleBatches(), nil))
}

func codes(qs []models.Qualification) []string {
	out := make([]string, len(qs))
	for i, qual := range qs {
		out[i] = qual.Code
	}
	return out
}
