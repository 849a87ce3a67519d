package store

import (
	"kpss-tercih/internal/models"
	"kpss-tercih/internal/textutils"
)

// MaxDescriptionRunes caps qualification descriptions in the database.
const MaxDescriptionRunes = 1000

var (
	qualificationColumns = []string{"code", "description", "education_level"}
	positionColumns      = []string{
		"osym_code", "sbb_code", "institution", "employment_type", "title", "city", "quota", "education_level",
	}
	linkColumns = []string{"osym_code", "qualification_code", "ordinal"}
)

// seedRows is the bulk-load input derived from a snapshot.
type seedRows struct {
	qualifications [][]interface{}
	positions      [][]interface{}
	links          [][]interface{}

	duplicatePositions int
	unknownCodes       int
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// buildSeedRows flattens the collections. Qualifications are unique by
// construction; a repeated osym code keeps its first position; links are
// made only to qualification codes that are loaded.
func buildSeedRows(quals []models.Qualification, positions []models.Position) seedRows {
	var rows seedRows

	known := make(map[string]bool, len(quals))
	for _, q := range quals {
		if known[q.Code] {
			continue
		}
		known[q.Code] = true
		rows.qualifications = append(rows.qualifications, []interface{}{
			q.Code, textutils.TruncateRunes(q.Description, MaxDescriptionRunes), string(q.EducationLevel),
		})
	}

	seen := make(map[string]bool, len(positions))
	for _, p := range positions {
		if seen[p.OsymCode] {
			rows.duplicatePositions++
			continue
		}
		seen[p.OsymCode] = true
		rows.positions = append(rows.positions, []interface{}{
			p.OsymCode, nullable(p.SecondaryCode), p.Institution, nullable(p.EmploymentType),
			p.Title, p.City, int32(p.Quota), string(p.EducationLevel),
		})
		for i, code := range p.QualificationCodes {
			if !known[code] {
				rows.unknownCodes++
				continue
			}
			rows.links = append(rows.links, []interface{}{p.OsymCode, code, int32(i + 1)})
		}
	}
	return rows
}
