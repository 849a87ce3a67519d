// Package models holds the records produced by the bulletin pipeline.
package models

import (
	"fmt"
	"regexp"
	"strings"

	"kpss-tercih/internal/textutils"
)

// EducationLevel is the closed set of levels a bulletin belongs to.
type EducationLevel string

const (
	LevelSecondary  EducationLevel = "Ortaöğretim"
	LevelAssociate  EducationLevel = "Önlisans"
	LevelBachelor   EducationLevel = "Lisans"
	LevelSpecial    EducationLevel = "Special"
	LevelUnassigned EducationLevel = ""
)

// EducationLevels lists every level in bulletin order.
var EducationLevels = []EducationLevel{LevelSecondary, LevelAssociate, LevelBachelor, LevelSpecial}

// ParseEducationLevel accepts a level label in any case, with or without
// Turkish letters ("ONLISANS", "Önlisans", "ozel").
func ParseEducationLevel(s string) (EducationLevel, error) {
	switch textutils.FoldASCII(strings.TrimSpace(s)) {
	case "ortaogretim", "ortaogr":
		return LevelSecondary, nil
	case "onlisans":
		return LevelAssociate, nil
	case "lisans":
		return LevelBachelor, nil
	case "special", "ozel":
		return LevelSpecial, nil
	}
	return LevelUnassigned, fmt.Errorf("unknown education level %q", s)
}

func (l EducationLevel) String() string {
	return string(l)
}

// Valid reports whether l is one of the known levels.
func (l EducationLevel) Valid() bool {
	for _, known := range EducationLevels {
		if l == known {
			return true
		}
	}
	return false
}

// BulletinKind tells which parser a bulletin is routed to.
type BulletinKind string

const (
	KindUnclassified  BulletinKind = "unclassified"
	KindQualification BulletinKind = "qualification"
	KindPosition      BulletinKind = "position"
)

// Qualification is one row of a qualification-code table.
type Qualification struct {
	Code           string         `json:"code" csv:"code"`
	Description    string         `json:"description" csv:"description"`
	EducationLevel EducationLevel `json:"educationLevel" csv:"educationLevel"`
}

// Position is one row of a position table.
type Position struct {
	OsymCode           string         `json:"osymCode"`
	SecondaryCode      string         `json:"sbbCode,omitempty"`
	Institution        string         `json:"institution"`
	EmploymentType     string         `json:"employmentType,omitempty"`
	Title              string         `json:"title"`
	City               string         `json:"city"`
	Quota              int            `json:"quota"`
	QualificationCodes []string       `json:"qualificationCodes"`
	EducationLevel     EducationLevel `json:"educationLevel"`
}

var osymCodePattern = regexp.MustCompile(`^[123]\d{8}$`)

// ValidOsymCode reports whether code has the 9-digit ÖSYM shape.
func ValidOsymCode(code string) bool {
	return osymCodePattern.MatchString(code)
}

// Validate checks the invariants every emitted position holds.
func (p Position) Validate() error {
	switch {
	case !ValidOsymCode(p.OsymCode):
		return fmt.Errorf("position %q: malformed osym code", p.OsymCode)
	case strings.TrimSpace(p.Institution) == "":
		return fmt.Errorf("position %s: empty institution", p.OsymCode)
	case strings.TrimSpace(p.Title) == "":
		return fmt.Errorf("position %s: empty title", p.OsymCode)
	case strings.TrimSpace(p.City) == "":
		return fmt.Errorf("position %s: empty city", p.OsymCode)
	case p.Quota < 1:
		return fmt.Errorf("position %s: quota %d below 1", p.OsymCode, p.Quota)
	}
	seen := make(map[string]struct{}, len(p.QualificationCodes))
	for _, c := range p.QualificationCodes {
		if _, dup := seen[c]; dup {
			return fmt.Errorf("position %s: duplicate qualification code %s", p.OsymCode, c)
		}
		seen[c] = struct{}{}
	}
	return nil
}
