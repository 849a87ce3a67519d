// Package qualparser reads qualification-code bulletins. These list a
// 4-digit code followed by a free-text description that may wrap over
// several text rows.
package qualparser

import (
	"regexp"
	"strings"

	"kpss-tercih/internal/models"
	"kpss-tercih/internal/textutils"
)

var (
	// two or more white-space characters separate table cells and rows
	cellSeparator = regexp.MustCompile(`[\s\p{Zs}]{2,}`)

	// (?s) keeps a description that wraps on a single newline inside one
	// cell in the same record instead of dropping the code.
	codeStart = regexp.MustCompile(`(?s)^(\d{4})\s*(.*)$`)
)

// minFragmentRunes is the shortest continuation fragment kept; shorter ones
// are page numbers, column letters and similar noise.
const minFragmentRunes = 3

// Parse returns the qualifications found in text, in document order, all
// tagged with level. A record is emitted only when both its code and its
// description are non-empty.
//
// A token opening with four digits always starts a new record, so a
// description fragment that happens to begin with a year or a four-digit
// number is read as a new code.
func Parse(text string, level models.EducationLevel) []models.Qualification {
	var out []models.Qualification
	var code string
	var desc strings.Builder

	flush := func() {
		d := textutils.CollapseSpaces(desc.String())
		if code != "" && d != "" {
			out = append(out, models.Qualification{Code: code, Description: d, EducationLevel: level})
		}
	}

	for _, part := range cellSeparator.Split(text, -1) {
		token := strings.TrimSpace(part)
		if token == "" {
			continue
		}
		if m := codeStart.FindStringSubmatch(token); m != nil {
			flush()
			code = m[1]
			desc.Reset()
			desc.WriteString(m[2])
			continue
		}
		if code == "" || len([]rune(token)) < minFragmentRunes || textutils.IsDigits(token) {
			continue
		}
		desc.WriteByte(' ')
		desc.WriteString(token)
	}
	flush()
	return out
}
