// Package positionparser recovers job-position records from the flattened
// text of a position table. Column alignment does not survive extraction, so
// rows are anchored on the fixed-width code pair that opens every listing and
// fields are bounded by vocabulary matches (employment type, then city).
package positionparser

import (
	"regexp"
	"strconv"
	"strings"

	"kpss-tercih/internal/models"
	"kpss-tercih/internal/parsererror"
	"kpss-tercih/internal/textutils"
	"kpss-tercih/internal/vocabulary"
)

// Rejection reasons, used as keys of Result.Rejected.
const (
	ReasonNoCodePair       = "no_code_pair"
	ReasonNoEmploymentType = "no_employment_type"
	ReasonNoCity           = "no_city"
	ReasonEmptyInstitution = "empty_institution"
	ReasonEmptyTitle       = "empty_title"
	ReasonInvalid          = "invalid"
)

var (
	// "Warning:" lines are emitted into the text layer by some PDF producers;
	// they run up to the next digit or capital letter, which is kept.
	warningArtifact = regexp.MustCompile(`Warning:[^0-9A-Z\n]*([0-9A-Z])`)
	segmentStart    = regexp.MustCompile(`([123]\d{8})\s+(\d{5})\s+`)
	segmentHead     = regexp.MustCompile(`^([123]\d{8})\s+(\d{5})\s+(.*)$`)
	quotaPattern    = regexp.MustCompile(`\s(\d{1,3})\s+[234567]\d{3}`)
)

const snippetRunes = 80

// Result is the outcome of parsing one position table.
type Result struct {
	Positions  []models.Position
	Segments   int
	Rejected   map[string]int
	Rejections []*parsererror.SegmentRejected
}

// RejectedTotal is the number of segments that produced no position.
func (r Result) RejectedTotal() int {
	n := 0
	for _, c := range r.Rejected {
		n += c
	}
	return n
}

// Parser extracts positions using an injected vocabulary. It holds no
// mutable state and is safe for concurrent use.
type Parser struct {
	vocab *vocabulary.Vocabulary
}

// New creates a parser. A nil vocabulary selects vocabulary.Default().
func New(vocab *vocabulary.Vocabulary) *Parser {
	if vocab == nil {
		vocab = vocabulary.Default()
	}
	return &Parser{vocab: vocab}
}

// Parse segments text and extracts one position per well-formed segment,
// tagged with level. Segments missing institution, title or city are dropped
// and counted in Result.Rejected.
func (p *Parser) Parse(text string, level models.EducationLevel) Result {
	res := Result{Rejected: make(map[string]int)}
	clean := Clean(text)

	starts := segmentStart.FindAllStringIndex(clean, -1)
	res.Segments = len(starts)
	for i, loc := range starts {
		end := len(clean)
		if i+1 < len(starts) {
			end = starts[i+1][0]
		}
		segment := strings.TrimSpace(clean[loc[0]:end])

		pos, rej := p.parseSegment(segment, level)
		if rej != nil {
			res.Rejected[rej.Reason]++
			res.Rejections = append(res.Rejections, rej)
			continue
		}
		res.Positions = append(res.Positions, pos)
	}
	return res
}

// Clean strips PDF-library warnings and collapses white space.
func Clean(text string) string {
	for {
		next := warningArtifact.ReplaceAllString(text, "$1")
		if next == text {
			break
		}
		text = next
	}
	return textutils.CollapseSpaces(text)
}

func (p *Parser) parseSegment(segment string, level models.EducationLevel) (models.Position, *parsererror.SegmentRejected) {
	reject := func(code, reason string) (models.Position, *parsererror.SegmentRejected) {
		return models.Position{}, &parsererror.SegmentRejected{
			OsymCode: code,
			Reason:   reason,
			Snippet:  textutils.Snippet(segment, snippetRunes),
		}
	}

	m := segmentHead.FindStringSubmatch(segment)
	if m == nil {
		return reject("", ReasonNoCodePair)
	}
	osymCode, secondaryCode, rest := m[1], m[2], m[3]

	employmentType, institution, afterEmployment := splitOnFirst(rest, p.vocab.EmploymentTypes)
	afterEmployment = strings.TrimSpace(afterEmployment)
	if employmentType == "" {
		return reject(osymCode, ReasonNoEmploymentType)
	}
	if institution == "" {
		return reject(osymCode, ReasonEmptyInstitution)
	}

	city, title, afterCity := splitOnFirst(afterEmployment, p.vocab.Cities)
	if city == "" {
		return reject(osymCode, ReasonNoCity)
	}
	if title == "" {
		return reject(osymCode, ReasonEmptyTitle)
	}

	pos := models.Position{
		OsymCode:           osymCode,
		SecondaryCode:      secondaryCode,
		Institution:        institution,
		EmploymentType:     employmentType,
		Title:              title,
		City:               city,
		Quota:              extractQuota(afterCity),
		QualificationCodes: extractCodes(afterCity),
		EducationLevel:     level,
	}
	if err := pos.Validate(); err != nil {
		return reject(osymCode, ReasonInvalid)
	}
	return pos, nil
}

// splitOnFirst walks tokens in order and stops at the first one found in s
// at a position other than the very start. It returns the token, the trimmed
// text before it and the untouched text after it.
func splitOnFirst(s string, tokens []string) (token, before, after string) {
	for _, tok := range tokens {
		if idx := strings.Index(s, tok); idx > 0 {
			return tok, strings.TrimSpace(s[:idx]), s[idx+len(tok):]
		}
	}
	return "", "", ""
}

func extractCodes(s string) []string {
	var codes []string
	seen := make(map[string]struct{})
	for _, m := range vocabulary.QualificationCodePattern.FindAllStringSubmatch(s, -1) {
		if _, dup := seen[m[1]]; dup {
			continue
		}
		seen[m[1]] = struct{}{}
		codes = append(codes, m[1])
	}
	return codes
}

func extractQuota(s string) int {
	m := quotaPattern.FindStringSubmatch(s)
	if m == nil {
		return 1
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 {
		return 1
	}
	return n
}
