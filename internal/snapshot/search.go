package snapshot

import (
	"fmt"
	"strings"

	"kpss-tercih/internal/models"
	"kpss-tercih/internal/textutils"
	"kpss-tercih/internal/vocabulary"
)

// Words that, anywhere in a filter list, switch that filter off.
var (
	allCityWords = []string{"all", "tümü", "tüm şehirler"}
	allCodeWords = []string{"all", "tümü"}
)

// Query filters positions. EducationLevel is required; empty Cities or Codes
// mean no filter on that field.
type Query struct {
	EducationLevel models.EducationLevel
	Cities         []string
	Codes          []string
	Text           string
	Limit          int
	Offset         int
}

// Match is one search hit with its qualification codes resolved.
type Match struct {
	models.Position
	Qualifications []models.Qualification `json:"qualifications"`
}

// SearchResult is a page of hits plus the total before paging.
type SearchResult struct {
	Total   int     `json:"total"`
	Matches []Match `json:"matches"`
}

// Search returns the positions of q.EducationLevel that are in one of
// q.Cities and, when codes are given, list one of q.Codes or the level's
// generic code from vocab. Text, if set, must occur in the institution or
// the title. Hits keep snapshot order.
func (s *Snapshot) Search(q Query, vocab *vocabulary.Vocabulary) (SearchResult, error) {
	if !q.EducationLevel.Valid() {
		return SearchResult{}, fmt.Errorf("education level is required")
	}
	if q.Limit < 0 || q.Offset < 0 {
		return SearchResult{}, fmt.Errorf("limit and offset must not be negative")
	}
	if vocab == nil {
		vocab = vocabulary.Default()
	}

	cities := cityFilter(q.Cities)
	codes := codeFilter(q.Codes, q.EducationLevel, vocab)
	text := textutils.LowerTR(strings.TrimSpace(q.Text))

	res := SearchResult{Matches: []Match{}}
	for _, p := range s.positions {
		if p.EducationLevel != q.EducationLevel {
			continue
		}
		if cities != nil {
			if _, ok := cities[textutils.UpperTR(p.City)]; !ok {
				continue
			}
		}
		if codes != nil && !anyCode(p.QualificationCodes, codes) {
			continue
		}
		if text != "" &&
			!strings.Contains(textutils.LowerTR(p.Institution), text) &&
			!strings.Contains(textutils.LowerTR(p.Title), text) {
			continue
		}

		res.Total++
		if res.Total <= q.Offset || (q.Limit > 0 && len(res.Matches) >= q.Limit) {
			continue
		}
		res.Matches = append(res.Matches, s.resolve(p))
	}
	return res, nil
}

func (s *Snapshot) resolve(p models.Position) Match {
	m := Match{Position: p, Qualifications: []models.Qualification{}}
	m.QualificationCodes = append([]string{}, p.QualificationCodes...)
	for _, code := range p.QualificationCodes {
		if q, ok := s.Qualification(code); ok {
			m.Qualifications = append(m.Qualifications, q)
		}
	}
	return m
}

// cityFilter returns nil when every city is wanted.
func cityFilter(cities []string) map[string]struct{} {
	if len(cities) == 0 || containsAny(cities, allCityWords) {
		return nil
	}
	set := make(map[string]struct{}, len(cities))
	for _, c := range cities {
		set[textutils.UpperTR(strings.TrimSpace(c))] = struct{}{}
	}
	return set
}

// codeFilter returns nil when no code filter applies.
func codeFilter(codes []string, level models.EducationLevel, vocab *vocabulary.Vocabulary) map[string]struct{} {
	if len(codes) == 0 || containsAny(codes, allCodeWords) {
		return nil
	}
	set := make(map[string]struct{}, len(codes)+1)
	for _, c := range codes {
		set[strings.TrimSpace(c)] = struct{}{}
	}
	if generic, ok := vocab.GenericCode(level); ok {
		set[generic] = struct{}{}
	}
	return set
}

func containsAny(values, words []string) bool {
	for _, v := range values {
		v = textutils.LowerTR(strings.TrimSpace(v))
		for _, w := range words {
			if v == w {
				return true
			}
		}
	}
	return false
}

func anyCode(codes []string, want map[string]struct{}) bool {
	for _, c := range codes {
		if _, ok := want[c]; ok {
			return true
		}
	}
	return false
}
