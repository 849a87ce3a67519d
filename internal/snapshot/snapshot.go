// Package snapshot holds the immutable result of one pipeline run. A
// Snapshot is built once and then only read; refreshing the data means
// building a new Snapshot and swapping the reference.
package snapshot

import (
	"sort"
	"time"

	"kpss-tercih/internal/models"

	"github.com/google/uuid"
)

// Snapshot is the pair of collections produced by a run. All accessors
// return copies, so callers cannot mutate shared state.
type Snapshot struct {
	runID          string
	createdAt      time.Time
	qualifications []models.Qualification
	positions      []models.Position
	byCode         map[string]int
}

// New builds a snapshot from merged collections. The slices are copied and
// a missing code list becomes an empty one. An empty runID is replaced by a
// fresh UUID.
func New(qualifications []models.Qualification, positions []models.Position, runID string) *Snapshot {
	if runID == "" {
		runID = uuid.NewString()
	}
	s := &Snapshot{
		runID:          runID,
		createdAt:      time.Now().UTC(),
		qualifications: make([]models.Qualification, len(qualifications)),
		positions:      make([]models.Position, len(positions)),
		byCode:         make(map[string]int, len(qualifications)),
	}
	copy(s.qualifications, qualifications)
	for i, p := range positions {
		p.QualificationCodes = append([]string{}, p.QualificationCodes...)
		s.positions[i] = p
	}
	for i, q := range s.qualifications {
		if _, seen := s.byCode[q.Code]; !seen {
			s.byCode[q.Code] = i
		}
	}
	return s
}

// RunID identifies the run that produced the snapshot.
func (s *Snapshot) RunID() string { return s.runID }

// CreatedAt is when the snapshot was built (or loaded from its manifest).
func (s *Snapshot) CreatedAt() time.Time { return s.createdAt }

// Qualifications returns a copy of the qualification collection.
func (s *Snapshot) Qualifications() []models.Qualification {
	out := make([]models.Qualification, len(s.qualifications))
	copy(out, s.qualifications)
	return out
}

// Positions returns a copy of the position collection.
func (s *Snapshot) Positions() []models.Position {
	out := make([]models.Position, len(s.positions))
	for i, p := range s.positions {
		p.QualificationCodes = append([]string{}, p.QualificationCodes...)
		out[i] = p
	}
	return out
}

// Qualification looks up one qualification by code.
func (s *Snapshot) Qualification(code string) (models.Qualification, bool) {
	i, ok := s.byCode[code]
	if !ok {
		return models.Qualification{}, false
	}
	return s.qualifications[i], true
}

// Counts returns the number of qualifications and positions per level.
func (s *Snapshot) Counts() (qualifications, positions map[models.EducationLevel]int) {
	qualifications = make(map[models.EducationLevel]int)
	positions = make(map[models.EducationLevel]int)
	for _, q := range s.qualifications {
		qualifications[q.EducationLevel]++
	}
	for _, p := range s.positions {
		positions[p.EducationLevel]++
	}
	return qualifications, positions
}

// Meta is the filter metadata a search front end needs.
type Meta struct {
	Cities          []string               `json:"cities"`
	EducationLevels []string               `json:"educationLevels"`
	Qualifications  []models.Qualification `json:"qualifications"`
}

// Meta returns the distinct cities and levels found in positions, sorted,
// and every qualification sorted by code.
func (s *Snapshot) Meta() Meta {
	cities := make(map[string]struct{})
	levels := make(map[string]struct{})
	for _, p := range s.positions {
		cities[p.City] = struct{}{}
		levels[string(p.EducationLevel)] = struct{}{}
	}

	m := Meta{
		Cities:          sortedKeys(cities),
		EducationLevels: sortedKeys(levels),
		Qualifications:  s.Qualifications(),
	}
	sort.SliceStable(m.Qualifications, func(i, j int) bool {
		return m.Qualifications[i].Code < m.Qualifications[j].Code
	})
	return m
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
