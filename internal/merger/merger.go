// Package merger folds the per-file parse results into the final
// qualification and position collections.
package merger

import (
	"fmt"
	"strings"

	"kpss-tercih/internal/logging"
	"kpss-tercih/internal/models"
	"kpss-tercih/internal/parsererror"
)

// Policy decides which record survives when a qualification code is defined
// by more than one bulletin.
type Policy string

const (
	// PolicyFirstWins keeps the first occurrence. Earlier files are the
	// generic level bulletins, which carry the canonical wording.
	PolicyFirstWins Policy = "first-wins"
	PolicyLastWins  Policy = "last-wins"
)

// ParsePolicy validates a policy name. The empty string selects PolicyFirstWins.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyFirstWins:
		return PolicyFirstWins, nil
	case PolicyLastWins:
		return PolicyLastWins, nil
	}
	return "", fmt.Errorf("unknown merge policy %q (want %s or %s)", s, PolicyFirstWins, PolicyLastWins)
}

// QualificationBatch is the output of one qualification bulletin.
type QualificationBatch struct {
	Source  string
	Records []models.Qualification
}

// PositionBatch is the output of one position table.
type PositionBatch struct {
	Source  string
	Records []models.Position
}

// Result holds the merged collections.
type Result struct {
	Qualifications     []models.Qualification
	Positions          []models.Position
	Conflicts          []*parsererror.RecordConflict
	DuplicateOsymCodes int
}

// Merger is a deterministic fold over batches in the order given.
type Merger struct {
	policy Policy
	logger logging.Logger
}

// New creates a Merger. An empty policy means PolicyFirstWins.
func New(policy Policy, logger logging.Logger) *Merger {
	if policy == "" {
		policy = PolicyFirstWins
	}
	return &Merger{policy: policy, logger: logger}
}

// Policy returns the configured policy.
func (m *Merger) Policy() Policy {
	return m.policy
}

type slot struct {
	rec    models.Qualification
	source string
}

// Merge deduplicates qualifications by code and concatenates positions.
// Qualifications keep the order in which their code first appeared; the
// record kept for a code depends on the policy. Every duplicate with a
// different description is returned as a conflict and logged.
func (m *Merger) Merge(qualBatches []QualificationBatch, posBatches []PositionBatch) Result {
	var res Result

	index := make(map[string]int)
	var slots []slot
	for _, batch := range qualBatches {
		for _, q := range batch.Records {
			i, seen := index[q.Code]
			if !seen {
				index[q.Code] = len(slots)
				slots = append(slots, slot{rec: q, source: batch.Source})
				continue
			}
			prev := slots[i]
			if prev.rec.Description != q.Description {
				conflict := &parsererror.RecordConflict{Code: q.Code}
				if m.policy == PolicyLastWins {
					conflict.Kept, conflict.KeptFrom = q.Description, batch.Source
					conflict.Dropped, conflict.DropFrom = prev.rec.Description, prev.source
				} else {
					conflict.Kept, conflict.KeptFrom = prev.rec.Description, prev.source
					conflict.Dropped, conflict.DropFrom = q.Description, batch.Source
				}
				res.Conflicts = append(res.Conflicts, conflict)
				m.logger.Warn("Conflicting qualification definitions",
					logging.F(logging.FieldCode, q.Code),
					logging.F("kept_from", conflict.KeptFrom),
					logging.F("dropped_from", conflict.DropFrom),
					logging.F("policy", string(m.policy)))
			}
			if m.policy == PolicyLastWins {
				slots[i] = slot{rec: q, source: batch.Source}
			}
		}
	}
	res.Qualifications = make([]models.Qualification, len(slots))
	for i, s := range slots {
		res.Qualifications[i] = s.rec
	}

	osymSeen := make(map[string]string)
	for _, batch := range posBatches {
		for _, p := range batch.Records {
			if first, dup := osymSeen[p.OsymCode]; dup {
				res.DuplicateOsymCodes++
				m.logger.Debug("Duplicate osym code",
					logging.F(logging.FieldOsymCode, p.OsymCode),
					logging.F("first_seen_in", first),
					logging.F(logging.FieldFile, batch.Source))
			} else {
				osymSeen[p.OsymCode] = batch.Source
			}
			res.Positions = append(res.Positions, p)
		}
	}

	m.logger.Info("Merged bulletin records",
		logging.F("qualifications", len(res.Qualifications)),
		logging.F("positions", len(res.Positions)),
		logging.F(logging.FieldConflicts, len(res.Conflicts)))
	return res
}
