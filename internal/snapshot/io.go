package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"kpss-tercih/internal/fileutils"
	"kpss-tercih/internal/models"
)

// ManifestFile describes the run that produced the JSON files next to it.
const ManifestFile = "manifest.json"

// Manifest is the content of ManifestFile.
type Manifest struct {
	RunID          string    `json:"runId"`
	CreatedAt      time.Time `json:"createdAt"`
	Qualifications int       `json:"qualifications"`
	Positions      int       `json:"positions"`
}

// Write stores the two collections as indented JSON arrays in dir, plus a
// manifest. Each file is replaced atomically.
func (s *Snapshot) Write(dir string) error {
	if err := s.WriteCollections(dir); err != nil {
		return err
	}
	return writeJSON(filepath.Join(dir, ManifestFile), Manifest{
		RunID:          s.runID,
		CreatedAt:      s.createdAt,
		Qualifications: len(s.qualifications),
		Positions:      len(s.positions),
	})
}

// WriteCollections stores only qualifications.json and positions.json, the
// two files static consumers read.
func (s *Snapshot) WriteCollections(dir string) error {
	if err := writeJSON(filepath.Join(dir, models.QualificationsFile), s.qualifications); err != nil {
		return err
	}
	return writeJSON(filepath.Join(dir, models.PositionsFile), s.positions)
}

// Load reads a snapshot previously written with Write. The manifest is
// optional; without it a new run id is assigned.
func Load(dir string) (*Snapshot, error) {
	var quals []models.Qualification
	if err := readJSON(filepath.Join(dir, models.QualificationsFile), &quals); err != nil {
		return nil, err
	}
	var positions []models.Position
	if err := readJSON(filepath.Join(dir, models.PositionsFile), &positions); err != nil {
		return nil, err
	}

	var manifest Manifest
	manifestPath := filepath.Join(dir, ManifestFile)
	if fileutils.FileExists(manifestPath) {
		if err := readJSON(manifestPath, &manifest); err != nil {
			return nil, err
		}
	}

	s := New(quals, positions, manifest.RunID)
	if !manifest.CreatedAt.IsZero() {
		s.createdAt = manifest.CreatedAt
	}
	return s, nil
}

func writeJSON(path string, v interface{}) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	return fileutils.WriteFile(path, buf.Bytes(), models.PermissionReportFile)
}

func readJSON(path string, v interface{}) error {
	data, err := fileutils.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}
