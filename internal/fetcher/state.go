package fetcher

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"kpss-tercih/internal/fileutils"
	"kpss-tercih/internal/models"
)

// State remembers what the last successful update downloaded.
type State struct {
	LastUpdate   string            `json:"lastUpdate"`
	LastGuideURL string            `json:"lastGuideUrl"`
	FileHashes   map[string]string `json:"fileHashes"`
}

// LoadState reads the state file. A missing or unreadable file yields an
// empty state, as if nothing had been fetched yet.
func LoadState(path string) State {
	empty := State{FileHashes: map[string]string{}}
	data, err := os.ReadFile(path) // #nosec G304 -- state file path comes from configuration
	if err != nil {
		return empty
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return empty
	}
	if st.FileHashes == nil {
		st.FileHashes = map[string]string{}
	}
	return st
}

// SaveState writes st to path as indented JSON.
func SaveState(path string, st State) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(st); err != nil {
		return fmt.Errorf("failed to encode update state: %w", err)
	}
	if err := fileutils.WriteFile(path, buf.Bytes(), models.PermissionConfigFile); err != nil {
		return fmt.Errorf("failed to write update state: %w", err)
	}
	return nil
}

// ChangedFiles lists, sorted, the files of next whose hash differs from prev
// or that prev does not know.
func ChangedFiles(prev, next map[string]string) []string {
	var changed []string
	for name, hash := range next {
		if prev[name] != hash {
			changed = append(changed, name)
		}
	}
	sort.Strings(changed)
	return changed
}
