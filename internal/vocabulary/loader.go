package vocabulary

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"kpss-tercih/internal/logging"
	"kpss-tercih/internal/models"

	"gopkg.in/yaml.v3"
)

// File is the YAML layout of a vocabulary override. Omitted lists keep their
// built-in values.
type File struct {
	Cities          []string          `yaml:"cities"`
	EmploymentTypes []string          `yaml:"employment_types"`
	GenericCodes    map[string]string `yaml:"generic_codes"`
}

// FindFile looks for filename in the usual locations: as given, under
// ./config, then under $HOME/.kpss-tercih.
func FindFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err == nil {
			return filename, nil
		}
		return "", os.ErrNotExist
	}

	locations := []string{
		filename,
		filepath.Join("config", filename),
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(homeDir, ".kpss-tercih", filename))
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}
	return "", os.ErrNotExist
}

// Load returns the built-in vocabulary overridden by the YAML file at
// filename. An empty filename, or one that cannot be found, yields the
// defaults; a file that exists but does not parse or validate is an error.
func Load(filename string, logger logging.Logger) (*Vocabulary, error) {
	if filename == "" {
		return Default(), nil
	}

	path, err := FindFile(filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn("Vocabulary file not found, using built-in lists", logging.F(logging.FieldFile, filename))
			return Default(), nil
		}
		return nil, err
	}

	data, err := os.ReadFile(path) // #nosec G304 -- path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("error reading vocabulary file: %w", err)
	}
	return Parse(data, path, logger)
}

// Parse applies the YAML override in data to the built-in vocabulary.
func Parse(data []byte, source string, logger logging.Logger) (*Vocabulary, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("error parsing vocabulary file %s: %w", source, err)
	}

	cities := Cities
	if len(f.Cities) > 0 {
		cities = f.Cities
	}
	employmentTypes := EmploymentTypes
	if len(f.EmploymentTypes) > 0 {
		employmentTypes = f.EmploymentTypes
	}
	genericCodes := GenericCodes
	if len(f.GenericCodes) > 0 {
		genericCodes = make(map[models.EducationLevel]string, len(f.GenericCodes))
		for label, code := range f.GenericCodes {
			level, err := models.ParseEducationLevel(label)
			if err != nil {
				return nil, fmt.Errorf("vocabulary file %s: %w", source, err)
			}
			genericCodes[level] = code
		}
	}

	v, err := New(cities, employmentTypes, genericCodes)
	if err != nil {
		return nil, err
	}
	logger.Debug("Loaded vocabulary",
		logging.F(logging.FieldFile, source),
		logging.F("cities", len(v.Cities)),
		logging.F("employment_types", len(v.EmploymentTypes)))
	return v, nil
}
