package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"kpss-tercih/internal/logging"
	"kpss-tercih/internal/merger"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs the test in an empty directory with an empty HOME and no
// KPSS_ variables, so only defaults apply.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	for _, key := range []string{
		"KPSS_LOG_LEVEL", "KPSS_LOG_FORMAT", "LOG_LEVEL", "KPSS_CSV_DELIMITER",
		"KPSS_PARSE_WORKERS", "KPSS_PARSE_MERGE_POLICY", "KPSS_OUTPUT_DIR",
		"KPSS_DATABASE_URL", "DATABASE_URL", "KPSS_FETCH_TIMEOUT_SECONDS",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	chdir(t, dir)
	return dir
}

func defaultConfig(t *testing.T) *Config {
	t.Helper()
	v := viper.New()
	setDefaults(v)
	var c Config
	require.NoError(t, v.Unmarshal(&c))
	return &c
}

func TestInitializeConfig_Defaults(t *testing.T) {
	isolate(t)

	config, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "info", config.Log.Level)
	assert.Equal(t, "text", config.Log.Format)
	assert.Equal(t, "./attached_assets", config.Input.Dir)
	assert.Equal(t, "./parsed_data", config.Output.Dir)
	assert.Empty(t, config.Output.PublicDir)
	assert.False(t, config.Output.CSV)
	assert.Equal(t, 4, config.Parse.Workers)
	assert.Equal(t, 2*time.Minute, config.FileTimeout())
	assert.Equal(t, merger.PolicyFirstWins, config.MergePolicy())
	assert.Equal(t, 1.0, config.Parse.ColumnGap)
	assert.Equal(t, "https://www.osym.gov.tr", config.Fetch.BaseURL)
	assert.Equal(t, "dokuman.osym.gov.tr", config.Fetch.DocumentHost)
	assert.Equal(t, time.Minute, config.FetchTimeout())
	assert.Equal(t, filepath.Join("./parsed_data", StateFileName), config.StateFilePath())
	assert.Equal(t, ',', config.Delimiter())
	assert.Empty(t, config.Database.URL)
}

func TestInitializeConfig_EnvironmentVariables(t *testing.T) {
	isolate(t)

	testEnvVars := map[string]string{
		"KPSS_LOG_LEVEL":          "debug",
		"KPSS_LOG_FORMAT":         "json",
		"KPSS_CSV_DELIMITER":      ";",
		"KPSS_PARSE_WORKERS":      "8",
		"KPSS_PARSE_MERGE_POLICY": "last-wins",
		"KPSS_OUTPUT_DIR":         "/tmp/kpss",
		"DATABASE_URL":            "postgres://kpss@localhost/kpss",
	}
	for key, value := range testEnvVars {
		t.Setenv(key, value)
	}

	config, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "debug", config.Log.Level)
	assert.Equal(t, "json", config.Log.Format)
	assert.Equal(t, ';', config.Delimiter())
	assert.Equal(t, 8, config.Parse.Workers)
	assert.Equal(t, merger.PolicyLastWins, config.MergePolicy())
	assert.Equal(t, "/tmp/kpss", config.Output.Dir)
	assert.Equal(t, "postgres://kpss@localhost/kpss", config.Database.URL)
}

func TestInitializeConfig_ConfigFile(t *testing.T) {
	dir := isolate(t)

	configContent := `
log:
  level: "warn"
output:
  dir: "out"
  public_dir: "client/public/data"
  xlsx: true
parse:
  workers: 2
  file_timeout_seconds: 30
vocabulary:
  file: "vocab.yaml"
fetch:
  state_file: "state.json"
csv:
  delimiter: "|"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(configContent), 0600))

	config, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "warn", config.Log.Level)
	assert.Equal(t, "out", config.Output.Dir)
	assert.Equal(t, "client/public/data", config.Output.PublicDir)
	assert.True(t, config.Output.XLSX)
	assert.Equal(t, 2, config.Parse.Workers)
	assert.Equal(t, 30*time.Second, config.FileTimeout())
	assert.Equal(t, "vocab.yaml", config.Vocabulary.File)
	assert.Equal(t, "state.json", config.StateFilePath())
	assert.Equal(t, '|', config.Delimiter())
}

func TestInitializeConfig_HierarchicalPrecedence(t *testing.T) {
	dir := isolate(t)

	configContent := `
log:
  level: "warn"
parse:
  workers: 2
csv:
  delimiter: "|"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(configContent), 0600))
	t.Setenv("KPSS_LOG_LEVEL", "error")
	t.Setenv("KPSS_PARSE_WORKERS", "6")

	config, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "error", config.Log.Level) // env var wins
	assert.Equal(t, 6, config.Parse.Workers)   // env var wins
	assert.Equal(t, "|", config.CSV.Delimiter) // config file value
}

func TestLoad_ExplicitFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("parse:\n  merge_policy: last-wins\n"), 0600))

	config, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, merger.PolicyLastWins, config.MergePolicy())

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidFileValue(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("parse:\n  merge_policy: newest\n"), 0600))

	_, err := InitializeConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown merge policy")
}

func TestValidateConfig_InvalidValues(t *testing.T) {
	tests := []struct {
		name         string
		modifyConfig func(*Config)
		expectError  string
	}{
		{
			name:         "invalid log level",
			modifyConfig: func(c *Config) { c.Log.Level = "invalid" },
			expectError:  "invalid log level",
		},
		{
			name:         "invalid log format",
			modifyConfig: func(c *Config) { c.Log.Format = "xml" },
			expectError:  "invalid log format",
		},
		{
			name:         "invalid CSV delimiter",
			modifyConfig: func(c *Config) { c.CSV.Delimiter = "abc" },
			expectError:  "CSV delimiter must be a single character",
		},
		{
			name:         "no workers",
			modifyConfig: func(c *Config) { c.Parse.Workers = 0 },
			expectError:  "parse.workers must be between 1 and 256",
		},
		{
			name:         "zero file timeout",
			modifyConfig: func(c *Config) { c.Parse.FileTimeoutSeconds = 0 },
			expectError:  "parse.file_timeout_seconds must be at least 1",
		},
		{
			name:         "unknown merge policy",
			modifyConfig: func(c *Config) { c.Parse.MergePolicy = "random" },
			expectError:  "unknown merge policy",
		},
		{
			name:         "non-positive column gap",
			modifyConfig: func(c *Config) { c.Parse.ColumnGap = 0 },
			expectError:  "parse.column_gap must be positive",
		},
		{
			name:         "fetch timeout out of range",
			modifyConfig: func(c *Config) { c.Fetch.TimeoutSeconds = 3600 },
			expectError:  "fetch.timeout_seconds must be between 1 and 600",
		},
		{
			name:         "empty output dir",
			modifyConfig: func(c *Config) { c.Output.Dir = "" },
			expectError:  "output.dir must not be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := defaultConfig(t)
			require.NoError(t, validateConfig(config))

			tt.modifyConfig(config)
			err := validateConfig(config)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectError)
		})
	}
}

func TestValidateConfig_MultiByteDelimiter(t *testing.T) {
	config := defaultConfig(t)
	config.CSV.Delimiter = "§"
	assert.NoError(t, validateConfig(config))
	assert.Equal(t, '§', config.Delimiter())
}

func TestNewLogger(t *testing.T) {
	config := defaultConfig(t)
	config.Log.Level = "debug"
	config.Log.Format = "json"

	adapter, ok := NewLogger(config).(*logging.LogrusAdapter)
	require.True(t, ok)
	assert.Equal(t, "debug", adapter.Level().String())
}

func TestLoadEnvFrom(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("KPSS_TEST_FROM_DOTENV", "")
	require.NoError(t, os.Unsetenv("KPSS_TEST_FROM_DOTENV"))

	file, err := loadEnvFrom(dir)
	require.NoError(t, err)
	assert.Empty(t, file)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("KPSS_TEST_FROM_DOTENV=yes\n"), 0600))
	file, err = loadEnvFrom(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ".env"), file)
	assert.Equal(t, "yes", os.Getenv("KPSS_TEST_FROM_DOTENV"))
}
