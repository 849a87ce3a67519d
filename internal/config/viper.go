// Package config provides Viper-based hierarchical configuration management
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"kpss-tercih/internal/merger"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. KPSS_PARSE_WORKERS.
const EnvPrefix = "KPSS"

// StateFileName is the default name of the fetch state file.
const StateFileName = ".update-state.json"

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Input struct {
		Dir string `mapstructure:"dir" yaml:"dir"`
	} `mapstructure:"input" yaml:"input"`

	Output struct {
		Dir       string `mapstructure:"dir" yaml:"dir"`
		PublicDir string `mapstructure:"public_dir" yaml:"public_dir"`
		CSV       bool   `mapstructure:"csv" yaml:"csv"`
		XLSX      bool   `mapstructure:"xlsx" yaml:"xlsx"`
	} `mapstructure:"output" yaml:"output"`

	Parse struct {
		Workers            int     `mapstructure:"workers" yaml:"workers"`
		FileTimeoutSeconds int     `mapstructure:"file_timeout_seconds" yaml:"file_timeout_seconds"`
		MergePolicy        string  `mapstructure:"merge_policy" yaml:"merge_policy"`
		ColumnGap          float64 `mapstructure:"column_gap" yaml:"column_gap"`
	} `mapstructure:"parse" yaml:"parse"`

	Vocabulary struct {
		File string `mapstructure:"file" yaml:"file"`
	} `mapstructure:"vocabulary" yaml:"vocabulary"`

	Fetch struct {
		BaseURL        string `mapstructure:"base_url" yaml:"base_url"`
		IndexPath      string `mapstructure:"index_path" yaml:"index_path"`
		DocumentHost   string `mapstructure:"document_host" yaml:"document_host"`
		UserAgent      string `mapstructure:"user_agent" yaml:"user_agent"`
		TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
		StateFile      string `mapstructure:"state_file" yaml:"state_file"`
	} `mapstructure:"fetch" yaml:"fetch"`

	Database struct {
		URL string `mapstructure:"url" yaml:"-"` // credentials never serialized
	} `mapstructure:"database" yaml:"database"`

	CSV struct {
		Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
	} `mapstructure:"csv" yaml:"csv"`
}

// InitializeConfig initializes Viper configuration with hierarchical loading
// from the standard locations.
func InitializeConfig() (*Config, error) {
	return Load("")
}

// Load builds the configuration. A non-empty configFile replaces the search
// of the standard locations and must exist.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.kpss-tercih")
		v.AddConfigPath(".kpss-tercih")
		v.AddConfigPath(".")
	}

	// 3. Environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 4. Read config file (optional unless given explicitly)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configFile != "" {
			return nil, fmt.Errorf("error reading config file %s: %w", v.ConfigFileUsed(), err)
		}
	}

	// 5. Unprefixed variables kept from the deployment scripts
	if err := v.BindEnv("database.url", "KPSS_DATABASE_URL", "DATABASE_URL"); err != nil {
		return nil, fmt.Errorf("failed to bind DATABASE_URL: %w", err)
	}
	if err := v.BindEnv("log.level", "KPSS_LOG_LEVEL", "LOG_LEVEL"); err != nil {
		return nil, fmt.Errorf("failed to bind LOG_LEVEL: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 6. Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("input.dir", "./attached_assets")

	v.SetDefault("output.dir", "./parsed_data")
	v.SetDefault("output.public_dir", "")
	v.SetDefault("output.csv", false)
	v.SetDefault("output.xlsx", false)

	v.SetDefault("parse.workers", 4)
	v.SetDefault("parse.file_timeout_seconds", 120)
	v.SetDefault("parse.merge_policy", string(merger.PolicyFirstWins))
	v.SetDefault("parse.column_gap", 1.0)

	v.SetDefault("vocabulary.file", "")

	v.SetDefault("fetch.base_url", "https://www.osym.gov.tr")
	v.SetDefault("fetch.index_path", "/TR,32935/2025.html")
	v.SetDefault("fetch.document_host", "dokuman.osym.gov.tr")
	v.SetDefault("fetch.user_agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")
	v.SetDefault("fetch.timeout_seconds", 60)
	v.SetDefault("fetch.state_file", "")

	v.SetDefault("database.url", "")

	v.SetDefault("csv.delimiter", ",")
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if len([]rune(config.CSV.Delimiter)) != 1 {
		return fmt.Errorf("CSV delimiter must be a single character, got: %s", config.CSV.Delimiter)
	}

	if config.Parse.Workers < 1 || config.Parse.Workers > 256 {
		return fmt.Errorf("parse.workers must be between 1 and 256, got: %d", config.Parse.Workers)
	}

	if config.Parse.FileTimeoutSeconds < 1 {
		return fmt.Errorf("parse.file_timeout_seconds must be at least 1, got: %d", config.Parse.FileTimeoutSeconds)
	}

	if _, err := merger.ParsePolicy(config.Parse.MergePolicy); err != nil {
		return err
	}

	if config.Parse.ColumnGap <= 0 {
		return fmt.Errorf("parse.column_gap must be positive, got: %g", config.Parse.ColumnGap)
	}

	if config.Fetch.TimeoutSeconds < 1 || config.Fetch.TimeoutSeconds > 600 {
		return fmt.Errorf("fetch.timeout_seconds must be between 1 and 600, got: %d", config.Fetch.TimeoutSeconds)
	}

	if config.Output.Dir == "" {
		return fmt.Errorf("output.dir must not be empty")
	}

	return nil
}

// FileTimeout is the per-file decode budget.
func (c *Config) FileTimeout() time.Duration {
	return time.Duration(c.Parse.FileTimeoutSeconds) * time.Second
}

// FetchTimeout is the HTTP client timeout.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}

// Delimiter returns the CSV delimiter as a rune.
func (c *Config) Delimiter() rune {
	r := []rune(c.CSV.Delimiter)
	if len(r) == 0 {
		return ','
	}
	return r[0]
}

// MergePolicy returns the validated merge policy.
func (c *Config) MergePolicy() merger.Policy {
	p, err := merger.ParsePolicy(c.Parse.MergePolicy)
	if err != nil {
		return merger.PolicyFirstWins
	}
	return p
}

// StateFilePath is fetch.state_file, or StateFileName inside output.dir.
func (c *Config) StateFilePath() string {
	if c.Fetch.StateFile != "" {
		return c.Fetch.StateFile
	}
	return filepath.Join(c.Output.Dir, StateFileName)
}
