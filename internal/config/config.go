package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"kpss-tercih/internal/logging"

	"github.com/joho/godotenv"
)

var (
	envOnce sync.Once
	envFile string
	envErr  error
)

// LoadEnv loads environment variables from a .env file in the working
// directory or its parent, once per process. Variables already set win. It
// returns the file loaded, or "" when there is none.
func LoadEnv() (string, error) {
	envOnce.Do(func() {
		envFile, envErr = loadEnvFrom(".")
	})
	return envFile, envErr
}

func loadEnvFrom(dir string) (string, error) {
	for _, candidate := range []string{filepath.Join(dir, ".env"), filepath.Join(dir, "..", ".env")} {
		if _, err := os.Stat(candidate); err != nil {
			continue
		}
		if err := godotenv.Load(candidate); err != nil {
			return "", fmt.Errorf("error loading %s: %w", candidate, err)
		}
		return candidate, nil
	}
	return "", nil
}

// NewLogger configures logging based on the Config struct.
func NewLogger(c *Config) logging.Logger {
	return logging.NewLogrusAdapter(c.Log.Level, c.Log.Format)
}
