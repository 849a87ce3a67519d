// Package root contains the root command for the application
package root

import (
	"fmt"
	"unicode/utf8"

	"kpss-tercih/internal/config"
	"kpss-tercih/internal/container"
	"kpss-tercih/internal/logging"

	"github.com/spf13/cobra"
)

// CommonFlags represents the flags that are common to every command
type CommonFlags struct {
	ConfigFile   string
	LogLevel     string
	LogFormat    string
	CSVDelimiter string
	Input        string
	Output       string
}

var (
	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "kpss-tercih",
		Short: "A CLI tool to turn KPSS preference bulletins into searchable data.",
		Long: `kpss-tercih parses the ÖSYM KPSS preference bulletins (PDF) into
qualification and position collections, keeps them up to date from the
ÖSYM site and exports them as JSON, CSV, XLSX or a PostgreSQL database.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if appContainer != nil {
				_ = appContainer.Close()
			}
		},
	}

	// SharedFlags holds the persistent flags accessible to all commands
	SharedFlags = CommonFlags{}

	appContainer     *container.Container
	containerOptions []container.Option
)

// Init initializes the root command and all flags
func Init() {
	flags := Cmd.PersistentFlags()
	flags.StringVar(&SharedFlags.ConfigFile, "config", "", "Config file (default is ./config.yaml or $HOME/.kpss-tercih/config.yaml)")
	flags.StringVar(&SharedFlags.LogLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	flags.StringVar(&SharedFlags.LogFormat, "log-format", "", "Log format (text, json)")
	flags.StringVar(&SharedFlags.CSVDelimiter, "csv-delimiter", "", "Delimiter of exported CSV files")
	flags.StringVarP(&SharedFlags.Input, "input", "i", "", "Directory holding the bulletin PDFs")
	flags.StringVarP(&SharedFlags.Output, "output", "o", "", "Directory receiving the parsed data")
}

// SetContainerOptions replaces the options used to build the container of
// the next command run. Tests use it to inject mocks.
func SetContainerOptions(opts ...container.Option) {
	containerOptions = opts
}

// GetContainer returns the container built for the running command.
func GetContainer() *container.Container {
	return appContainer
}

// GetLogger returns the configured logger, or a default one before setup.
func GetLogger() logging.Logger {
	if appContainer != nil {
		return appContainer.GetLogger()
	}
	return logging.NewLogrusAdapter("info", "text")
}

func setup(cmd *cobra.Command, args []string) error {
	if _, err := config.LoadEnv(); err != nil {
		return err
	}
	cfg, err := config.Load(SharedFlags.ConfigFile)
	if err != nil {
		return err
	}
	if err := applyFlags(cfg, SharedFlags); err != nil {
		return err
	}

	c, err := container.NewContainer(cfg, containerOptions...)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	appContainer = c
	return nil
}

// applyFlags lets explicit flags win over file and environment values.
func applyFlags(cfg *config.Config, f CommonFlags) error {
	if f.LogLevel != "" {
		cfg.Log.Level = f.LogLevel
	}
	if f.LogFormat != "" {
		cfg.Log.Format = f.LogFormat
	}
	if f.CSVDelimiter != "" {
		if utf8.RuneCountInString(f.CSVDelimiter) != 1 {
			return fmt.Errorf("csv delimiter must be a single character, got %q", f.CSVDelimiter)
		}
		cfg.CSV.Delimiter = f.CSVDelimiter
	}
	if f.Input != "" {
		cfg.Input.Dir = f.Input
	}
	if f.Output != "" {
		cfg.Output.Dir = f.Output
	}
	return nil
}
