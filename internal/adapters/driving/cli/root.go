// Package cli provides the docloader command-line interface.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docloader/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docloader/internal/adapters/driven/storage"
	"github.com/custodia-labs/docloader/internal/logger"
)

// version is set at build time.
var version = "dev"

var (
	verbose    bool
	traceLog   bool
	configPath string
)

// newWriter creates store writers; replaced in tests.
var newWriter = storage.NewWriter

var rootCmd = &cobra.Command{
	Use:   "docloader",
	Short: "Load files into a document store",
	Long: `docloader walks files and directories, turns every file into a document,
applies permissions, collections and property token replacement, and writes
the documents to a store in batches.

Settings are read from the [loader] table of a TOML config file and can be
overridden with flags.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print info and debug messages")
	rootCmd.PersistentFlags().BoolVar(&traceLog, "trace", false, "print trace messages")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"config file (default ~/.docloader/config.toml)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

func setupLogging(_ *cobra.Command, _ []string) error {
	switch {
	case traceLog:
		logger.SetLevel(logger.LevelTrace)
	case verbose:
		logger.SetLevel(logger.LevelDebug)
	default:
		logger.SetLevel(logger.LevelWarn)
	}
	return nil
}

// openConfig opens the config file named by --config.
func openConfig() (*file.ConfigStore, error) {
	store, err := file.NewConfigStore(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return store, nil
}
