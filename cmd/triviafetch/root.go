package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"triviafetch/pkg/config"
	"triviafetch/pkg/logger"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "triviafetch",
	Short: "Download and archive the Open Trivia Database",
	Long: `triviafetch downloads trivia questions from the Open Trivia Database
(https://opentdb.com) and archives them as per-category JSON files.

Features:
  - Exhaustive per-category downloads with automatic pagination
  - Session token handling so the API never repeats a question
  - Deduplication, resumable runs and atomic file writes
  - Rate limiting that respects the API's request interval
  - Completeness reports comparing local data against remote counts
  - An asset catalogue with optional AI-generated descriptions`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is $HOME/.triviafetch.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.SetVersionTemplate(`triviafetch {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// loadConfig loads configuration from file, environment and command line
// flags, then initializes the global logger from it
func loadConfig(flags map[string]interface{}) (*config.Config, error) {
	if flags == nil {
		flags = make(map[string]interface{})
	}
	if logLevel != "" {
		flags["log-level"] = logLevel
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger.Initialize(&cfg.Logging)
	return cfg, nil
}
