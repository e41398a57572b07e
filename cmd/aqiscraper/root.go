package main

import (
	"fmt"
	"os"
	"runtime"

	"aqiscraper/pkg/ui"

	"github.com/spf13/cobra"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"
)

// rootCmd runs the harvest when called without a subcommand
var rootCmd = &cobra.Command{
	Use:   "aqiscraper",
	Short: "Resumable harvester for AirNow historical air-quality observations",
	Long: `aqiscraper fetches the daily AirNow observation for every configured zip code
and day of the configured years, storing each one exactly once in a local
SQLite database. It can be stopped at any time; the next run resumes where
the last stored observation left off.

Configuration is read from defaults, an optional YAML file
(.aqiscraper.yaml, ~/.config/aqiscraper/config.yaml or $AQISCRAPER_CONFIG),
a .env file and AQISCRAPER_* environment variables. The API key may also be
stored with 'aqiscraper auth set-key'.`,
	Args:          cobra.NoArgs,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runHarvest,
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		ui.PrintError("Error", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetVersionTemplate(`aqiscraper {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
