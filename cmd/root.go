/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>

*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

var (
	logFile  string
	logLevel string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tuner",
	Short: "Command line client for the Pandora private API",
	Long: `tuner talks to Pandora the way its own apps do.

It performs the partner handshake and user login against the tuner
endpoint, then uses the web REST API to list playlists, stations and
account details. Catalog snapshots can be stored locally, compared
between syncs and browsed in a terminal UI.

Credentials come from ~/.config/tuner/config.yaml, a .env file in the
working directory, or the TUNER_PANDORA_USERNAME and
TUNER_PANDORA_PASSWORD environment variables. Run 'tuner login' to save
them.`,
	Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Log file path (default: stderr)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
}
