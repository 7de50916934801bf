package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "callisto",
	Short: "Callisto - hierarchical privacy decision engine",
	Long: `Callisto is a privacy decision engine that evaluates data access
requests against subject privacy preferences over hierarchical attribute
and purpose taxonomies.

Each evaluation resolves through a chain of tiers:
  - Local decision cache
  - Optional trusted execution provider
  - Authoritative decision cache
  - Authoritative decision engine

Decisions are content-addressed: the cache key fingerprints the request,
the preference, and the active policy version, so policy changes never
serve stale decisions.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
