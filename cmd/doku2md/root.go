// Package main provides the entry point for the doku2md CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/doku2md/internal/config"
)

// NewRootCmd creates the root command for doku2md.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doku2md",
		Short: "Migrate a DokuWiki site to Markdown",
		Long: `doku2md migrates a DokuWiki site to GitHub flavored Markdown.

A migration runs in three stages:
  1. scrape  lists the pages of the wiki into the page registry
  2. fetch   downloads each page source and converts it
  3. check   verifies the internal links of the generated docs

Sources already downloaded can be converted again offline with convert.
Every run is recorded in a local ledger, which report renders and compare
uses to show what changed on the wiki between two fetches.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .doku2md in current or home directory)")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored log output")
	cmd.PersistentFlags().String("env-file", config.DefaultEnvFile, "Environment file to load")
	cmd.PersistentFlags().String("wiki-url", "", "Root URL of the wiki (overrides the configuration)")
	cmd.PersistentFlags().String("resources", "", "Directory of the registry and intermediate trees")
	cmd.PersistentFlags().String("docs", "", "Directory of the exposed documentation tree")
	cmd.PersistentFlags().String("db-dir", "", "Directory of the migration ledger (default: XDG data directory)")

	// Add subcommands
	cmd.AddCommand(NewScrapeCmd())
	cmd.AddCommand(NewFetchCmd())
	cmd.AddCommand(NewConvertCmd())
	cmd.AddCommand(NewCheckCmd())
	cmd.AddCommand(NewReportCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
