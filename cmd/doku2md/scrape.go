package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/doku2md/internal/scraper"
)

// NewScrapeCmd creates the scrape command.
func NewScrapeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scrape",
		Short: "List the pages of the wiki into the page registry",
		Long: `Scrape reads the sitemap of the wiki, one namespace at a time, and writes
the list of pages to pages.json in the resources directory.

Pages the sitemap does not list (root pages and the French tutorials) are
appended from the configuration, and denylisted pages are left out.

Examples:
  # Scrape the default wiki
  doku2md scrape

  # Scrape another wiki
  doku2md scrape --wiki-url https://wiki.example.com/`,
		Args: cobra.NoArgs,
		RunE: runScrapeCmd,
	}
}

// runScrapeCmd executes the scrape command.
func runScrapeCmd(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := a.signalContext(cmd.Context())
	defer cancel()

	ledger, err := a.openLedger(true)
	if err != nil {
		return err
	}
	defer ledger.Close()

	run, err := ledger.StartRun(ctx, "scrape")
	if err != nil {
		return err
	}

	client := scraper.NewClientFromConfig(a.cfg, a.logger)
	reg := a.registry()

	pages, err := scraper.NewIndexScraper(client, a.cfg).ScrapeAndSave(ctx, reg)
	run.Pages = len(pages)
	if err != nil {
		run.Failures = 1
	}
	if err := a.finishRun(ledger, run, err); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Saved %d pages to %s\n", len(pages), reg.Path())
	return nil
}
