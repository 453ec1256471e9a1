package main

import (
	"github.com/spf13/cobra"

	"github.com/nao1215/doku2md/internal/pipeline"
	"github.com/nao1215/doku2md/internal/scraper"
)

// NewFetchCmd creates the fetch command.
func NewFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch [page-id...]",
		Short: "Download page sources and convert them",
		Long: `Fetch downloads the DokuWiki source of every page in the registry, one
request at a time, and runs it through the fix, convert and expose steps.

The first failure stops the run. Pass page ids such as "tutorial:blocks" to
process only those pages.

Examples:
  # Migrate every registered page
  doku2md fetch

  # Refresh one page
  doku2md fetch tutorial:blocks

  # Only download sources, convert later with "doku2md convert"
  doku2md fetch --no-convert`,
		Args: cobra.ArbitraryArgs,
		RunE: runFetchCmd,
	}

	cmd.Flags().Bool("no-convert", false, "Only download the sources")

	return cmd
}

// runFetchCmd executes the fetch command.
func runFetchCmd(cmd *cobra.Command, args []string) error {
	noConvert, err := cmd.Flags().GetBool("no-convert")
	if err != nil {
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := a.signalContext(cmd.Context())
	defer cancel()

	pages, err := a.registry().Load()
	if err != nil {
		return err
	}
	if pages, err = selectPages(pages, args); err != nil {
		return err
	}

	client := scraper.NewClientFromConfig(a.cfg, a.logger)
	source := scraper.NewSourceFetcher(client, a.wiki, a.cfg.RevisionPages)

	steps := func(opts []pipeline.StepOption) []pipeline.Step {
		steps := []pipeline.Step{pipeline.NewFetchStep(source, a.fs, a.mapper, opts...)}
		if !noConvert {
			steps = append(steps, a.offlineSteps(opts)...)
		}
		return steps
	}

	// Requests to the wiki stay sequential.
	return a.runBatch(ctx, cmd.OutOrStdout(), "fetch", pages, 1, steps)
}
