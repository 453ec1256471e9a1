package main

import (
	"github.com/spf13/cobra"

	"github.com/nao1215/doku2md/internal/config"
)

// NewConvertCmd creates the convert command.
func NewConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert [page-id...]",
		Short: "Convert sources already fetched, without network access",
		Long: `Convert runs the fix, convert and expose steps on the sources fetched by
a previous run. Contributors are taken from the ledger.

Use it after changing the converter or the path migrations.

Examples:
  # Convert every registered page, four at a time
  doku2md convert --concurrency 4

  # Convert one page
  doku2md convert tutorial:blocks`,
		Args: cobra.ArbitraryArgs,
		RunE: runConvertCmd,
	}

	cmd.Flags().IntP("concurrency", "j", config.DefaultConcurrency,
		"Number of pages converted at once")

	return cmd
}

// runConvertCmd executes the convert command.
func runConvertCmd(cmd *cobra.Command, args []string) error {
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

	return a.runBatch(ctx, cmd.OutOrStdout(), "convert", pages, a.cfg.Concurrency, a.offlineSteps)
}
