package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/doku2md/internal/linkcheck"
)

// errBrokenLinks is returned when the docs tree holds broken links.
var errBrokenLinks = errors.New("broken links found")

// NewCheckCmd creates the check command.
func NewCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check the internal links of the exposed docs",
		Long: `Check parses every Markdown document of the docs tree and reports the
relative links whose target file does not exist.

It exits with status 1 when a link is broken, so it can gate a CI job.

Examples:
  doku2md check
  doku2md check --docs ./docs`,
		Args: cobra.NoArgs,
		RunE: runCheckCmd,
	}
}

// runCheckCmd executes the check command.
func runCheckCmd(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := a.signalContext(cmd.Context())
	defer cancel()

	result, err := linkcheck.NewChecker(a.fs, a.cfg.DocsDir, linkcheck.WithLogger(a.logger)).Check(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, b := range result.Broken {
		fmt.Fprintln(out, b.String())
	}
	fmt.Fprintf(out, "Checked %d links in %d files\n", result.Links, result.Files)

	if !result.OK() {
		return fmt.Errorf("%w: %d", errBrokenLinks, len(result.Broken))
	}
	return nil
}
