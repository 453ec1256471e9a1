package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/doku2md/internal/linkcheck"
	"github.com/nao1215/doku2md/internal/report"
)

// NewReportCmd creates the report command.
func NewReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize a migration run from the ledger",
		Long: `Report renders a run recorded in the ledger: what was fetched, what was
converted and which conversions produced warnings.

By default the latest run is shown as plain text. When --output is given the
report is written to the file and a plain text summary is still printed.

Examples:
  # Show the latest run
  doku2md report

  # Write a Markdown report including a link check of the docs
  doku2md report --markdown --check-links -o migration.md

  # Show a specific run as JSON
  doku2md report --run 0f8c... --json`,
		Args: cobra.NoArgs,
		RunE: runReportCmd,
	}

	cmd.Flags().String("run", "", "Run id to report on (default: latest run)")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().Bool("check-links", false, "Include a link check of the docs tree")
	cmd.MarkFlagsMutuallyExclusive("json", "markdown")

	return cmd
}

// reportOptions holds the flags of the report command.
type reportOptions struct {
	runID      string
	json       bool
	markdown   bool
	output     string
	checkLinks bool
}

func readReportOptions(cmd *cobra.Command) (reportOptions, error) {
	var opts reportOptions
	var err error

	if opts.runID, err = cmd.Flags().GetString("run"); err != nil {
		return opts, err
	}
	if opts.json, err = cmd.Flags().GetBool("json"); err != nil {
		return opts, err
	}
	if opts.markdown, err = cmd.Flags().GetBool("markdown"); err != nil {
		return opts, err
	}
	if opts.output, err = cmd.Flags().GetString("output"); err != nil {
		return opts, err
	}
	if opts.checkLinks, err = cmd.Flags().GetBool("check-links"); err != nil {
		return opts, err
	}
	return opts, nil
}

// runReportCmd executes the report command.
func runReportCmd(cmd *cobra.Command, _ []string) error {
	opts, err := readReportOptions(cmd)
	if err != nil {
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := a.signalContext(cmd.Context())
	defer cancel()

	ledger, err := a.openLedger(false)
	if err != nil {
		return err
	}
	defer ledger.Close()

	rep, err := report.Load(ctx, ledger, opts.runID)
	if err != nil {
		if errors.Is(err, report.ErrNoRuns) {
			return fmt.Errorf("%w in %s", err, ledger.Path())
		}
		return err
	}

	if opts.checkLinks {
		rep.Links, err = linkcheck.NewChecker(a.fs, a.cfg.DocsDir, linkcheck.WithLogger(a.logger)).Check(ctx)
		if err != nil {
			return err
		}
	}

	return outputReport(cmd.OutOrStdout(), rep, opts, a.cfg.Verbose)
}

// outputReport writes rep in the requested format, to opts.output when set.
func outputReport(stdout io.Writer, rep *report.Report, opts reportOptions, verbose bool) error {
	simple := report.NewSimpleWriter(stdout, report.WithVerbose(verbose))

	if opts.output == "" {
		_, err := newFormatWriter(stdout, opts, simple).Write(rep)
		return err
	}

	dir := filepath.Dir(opts.output)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(opts.output, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	fileWriter := newFormatWriter(f, opts, report.NewSimpleWriter(f, report.WithVerbose(true)))
	if _, err := report.NewMultiWriter(simple, fileWriter).Write(rep); err != nil {
		return err
	}
	return f.Close()
}

// newFormatWriter returns the writer selected by the format flags, or
// fallback when none is set.
func newFormatWriter(w io.Writer, opts reportOptions, fallback report.Writer) report.Writer {
	switch {
	case opts.json:
		return report.NewJSONWriter(w, report.WithPrettyPrint())
	case opts.markdown:
		return report.NewMarkdownWriter(w)
	default:
		return fallback
	}
}
