package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"
	"github.com/spf13/cobra"

	"github.com/nao1215/doku2md/internal/database"
)

// fetchCommand is the ledger command name of fetch runs.
const fetchCommand = "fetch"

// NewCompareCmd creates the compare command.
// This command compares the sources fetched by two runs stored in the ledger.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare the sources fetched by two runs",
		Long: `Compare shows which wiki pages changed between two fetch runs recorded in
the ledger:
- Pages fetched only by the current run
- Pages fetched only by the previous run
- Pages whose source changed, by content hash

By default the latest two fetch runs are compared. Use it to see what
editors changed on the wiki since the last migration.

Examples:
  # Compare the latest two fetch runs
  doku2md compare

  # List fetch runs in the ledger
  doku2md compare --list

  # Compare the latest run with a specific run
  doku2md compare --with-run 0f8c...

  # Output comparison in JSON format
  doku2md compare --json`,
		Args: cobra.NoArgs,
		RunE: runCompareCmd,
	}

	cmd.Flags().BoolP("list", "l", false, "List fetch runs in the ledger")
	cmd.Flags().StringP("with-run", "i", "",
		"Compare with a specific run by id (use --list to see available ids)")
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output comparison result in Markdown format")
	cmd.MarkFlagsMutuallyExclusive("json", "markdown")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, _ []string) error {
	list, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	withRun, err := cmd.Flags().GetString("with-run")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	ledger, err := a.openLedger(false)
	if err != nil {
		return err
	}
	defer ledger.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if list {
		return listRuns(ctx, out, ledger)
	}

	result, err := compareLatest(ctx, ledger, withRun)
	if err != nil {
		return err
	}

	switch {
	case jsonOutput:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	case markdownOutput:
		return outputComparisonMarkdown(out, result)
	default:
		outputComparisonText(out, result)
		return nil
	}
}

// listRuns lists the fetch runs of the ledger, newest first.
func listRuns(ctx context.Context, out io.Writer, ledger *database.Ledger) error {
	runs, err := ledger.Runs(ctx, fetchCommand)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(out, "No fetch runs found in the ledger.")
		fmt.Fprintln(out, "\nUse 'doku2md fetch' to download the wiki.")
		return nil
	}

	fmt.Fprintf(out, "Fetch runs (%d):\n\n", len(runs))
	fmt.Fprintf(out, "  %-36s  %-20s  %6s  %8s\n", "ID", "Started", "Pages", "Failures")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 76))
	for _, r := range runs {
		fmt.Fprintf(out, "  %-36s  %-20s  %6d  %8d\n",
			r.ID, r.Started.Local().Format(time.DateTime), r.Pages, r.Failures)
	}
	fmt.Fprintln(out, "\nUse 'doku2md compare --with-run <id>' to compare with a specific run.")
	return nil
}

// compareLatest compares the latest fetch run with the run withRun, or with
// the fetch run before it.
func compareLatest(ctx context.Context, ledger *database.Ledger, withRun string) (*ComparisonResult, error) {
	runs, err := ledger.Runs(ctx, fetchCommand)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, errors.New("no fetch run found in the ledger")
	}

	current := runs[0]
	var previous database.Run
	switch {
	case withRun != "":
		run, err := ledger.GetRun(ctx, withRun)
		if err != nil {
			return nil, err
		}
		if run.Command != fetchCommand {
			return nil, fmt.Errorf("run %s is a %s run, not a fetch run", run.ID, run.Command)
		}
		previous = *run
	case len(runs) < 2:
		return nil, fmt.Errorf("at least 2 fetch runs are required for comparison (found %d)", len(runs))
	default:
		previous = runs[1]
	}

	previousFetches, err := ledger.Fetches(ctx, previous.ID)
	if err != nil {
		return nil, err
	}
	currentFetches, err := ledger.Fetches(ctx, current.ID)
	if err != nil {
		return nil, err
	}
	return compareFetches(previous, current, previousFetches, currentFetches), nil
}

// ComparisonResult holds the result of comparing two fetch runs.
type ComparisonResult struct {
	PreviousRun RunMetadata `json:"previous_run"`
	CurrentRun  RunMetadata `json:"current_run"`

	// Added holds pages fetched only by the current run.
	Added []PageChange `json:"added,omitempty"`

	// Removed holds pages fetched only by the previous run.
	Removed []PageChange `json:"removed,omitempty"`

	// Changed holds pages whose source hash differs.
	Changed []PageChange `json:"changed,omitempty"`

	UnchangedCount int `json:"unchanged_count"`
}

// RunMetadata describes one side of a comparison.
type RunMetadata struct {
	ID      string    `json:"id"`
	Started time.Time `json:"started"`
	Pages   int       `json:"pages"`
}

// PageChange describes a page that differs between the runs.
type PageChange struct {
	Page         string `json:"page"`
	PreviousSize int    `json:"previous_size"`
	CurrentSize  int    `json:"current_size"`
}

// compareFetches compares the fetches of two runs. Changes are listed in
// the order of the run that holds them.
func compareFetches(previous, current database.Run, previousFetches, currentFetches []database.Fetch) *ComparisonResult {
	result := &ComparisonResult{
		PreviousRun: RunMetadata{ID: previous.ID, Started: previous.Started, Pages: len(previousFetches)},
		CurrentRun:  RunMetadata{ID: current.ID, Started: current.Started, Pages: len(currentFetches)},
	}

	before := make(map[string]database.Fetch, len(previousFetches))
	for _, f := range previousFetches {
		before[f.PageKey] = f
	}

	seen := make(map[string]bool, len(currentFetches))
	for _, f := range currentFetches {
		seen[f.PageKey] = true
		old, ok := before[f.PageKey]
		switch {
		case !ok:
			result.Added = append(result.Added, PageChange{Page: f.PageKey, CurrentSize: f.Size})
		case old.SHA256 != f.SHA256:
			result.Changed = append(result.Changed, PageChange{Page: f.PageKey, PreviousSize: old.Size, CurrentSize: f.Size})
		default:
			result.UnchangedCount++
		}
	}

	for _, f := range previousFetches {
		if !seen[f.PageKey] {
			result.Removed = append(result.Removed, PageChange{Page: f.PageKey, PreviousSize: f.Size})
		}
	}
	return result
}

// outputComparisonMarkdown outputs the comparison result in Markdown format.
func outputComparisonMarkdown(out io.Writer, result *ComparisonResult) error {
	md := markdown.NewMarkdown(out)

	md.H1("Fetch Comparison")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Previous", "Current", "Change"},
		Rows: [][]string{
			{"Run", markdown.Code(result.PreviousRun.ID), markdown.Code(result.CurrentRun.ID), "-"},
			{"Started", result.PreviousRun.Started.Format(time.DateTime), result.CurrentRun.Started.Format(time.DateTime), "-"},
			{"Pages", strconv.Itoa(result.PreviousRun.Pages), strconv.Itoa(result.CurrentRun.Pages),
				formatDelta(result.CurrentRun.Pages - result.PreviousRun.Pages)},
		},
	})
	md.PlainText("")

	if len(result.Changed) > 0 {
		md.H2f("Changed Pages (%d)", len(result.Changed))
		md.PlainText("")
		items := make([]string, len(result.Changed))
		for i, c := range result.Changed {
			items[i] = fmt.Sprintf("%s: %d bytes (%s)", markdown.Code(c.Page), c.CurrentSize, formatDelta(c.CurrentSize-c.PreviousSize))
		}
		md.BulletList(items...)
		md.PlainText("")
	}
	if len(result.Added) > 0 {
		md.H2f("New Pages (%d)", len(result.Added))
		md.PlainText("")
		items := make([]string, len(result.Added))
		for i, c := range result.Added {
			items[i] = markdown.Code(c.Page)
		}
		md.BulletList(items...)
		md.PlainText("")
	}
	if len(result.Removed) > 0 {
		md.H2f("Removed Pages (%d)", len(result.Removed))
		md.PlainText("")
		items := make([]string, len(result.Removed))
		for i, c := range result.Removed {
			items[i] = markdown.Strikethrough(c.Page)
		}
		md.BulletList(items...)
		md.PlainText("")
	}
	if result.UnchangedCount > 0 {
		md.HorizontalRule()
		md.PlainText("")
		md.PlainText(markdown.Italic(fmt.Sprintf("%d pages unchanged", result.UnchangedCount)))
	}

	return md.Build()
}

// outputComparisonText outputs the comparison result in human-readable text format.
func outputComparisonText(out io.Writer, result *ComparisonResult) {
	fmt.Fprintln(out, "Fetch Comparison")
	fmt.Fprintln(out, strings.Repeat("=", 60))

	fmt.Fprintf(out, "\nPrevious run: %s (%s, %d pages)\n",
		result.PreviousRun.ID, result.PreviousRun.Started.Local().Format(time.DateTime), result.PreviousRun.Pages)
	fmt.Fprintf(out, "Current run:  %s (%s, %d pages)\n",
		result.CurrentRun.ID, result.CurrentRun.Started.Local().Format(time.DateTime), result.CurrentRun.Pages)

	if len(result.Changed) > 0 {
		fmt.Fprintf(out, "\nChanged Pages (%d):\n", len(result.Changed))
		for _, c := range result.Changed {
			fmt.Fprintf(out, "  [~] %s (%d bytes, %s)\n", c.Page, c.CurrentSize, formatDelta(c.CurrentSize-c.PreviousSize))
		}
	}
	if len(result.Added) > 0 {
		fmt.Fprintf(out, "\nNew Pages (%d):\n", len(result.Added))
		for _, c := range result.Added {
			fmt.Fprintf(out, "  [+] %s\n", c.Page)
		}
	}
	if len(result.Removed) > 0 {
		fmt.Fprintf(out, "\nRemoved Pages (%d):\n", len(result.Removed))
		for _, c := range result.Removed {
			fmt.Fprintf(out, "  [-] %s\n", c.Page)
		}
	}

	fmt.Fprintf(out, "\nUnchanged: %d pages\n", result.UnchangedCount)
}

// formatDelta formats a numeric delta with sign for display.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	}
	return strconv.Itoa(delta)
}
