package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/doku2md/internal/database"
	"github.com/nao1215/doku2md/internal/linkcheck"
	"github.com/nao1215/doku2md/internal/model"
)

// createTestReport creates a report with sample data for testing.
func createTestReport() *Report {
	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return &Report{
		Run: database.Run{
			ID:       "8f0c4c1e-run",
			Command:  "fetch",
			Started:  started,
			Finished: started.Add(time.Minute),
			Pages:    2,
		},
		Fetches: []database.Fetch{
			{PageKey: "tutorial:blocks", URL: "https://fabricmc.net/wiki/tutorial:blocks", SHA256: strings.Repeat("ab", 32), Size: 120, Contributors: []string{"alice", "bob"}},
			{PageKey: "install", URL: "https://fabricmc.net/wiki/install", SHA256: strings.Repeat("cd", 32), Size: 40},
		},
		Conversions: []database.Conversion{
			{PageKey: "install", ExposedPath: "docs/install.md", Warnings: []string{}},
			{PageKey: "tutorial:blocks", ExposedPath: "docs/tutorial/blocks.md", Warnings: []string{"php block kept as code"}},
		},
	}
}

// TestReportCounters tests the derived counters.
func TestReportCounters(t *testing.T) {
	t.Parallel()

	r := createTestReport()
	if r.WarningCount() != 1 {
		t.Errorf("warnings = %d, want 1", r.WarningCount())
	}
	if got := r.ConversionsWithWarnings(); len(got) != 1 || got[0].PageKey != "tutorial:blocks" {
		t.Errorf("unexpected conversions with warnings %v", got)
	}
	if r.BrokenLinkCount() != 0 || r.Clean() {
		t.Error("report with a warning must not be clean")
	}

	r.Conversions[1].Warnings = nil
	if !r.Clean() {
		t.Error("expected a clean report")
	}

	r.Links = &linkcheck.Result{Broken: []linkcheck.BrokenLink{{File: "a.md", Destination: "b.md", Target: "b.md"}}}
	if r.BrokenLinkCount() != 1 || r.Clean() {
		t.Error("broken link not counted")
	}
}

// TestSimpleWriter tests the human-readable report writer.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes header and summary", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{"MIGRATION REPORT", "8f0c4c1e-run", "Status:   Complete", "FETCHED:   2", "WARNINGS:  1"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("lists only pages with warnings unless verbose", func(t *testing.T) {
		t.Parallel()

		var quiet, verbose bytes.Buffer
		_, _ = NewSimpleWriter(&quiet).Write(createTestReport())
		_, _ = NewSimpleWriter(&verbose, WithVerbose(true)).Write(createTestReport())

		if strings.Contains(quiet.String(), "docs/install.md") {
			t.Error("clean page listed without verbose")
		}
		if !strings.Contains(quiet.String(), "[!] php block kept as code") {
			t.Error("warning not listed")
		}
		if !strings.Contains(verbose.String(), "install -> docs/install.md") {
			t.Error("clean page not listed with verbose")
		}
	})

	t.Run("lists broken links", func(t *testing.T) {
		t.Parallel()

		r := createTestReport()
		r.Links = &linkcheck.Result{Files: 2, Broken: []linkcheck.BrokenLink{{File: "install.md", Destination: "x.md", Target: "x.md"}}}

		var buf bytes.Buffer
		_, _ = NewSimpleWriter(&buf).Write(r)
		if !strings.Contains(buf.String(), "[x] install.md: x.md (x.md not found)") {
			t.Errorf("broken link missing in:\n%s", buf.String())
		}
	})
}

// TestMarkdownWriter tests the Markdown report writer.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes sections", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewMarkdownWriter(&buf).Write(createTestReport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n == 0 {
			t.Error("expected a byte count")
		}

		output := buf.String()
		for _, want := range []string{
			"# Migration Report",
			"## Summary",
			"## Fetched Pages",
			"[tutorial:blocks](https://fabricmc.net/wiki/tutorial:blocks)",
			"`abababababab`",
			"alice, bob",
			"## Converted Pages",
			"```mermaid",
			"> [!IMPORTANT]",
			"<summary>tutorial:blocks</summary>",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
		if strings.Contains(output, "## Broken Links") {
			t.Error("broken links section written without a link check")
		}
	})

	t.Run("alerts on failures first", func(t *testing.T) {
		t.Parallel()

		r := createTestReport()
		r.Run.Failures = 1

		var buf bytes.Buffer
		_, _ = NewMarkdownWriter(&buf).Write(r)
		if !strings.Contains(buf.String(), "> [!CAUTION]") {
			t.Error("expected a caution alert")
		}
	})

	t.Run("clean run with link check", func(t *testing.T) {
		t.Parallel()

		r := createTestReport()
		r.Conversions[1].Warnings = nil
		r.Links = &linkcheck.Result{Files: 2, Broken: []linkcheck.BrokenLink{}}

		var buf bytes.Buffer
		_, _ = NewMarkdownWriter(&buf).Write(r)
		output := buf.String()
		if !strings.Contains(output, "> [!TIP]") {
			t.Error("expected a tip alert")
		}
		if !strings.Contains(output, "No broken link in 2 file(s).") {
			t.Error("expected link check result")
		}
	})
}

// TestJSONWriter tests the JSON report writer.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(createTestReport()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded struct {
		Run struct {
			ID string `json:"id"`
		} `json:"run"`
		Conversions []struct {
			Page     string   `json:"page"`
			Warnings []string `json:"warnings"`
		} `json:"conversions"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded.Run.ID != "8f0c4c1e-run" || len(decoded.Conversions) != 2 {
		t.Errorf("unexpected decoded report %+v", decoded)
	}
	if !strings.Contains(buf.String(), "\n  \"run\"") {
		t.Error("expected indented output")
	}
}

// TestMultiWriter tests writing to several writers.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var text, md bytes.Buffer
	n, err := NewMultiWriter(NewSimpleWriter(&text), NewMarkdownWriter(&md)).Write(createTestReport())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text.Len() == 0 || md.Len() == 0 {
		t.Error("expected output on both writers")
	}
	if n < text.Len() {
		t.Errorf("byte count %d smaller than text output %d", n, text.Len())
	}
}

// TestLoad tests loading a report from the ledger.
func TestLoad(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ledger, err := database.Open(t.TempDir(), database.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = ledger.Close() })

	if _, err := Load(ctx, ledger, ""); !errors.Is(err, ErrNoRuns) {
		t.Fatalf("expected ErrNoRuns, got %v", err)
	}

	first, _ := ledger.StartRun(ctx, "fetch")
	p := model.NewPage("tutorial", "blocks")
	m := model.NewMigration(p, "https://fabricmc.net/wiki/tutorial:blocks")
	m.SetRaw("====== Blocks ======\n")
	if err := ledger.RecordFetch(ctx, first.ID, m); err != nil {
		t.Fatal(err)
	}
	if err := ledger.RecordConversion(ctx, first.ID, m, "md/blocks.md", "docs/blocks.md"); err != nil {
		t.Fatal(err)
	}
	first.Pages = 1
	_ = ledger.FinishRun(ctx, first)
	second, _ := ledger.StartRun(ctx, "convert")

	latest, err := Load(ctx, ledger, "")
	if err != nil {
		t.Fatalf("failed to load latest report: %v", err)
	}
	if latest.Run.ID != second.ID || len(latest.Fetches) != 0 {
		t.Errorf("unexpected latest report %+v", latest)
	}

	r, err := Load(ctx, ledger, first.ID)
	if err != nil {
		t.Fatalf("failed to load report: %v", err)
	}
	if !r.Run.Done() || len(r.Fetches) != 1 || len(r.Conversions) != 1 {
		t.Errorf("unexpected report %+v", r)
	}

	if _, err := Load(ctx, ledger, "unknown"); !errors.Is(err, database.ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
}
