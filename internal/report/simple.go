package report

import (
	"fmt"
	"io"
	"strings"
)

// SimpleWriter outputs human-readable text reports for terminal display.
type SimpleWriter struct {
	baseWriter

	// verbose lists every page, not only the ones with problems.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *Report) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeSummary(&sb, report)
	w.writePages(&sb, report)
	w.writeLinks(&sb, report)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

func section(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}

// writeHeader writes the report header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *Report) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                         MIGRATION REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Run:      %s\n", report.Run.ID)
	fmt.Fprintf(sb, "Command:  %s\n", report.Run.Command)
	fmt.Fprintf(sb, "Started:  %s\n", report.Run.Started.Format(dateFormat))
	if report.Run.Done() {
		fmt.Fprintf(sb, "Finished: %s\n", report.Run.Finished.Format(dateFormat))
	}
	fmt.Fprintf(sb, "Status:   %s\n", report.status())
	sb.WriteString("\n")
}

// writeSummary writes the counters.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *Report) {
	section(sb, "SUMMARY")

	fmt.Fprintf(sb, "  FETCHED:   %d\n", len(report.Fetches))
	fmt.Fprintf(sb, "  CONVERTED: %d\n", len(report.Conversions))
	fmt.Fprintf(sb, "  FAILED:    %d\n", report.Run.Failures)
	fmt.Fprintf(sb, "  WARNINGS:  %d\n", report.WarningCount())
	if report.Links != nil {
		fmt.Fprintf(sb, "  BROKEN:    %d links in %d files\n", report.BrokenLinkCount(), report.Links.Files)
	}
	sb.WriteString("\n")
}

// writePages writes conversion warnings, and every page when verbose.
func (w *SimpleWriter) writePages(sb *strings.Builder, report *Report) {
	pages := report.Conversions
	if !w.verbose {
		pages = report.ConversionsWithWarnings()
	}
	if len(pages) == 0 {
		return
	}

	section(sb, "PAGES")

	for _, c := range pages {
		fmt.Fprintf(sb, "  * %s -> %s\n", c.PageKey, c.ExposedPath)
		for _, warning := range c.Warnings {
			fmt.Fprintf(sb, "    [!] %s\n", warning)
		}
	}
	sb.WriteString("\n")
}

// writeLinks writes the broken links.
func (w *SimpleWriter) writeLinks(sb *strings.Builder, report *Report) {
	if report.BrokenLinkCount() == 0 {
		return
	}

	section(sb, "BROKEN LINKS")

	for _, b := range report.Links.Broken {
		fmt.Fprintf(sb, "  [x] %s\n", b)
	}
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by doku2md\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
