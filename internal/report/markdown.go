package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownWriter outputs reports in Markdown format, suitable for a pull
// request description or a wiki page.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *Report) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writeFetches(md, report)
	w.writeConversions(md, report)
	w.writeLinks(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *Report) {
	md.H1("Migration Report")
	md.PlainText("")

	finished := "-"
	if report.Run.Done() {
		finished = report.Run.Finished.Format(dateFormat)
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Run", markdown.Code(report.Run.ID)},
			{"Command", report.Run.Command},
			{"Started", report.Run.Started.Format(dateFormat)},
			{"Finished", finished},
			{"Pages", strconv.Itoa(report.Run.Pages)},
			{"Status", report.status()},
		},
	})
	md.PlainText("")
}

// writeSummary writes the counters and an alert for the overall result.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *Report) {
	md.H2("Summary")
	md.PlainText("")

	links := "not checked"
	if report.Links != nil {
		links = strconv.Itoa(report.BrokenLinkCount())
	}

	md.Table(markdown.TableSet{
		Header: []string{"Item", "Count"},
		Rows: [][]string{
			{"Fetched pages", strconv.Itoa(len(report.Fetches))},
			{"Converted pages", strconv.Itoa(len(report.Conversions))},
			{"Failed pages", strconv.Itoa(report.Run.Failures)},
			{"Conversion warnings", strconv.Itoa(report.WarningCount())},
			{"Broken links", links},
		},
	})
	md.PlainText("")

	if len(report.Conversions) > 0 {
		w.writePieChart(md, report)
	}
	w.writeAlert(md, report)
}

// writePieChart writes a mermaid pie chart of clean and approximated pages.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, report *Report) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Converted Pages"),
		piechart.WithShowData(true),
	)

	approximated := len(report.ConversionsWithWarnings())
	if clean := len(report.Conversions) - approximated; clean > 0 {
		chart.LabelAndIntValue("Clean", uint64(clean))
	}
	if approximated > 0 {
		chart.LabelAndIntValue("With warnings", uint64(approximated))
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an alert matching the most serious problem.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *Report) {
	switch {
	case !report.Run.Done():
		md.Caution("The run did not finish. Pages after the interruption were not migrated.")
	case report.Run.Failures > 0:
		md.Cautionf("%d page(s) failed. The run stopped at the first failure.", report.Run.Failures)
	case report.BrokenLinkCount() > 0:
		md.Warningf("%d broken link(s) in the docs tree.", report.BrokenLinkCount())
	case report.WarningCount() > 0:
		md.Importantf("%d construct(s) were approximated during conversion. Review the pages below.", report.WarningCount())
	default:
		md.Tip("Every page was migrated without warnings.")
	}
	md.PlainText("")
}

// writeFetches writes the table of fetched sources.
func (w *MarkdownWriter) writeFetches(md *markdown.Markdown, report *Report) {
	if len(report.Fetches) == 0 {
		return
	}

	md.H2("Fetched Pages")
	md.PlainText("")

	rows := make([][]string, len(report.Fetches))
	for i, f := range report.Fetches {
		contributors := "-"
		if len(f.Contributors) > 0 {
			contributors = strings.Join(f.Contributors, ", ")
		}
		rows[i] = []string{
			markdown.Link(f.PageKey, f.URL),
			strconv.Itoa(f.Size),
			markdown.Code(shortHash(f.SHA256)),
			contributors,
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Page", "Size", "SHA-256", "Contributors"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeConversions writes the converted documents and their warnings.
func (w *MarkdownWriter) writeConversions(md *markdown.Markdown, report *Report) {
	md.H2("Converted Pages")
	md.PlainText("")

	if len(report.Conversions) == 0 {
		md.PlainText("No page was converted in this run.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(report.Conversions))
	for i, c := range report.Conversions {
		rows[i] = []string{c.PageKey, markdown.Code(c.ExposedPath), strconv.Itoa(len(c.Warnings))}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Page", "Document", "Warnings"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, c := range report.ConversionsWithWarnings() {
		items := make([]string, len(c.Warnings))
		for i, warning := range c.Warnings {
			items[i] = "- " + warning
		}
		md.Details(c.PageKey, strings.Join(items, "\n"))
	}
	md.PlainText("")
}

// writeLinks writes the broken links found by the link check.
func (w *MarkdownWriter) writeLinks(md *markdown.Markdown, report *Report) {
	if report.Links == nil {
		return
	}

	md.H2("Broken Links")
	md.PlainText("")

	if report.Links.OK() {
		md.PlainTextf("No broken link in %d file(s).", report.Links.Files)
		md.PlainText("")
		return
	}

	rows := make([][]string, len(report.Links.Broken))
	for i, b := range report.Links.Broken {
		rows[i] = []string{b.File, markdown.Code(b.Destination), b.Target}
	}
	md.Table(markdown.TableSet{
		Header: []string{"File", "Link", "Missing target"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText(markdown.Italic("Report generated by " + markdown.Link("doku2md", "https://github.com/nao1215/doku2md")))
}

// shortHash abbreviates a SHA-256 for display.
func shortHash(hash string) string {
	if len(hash) <= 12 {
		return hash
	}
	return hash[:12]
}
