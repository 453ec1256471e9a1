package dokuwiki

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/nao1215/markdown"

	"github.com/nao1215/doku2md/internal/model"
)

// LinkResolver returns the relative link between the documents of two pages.
// *layout.Mapper implements it.
type LinkResolver interface {
	RelativeLink(from, to model.Page) string
}

// Document is the result of converting one page.
type Document struct {
	// Title is the text of the first heading, or the page name.
	Title string

	// Body is the Markdown document.
	Body string

	// Warnings lists constructs that were kept as text or approximated.
	Warnings []string
}

// Converter turns fixed DokuWiki sources into GitHub flavored Markdown.
// It holds no per-page state and may be shared between goroutines.
type Converter struct {
	resolver LinkResolver
	wiki     model.Wiki
}

// NewConverter creates a Converter. Internal links are resolved with
// resolver, media files are linked to wiki.
func NewConverter(resolver LinkResolver, wiki model.Wiki) *Converter {
	return &Converter{resolver: resolver, wiki: wiki}
}

var (
	headingRe  = regexp.MustCompile(`^\s*(={2,6})\s*(.*?)\s*={2,6}\s*$`)
	hrRe       = regexp.MustCompile(`^\s*-{4,}\s*$`)
	listRe     = regexp.MustCompile(`^( {2,})([*-])\s*(.*)$`)
	quoteRe    = regexp.MustCompile(`^(>+)\s?(.*)$`)
	codeOpenRe = regexp.MustCompile(`^\s*<(code|file)(?:\s+([^\s>]+))?(?:\s+([^>]+?))?\s*>(.*)$`)
	noteOpenRe = regexp.MustCompile(`^\s*<note(?:\s+(\w+))?\s*>(.*)$`)
	htmlOpenRe = regexp.MustCompile(`^\s*<(html|HTML|php|PHP)>(.*)$`)
)

// Convert converts the fixed source of p.
func (c *Converter) Convert(p model.Page, source string) (*Document, error) {
	var buf bytes.Buffer
	d := &document{
		c:         c,
		page:      p,
		md:        markdown.NewMarkdown(&buf),
		lastBlank: true,
	}

	d.convert(strings.Split(strings.TrimRight(source, "\n"), "\n"))

	if len(d.footnotes) > 0 {
		d.blank()
		for i, note := range d.footnotes {
			d.md.PlainTextf("[^%d]: %s", i+1, note)
		}
	}

	if err := d.md.Error(); err != nil {
		return nil, fmt.Errorf("failed to build markdown for %s: %w", p.ID(), err)
	}

	title := d.title
	if title == "" {
		title = p.Name
	}

	return &Document{
		Title:    title,
		Body:     strings.TrimRight(d.md.String(), "\n ") + "\n",
		Warnings: d.warnings,
	}, nil
}

// document is the conversion state of one page.
type document struct {
	c         *Converter
	page      model.Page
	md        *markdown.Markdown
	title     string
	warnings  []string
	footnotes []string
	protected []string

	// lastBlank is true when the last emitted line is empty.
	lastBlank bool

	// listWidths holds the marker width of each open list level.
	listWidths []int
}

func (d *document) warn(format string, args ...any) {
	d.warnings = append(d.warnings, fmt.Sprintf(format, args...))
}

// line emits one line of Markdown.
func (d *document) line(s string) {
	d.md.PlainText(s)
	d.lastBlank = strings.TrimSpace(s) == ""
}

// blank emits an empty line unless the previous line is empty.
func (d *document) blank() {
	if !d.lastBlank {
		d.line("")
	}
}

func (d *document) convert(lines []string) {
	for i := 0; i < len(lines); i++ {
		line := lines[i]

		if !listRe.MatchString(line) {
			d.listWidths = nil
		}

		switch {
		case codeOpenRe.MatchString(line):
			i = d.codeBlock(lines, i)
		case noteOpenRe.MatchString(line):
			i = d.noteBlock(lines, i)
		case htmlOpenRe.MatchString(line):
			i = d.rawBlock(lines, i)
		case strings.HasPrefix(line, "^") || strings.HasPrefix(line, "|"):
			i = d.table(lines, i)
		case headingRe.MatchString(line):
			d.heading(line)
		case hrRe.MatchString(line):
			d.blank()
			d.md.HorizontalRule()
			d.line("")
		case listRe.MatchString(line):
			d.listItem(line)
		case strings.HasPrefix(line, "  "):
			i = d.preformatted(lines, i)
		case quoteRe.MatchString(line):
			m := quoteRe.FindStringSubmatch(line)
			d.line(strings.Repeat("> ", len(m[1])) + d.inline(m[2]))
		case strings.TrimSpace(line) == "":
			d.blank()
		default:
			d.line(d.inline(line))
		}
	}
}

func (d *document) heading(line string) {
	m := headingRe.FindStringSubmatch(line)
	text := m[2]
	if d.title == "" {
		d.title = text
	}

	text = escapeHTML(text)

	d.blank()
	switch 7 - len(m[1]) {
	case 1:
		d.md.H1(text)
	case 2:
		d.md.H2(text)
	case 3:
		d.md.H3(text)
	case 4:
		d.md.H4(text)
	default:
		d.md.H5(text)
	}
	d.line("")
}

// listItem emits a list item. DokuWiki nests by two spaces per level;
// Markdown nests by the width of the parent marker.
func (d *document) listItem(line string) {
	m := listRe.FindStringSubmatch(line)
	depth := min(len(m[1])/2-1, len(d.listWidths))

	marker := "- "
	if m[2] == "-" {
		marker = "1. "
	}

	indent := 0
	for _, w := range d.listWidths[:depth] {
		indent += w
	}
	if len(d.listWidths) == 0 {
		d.blank()
	}
	d.listWidths = append(d.listWidths[:depth], len(marker))

	d.line(strings.Repeat(" ", indent) + marker + d.inline(m[3]))
}

// codeBlock emits a <code> or <file> block and returns the index of its
// closing line.
func (d *document) codeBlock(lines []string, start int) int {
	m := codeOpenRe.FindStringSubmatch(lines[start])
	tag, lang, filename, rest := m[1], m[2], strings.TrimSpace(m[3]), m[4]
	closing := "</" + tag + ">"

	if lang == "-" {
		lang = ""
	}

	content, end := collectBlock(lines, start, rest, closing)

	d.blank()
	if filename != "" && filename != "-" {
		d.line(markdown.Bold(markdown.Code(filename)))
		d.line("")
	}
	d.md.CodeBlocks(markdown.SyntaxHighlight(strings.ToLower(lang)), strings.Join(content, "\n"))
	d.line("")
	return end
}

// noteBlock emits a note box as a GitHub alert and returns the index of its
// closing line.
func (d *document) noteBlock(lines []string, start int) int {
	m := noteOpenRe.FindStringSubmatch(lines[start])
	kind, rest := strings.ToLower(m[1]), m[2]

	body, end := collectBlock(lines, start, rest, "</note>")

	converted := make([]string, 0, len(body))
	for _, l := range body {
		converted = append(converted, d.inline(strings.TrimSpace(l)))
	}
	text := strings.Join(converted, "\n> ")

	d.blank()
	switch kind {
	case "", "classic":
		d.md.Note(text)
	case "tip":
		d.md.Tip(text)
	case "important":
		d.md.Important(text)
	case "warning":
		d.md.Warning(text)
	case "caution":
		d.md.Caution(text)
	default:
		d.warn("unknown note type %q rendered as note", kind)
		d.md.Note(text)
	}
	d.line("")
	return end
}

// rawBlock passes <html> blocks through and keeps <php> blocks as code.
func (d *document) rawBlock(lines []string, start int) int {
	m := htmlOpenRe.FindStringSubmatch(lines[start])
	tag, rest := m[1], m[2]
	closing := "</" + tag + ">"

	content, end := collectBlock(lines, start, rest, closing)

	d.blank()
	if strings.EqualFold(tag, "php") {
		d.warn("php block kept as code")
		d.md.CodeBlocks(markdown.SyntaxHighlight("php"), strings.Join(content, "\n"))
	} else {
		for _, l := range content {
			d.md.PlainText(l)
		}
	}
	d.line("")
	return end
}

// preformatted emits consecutive lines indented by two spaces as a code
// block and returns the index of the last one.
func (d *document) preformatted(lines []string, start int) int {
	content := make([]string, 0)
	end := start
	for ; end < len(lines); end++ {
		l := lines[end]
		if !strings.HasPrefix(l, "  ") || listRe.MatchString(l) {
			break
		}
		content = append(content, strings.TrimPrefix(l, "  "))
	}

	d.blank()
	d.md.CodeBlocks(markdown.SyntaxHighlightNone, strings.Join(content, "\n"))
	d.line("")
	return end - 1
}

// table emits consecutive table rows and returns the index of the last one.
// The first row is the header; rows are padded to the widest row.
func (d *document) table(lines []string, start int) int {
	rows := make([][]string, 0)
	end := start
	for ; end < len(lines); end++ {
		l := strings.TrimRight(lines[end], " ")
		if !strings.HasPrefix(l, "^") && !strings.HasPrefix(l, "|") {
			break
		}
		rows = append(rows, d.tableCells(l))
	}

	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}
	for i := range rows {
		for len(rows[i]) < width {
			rows[i] = append(rows[i], "")
		}
	}

	d.blank()
	d.md.Table(markdown.TableSet{Header: rows[0], Rows: rows[1:]})
	d.lastBlank = true
	return end - 1
}

// tableCells splits a table row on its cell separators.
func (d *document) tableCells(row string) []string {
	cells := make([]string, 0)
	var cell strings.Builder
	depth := 0

	flush := func() {
		text := strings.TrimSpace(cell.String())
		if text == ":::" {
			text = ""
		}
		cells = append(cells, strings.ReplaceAll(d.inline(text), "|", `\|`))
		cell.Reset()
	}

	// Separators inside [[...]] and {{...}} belong to the link.
	for i := 1; i < len(row); i++ {
		ch := row[i]
		switch {
		case strings.HasPrefix(row[i:], "[[") || strings.HasPrefix(row[i:], "{{"):
			depth++
		case strings.HasPrefix(row[i:], "]]") || strings.HasPrefix(row[i:], "}}"):
			depth = max(depth-1, 0)
		case depth == 0 && (ch == '|' || ch == '^'):
			flush()
			continue
		}
		cell.WriteByte(ch)
	}
	if strings.TrimSpace(cell.String()) != "" {
		flush()
	}
	return cells
}

// collectBlock gathers the content of a block whose opening line ends with
// rest, up to the closing tag. It returns the content and the index of the
// closing line, or of the last line when the block is never closed.
func collectBlock(lines []string, start int, rest, closing string) ([]string, int) {
	if before, _, found := strings.Cut(rest, closing); found {
		return []string{before}, start
	}

	content := make([]string, 0)
	if strings.TrimSpace(rest) != "" {
		content = append(content, rest)
	}

	end := start + 1
	for ; end < len(lines); end++ {
		if before, _, found := strings.Cut(lines[end], closing); found {
			if strings.TrimSpace(before) != "" {
				content = append(content, before)
			}
			return content, end
		}
		content = append(content, lines[end])
	}
	return content, len(lines) - 1
}
