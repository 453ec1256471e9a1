package dokuwiki

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Names of the fixes reported by Fix.
const (
	FixLineEndings       = "line-endings"
	FixUnicode           = "unicode-nfc"
	FixMacros            = "macros"
	FixTabs              = "tabs"
	FixTrailingSpace     = "trailing-whitespace"
	FixUnclosedCodeBlock = "unclosed-code-block"
)

var (
	// macroRe matches page macros such as ~~NOTOC~~ or ~~DISCUSSION:off~~.
	macroRe = regexp.MustCompile(`~~[A-Z_]+(?::[^~]*)?~~`)

	// blockTagRe matches opening and closing tags of verbatim blocks.
	blockTagRe = regexp.MustCompile(`<(/?)(code|file)(?:\s[^>]*)?>`)
)

// Fix repairs source so that Convert can read it, and returns the fixed text
// with the names of the fixes that changed something. Content of code and
// file blocks is only touched by the line ending and Unicode fixes.
func Fix(source string) (string, []string) {
	applied := make([]string, 0)
	apply := func(name, fixed string) {
		if fixed != source {
			applied = append(applied, name)
			source = fixed
		}
	}

	apply(FixLineEndings, strings.ReplaceAll(strings.ReplaceAll(source, "\r\n", "\n"), "\r", "\n"))
	apply(FixUnicode, norm.NFC.String(source))
	apply(FixMacros, macroRe.ReplaceAllString(source, ""))

	lines := strings.Split(source, "\n")
	tabs, trailing := false, false
	inBlock := ""

	for i, line := range lines {
		if inBlock == "" {
			if fixed := expandLeadingTabs(line); fixed != line {
				line, tabs = fixed, true
			}
			if fixed := strings.TrimRight(line, " \t"); fixed != line {
				line, trailing = fixed, true
			}
			lines[i] = line
		}
		inBlock = scanBlockTags(line, inBlock)
	}

	if tabs {
		applied = append(applied, FixTabs)
	}
	if trailing {
		applied = append(applied, FixTrailingSpace)
	}
	source = strings.Join(lines, "\n")

	if inBlock != "" {
		source = strings.TrimRight(source, "\n") + "\n</" + inBlock + ">"
		applied = append(applied, FixUnclosedCodeBlock)
	}

	return strings.TrimRight(source, "\n") + "\n", applied
}

// expandLeadingTabs turns each tab of the leading indentation into two
// spaces, the indentation unit of DokuWiki lists.
func expandLeadingTabs(line string) string {
	end := len(line) - len(strings.TrimLeft(line, " \t"))
	if !strings.Contains(line[:end], "\t") {
		return line
	}
	return strings.ReplaceAll(line[:end], "\t", "  ") + line[end:]
}

// scanBlockTags returns the verbatim block still open at the end of line,
// given the block open at its start ("" for none).
func scanBlockTags(line, open string) string {
	for _, m := range blockTagRe.FindAllStringSubmatch(line, -1) {
		closing, name := m[1] == "/", m[2]
		switch {
		case open == "" && !closing:
			open = name
		case open == name && closing:
			open = ""
		}
	}
	return open
}
