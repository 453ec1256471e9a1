package dokuwiki

import (
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"

	"github.com/nao1215/doku2md/internal/model"
)

var (
	nowikiRe      = regexp.MustCompile(`<nowiki>(.*?)</nowiki>|%%(.*?)%%`)
	monospaceRe   = regexp.MustCompile(`''(.+?)''`)
	linkRe        = regexp.MustCompile(`\[\[(.+?)\]\]`)
	mediaRe       = regexp.MustCompile(`\{\{(.+?)\}\}`)
	footnoteRe    = regexp.MustCompile(`\(\((.+?)\)\)`)
	bareURLRe     = regexp.MustCompile(`\bhttps?://[^\s<>\[\]()|]+`)
	emailRe       = regexp.MustCompile(`<([\w.+-]+@[\w-]+(?:\.[\w-]+)+)>`)
	italicRe      = regexp.MustCompile(`//(.+?)//`)
	underlineRe   = regexp.MustCompile(`__(.+?)__`)
	deletedRe     = regexp.MustCompile(`<del>(.*?)</del>`)
	lineBreakRe   = regexp.MustCompile(`\\\\(?:\s+|$)`)
	placeholderRe = regexp.MustCompile("\x00(\\d+)\x00")
	schemeRe      = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)
	anchorCleanRe = regexp.MustCompile(`[^\p{L}\p{N}_-]+`)
)

// interwiki holds the URL prefixes of the shortcuts a stock DokuWiki ships.
var interwiki = map[string]string{
	"wp":     "https://en.wikipedia.org/wiki/",
	"wpfr":   "https://fr.wikipedia.org/wiki/",
	"wpde":   "https://de.wikipedia.org/wiki/",
	"doku":   "https://www.dokuwiki.org/",
	"google": "https://www.google.com/search?q=",
	"github": "https://github.com/",
}

// imageExts are media extensions rendered as images rather than links.
var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".svg": true, ".webp": true,
}

// inline converts the inline markup of one line. Constructs whose content
// must not be reinterpreted are swapped for placeholders first and restored
// at the end. Placeholders are numbered per document so that nested calls
// for link labels and footnotes can restore each other's.
func (d *document) inline(text string) string {
	protect := func(s string) string {
		d.protected = append(d.protected, s)
		return "\x00" + strconv.Itoa(len(d.protected)-1) + "\x00"
	}
	replace := func(re *regexp.Regexp, fn func(m []string) string) {
		text = re.ReplaceAllStringFunc(text, func(s string) string {
			return fn(re.FindStringSubmatch(s))
		})
	}

	replace(nowikiRe, func(m []string) string {
		return protect(escapeMarkdown(m[1] + m[2]))
	})
	replace(monospaceRe, func(m []string) string {
		return protect(code(m[1]))
	})
	replace(linkRe, func(m []string) string {
		target, label, _ := strings.Cut(m[1], "|")
		return protect(d.link(target, label))
	})
	replace(mediaRe, func(m []string) string {
		return protect(d.media(m[1]))
	})
	replace(footnoteRe, func(m []string) string {
		d.footnotes = append(d.footnotes, d.inline(m[1]))
		return protect(fmt.Sprintf("[^%d]", len(d.footnotes)))
	})
	replace(emailRe, func(m []string) string {
		return protect("<" + m[1] + ">")
	})
	replace(bareURLRe, func(m []string) string {
		return protect(m[0])
	})

	replace(deletedRe, func(m []string) string {
		return markdown.Strikethrough(m[1])
	})
	text = escapeHTML(text)

	replace(italicRe, func(m []string) string {
		return markdown.Italic(m[1])
	})
	replace(underlineRe, func(m []string) string {
		return "<ins>" + m[1] + "</ins>"
	})
	text = lineBreakRe.ReplaceAllString(text, "<br>")

	for range len(d.protected) + 1 {
		if !placeholderRe.MatchString(text) {
			break
		}
		text = placeholderRe.ReplaceAllStringFunc(text, func(s string) string {
			i, _ := strconv.Atoi(placeholderRe.FindStringSubmatch(s)[1])
			return d.protected[i]
		})
	}
	return text
}

// link converts the target and label of a [[...]] link.
func (d *document) link(target, label string) string {
	target = strings.TrimSpace(target)
	label = strings.TrimSpace(label)

	if label != "" {
		label = d.inline(label)
	}

	switch {
	case schemeRe.MatchString(target):
		if label == "" {
			return "<" + target + ">"
		}
		return markdown.Link(label, target)

	case strings.Contains(target, ">"):
		shortcut, rest, _ := strings.Cut(target, ">")
		prefix, ok := interwiki[strings.ToLower(shortcut)]
		if label == "" {
			label = escapeHTML(rest)
		}
		if !ok {
			d.warn("unknown interwiki link %q kept as text", target)
			return label
		}
		return markdown.Link(label, prefix+rest)

	case strings.Contains(target, "@") && !strings.Contains(target, ":"):
		if label == "" {
			label = target
		}
		return markdown.Link(label, "mailto:"+target)
	}

	id, anchor, _ := strings.Cut(target, "#")
	if anchor != "" {
		anchor = "#" + sectionAnchor(anchor)
	}
	if id == "" {
		if label == "" {
			label = target
		}
		return markdown.Link(label, anchor)
	}

	page := d.resolvePage(id)
	if label == "" {
		label = strings.TrimPrefix(id, ":")
	}
	return markdown.Link(label, d.c.resolver.RelativeLink(d.page, page)+anchor)
}

// resolvePage resolves a page id relative to the current page the way
// DokuWiki does: ids with a colon are absolute, ".:" and "..:" are relative
// to the current namespace, plain names live in the current namespace.
func (d *document) resolvePage(id string) model.Page {
	id = cleanID(id)
	ns := d.page.Tag

	switch {
	case strings.HasPrefix(id, ":"):
		id = strings.TrimPrefix(id, ":")
	case strings.HasPrefix(id, "..:"):
		parent := ""
		if i := strings.LastIndex(ns, ":"); i >= 0 {
			parent = ns[:i]
		}
		id = joinID(parent, strings.TrimPrefix(id, "..:"))
	case strings.HasPrefix(id, ".:"):
		id = joinID(ns, strings.TrimPrefix(id, ".:"))
	case !strings.Contains(id, ":"):
		id = joinID(ns, id)
	}

	tag, name := "", id
	if i := strings.LastIndex(id, ":"); i >= 0 {
		tag, name = id[:i], id[i+1:]
	}
	if name == "" {
		name = "start"
	}
	return model.NewPage(tag, name)
}

// media converts the content of a {{...}} media reference.
func (d *document) media(ref string) string {
	target, caption, _ := strings.Cut(ref, "|")
	target = strings.TrimSpace(target)
	caption = strings.TrimSpace(caption)
	target, _, _ = strings.Cut(target, "?")

	var url string
	if schemeRe.MatchString(target) {
		url = target
	} else {
		url = d.c.wiki.MediaURL(cleanID(target))
	}

	name := path.Base(strings.ReplaceAll(target, ":", "/"))
	if !imageExts[strings.ToLower(path.Ext(name))] {
		if caption == "" {
			caption = name
		}
		return markdown.Link(caption, url)
	}
	return markdown.Image(caption, url)
}

// cleanID normalises a page or media id: lower case, spaces as underscores.
func cleanID(id string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(id)), " ", "_")
}

func joinID(ns, id string) string {
	if ns == "" {
		return id
	}
	return ns + ":" + id
}

// sectionAnchor turns a DokuWiki section id into a GitHub heading anchor.
func sectionAnchor(section string) string {
	s := strings.ToLower(strings.TrimSpace(section))
	s = anchorCleanRe.ReplaceAllString(strings.ReplaceAll(s, " ", "-"), "")
	return strings.ReplaceAll(s, "_", "-")
}

// markdownEscaper backslash-escapes characters Markdown would interpret.
var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", "*", `\*`, "_", `\_`, "[", `\[`, "]", `\]`, "<", `\<`, ">", `\>`, "#", `\#`,
)

// htmlEscaper backslash-escapes the characters that would start raw HTML or
// an entity. DokuWiki renders them as text.
var htmlEscaper = strings.NewReplacer("&", `\&`, "<", `\<`, ">", `\>`)

// escapeHTML keeps markup-like wiki text from being read as HTML.
func escapeHTML(text string) string {
	return htmlEscaper.Replace(text)
}

// escapeMarkdown keeps text literal in Markdown.
func escapeMarkdown(text string) string {
	return markdownEscaper.Replace(text)
}

// code renders inline code, widening the fence when text holds a backtick.
func code(text string) string {
	if strings.Contains(text, "`") {
		return "`` " + text + " ``"
	}
	return markdown.Code(text)
}
