package scraper

import (
	"bytes"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Selectors of the DokuWiki sitemap index.
const (
	tagSelector  = ".idx_dir"
	openSelector = "#index__tree .open"
	listSelector = ".idx"
)

// Element id and class names of the edit form and the revision list.
const (
	editTextareaID  = "wiki__text"
	revisionsFormID = "page__revisions"
	userClass       = "user"
)

// ParseTags returns the text of every namespace entry of the sitemap index,
// in document order.
func ParseTags(content io.Reader) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(content)
	if err != nil {
		return nil, err
	}

	tags := make([]string, 0)
	doc.Find(tagSelector).Each(func(_ int, s *goquery.Selection) {
		if text := normalizeText(s.Text()); text != "" {
			tags = append(tags, text)
		}
	})
	return tags, nil
}

// ParseChildren returns the text of every child of the first opened
// namespace of a tag index page. An opened namespace without a list has no
// children; a page without an opened namespace is a structure error.
func ParseChildren(content io.Reader) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(content)
	if err != nil {
		return nil, err
	}

	open := doc.Find(openSelector).First()
	if open.Length() == 0 {
		return nil, fmt.Errorf("%w: no %q element", ErrUnexpectedStructure, openSelector)
	}

	children := make([]string, 0)
	list := open.Find(listSelector).First()
	if list.Length() == 0 {
		return children, nil
	}

	list.Children().Each(func(_ int, s *goquery.Selection) {
		if text := normalizeText(s.Text()); text != "" {
			children = append(children, text)
		}
	})
	return children, nil
}

// ParseEditSource returns the content of the edit form textarea, which holds
// the page's DokuWiki source.
func ParseEditSource(content io.Reader) (string, error) {
	doc, err := html.Parse(content)
	if err != nil {
		return "", err
	}

	textarea := findElement(doc, func(n *html.Node) bool {
		return n.Data == "textarea" && getAttr(n, "id") == editTextareaID
	})
	if textarea == nil {
		return "", fmt.Errorf("%w: no edit textarea", ErrUnexpectedStructure)
	}
	return textContent(textarea), nil
}

// ParseRevisionAuthors returns the author of every entry of a revision list
// page, newest first as the wiki lists them. A page without a revision list
// yields no authors.
func ParseRevisionAuthors(content io.Reader) ([]string, error) {
	doc, err := html.Parse(content)
	if err != nil {
		return nil, err
	}

	form := findElement(doc, func(n *html.Node) bool {
		return getAttr(n, "id") == revisionsFormID
	})
	if form == nil {
		return []string{}, nil
	}

	authors := make([]string, 0)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "span" && hasClass(n, userClass) {
			if name := normalizeText(textContent(n)); name != "" {
				authors = append(authors, name)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(form)

	return authors, nil
}

// findElement returns the first element node in document order matching fn.
func findElement(n *html.Node, fn func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && fn(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, fn); found != nil {
			return found
		}
	}
	return nil
}

// textContent concatenates all text below n.
func textContent(n *html.Node) string {
	var buf bytes.Buffer
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return buf.String()
}

// normalizeText trims and collapses whitespace runs into single spaces.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// hasClass reports whether n carries class in its class attribute.
func hasClass(n *html.Node, class string) bool {
	return slices.Contains(strings.Fields(getAttr(n, "class")), class)
}
