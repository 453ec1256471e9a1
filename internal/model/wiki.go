package model

import (
	"net/url"
	"strconv"
	"strings"
)

// indexPage is the page whose index view lists every namespace.
const indexPage = "start"

// Wiki derives remote URLs for pages of one DokuWiki site.
// BaseURL is the wiki root, e.g. "https://fabricmc.net/wiki/".
type Wiki struct {
	BaseURL string
}

// NewWiki returns a Wiki rooted at baseURL. A trailing slash is added when
// missing so that page ids can be appended directly.
func NewWiki(baseURL string) Wiki {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return Wiki{BaseURL: baseURL}
}

// PageURL returns the view URL of p.
func (w Wiki) PageURL(p Page) string {
	return w.BaseURL + p.ID()
}

// EditURL returns the URL of the edit form, which carries the raw source.
func (w Wiki) EditURL(p Page) string {
	return w.PageURL(p) + "?do=edit"
}

// RevisionsURL returns the revision history of p starting at offset first.
func (w Wiki) RevisionsURL(p Page, first int) string {
	return w.PageURL(p) + "?do=revisions&first=" + strconv.Itoa(first)
}

// MediaURL returns the download URL of a media file id such as
// "tutorial:blocks.png".
func (w Wiki) MediaURL(id string) string {
	return w.BaseURL + "_media/" + strings.TrimPrefix(id, ":")
}

// IndexURL returns the top-level sitemap listing all namespaces.
func (w Wiki) IndexURL() string {
	return w.BaseURL + indexPage + "?do=index"
}

// TagIndexURL returns the sitemap view with namespace tag expanded.
func (w Wiki) TagIndexURL(tag string) string {
	return w.BaseURL + indexPage + "?" + url.Values{"idx": {tag}}.Encode()
}
