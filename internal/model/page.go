package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// ErrNullPage is returned when a registry entry is JSON null.
var ErrNullPage = errors.New("page record is null")

// NamespaceSeparator separates the segments of a DokuWiki namespace tag.
const NamespaceSeparator = ":"

// frenchTag is the namespace under which the French translation lives.
const frenchTag = "fr"

// Page identifies one wiki document.
// Two pages are the same page when both Tag and Name match, so Page is
// compared with == and can be used as a map key.
//
// Tag is the colon-delimited namespace (e.g. "tutorial" or "fr:tutoriel").
// An empty Tag means the page is not namespaced; it is serialized as null.
type Page struct {
	// Tag is the namespace path of the page, empty when un-namespaced.
	Tag string

	// Name is the leaf identifier of the page within its namespace.
	Name string
}

// NewPage returns a namespaced page.
func NewPage(tag, name string) Page {
	return Page{Tag: tag, Name: name}
}

// NotNamespaced returns a page that lives at the wiki root.
func NotNamespaced(name string) Page {
	return Page{Name: name}
}

// HasTag reports whether the page belongs to a namespace.
func (p Page) HasTag() bool {
	return p.Tag != ""
}

// ID returns the DokuWiki page id, "tag:name" or just "name".
func (p Page) ID() string {
	if !p.HasTag() {
		return p.Name
	}
	return p.Tag + NamespaceSeparator + p.Name
}

// String implements fmt.Stringer.
func (p Page) String() string {
	return p.ID()
}

// IsFrench reports whether the page belongs to the French translation.
// Only the "fr" namespace and its children count; "france" does not.
func (p Page) IsFrench() bool {
	return p.Tag == frenchTag || strings.HasPrefix(p.Tag, frenchTag+NamespaceSeparator)
}

// RelativeDirectoryPath returns the namespace as a slash separated directory
// with a trailing slash, or "" for un-namespaced pages.
func (p Page) RelativeDirectoryPath() string {
	if !p.HasTag() {
		return ""
	}
	return strings.ReplaceAll(p.Tag, NamespaceSeparator, "/") + "/"
}

// pageJSON is the on-disk form of a Page.
type pageJSON struct {
	Tag  *string `json:"tag"`
	Name string  `json:"name"`
}

// MarshalJSON encodes the page as {"tag": string|null, "name": string}.
func (p Page) MarshalJSON() ([]byte, error) {
	out := pageJSON{Name: p.Name}
	if p.HasTag() {
		tag := p.Tag
		out.Tag = &tag
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the {"tag", "name"} form. A null or missing tag
// yields an un-namespaced page.
func (p *Page) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return ErrNullPage
	}

	var in pageJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	p.Name = in.Name
	p.Tag = ""
	if in.Tag != nil {
		p.Tag = *in.Tag
	}
	return nil
}

// Denylist is a set of page names excluded from the registry.
type Denylist map[string]struct{}

// NewDenylist builds a Denylist from names.
func NewDenylist(names ...string) Denylist {
	d := make(Denylist, len(names))
	for _, n := range names {
		d[n] = struct{}{}
	}
	return d
}

// Contains reports whether name is denied.
func (d Denylist) Contains(name string) bool {
	_, ok := d[name]
	return ok
}

// Filter returns the pages whose name is not denied, preserving order.
// The input slice is not modified.
func (d Denylist) Filter(pages []Page) []Page {
	out := make([]Page, 0, len(pages))
	for _, p := range pages {
		if d.Contains(p.Name) {
			continue
		}
		out = append(out, p)
	}
	return out
}
