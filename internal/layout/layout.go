// Package layout maps wiki pages to their locations on disk.
//
// Every page is mirrored into four trees: the raw DokuWiki source, the fixed
// DokuWiki source, the converted markdown and the exposed docs. Namespaces
// become nested directories. Markdown paths additionally go through a path
// migration table so that the docs tree can be reorganised without touching
// the wiki.
package layout

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/nao1215/doku2md/internal/config"
	"github.com/nao1215/doku2md/internal/model"
)

const (
	dokuWikiExt = ".txt"
	markdownExt = ".md"
)

// Paths holds every location derived from one page.
type Paths struct {
	// RelativeDirectory is the namespace as "a/b/", or "" at the root.
	RelativeDirectory string

	// RawDirectory and RawPath locate the source as fetched.
	RawDirectory string
	RawPath      string

	// FixedDirectory and FixedPath locate the source after text fixes.
	FixedDirectory string
	FixedPath      string

	// RelativeMarkdown is the migrated markdown path, slash separated.
	RelativeMarkdown string

	// MarkdownPath and ExposedPath locate the converted document in the
	// markdown tree and in the docs tree.
	MarkdownPath string
	ExposedPath  string
}

// Mapper computes Paths. It is pure: it never touches the filesystem.
type Mapper struct {
	rawDir      string
	fixedDir    string
	markdownDir string
	docsDir     string
	migrations  []config.PathMigration
}

// NewMapper creates a Mapper for the directories and migrations in cfg.
func NewMapper(cfg *config.Config) *Mapper {
	return &Mapper{
		rawDir:      cfg.RawDir(),
		fixedDir:    cfg.FixedDir(),
		markdownDir: cfg.MarkdownDir(),
		docsDir:     cfg.DocsDir,
		migrations:  cfg.PathMigrations,
	}
}

// Map returns the paths of p.
func (m *Mapper) Map(p model.Page) Paths {
	rel := p.RelativeDirectoryPath()
	relMarkdown := m.MigratePath(rel + p.Name + markdownExt)

	rawDir := joinDir(m.rawDir, rel)
	fixedDir := joinDir(m.fixedDir, rel)

	return Paths{
		RelativeDirectory: rel,
		RawDirectory:      rawDir,
		RawPath:           filepath.Join(rawDir, p.Name+dokuWikiExt),
		FixedDirectory:    fixedDir,
		FixedPath:         filepath.Join(fixedDir, p.Name+dokuWikiExt),
		RelativeMarkdown:  relMarkdown,
		MarkdownPath:      filepath.Join(m.markdownDir, filepath.FromSlash(relMarkdown)),
		ExposedPath:       filepath.Join(m.docsDir, filepath.FromSlash(relMarkdown)),
	}
}

// MigratePath applies the first matching path migration to rel.
// Rules whose From ends in "/" replace a directory prefix; other rules must
// match rel exactly. Without a match rel is returned unchanged.
func (m *Mapper) MigratePath(rel string) string {
	for _, mig := range m.migrations {
		if strings.HasSuffix(mig.From, "/") {
			if strings.HasPrefix(rel, mig.From) {
				return path.Join(mig.To, strings.TrimPrefix(rel, mig.From))
			}
			continue
		}
		if rel == mig.From {
			return mig.To
		}
	}
	return rel
}

// RelativeLink returns the link from the markdown document of from to the
// markdown document of to, both inside the docs tree.
func (m *Mapper) RelativeLink(from, to model.Page) string {
	fromDir := path.Dir(m.Map(from).RelativeMarkdown)
	target := m.Map(to).RelativeMarkdown

	rel, err := filepath.Rel(filepath.FromSlash(fromDir), filepath.FromSlash(target))
	if err != nil {
		return target
	}
	return filepath.ToSlash(rel)
}

// joinDir joins base and a slash separated relative directory, keeping a
// trailing separator so that the directory can be recognised as such.
func joinDir(base, rel string) string {
	if rel == "" {
		return base + string(filepath.Separator)
	}
	return filepath.Join(base, filepath.FromSlash(rel)) + string(filepath.Separator)
}
