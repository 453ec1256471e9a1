package linkcheck

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/afero"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"github.com/nao1215/doku2md/internal/pipeline"
)

// BrokenLink is a relative link whose target does not exist.
type BrokenLink struct {
	// File is the document holding the link, relative to the root.
	File string `json:"file"`

	// Destination is the link as written.
	Destination string `json:"destination"`

	// Target is the resolved path, relative to the root.
	Target string `json:"target"`
}

// String implements fmt.Stringer.
func (b BrokenLink) String() string {
	return fmt.Sprintf("%s: %s (%s not found)", b.File, b.Destination, b.Target)
}

// Result summarises a check.
type Result struct {
	// Files is the number of Markdown documents read.
	Files int `json:"files"`

	// Links is the number of relative links checked.
	Links int `json:"links"`

	// Broken lists broken links ordered by file.
	Broken []BrokenLink `json:"broken"`
}

// OK reports whether no broken link was found.
func (r *Result) OK() bool {
	return len(r.Broken) == 0
}

// Checker walks a docs tree.
type Checker struct {
	fs     afero.Fs
	root   string
	md     goldmark.Markdown
	logger *slog.Logger
}

// Option configures a Checker.
type Option func(*Checker)

// WithLogger sets a custom logger for the checker.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Checker) {
		c.logger = logger
	}
}

// NewChecker creates a Checker for the tree rooted at root.
func NewChecker(fsys afero.Fs, root string, opts ...Option) *Checker {
	c := &Checker{
		fs:   fsys,
		root: root,
		md:   goldmark.New(goldmark.WithExtensions(extension.GFM, extension.Footnote)),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Check reads every Markdown file under the root and returns the broken
// links. Cancellation is checked between files.
func (c *Checker) Check(ctx context.Context) (*Result, error) {
	result := &Result{Broken: make([]BrokenLink, 0)}

	err := afero.Walk(c.fs, c.root, func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if info.IsDir() || !strings.EqualFold(filepath.Ext(p), ".md") {
			return nil
		}

		rel, err := filepath.Rel(c.root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		links, err := c.links(p)
		if err != nil {
			return fmt.Errorf("%s: %w", rel, err)
		}

		result.Files++
		for _, dest := range links {
			target, ok := resolve(rel, dest)
			if !ok {
				continue
			}
			result.Links++

			exists, err := afero.Exists(c.fs, filepath.Join(c.root, filepath.FromSlash(target)))
			if err != nil {
				return err
			}
			if !exists {
				c.logger.Debug("broken link", "file", rel, "destination", dest)
				result.Broken = append(result.Broken, BrokenLink{File: rel, Destination: dest, Target: target})
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to check links under %s: %w", c.root, err)
	}

	slices.SortStableFunc(result.Broken, func(a, b BrokenLink) int {
		return strings.Compare(a.File, b.File)
	})

	c.logger.Info("link check complete",
		"files", result.Files,
		"links", result.Links,
		"broken", len(result.Broken),
	)
	return result, nil
}

// links returns the link and image destinations of one document.
func (c *Checker) links(p string) ([]string, error) {
	source, err := afero.ReadFile(c.fs, p)
	if err != nil {
		return nil, err
	}

	_, body, err := pipeline.ParseFrontMatter(source)
	if err != nil {
		return nil, err
	}

	doc := c.md.Parser().Parse(text.NewReader(body))
	dests := make([]string, 0)

	err = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Link:
			dests = append(dests, string(node.Destination))
		case *ast.Image:
			dests = append(dests, string(node.Destination))
		}
		return ast.WalkContinue, nil
	})
	return dests, err
}

// resolve returns the root relative path a destination found in file points
// to. It reports false for destinations that are not local files.
func resolve(file, dest string) (string, bool) {
	u, err := url.Parse(dest)
	if err != nil || u.Scheme != "" || u.Host != "" || u.Path == "" {
		return "", false
	}

	target := u.Path
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(path.Clean(target), "/"), true
	}
	return path.Join(path.Dir(file), target), true
}
