// Package registry persists the list of pages scheduled for migration.
//
// The registry is a JSON array of {"tag": string|null, "name": string}
// records. It is the single source of truth for which pages the content
// pipeline processes. Denylisted names are filtered both when saving and when
// loading, so the file never holds one and callers never see one.
package registry

import (
	"encoding/json"

	"github.com/spf13/afero"

	"github.com/nao1215/doku2md/internal/fsutil"
	"github.com/nao1215/doku2md/internal/model"
)

// Registry loads and saves the page list at a fixed path.
type Registry struct {
	fs       afero.Fs
	path     string
	denylist model.Denylist
}

// New creates a Registry stored at path on fs.
func New(fs afero.Fs, path string, denylist model.Denylist) *Registry {
	return &Registry{
		fs:       fs,
		path:     path,
		denylist: denylist,
	}
}

// Path returns the location of the registry file.
func (r *Registry) Path() string {
	return r.path
}

// Load reads the registry and returns its pages without denylisted names.
// It returns a *ReadError if the file is missing or unreadable and a
// *ParseError if it is not a JSON page list.
func (r *Registry) Load() ([]model.Page, error) {
	data, err := afero.ReadFile(r.fs, r.path)
	if err != nil {
		return nil, &ReadError{Path: r.path, Err: err}
	}

	var pages []model.Page
	if err := json.Unmarshal(data, &pages); err != nil {
		return nil, &ParseError{Path: r.path, Err: err}
	}

	return r.denylist.Filter(pages), nil
}

// Save filters pages through the denylist and overwrites the registry.
// The list is written to a temporary file next to the registry and renamed
// over it, so a failed save never leaves a truncated registry behind.
func (r *Registry) Save(pages []model.Page) error {
	kept := r.denylist.Filter(pages)

	data, err := json.MarshalIndent(kept, "", "  ")
	if err != nil {
		return &WriteError{Path: r.path, Err: err}
	}
	data = append(data, '\n')

	if err := fsutil.WriteFileAtomic(r.fs, r.path, data, 0600); err != nil {
		return &WriteError{Path: r.path, Err: err}
	}
	return nil
}
