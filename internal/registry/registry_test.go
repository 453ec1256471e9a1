package registry

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/nao1215/doku2md/internal/model"
)

var testDenylist = model.NewDenylist("start", "sidebar", "wiki_meta")

// newTestRegistry returns a registry on an in-memory filesystem.
func newTestRegistry() (*Registry, afero.Fs) {
	fs := afero.NewMemMapFs()
	return New(fs, filepath.Join("resources", "pages.json"), testDenylist), fs
}

// TestRegistryRoundTrip tests that Save then Load yields the saved list
// minus denylisted names.
func TestRegistryRoundTrip(t *testing.T) {
	t.Parallel()

	reg, _ := newTestRegistry()

	pages := []model.Page{
		model.NewPage("tutorial", "blocks"),
		model.NotNamespaced("start"),
		model.NewPage("fr:tutoriel", "blocs"),
		model.NotNamespaced("install"),
		model.NewPage("tutorial", "sidebar"),
	}

	if err := reg.Save(pages); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := reg.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	want := []model.Page{
		model.NewPage("tutorial", "blocks"),
		model.NewPage("fr:tutoriel", "blocs"),
		model.NotNamespaced("install"),
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d pages, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("page %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

// TestRegistrySave tests the on-disk form of the registry.
func TestRegistrySave(t *testing.T) {
	t.Parallel()

	t.Run("file never contains a denylisted name", func(t *testing.T) {
		t.Parallel()

		reg, fs := newTestRegistry()
		if err := reg.Save([]model.Page{model.NotNamespaced("start"), model.NotNamespaced("rules")}); err != nil {
			t.Fatalf("save failed: %v", err)
		}

		data, err := afero.ReadFile(fs, reg.Path())
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}
		if strings.Contains(string(data), `"start"`) {
			t.Errorf("registry contains denylisted name: %s", data)
		}
		if !strings.Contains(string(data), `"tag": null`) {
			t.Errorf("expected null tag in registry: %s", data)
		}
	})

	t.Run("overwrites the previous registry", func(t *testing.T) {
		t.Parallel()

		reg, _ := newTestRegistry()
		if err := reg.Save([]model.Page{model.NotNamespaced("a"), model.NotNamespaced("b")}); err != nil {
			t.Fatalf("first save failed: %v", err)
		}
		if err := reg.Save([]model.Page{model.NotNamespaced("c")}); err != nil {
			t.Fatalf("second save failed: %v", err)
		}

		got, err := reg.Load()
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if len(got) != 1 || got[0] != model.NotNamespaced("c") {
			t.Errorf("expected only page c, got %v", got)
		}
	})

	t.Run("empty list is saved as an empty array", func(t *testing.T) {
		t.Parallel()

		reg, fs := newTestRegistry()
		if err := reg.Save(nil); err != nil {
			t.Fatalf("save failed: %v", err)
		}
		data, _ := afero.ReadFile(fs, reg.Path())
		if strings.TrimSpace(string(data)) != "[]" {
			t.Errorf("expected [], got %q", data)
		}
	})

	t.Run("read-only filesystem returns WriteError", func(t *testing.T) {
		t.Parallel()

		reg := New(afero.NewReadOnlyFs(afero.NewMemMapFs()), "pages.json", testDenylist)
		err := reg.Save([]model.Page{model.NotNamespaced("install")})

		var writeErr *WriteError
		if !errors.As(err, &writeErr) {
			t.Fatalf("expected WriteError, got %v", err)
		}
		if writeErr.Path != "pages.json" {
			t.Errorf("expected path pages.json, got %q", writeErr.Path)
		}
	})
}

// TestRegistryLoad tests load failures and filtering.
func TestRegistryLoad(t *testing.T) {
	t.Parallel()

	t.Run("missing file returns ReadError", func(t *testing.T) {
		t.Parallel()

		reg, _ := newTestRegistry()
		_, err := reg.Load()

		var readErr *ReadError
		if !errors.As(err, &readErr) {
			t.Fatalf("expected ReadError, got %v", err)
		}
	})

	t.Run("malformed file returns ParseError", func(t *testing.T) {
		t.Parallel()

		reg, fs := newTestRegistry()
		if err := afero.WriteFile(fs, reg.Path(), []byte(`{"not": "a list"`), 0600); err != nil {
			t.Fatalf("setup failed: %v", err)
		}

		_, err := reg.Load()
		var parseErr *ParseError
		if !errors.As(err, &parseErr) {
			t.Fatalf("expected ParseError, got %v", err)
		}
	})

	t.Run("denylisted names written by hand are filtered on load", func(t *testing.T) {
		t.Parallel()

		reg, fs := newTestRegistry()
		content := `[{"tag":null,"name":"start"},{"tag":"tutorial","name":"blocks"},{"tag":null,"name":"wiki_meta"}]`
		if err := afero.WriteFile(fs, reg.Path(), []byte(content), 0600); err != nil {
			t.Fatalf("setup failed: %v", err)
		}

		got, err := reg.Load()
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if len(got) != 1 || got[0] != model.NewPage("tutorial", "blocks") {
			t.Errorf("expected only tutorial:blocks, got %v", got)
		}
	})
}
