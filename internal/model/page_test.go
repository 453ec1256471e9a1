package model

import (
	"encoding/json"
	"errors"
	"testing"
)

// TestPageIdentity tests value equality and the DokuWiki id of a page.
func TestPageIdentity(t *testing.T) {
	t.Parallel()

	t.Run("pages with same tag and name are equal", func(t *testing.T) {
		t.Parallel()

		if NewPage("fr", "tutoriel") != NewPage("fr", "tutoriel") {
			t.Error("expected equal pages")
		}
		if NewPage("fr", "tutoriel") == NotNamespaced("tutoriel") {
			t.Error("expected pages with different tags to differ")
		}
	})

	t.Run("id joins tag and name with a colon", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			page Page
			want string
		}{
			{NewPage("a:b", "c"), "a:b:c"},
			{NotNamespaced("start"), "start"},
			{NewPage("tutorial", "blocks"), "tutorial:blocks"},
		}
		for _, tt := range tests {
			if got := tt.page.ID(); got != tt.want {
				t.Errorf("ID() = %q, want %q", got, tt.want)
			}
		}
	})
}

// TestPageIsFrench tests detection of the French namespace.
func TestPageIsFrench(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		tag  string
		want bool
	}{
		{"fr namespace", "fr", true},
		{"fr child namespace", "fr:tutoriel", true},
		{"deep fr child namespace", "fr:tutoriel:avance", true},
		{"france is not french", "france", false},
		{"fr as suffix", "docs:fr", false},
		{"un-namespaced", "", false},
		{"english tutorial", "tutorial", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := NewPage(tt.tag, "x").IsFrench(); got != tt.want {
				t.Errorf("IsFrench() for tag %q = %v, want %v", tt.tag, got, tt.want)
			}
		})
	}
}

// TestPageRelativeDirectoryPath tests the namespace to directory mapping.
func TestPageRelativeDirectoryPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		tag  string
		want string
	}{
		{"a:b", "a/b/"},
		{"tutorial", "tutorial/"},
		{"", ""},
		{"fr:tutoriel", "fr/tutoriel/"},
	}

	for _, tt := range tests {
		if got := NewPage(tt.tag, "c").RelativeDirectoryPath(); got != tt.want {
			t.Errorf("RelativeDirectoryPath() for tag %q = %q, want %q", tt.tag, got, tt.want)
		}
	}
}

// TestPageJSON tests the registry record encoding.
func TestPageJSON(t *testing.T) {
	t.Parallel()

	t.Run("un-namespaced page encodes tag as null", func(t *testing.T) {
		t.Parallel()

		data, err := json.Marshal(NotNamespaced("install"))
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		if string(data) != `{"tag":null,"name":"install"}` {
			t.Errorf("unexpected encoding: %s", data)
		}
	})

	t.Run("namespaced page encodes tag as string", func(t *testing.T) {
		t.Parallel()

		data, err := json.Marshal(NewPage("fr:tutoriel", "blocs"))
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		if string(data) != `{"tag":"fr:tutoriel","name":"blocs"}` {
			t.Errorf("unexpected encoding: %s", data)
		}
	})

	t.Run("missing tag decodes as un-namespaced", func(t *testing.T) {
		t.Parallel()

		var p Page
		if err := json.Unmarshal([]byte(`{"name":"rules"}`), &p); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		if p != NotNamespaced("rules") {
			t.Errorf("got %+v", p)
		}
	})

	t.Run("null record is rejected", func(t *testing.T) {
		t.Parallel()

		var pages []Page
		err := json.Unmarshal([]byte(`[null]`), &pages)
		if !errors.Is(err, ErrNullPage) {
			t.Errorf("expected ErrNullPage, got %v", err)
		}
	})
}

// TestDenylist tests name based filtering.
func TestDenylist(t *testing.T) {
	t.Parallel()

	d := NewDenylist("start", "sidebar")
	pages := []Page{
		NotNamespaced("start"),
		NewPage("tutorial", "start"),
		NotNamespaced("install"),
		NewPage("tutorial", "sidebar"),
		NewPage("tutorial", "blocks"),
	}

	got := d.Filter(pages)
	want := []Page{NotNamespaced("install"), NewPage("tutorial", "blocks")}

	if len(got) != len(want) {
		t.Fatalf("expected %d pages, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("page %d: got %v, want %v", i, got[i], want[i])
		}
	}
	if len(pages) != 5 {
		t.Error("Filter must not modify its input")
	}
}

// TestWikiURLs tests derived remote URLs.
func TestWikiURLs(t *testing.T) {
	t.Parallel()

	w := NewWiki("https://fabricmc.net/wiki")
	p := NewPage("tutorial", "blocks")

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"page", w.PageURL(p), "https://fabricmc.net/wiki/tutorial:blocks"},
		{"edit", w.EditURL(p), "https://fabricmc.net/wiki/tutorial:blocks?do=edit"},
		{"revisions", w.RevisionsURL(p, 20), "https://fabricmc.net/wiki/tutorial:blocks?do=revisions&first=20"},
		{"root page", w.PageURL(NotNamespaced("install")), "https://fabricmc.net/wiki/install"},
		{"index", w.IndexURL(), "https://fabricmc.net/wiki/start?do=index"},
		{"tag index", w.TagIndexURL("fr:tutoriel"), "https://fabricmc.net/wiki/start?idx=fr%3Atutoriel"},
		{"media", w.MediaURL(":tutorial:blocks.png"), "https://fabricmc.net/wiki/_media/tutorial:blocks.png"},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s URL = %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}

// TestMigrationSetRaw tests hashing of fetched sources.
func TestMigrationSetRaw(t *testing.T) {
	t.Parallel()

	m := NewMigration(NotNamespaced("install"), "https://example.com/wiki/install")
	m.SetRaw("Hello, World!")

	// Expected SHA256 of "Hello, World!"
	expected := "dffd6021bb2bd5b0af676290809ec3a53191dd81c7f70a4b28688a362182986f"
	if m.Hash != expected {
		t.Errorf("got %q, expected %q", m.Hash, expected)
	}

	m.SetRaw("")
	if m.Hash != "" {
		t.Errorf("expected empty hash for empty content, got %q", m.Hash)
	}
}
