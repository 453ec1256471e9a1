package linkcheck

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"
)

func newTree(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()

	fs := afero.NewMemMapFs()
	for name, content := range files {
		if err := afero.WriteFile(fs, name, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return fs
}

// TestCheck tests link validation of a docs tree.
func TestCheck(t *testing.T) {
	t.Parallel()

	t.Run("valid tree", func(t *testing.T) {
		t.Parallel()

		fs := newTree(t, map[string]string{
			"docs/install.md":         "---\ntitle: Install\n---\n\nSee [blocks](tutorial/blocks.md#usage).\n",
			"docs/tutorial/blocks.md": "---\ntitle: Blocks\n---\n\n[Items](items.md) [Install](../install.md) [top](#blocks)\n",
			"docs/tutorial/items.md":  "# Items\n\n![logo](https://fabricmc.net/logo.png) <https://fabricmc.net> [mail](mailto:me@example.com)\n",
			"docs/tutorial/notes.txt": "[ignored](nowhere.md)\n",
		})

		result, err := NewChecker(fs, "docs").Check(context.Background())
		if err != nil {
			t.Fatalf("check failed: %v", err)
		}
		if !result.OK() {
			t.Errorf("unexpected broken links %v", result.Broken)
		}
		if result.Files != 3 {
			t.Errorf("files = %d, want 3", result.Files)
		}
		if result.Links != 3 {
			t.Errorf("links = %d, want 3", result.Links)
		}
	})

	t.Run("broken relative links are reported", func(t *testing.T) {
		t.Parallel()

		fs := newTree(t, map[string]string{
			"docs/tutorial/blocks.md": "---\ntitle: Blocks\n---\n\n[Items](items.md)\n\n| a | [b](missing.md) |\n|---|---|\n| c | ![img](img/x.png) |\n",
			"docs/install.md":         "[Start](/start.md)\n",
		})

		result, err := NewChecker(fs, "docs").Check(context.Background())
		if err != nil {
			t.Fatalf("check failed: %v", err)
		}

		want := []BrokenLink{
			{File: "install.md", Destination: "/start.md", Target: "start.md"},
			{File: "tutorial/blocks.md", Destination: "items.md", Target: "tutorial/items.md"},
			{File: "tutorial/blocks.md", Destination: "missing.md", Target: "tutorial/missing.md"},
			{File: "tutorial/blocks.md", Destination: "img/x.png", Target: "tutorial/img/x.png"},
		}
		if len(result.Broken) != len(want) {
			t.Fatalf("broken = %v, want %v", result.Broken, want)
		}
		for i := range want {
			if result.Broken[i] != want[i] {
				t.Errorf("broken[%d] = %+v, want %+v", i, result.Broken[i], want[i])
			}
		}
	})

	t.Run("missing root", func(t *testing.T) {
		t.Parallel()

		if _, err := NewChecker(afero.NewMemMapFs(), "docs").Check(context.Background()); err == nil {
			t.Error("expected error for a missing root")
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		fs := newTree(t, map[string]string{"docs/a.md": "# A\n"})
		if _, err := NewChecker(fs, "docs").Check(ctx); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

// TestResolve tests destination resolution.
func TestResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		dest   string
		target string
		ok     bool
	}{
		{"items.md", "tutorial/items.md", true},
		{"../install.md#top", "install.md", true},
		{"/start.md", "start.md", true},
		{"#usage", "", false},
		{"https://fabricmc.net", "", false},
		{"mailto:me@example.com", "", false},
		{"//cdn.example.com/x.png", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.dest, func(t *testing.T) {
			t.Parallel()

			target, ok := resolve("tutorial/blocks.md", tt.dest)
			if target != tt.target || ok != tt.ok {
				t.Errorf("resolve(%q) = %q, %v; want %q, %v", tt.dest, target, ok, tt.target, tt.ok)
			}
		})
	}
}
