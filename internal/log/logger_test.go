package log

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestNewLogger_Color tests that color codes are only written to terminals.
func TestNewLogger_Color(t *testing.T) {
	t.Parallel()

	t.Run("buffer gets plain text", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		NewLogger(&buf, Options{}).Warn("visiting", "url", "https://fabricmc.net/wiki/start")

		if strings.Contains(buf.String(), "\x1b[") {
			t.Errorf("unexpected escape sequence in %q", buf.String())
		}
		if !strings.Contains(buf.String(), "visiting") {
			t.Errorf("message missing from %q", buf.String())
		}
	})

	t.Run("redirected file gets plain text", func(t *testing.T) {
		t.Parallel()

		f, err := os.Create(filepath.Join(t.TempDir(), "doku2md.log"))
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		defer f.Close()

		if IsTerminal(f) {
			t.Fatal("regular file reported as terminal")
		}
		NewLogger(f, Options{}).Error("fetch failed")

		data, err := os.ReadFile(f.Name())
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}
		if strings.Contains(string(data), "\x1b[") {
			t.Errorf("unexpected escape sequence in %q", data)
		}
	})
}
