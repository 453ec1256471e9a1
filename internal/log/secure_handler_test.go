package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
)

// TestSecureHandler_SanitizesSensitiveKeys tests that sensitive keys are masked.
func TestSecureHandler_SanitizesSensitiveKeys(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		key      string
		value    string
		wantMask bool
	}{
		{name: "cookie key is masked", key: "cookie", value: "session=abc123", wantMask: true},
		{name: "Cookie key (uppercase) is masked", key: "Cookie", value: "session=abc123", wantMask: true},
		{name: "authorization key is masked", key: "authorization", value: "Bearer token123", wantMask: true},
		{name: "password key is masked", key: "password", value: "hunter2", wantMask: true},
		{name: "wiki_cookie key is masked", key: "wiki_cookie", value: "abc", wantMask: true},
		{name: "session_id key is masked", key: "session_id", value: "sess_12345", wantMask: true},
		{name: "url key is not masked", key: "url", value: "https://fabricmc.net/wiki/start?do=index", wantMask: false},
		{name: "page_key is not masked", key: "page_key", value: "tutorial:blocks", wantMask: false},
		{name: "status key is not masked", key: "status", value: "200", wantMask: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := NewLogger(&buf, Options{Verbose: true, NoColor: true})

			logger.Info("test message", tt.key, tt.value)

			output := buf.String()
			if tt.wantMask {
				if strings.Contains(output, tt.value) {
					t.Errorf("expected value %q to be masked, found in output: %s", tt.value, output)
				}
				if !strings.Contains(output, MaskValue) {
					t.Errorf("expected mask value in output: %s", output)
				}
			} else if !strings.Contains(output, tt.value) {
				t.Errorf("expected value %q in output: %s", tt.value, output)
			}
		})
	}
}

// TestSecureHandler_SanitizesSensitivePatterns tests value pattern masking.
func TestSecureHandler_SanitizesSensitivePatterns(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value string
	}{
		{"DokuWiki session cookie", "DokuWiki=4f2a1c0d9e"},
		{"DokuWiki auth cookie after another cookie", "lang=en; DW68700bfd16c2027de7de74a5a8202a6f=abc"},
		{"bearer token", "Bearer abc.def"},
		{"JWT", "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxIn0.sig"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := NewLogger(&buf, Options{NoColor: true})
			logger.Info("request", "header", tt.value)

			if strings.Contains(buf.String(), tt.value) {
				t.Errorf("expected %q to be masked: %s", tt.value, buf.String())
			}
		})
	}
}

// TestSecureHandler_Secrets tests that registered secrets are cut out of
// messages, strings and errors.
func TestSecureHandler_Secrets(t *testing.T) {
	t.Parallel()

	const secret = "s3cr3t-session"

	var buf bytes.Buffer
	logger := NewLogger(&buf, Options{NoColor: true, Secrets: []string{secret, ""}})

	logger.Info("using "+secret)
	logger.Info("request", "detail", "cookie value "+secret+" rejected")
	logger.Error("fetch failed", "error", fmt.Errorf("wrap: %w", errors.New("bad "+secret)))

	output := buf.String()
	if strings.Contains(output, secret) {
		t.Errorf("secret leaked: %s", output)
	}
	if strings.Count(output, MaskValue) != 3 {
		t.Errorf("expected 3 masks, got output: %s", output)
	}
	if !strings.Contains(output, "rejected") {
		t.Errorf("expected surrounding text to survive: %s", output)
	}
}

// TestSecureHandler_LogLevels tests verbose and default levels.
func TestSecureHandler_LogLevels(t *testing.T) {
	t.Parallel()

	t.Run("default level shows info but not debug", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, Options{NoColor: true})
		logger.Debug("hidden")
		logger.Info("visiting", "url", "https://example.com/wiki/start")

		if strings.Contains(buf.String(), "hidden") {
			t.Error("debug message logged at default level")
		}
		if !strings.Contains(buf.String(), "visiting") {
			t.Error("info message missing at default level")
		}
	})

	t.Run("verbose shows debug", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, Options{Verbose: true, NoColor: true})
		logger.Debug("shown")

		if !strings.Contains(buf.String(), "shown") {
			t.Error("debug message missing in verbose mode")
		}
	})
}

// TestSecureHandler_WithAttrs tests that attributes bound up front are masked.
func TestSecureHandler_WithAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewLogger(&buf, Options{NoColor: true}).With("cookie", "DokuWiki=abc")
	logger.Info("test")

	if strings.Contains(buf.String(), "DokuWiki=abc") {
		t.Errorf("bound attribute not masked: %s", buf.String())
	}
}

// TestSecureHandler_WithGroup tests masking inside groups.
func TestSecureHandler_WithGroup(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewLogger(&buf, Options{JSON: true})
	logger.Info("request", slog.Group("http", slog.String("cookie", "abc"), slog.String("url", "https://example.com")))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	group, ok := record["http"].(map[string]any)
	if !ok {
		t.Fatalf("missing group in %v", record)
	}
	if group["cookie"] != MaskValue {
		t.Errorf("expected masked cookie, got %v", group["cookie"])
	}
	if group["url"] != "https://example.com" {
		t.Errorf("unexpected url %v", group["url"])
	}
}

// TestNewSecureHandler_NilHandler tests the default handler fallback.
func TestNewSecureHandler_NilHandler(t *testing.T) {
	t.Parallel()

	h := NewSecureHandler(nil)
	if h.handler == nil {
		t.Error("expected default handler")
	}
}
