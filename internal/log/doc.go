// Package log builds the slog loggers used by doku2md.
//
// Terminal output goes through github.com/lmittmann/tint, JSON output through
// slog.JSONHandler. Both are wrapped in a SecureHandler that masks cookies,
// tokens and any configured secret value (such as the wiki session cookie)
// before a record reaches the output.
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, log.Options{
//	    Verbose: verbose,
//	    Secrets: []string{cfg.Cookie},
//	})
//	logger.Info("visiting", "url", pageURL)
package log
