package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables that override the configuration file.
const (
	EnvWikiURL      = "DOKU2MD_WIKI_URL"
	EnvCookie       = "DOKU2MD_COOKIE"
	EnvResourcesDir = "DOKU2MD_RESOURCES_DIR"
	EnvDocsDir      = "DOKU2MD_DOCS_DIR"
	EnvRequestDelay = "DOKU2MD_REQUEST_DELAY"
)

// DefaultEnvFile is loaded from the current directory when present.
const DefaultEnvFile = ".env"

// LoadEnvFile loads variables from envFile into the process environment.
// Variables already set are not overwritten. A missing file is not an error.
func LoadEnvFile(envFile string) error {
	if err := godotenv.Load(envFile); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", envFile, err)
	}
	return nil
}

// ApplyEnv overlays DOKU2MD_* variables onto cfg.
// The cookie is typically kept here rather than in the YAML file so that it
// stays out of version control.
func ApplyEnv(cfg *Config) error {
	if v := os.Getenv(EnvWikiURL); v != "" {
		cfg.WikiURL = v
	}
	if v := os.Getenv(EnvCookie); v != "" {
		cfg.Cookie = v
	}
	if v := os.Getenv(EnvResourcesDir); v != "" {
		cfg.ResourcesDir = v
	}
	if v := os.Getenv(EnvDocsDir); v != "" {
		cfg.DocsDir = v
	}
	if v := os.Getenv(EnvRequestDelay); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvRequestDelay, err)
		}
		cfg.RequestDelay = d
	}
	return nil
}
