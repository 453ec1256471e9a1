package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// The page lists and denylist mirror the Fabric wiki, which is the wiki
// this tool was written to migrate.
const (
	// DefaultWikiURL is the root of the wiki to migrate.
	DefaultWikiURL = "https://fabricmc.net/wiki/"

	// DefaultResourcesDir holds the registry and the intermediate trees.
	DefaultResourcesDir = "resources"

	// DefaultDocsDir is the exposed documentation tree, a sibling of the
	// migration tool's own directory.
	DefaultDocsDir = "../docs"

	// DefaultTimeout is the timeout for each HTTP request.
	DefaultTimeout = 30 * time.Second

	// DefaultRequestDelay is the minimum interval between two requests to
	// the wiki. One request per second keeps the scrape polite.
	DefaultRequestDelay = 1 * time.Second

	// DefaultMaxBodySize limits the response body size to read.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultRevisionPages is the number of revision history pages walked per
	// page to collect contributors. Zero disables contributor collection.
	DefaultRevisionPages = 5

	// DefaultConcurrency is the number of pages converted at once.
	DefaultConcurrency = 1

	// DefaultUserAgent identifies doku2md in HTTP requests.
	DefaultUserAgent = "doku2md/1.0 (+https://github.com/nao1215/doku2md)"

	// DefaultFrenchTutorialTag is the namespace of the hardcoded French tutorials.
	DefaultFrenchTutorialTag = "fr:tutoriel"

	// AppName is the application name used for XDG directory paths.
	AppName = "doku2md"
)

// Names of the intermediate directories and the registry file inside
// ResourcesDir.
const (
	rawDirName      = "pages_dokuwiki"
	fixedDirName    = "pages_dokuwiki_fixed"
	markdownDirName = "pages_markdown"
	registryName    = "pages.json"
)

// DefaultDenylist returns the page names never migrated.
func DefaultDenylist() []string {
	return []string{"dokuwiki", "syntax", "welcome", "agenda", "wiki_meta", "sidebar", "start", "accueil", "sidebar_do_edit"}
}

// DefaultNotNamespaced returns the root pages that the index does not list.
func DefaultNotNamespaced() []string {
	return []string{"changelog", "install", "rules", "sidebar_do_edit", "start", "wiki_meta"}
}

// DefaultFrenchTutorials returns the French tutorial pages that the index
// does not list.
func DefaultFrenchTutorials() []string {
	return []string{
		"ajouter_mods", "appliquer_modifications", "blocs", "enchantements",
		"groupes_objets", "infobulles", "installation_java", "mise_en_place", "modpacks_atlauncher", "modpacks_technic",
		"objets", "recettes", "termes",
	}
}

// DefaultDuplicates returns pages the index reports that are not real pages.
// The fr:tutoriel namespace shows up as a page of the fr namespace.
func DefaultDuplicates() []PageRef {
	return []PageRef{{Tag: "fr", Name: "tutoriel"}}
}

// PageRef names a page in the configuration file.
type PageRef struct {
	Tag  string `yaml:"tag,omitempty"`
	Name string `yaml:"name"`
}

// PathMigration rewrites a relative markdown path.
// A From ending in "/" rewrites a directory prefix, any other From must
// match the whole path.
type PathMigration struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Config holds all configuration options for doku2md.
// It is populated from defaults, the configuration file, the environment and
// CLI flags, and passed explicitly to every component.
type Config struct {
	// WikiURL is the root URL of the DokuWiki site.
	WikiURL string

	// ResourcesDir holds pages.json and the raw, fixed and markdown trees.
	ResourcesDir string

	// DocsDir is the exposed documentation tree.
	DocsDir string

	// Denylist holds page names that are never written to the registry.
	Denylist []string

	// NotNamespaced are root pages appended after the scraped pages.
	NotNamespaced []string

	// FrenchTutorialTag is the namespace of FrenchTutorials.
	FrenchTutorialTag string

	// FrenchTutorials are appended after NotNamespaced.
	FrenchTutorials []string

	// Duplicates are scraped pages dropped from the result.
	Duplicates []PageRef

	// PathMigrations rewrite relative markdown paths, first match wins.
	PathMigrations []PathMigration

	// Timeout is the timeout for each HTTP request.
	Timeout time.Duration

	// RequestDelay is the minimum interval between requests.
	RequestDelay time.Duration

	// MaxBodySize is the maximum response body size in bytes.
	MaxBodySize int64

	// UserAgent is the User-Agent header sent with requests.
	UserAgent string

	// Cookie is sent with every request. Needed when the edit form of
	// protected pages requires a login session.
	Cookie string

	// Headers are extra request headers.
	Headers map[string]string

	// RevisionPages bounds how many revision history pages are walked per page.
	RevisionPages int

	// Concurrency is the number of pages converted at once.
	Concurrency int

	// DBDir is the directory of the SQLite migration ledger.
	DBDir string

	// ConfigFilePath is the explicit configuration file path, if any.
	ConfigFilePath string

	// Verbose enables debug logging.
	Verbose bool

	// LogJSON switches log output to JSON.
	LogJSON bool

	// NoColor disables colored log output.
	NoColor bool
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		WikiURL:           DefaultWikiURL,
		ResourcesDir:      DefaultResourcesDir,
		DocsDir:           DefaultDocsDir,
		Denylist:          DefaultDenylist(),
		NotNamespaced:     DefaultNotNamespaced(),
		FrenchTutorialTag: DefaultFrenchTutorialTag,
		FrenchTutorials:   DefaultFrenchTutorials(),
		Duplicates:        DefaultDuplicates(),
		Timeout:           DefaultTimeout,
		RequestDelay:      DefaultRequestDelay,
		MaxBodySize:       DefaultMaxBodySize,
		UserAgent:         DefaultUserAgent,
		RevisionPages:     DefaultRevisionPages,
		Concurrency:       DefaultConcurrency,
		DBDir:             XDGDataDir(),
	}
}

// RawDir is the tree of DokuWiki sources as fetched.
func (c *Config) RawDir() string {
	return filepath.Join(c.ResourcesDir, rawDirName)
}

// FixedDir is the tree of DokuWiki sources after text fixes.
func (c *Config) FixedDir() string {
	return filepath.Join(c.ResourcesDir, fixedDirName)
}

// MarkdownDir is the tree of converted markdown, before front matter.
func (c *Config) MarkdownDir() string {
	return filepath.Join(c.ResourcesDir, markdownDirName)
}

// RegistryPath is the location of pages.json.
func (c *Config) RegistryPath() string {
	return filepath.Join(c.ResourcesDir, registryName)
}

// XDGDataDir returns the XDG data directory for doku2md.
// On Linux: ~/.local/share/doku2md
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for doku2md.
// On Linux: ~/.config/doku2md
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found.
func (c *Config) Validate() error {
	if c.WikiURL == "" {
		return ErrNoWikiURL
	}
	if c.ResourcesDir == "" || c.DocsDir == "" {
		return ErrNoOutputDir
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.RequestDelay < 0 {
		return ErrInvalidRequestDelay
	}
	if c.MaxBodySize <= 0 {
		return ErrInvalidMaxBodySize
	}
	if c.RevisionPages < 0 {
		return ErrInvalidRevisionPages
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	for _, m := range c.PathMigrations {
		if m.From == "" {
			return ErrInvalidPathMigration
		}
	}
	return nil
}
