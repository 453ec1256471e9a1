package config

import "time"

// File represents the structure of the .doku2md configuration file.
// Every field is optional; zero values leave the corresponding default in place.
type File struct {
	// Wiki holds the remote site settings.
	Wiki WikiFile `yaml:"wiki,omitempty"`

	// Output holds the local directory layout.
	Output OutputFile `yaml:"output,omitempty"`

	// Pages holds the page list adjustments.
	Pages PagesFile `yaml:"pages,omitempty"`

	// PathMigrations rewrite relative markdown paths.
	PathMigrations []PathMigration `yaml:"pathMigrations,omitempty"`

	// Concurrency is the number of pages converted at once.
	Concurrency int `yaml:"concurrency,omitempty"`
}

// WikiFile configures how the wiki is contacted.
type WikiFile struct {
	// URL is the wiki root, e.g. "https://fabricmc.net/wiki/".
	URL string `yaml:"url,omitempty"`

	// Cookie is an HTTP cookie to use for every request.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are custom HTTP headers to include in requests.
	Headers map[string]string `yaml:"headers,omitempty"`

	// UserAgent overrides the User-Agent header.
	UserAgent string `yaml:"userAgent,omitempty"`

	// Timeout is the per request timeout, e.g. "30s".
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// RequestDelay is the minimum interval between requests, e.g. "500ms".
	RequestDelay time.Duration `yaml:"requestDelay,omitempty"`

	// RevisionPages bounds the revision history walk. Use -1 to disable.
	RevisionPages int `yaml:"revisionPages,omitempty"`
}

// OutputFile configures the local directory layout.
type OutputFile struct {
	// Resources holds pages.json and the intermediate trees.
	Resources string `yaml:"resources,omitempty"`

	// Docs is the exposed documentation tree.
	Docs string `yaml:"docs,omitempty"`

	// Database is the directory of the migration ledger.
	Database string `yaml:"database,omitempty"`
}

// PagesFile adjusts the page lists.
// A non-empty list replaces the built-in list entirely.
type PagesFile struct {
	Denylist          []string  `yaml:"denylist,omitempty"`
	NotNamespaced     []string  `yaml:"notNamespaced,omitempty"`
	FrenchTutorialTag string    `yaml:"frenchTutorialTag,omitempty"`
	FrenchTutorials   []string  `yaml:"frenchTutorials,omitempty"`
	Duplicates        []PageRef `yaml:"duplicates,omitempty"`
}

// Apply overlays the values set in the file onto cfg.
func (f *File) Apply(cfg *Config) {
	if f.Wiki.URL != "" {
		cfg.WikiURL = f.Wiki.URL
	}
	if f.Wiki.Cookie != "" {
		cfg.Cookie = f.Wiki.Cookie
	}
	if len(f.Wiki.Headers) > 0 {
		if cfg.Headers == nil {
			cfg.Headers = make(map[string]string)
		}
		for k, v := range f.Wiki.Headers {
			cfg.Headers[k] = v
		}
	}
	if f.Wiki.UserAgent != "" {
		cfg.UserAgent = f.Wiki.UserAgent
	}
	if f.Wiki.Timeout != 0 {
		cfg.Timeout = f.Wiki.Timeout
	}
	if f.Wiki.RequestDelay != 0 {
		cfg.RequestDelay = f.Wiki.RequestDelay
	}
	switch {
	case f.Wiki.RevisionPages < 0:
		cfg.RevisionPages = 0
	case f.Wiki.RevisionPages > 0:
		cfg.RevisionPages = f.Wiki.RevisionPages
	}

	if f.Output.Resources != "" {
		cfg.ResourcesDir = f.Output.Resources
	}
	if f.Output.Docs != "" {
		cfg.DocsDir = f.Output.Docs
	}
	if f.Output.Database != "" {
		cfg.DBDir = f.Output.Database
	}

	if len(f.Pages.Denylist) > 0 {
		cfg.Denylist = f.Pages.Denylist
	}
	if len(f.Pages.NotNamespaced) > 0 {
		cfg.NotNamespaced = f.Pages.NotNamespaced
	}
	if f.Pages.FrenchTutorialTag != "" {
		cfg.FrenchTutorialTag = f.Pages.FrenchTutorialTag
	}
	if len(f.Pages.FrenchTutorials) > 0 {
		cfg.FrenchTutorials = f.Pages.FrenchTutorials
	}
	if len(f.Pages.Duplicates) > 0 {
		cfg.Duplicates = f.Pages.Duplicates
	}

	if len(f.PathMigrations) > 0 {
		cfg.PathMigrations = f.PathMigrations
	}
	if f.Concurrency > 0 {
		cfg.Concurrency = f.Concurrency
	}
}
