package config

import "errors"

// Configuration validation errors returned by Config.Validate.
// Callers match them with errors.Is.
var (
	// ErrNoWikiURL is returned when the wiki root URL is empty.
	ErrNoWikiURL = errors.New("no wiki URL specified")

	// ErrNoOutputDir is returned when the resources or docs directory is empty.
	ErrNoOutputDir = errors.New("resources and docs directories must be set")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidRequestDelay is returned when the request delay is negative.
	// Use 0 for no delay between requests.
	ErrInvalidRequestDelay = errors.New("invalid request delay: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the max body size is not positive.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be positive")

	// ErrInvalidRevisionPages is returned when the revision page bound is negative.
	ErrInvalidRevisionPages = errors.New("invalid revision pages: must be non-negative")

	// ErrInvalidConcurrency is returned when the conversion concurrency is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidPathMigration is returned when a path migration rule has no source.
	ErrInvalidPathMigration = errors.New("invalid path migration: from must not be empty")
)
