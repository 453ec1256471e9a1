// Package config provides configuration structures and utilities for doku2md.
// It defines the wiki location, the local directory layout, the page lists
// that adjust the scraped index, and the politeness settings used while
// fetching. Values are layered: defaults, the YAML configuration file, the
// environment (optionally loaded from .env), then CLI flags.
package config
