// Package model defines the core data structures used throughout doku2md.
//
// This package contains the following main types:
//   - Page: Identifies one wiki document by namespace tag and name
//   - Wiki: Derives the remote URLs of pages on a DokuWiki site
//   - Migration: The per-page work item carried through the content pipeline
//   - FrontMatter: The YAML header written on exposed documents
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. The scraper, registry, pipeline and report packages all need
// these types, so centralizing them prevents import cycles.
package model
