package model

import (
	"crypto/sha256"
	"encoding/hex"
)

// Migration is the work item carried through the content pipeline for one
// page. Each step reads what previous steps produced and fills in its own
// fields.
type Migration struct {
	// Page is the page being migrated.
	Page Page

	// SourceURL is the view URL of the page on the wiki.
	SourceURL string

	// Raw is the DokuWiki source as fetched from the edit form.
	Raw string

	// Hash is the SHA-256 of Raw, used by the ledger for change detection.
	Hash string

	// Contributors lists revision authors, oldest first, without duplicates.
	Contributors []string

	// Fixed is the DokuWiki source after text fixes.
	Fixed string

	// Markdown is the converted document body.
	Markdown string

	// Title is the first heading of the page, or its name when it has none.
	Title string

	// Warnings collects constructs the converter could not translate.
	Warnings []string

	// PerformedSteps lists the names of completed pipeline steps.
	PerformedSteps []string

	// Error is the error that stopped the pipeline, if any.
	Error error `json:"-"`
}

// NewMigration creates a work item for p.
func NewMigration(p Page, sourceURL string) *Migration {
	return &Migration{
		Page:      p,
		SourceURL: sourceURL,
	}
}

// SetRaw stores the fetched source and its hash.
func (m *Migration) SetRaw(raw string) {
	m.Raw = raw
	m.Hash = ComputeHash(raw)
}

// AddWarning records a conversion warning.
func (m *Migration) AddWarning(w string) {
	m.Warnings = append(m.Warnings, w)
}

// ComputeHash returns the hex SHA-256 of content, or "" when content is empty.
func ComputeHash(content string) string {
	if content == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
