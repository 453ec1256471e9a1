// Package database provides the SQLite migration ledger.
//
// The ledger stores one row per command run, one row per fetched page
// source with its SHA-256 and contributors, and one row per converted
// document. Reports are built from it and the fetch step uses it to tell
// whether a page changed since the previous run.
//
// modernc.org/sqlite is a CGO-free driver, so the tool cross-compiles and
// the ledger is a single file next to the other resources.
package database
