// Package main provides the entry point for the doku2md CLI.
//
// doku2md migrates a DokuWiki site to a tree of GitHub flavored Markdown
// documents. It lists the pages of the wiki, downloads their sources,
// repairs and converts them, and writes them with YAML front matter.
//
// Usage:
//
//	doku2md scrape
//	doku2md fetch
//	doku2md convert --concurrency 4
//	doku2md check
//	doku2md report --markdown -o report.md
//
// See --help for all available options.
package main

// main is the entry point for doku2md.
func main() {
	Execute()
}
