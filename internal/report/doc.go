// Package report renders migration reports.
//
// A Report is loaded from the ledger for one run and may carry the result
// of a link check of the docs tree. Writers render it:
//   - SimpleWriter: Human-readable text output for terminal display
//   - MarkdownWriter: A Markdown document, e.g. for a pull request
//   - JSONWriter: Structured JSON output for tool integration
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output.
package report
