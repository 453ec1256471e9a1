// Package dokuwiki converts DokuWiki page sources to Markdown.
//
// Conversion happens in two passes. Fix normalises the raw source (line
// endings, Unicode form, indentation, stray macros, unclosed code blocks).
// Converter then reads the fixed source line by line and emits GitHub
// flavored Markdown through github.com/nao1215/markdown. Internal links are
// rewritten to relative links between the converted documents.
package dokuwiki
