// Package linkcheck validates the relative links of the exposed docs tree.
//
// Every Markdown file under the tree is stripped of its front matter and
// parsed with goldmark; link and image destinations that point inside the
// tree must name an existing file. External URLs and same-page anchors are
// not checked.
package linkcheck
