// Package pipeline runs pages through the migration steps.
//
// A page is fetched from the wiki, its source is repaired, converted to
// Markdown and finally exposed with a YAML front matter in the docs tree.
// Each stage is a Step that reads what the previous stages left on the
// model.Migration and adds its own result. Every file is written atomically
// through an afero filesystem so that an aborted run never leaves a half
// written document behind.
//
// Fetching talks to the wiki and runs one page at a time. The offline
// stages may run for many pages at once with a BatchProcessor.
package pipeline
