package scraper

import (
	"bytes"
	"context"
	"slices"

	"github.com/nao1215/doku2md/internal/model"
)

// SourceFetcher reads page sources and revision authors.
type SourceFetcher struct {
	client        *Client
	wiki          model.Wiki
	revisionPages int
}

// NewSourceFetcher creates a SourceFetcher. revisionPages bounds how many
// revision list pages are read per page; zero disables contributor lookup.
func NewSourceFetcher(client *Client, wiki model.Wiki, revisionPages int) *SourceFetcher {
	return &SourceFetcher{
		client:        client,
		wiki:          wiki,
		revisionPages: revisionPages,
	}
}

// Wiki returns the wiki the fetcher reads from.
func (f *SourceFetcher) Wiki() model.Wiki {
	return f.wiki
}

// FetchSource returns the DokuWiki source of p from its edit form.
func (f *SourceFetcher) FetchSource(ctx context.Context, p model.Page) (string, error) {
	editURL := f.wiki.EditURL(p)
	body, err := f.client.Get(ctx, editURL)
	if err != nil {
		return "", err
	}

	source, err := ParseEditSource(bytes.NewReader(body))
	if err != nil {
		return "", &FetchError{URL: editURL, Err: err}
	}
	return source, nil
}

// FetchContributors returns the authors of p, oldest first and without
// duplicates. The revision list is read page by page until a page lists no
// entry or the page bound is reached.
func (f *SourceFetcher) FetchContributors(ctx context.Context, p model.Page) ([]string, error) {
	authors := make([]string, 0)
	first := 0

	for range f.revisionPages {
		revURL := f.wiki.RevisionsURL(p, first)
		body, err := f.client.Get(ctx, revURL)
		if err != nil {
			return nil, err
		}

		found, err := ParseRevisionAuthors(bytes.NewReader(body))
		if err != nil {
			return nil, &FetchError{URL: revURL, Err: err}
		}
		if len(found) == 0 {
			break
		}

		authors = append(authors, found...)
		first += len(found)
	}

	slices.Reverse(authors)
	return dedupe(authors), nil
}

// dedupe keeps the first occurrence of every name.
func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	unique := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		unique = append(unique, name)
	}
	return unique
}
