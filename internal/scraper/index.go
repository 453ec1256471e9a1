package scraper

import (
	"bytes"
	"context"
	"fmt"

	"github.com/nao1215/doku2md/internal/config"
	"github.com/nao1215/doku2md/internal/model"
)

// PageSaver persists a page list. *registry.Registry implements it.
type PageSaver interface {
	Save(pages []model.Page) error
}

// IndexScraper builds the page list of the wiki from its sitemap index and
// the page lists the index does not show.
type IndexScraper struct {
	client            *Client
	wiki              model.Wiki
	duplicates        []model.Page
	notNamespaced     []string
	frenchTutorialTag string
	frenchTutorials   []string
	denylist          model.Denylist
}

// NewIndexScraper creates an IndexScraper with the wiki URL and page lists
// from cfg.
func NewIndexScraper(client *Client, cfg *config.Config) *IndexScraper {
	duplicates := make([]model.Page, 0, len(cfg.Duplicates))
	for _, d := range cfg.Duplicates {
		duplicates = append(duplicates, model.NewPage(d.Tag, d.Name))
	}

	return &IndexScraper{
		client:            client,
		wiki:              model.NewWiki(cfg.WikiURL),
		duplicates:        duplicates,
		notNamespaced:     cfg.NotNamespaced,
		frenchTutorialTag: cfg.FrenchTutorialTag,
		frenchTutorials:   cfg.FrenchTutorials,
		denylist:          model.NewDenylist(cfg.Denylist...),
	}
}

// Scrape returns the full page list: scraped pages without known duplicates,
// then the un-namespaced pages, then the French tutorials, minus denylisted
// names. The first failed request aborts the scrape.
func (s *IndexScraper) Scrape(ctx context.Context) ([]model.Page, error) {
	tags, err := s.scrapeTags(ctx)
	if err != nil {
		return nil, err
	}

	pages := make([]model.Page, 0)
	for _, tag := range tags {
		children, err := s.scrapeChildren(ctx, tag)
		if err != nil {
			return nil, err
		}
		for _, name := range children {
			p := model.NewPage(tag, name)
			if s.isDuplicate(p) {
				continue
			}
			pages = append(pages, p)
		}
	}

	for _, name := range s.notNamespaced {
		pages = append(pages, model.NotNamespaced(name))
	}
	for _, name := range s.frenchTutorials {
		pages = append(pages, model.NewPage(s.frenchTutorialTag, name))
	}

	return s.denylist.Filter(pages), nil
}

// ScrapeAndSave scrapes the page list and saves it. Nothing is saved when
// the scrape fails.
func (s *IndexScraper) ScrapeAndSave(ctx context.Context, saver PageSaver) ([]model.Page, error) {
	pages, err := s.Scrape(ctx)
	if err != nil {
		return nil, err
	}
	if err := saver.Save(pages); err != nil {
		return nil, fmt.Errorf("failed to save page list: %w", err)
	}
	return pages, nil
}

func (s *IndexScraper) scrapeTags(ctx context.Context) ([]string, error) {
	indexURL := s.wiki.IndexURL()
	body, err := s.client.Get(ctx, indexURL)
	if err != nil {
		return nil, err
	}

	tags, err := ParseTags(bytes.NewReader(body))
	if err != nil {
		return nil, &FetchError{URL: indexURL, Err: err}
	}
	return tags, nil
}

func (s *IndexScraper) scrapeChildren(ctx context.Context, tag string) ([]string, error) {
	tagURL := s.wiki.TagIndexURL(tag)
	body, err := s.client.Get(ctx, tagURL)
	if err != nil {
		return nil, err
	}

	children, err := ParseChildren(bytes.NewReader(body))
	if err != nil {
		return nil, &FetchError{URL: tagURL, Err: err}
	}
	return children, nil
}

func (s *IndexScraper) isDuplicate(p model.Page) bool {
	for _, d := range s.duplicates {
		if p == d {
			return true
		}
	}
	return false
}
